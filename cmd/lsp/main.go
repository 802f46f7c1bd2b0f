// Command lsp is a language server for trait programs. It publishes
// traitc diagnostics, answers hover and definition requests from the
// analyzed scopes, lists impls of a type or trait, and formats
// declarations.
package main

import (
	"log"
	"os"
)

func main() {
	log.SetFlags(0)          // Disable timestamp in logs
	log.SetPrefix("lsp: ")   // stdout carries the protocol
	log.SetOutput(os.Stderr) // Log to stderr, not stdout

	server := NewLanguageServer(os.Stdout)
	if err := server.Start(os.Stdin); err != nil {
		log.Print(err)
		os.Exit(1)
	}
	if !server.shutdown {
		os.Exit(1)
	}
}
