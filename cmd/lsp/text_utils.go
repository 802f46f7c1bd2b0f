package main

import (
	"strings"

	"github.com/funvibe/traitmap/internal/source"
)

func getLine(content string, lineIndex int) string {
	start := 0
	currentLine := 0
	n := len(content)

	for i := 0; i < n; i++ {
		if content[i] == '\n' {
			if currentLine == lineIndex {
				return content[start:i]
			}
			start = i + 1
			currentLine++
		}
	}

	if currentLine == lineIndex {
		return content[start:]
	}

	return ""
}

func getWordAtPosition(content string, line, char int) string {
	lineStr := getLine(content, line)
	if char < 0 || char >= len(lineStr) {
		// If cursor is at the end of line (after last char), check previous char
		if char == len(lineStr) && char > 0 {
			char--
		} else {
			return ""
		}
	}

	start := char
	for start > 0 && isIdentifierChar(lineStr[start-1]) {
		start--
	}
	end := char
	for end < len(lineStr) && isIdentifierChar(lineStr[end]) {
		end++
	}

	if start > end {
		return ""
	}
	return lineStr[start:end]
}

func isIdentifierChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

func uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}

// spanRange converts a span to a 0-based LSP range.
func spanRange(span source.Span) Range {
	if span.File == nil {
		return Range{}
	}
	sl, sc := span.File.LineCol(span.Start)
	el, ec := span.File.LineCol(span.End)
	return Range{
		Start: Position{Line: sl - 1, Character: sc - 1},
		End:   Position{Line: el - 1, Character: ec - 1},
	}
}

func spanLocation(span source.Span) Location {
	return Location{URI: pathToURI(span.Filename()), Range: spanRange(span)}
}
