package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
)

// errExit stops the read loop after an exit notification.
var errExit = errors.New("exit requested")

// Language Server implementation
type LanguageServer struct {
	documents map[string]*DocumentState // URI -> document state
	mu        sync.RWMutex              // Mutex to protect the documents map
	writer    io.Writer                 // Output stream for JSON-RPC responses
	rootPath  string                    // Workspace root from initialize
	shutdown  bool                      // shutdown was requested before exit
}

func NewLanguageServer(writer io.Writer) *LanguageServer {
	if writer == nil {
		writer = os.Stdout
	}
	return &LanguageServer{
		documents: make(map[string]*DocumentState),
		writer:    writer,
	}
}

// Start reads framed messages from r until EOF or an exit notification.
func (s *LanguageServer) Start(r io.Reader) error {
	// bufio.Reader handles arbitrary message sizes
	reader := bufio.NewReader(r)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading header: %w", err)
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue // Skip empty lines between messages
		}
		if !strings.HasPrefix(line, "Content-Length: ") {
			continue
		}
		contentLength, err := strconv.Atoi(strings.TrimPrefix(line, "Content-Length: "))
		if err != nil {
			log.Printf("Error parsing Content-Length: %v", err)
			continue
		}

		// Skip the remaining headers up to the blank separator line
		for {
			sep, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("reading separator: %w", err)
			}
			if strings.TrimRight(sep, "\r\n") == "" {
				break
			}
		}

		content := make([]byte, contentLength)
		if _, err := io.ReadFull(reader, content); err != nil {
			return fmt.Errorf("reading content: %w", err)
		}

		if err := s.handleMessage(content); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			log.Printf("Error handling message: %v", err)
		}
	}
}

type baseMessage struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Method  string      `json:"method"`
}

func (s *LanguageServer) handleMessage(content []byte) error {
	var msg baseMessage
	if err := json.Unmarshal(content, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	log.Printf("%s (id %v)", msg.Method, msg.ID)

	// Requests carry an ID, notifications do not
	if msg.ID != nil {
		return s.handleRequest(msg, content)
	}
	return s.handleNotification(msg, content)
}

func (s *LanguageServer) handleRequest(msg baseMessage, content []byte) error {
	switch msg.Method {
	case "initialize":
		var params InitializeParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleInitialize(msg.ID, params)

	case "shutdown":
		return s.handleShutdown(msg.ID)

	case "textDocument/hover":
		var params HoverParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleHover(msg.ID, params)

	case "textDocument/definition":
		var params DefinitionParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDefinition(msg.ID, params)

	case "textDocument/implementation":
		var params ImplementationParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleImplementation(msg.ID, params)

	case "textDocument/formatting":
		var params DocumentFormattingParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleFormatting(msg.ID, params)

	default:
		return s.sendResponse(ResponseMessage{
			Jsonrpc: "2.0",
			ID:      msg.ID,
			Error: &Error{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", msg.Method),
			},
		})
	}
}

func (s *LanguageServer) handleNotification(msg baseMessage, content []byte) error {
	switch msg.Method {
	case "initialized":
		return nil

	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if err := json.Unmarshal(content, &NotificationMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDidOpen(params)

	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := json.Unmarshal(content, &NotificationMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDidChange(params)

	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		if err := json.Unmarshal(content, &NotificationMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDidClose(params)

	case "exit":
		return errExit

	default:
		// Unknown notification, ignore
		return nil
	}
}

func (s *LanguageServer) sendResponse(response ResponseMessage) error {
	return s.sendMessage(response)
}

// sendResult answers request id with result.
func (s *LanguageServer) sendResult(id interface{}, result interface{}) error {
	return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: result})
}

func (s *LanguageServer) sendNotification(notification NotificationMessage) error {
	return s.sendMessage(notification)
}

func (s *LanguageServer) sendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n%s", len(data), data)
	return err
}
