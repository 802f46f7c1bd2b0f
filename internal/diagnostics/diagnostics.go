package diagnostics

import (
	"fmt"
	"strings"

	"github.com/funvibe/traitmap/internal/source"
)

// DiagnosticError is a recoverable, user-facing problem found while
// checking a program.
type DiagnosticError struct {
	Code    ErrorCode
	Message string
	Span    source.Span
	File    string

	// Related points at other locations involved (e.g. the existing impl
	// in a conflict).
	Related []source.Span
	// Notes are extra lines printed under the message.
	Notes []string
}

func NewError(code ErrorCode, span source.Span, msg string) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Message: msg,
		Span:    span,
		File:    span.Filename(),
	}
}

// WithRelated appends related spans and returns e.
func (e *DiagnosticError) WithRelated(spans ...source.Span) *DiagnosticError {
	e.Related = append(e.Related, spans...)
	return e
}

// WithNote appends a note line and returns e.
func (e *DiagnosticError) WithNote(format string, args ...interface{}) *DiagnosticError {
	e.Notes = append(e.Notes, fmt.Sprintf(format, args...))
	return e
}

func (e *DiagnosticError) Error() string {
	var b strings.Builder
	_, line, col := e.Span.LocStart()
	if e.File != "" {
		fmt.Fprintf(&b, "%s:%d:%d: ", e.File, line, col)
	} else if line > 0 {
		fmt.Fprintf(&b, "%d:%d: ", line, col)
	}
	fmt.Fprintf(&b, "error[%s]: %s", e.Code, e.Message)
	return b.String()
}

// ErrorEmitted is returned by operations that reported their failures
// through a Handler. The diagnostics themselves live in the Handler.
type ErrorEmitted struct {
	Count int
}

func (e *ErrorEmitted) Error() string {
	if e.Count == 1 {
		return "1 error emitted"
	}
	return fmt.Sprintf("%d errors emitted", e.Count)
}

// Handler accumulates diagnostics. Analysis keeps going after an error
// is emitted; callers inspect the handler at the end.
type Handler struct {
	errors []*DiagnosticError
}

func NewHandler() *Handler {
	return &Handler{}
}

// Emit records e and returns it.
func (h *Handler) Emit(e *DiagnosticError) *DiagnosticError {
	h.errors = append(h.errors, e)
	return e
}

// Errorf emits a new diagnostic built from a format string.
func (h *Handler) Errorf(code ErrorCode, span source.Span, format string, args ...interface{}) *DiagnosticError {
	return h.Emit(NewError(code, span, fmt.Sprintf(format, args...)))
}

// Scope runs fn against a child handler. Everything the child collects is
// appended to h. When fn returned nil but emitted errors, Scope returns
// an *ErrorEmitted so the caller still sees the failure.
func (h *Handler) Scope(fn func(h *Handler) error) error {
	child := NewHandler()
	err := fn(child)
	h.errors = append(h.errors, child.errors...)
	if err != nil {
		return err
	}
	if n := len(child.errors); n > 0 {
		return &ErrorEmitted{Count: n}
	}
	return nil
}

// Append moves all diagnostics from other into h.
func (h *Handler) Append(other *Handler) {
	if other == nil {
		return
	}
	h.errors = append(h.errors, other.errors...)
}

func (h *Handler) HasErrors() bool {
	return len(h.errors) > 0
}

func (h *Handler) Errors() []*DiagnosticError {
	return h.errors
}

// Count returns the number of diagnostics with the given code.
func (h *Handler) Count(code ErrorCode) int {
	n := 0
	for _, e := range h.errors {
		if e.Code == code {
			n++
		}
	}
	return n
}

// Clear drops every collected diagnostic.
func (h *Handler) Clear() {
	h.errors = nil
}
