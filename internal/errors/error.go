package errors

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/vango-dev/dilithium/pkg/element"
	"github.com/vango-dev/dilithium/pkg/protocol"
	"github.com/vango-dev/dilithium/pkg/reconcile"
	"github.com/vango-dev/dilithium/pkg/snapshot"
)

// Category represents the type of error.
type Category string

const (
	CategoryElement   Category = "element"
	CategoryReconcile Category = "reconcile"
	CategoryProtocol  Category = "protocol"
	CategorySnapshot  Category = "snapshot"
	CategoryScene     Category = "scene"
	CategoryConfig    Category = "config"
	CategoryCLI       Category = "cli"
)

// Location represents a position in a scene or config file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is a coded error with an optional file location and a fix hint.
type Error struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the file position the error refers to.
	Location *Location

	// Context contains the lines surrounding Location.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file location and reads the surrounding lines.
func (e *Error) WithLocation(file string, line, column int) *Error {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail replaces the detailed explanation.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// WithContext sets the context lines directly.
func (e *Error) WithContext(lines []string) *Error {
	e.Context = lines
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	first := targetLine - contextSize/2
	last := targetLine + contextSize/2
	for scanner.Scan() {
		lineNum++
		if lineNum > last {
			break
		}
		if lineNum >= first {
			lines = append(lines, scanner.Text())
		}
	}
	return lines
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{Code: code, Message: "Unknown error"}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates an uncoded Error with a formatted message.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err under code unless it already is an *Error.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return New(code).Wrap(err)
}

// sentinels maps library errors to codes. Order matters: a render failure
// caused by an invalid element classifies as the element error.
var sentinels = []struct {
	err  error
	code string
}{
	{element.ErrInvalidElement, "E001"},
	{element.ErrUnsupportedChild, "E002"},
	{element.ErrDuplicateKey, "E003"},
	{reconcile.ErrSetStateDuringRender, "E004"},
	{reconcile.ErrUnmounted, "E005"},
	{reconcile.ErrRenderFailed, "E006"},
	{reconcile.ErrUnknownRoot, "E007"},
	{reconcile.ErrNilTarget, "E008"},
	{reconcile.ErrNotComposite, "E009"},
	{protocol.ErrFrameTooLarge, "E040"},
	{protocol.ErrUnknownOp, "E041"},
	{snapshot.ErrUnknownFormat, "E061"},
	{snapshot.ErrInvalidName, "E062"},
}

// Classify returns err as an *Error, picking the code from the first known
// library error it wraps. Anything unrecognised gets fallback.
func Classify(err error, fallback string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return New(s.code).Wrap(err)
		}
	}
	return New(fallback).Wrap(err)
}
