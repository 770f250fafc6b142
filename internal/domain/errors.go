package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDeckNotFound  = errors.New("deck not found")
	ErrMatchNotFound = errors.New("match not found")
)

// ValidationError reports bad or missing user input. It never accompanies a
// state change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type AmbiguityError struct {
	Token      string
	Tier       string
	Line       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous deck %q (%s matches %s) in line %q",
		e.Token, e.Tier, strings.Join(e.Candidates, ", "), e.Line)
}

type UnresolvedReferenceError struct {
	Token string
	Line  string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("no deck matches %q in line %q", e.Token, e.Line)
}

type ReferentialIntegrityError struct {
	DeckID  string
	Seasons []string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("deck %s is used in matches from %s; deactivate it instead",
		e.DeckID, strings.Join(e.Seasons, ", "))
}

type DocumentLoadError struct {
	Path string
	Err  error
}

func (e *DocumentLoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

func (e *DocumentLoadError) Unwrap() error {
	return e.Err
}
