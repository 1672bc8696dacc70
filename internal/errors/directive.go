package errors

import "fmt"

// ValidationError is a directive argument or target that is well formed but
// not acceptable where it appears.
type ValidationError struct {
	*BaseError
	Field    string
	Expected string
	Actual   string
}

// NewValidationError reports that field held actual where expected was required
func NewValidationError(field, expected, actual string) *ValidationError {
	return &ValidationError{
		BaseError: Newf(ValidationErrorCode, "invalid %s: want %s, got %s", field, expected, actual),
		Field:     field,
		Expected:  expected,
		Actual:    actual,
	}
}

func (e *ValidationError) WithLocation(loc SourceLocation) *ValidationError {
	e.Loc = loc
	return e
}

func (e *ValidationError) WithSuggestion(suggestion string) *ValidationError {
	e.Hints = append(e.Hints, suggestion)
	return e
}

// SyntaxError is text that does not parse as a directive or manifest
type SyntaxError struct {
	*BaseError
	Token string // offending token, empty when unknown
}

func NewSyntaxError(message string) *SyntaxError {
	return &SyntaxError{BaseError: New(SyntaxErrorCode, message)}
}

// WrapSyntaxError wraps a parser failure on item
func WrapSyntaxError(item string, cause error) *SyntaxError {
	return &SyntaxError{BaseError: Wrap(SyntaxErrorCode, fmt.Sprintf("cannot parse %s", item), cause)}
}

func (e *SyntaxError) WithToken(token string) *SyntaxError {
	e.Token = token
	return e
}

func (e *SyntaxError) WithLocation(loc SourceLocation) *SyntaxError {
	e.Loc = loc
	return e
}

func (e *SyntaxError) WithSuggestion(suggestion string) *SyntaxError {
	e.Hints = append(e.Hints, suggestion)
	return e
}
