package errors

import (
	"fmt"
	"strings"
)

// ScopegenError is implemented by every error scopegen reports
type ScopegenError interface {
	error
	ErrorCode() ErrorCode
	Location() SourceLocation
	Context() map[string]interface{}
	Suggestions() []string
	Unwrap() error
}

// ErrorCode classifies a failure. Structural violations come first, then
// the policy-gated ones, then informational skips and tooling failures.
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota

	// Structural violations: always hard errors
	MultipleQualifiersCode
	MultipleScopesCode
	ScopeRetentionCode
	HandleGenericsCode
	InvalidHandleCode
	UnsupportedFieldTypeCode
	ReleasableWithoutSingletonCode
	ProvidesReleasableWithoutProvidesSingletonCode
	ProvidesSingletonWithoutScopeCode
	MultipleInjectConstructorsCode
	InjectConstructorMarkerCode
	PrivateElementCode
	PrivateEnclosingTypeCode
	AbstractTypeCode
	NonStaticInnerTypeCode
	FinalFieldCode

	// Policy-gated violations: warnings unless configured otherwise
	NoFactoryCode
	MethodVisibilityCode

	// Informational: skips and notes
	ExcludedTypeCode
	SkippedTypeCode
	ShadowedMethodCode

	// Tooling errors
	SyntaxErrorCode
	ValidationErrorCode
	ConfigurationErrorCode
	GenerationErrorCode
	FileSystemErrorCode
	LoadErrorCode
)

var codeNames = map[ErrorCode]string{
	MultipleQualifiersCode:                         "MultipleQualifiers",
	MultipleScopesCode:                             "MultipleScopes",
	ScopeRetentionCode:                             "ScopeRetention",
	HandleGenericsCode:                             "HandleGenerics",
	InvalidHandleCode:                              "InvalidHandle",
	UnsupportedFieldTypeCode:                       "UnsupportedFieldType",
	ReleasableWithoutSingletonCode:                 "ReleasableWithoutSingleton",
	ProvidesReleasableWithoutProvidesSingletonCode: "ProvidesReleasableWithoutProvidesSingleton",
	ProvidesSingletonWithoutScopeCode:              "ProvidesSingletonWithoutScope",
	MultipleInjectConstructorsCode:                 "MultipleInjectConstructors",
	InjectConstructorMarkerCode:                    "InjectConstructorMarker",
	PrivateElementCode:                             "PrivateElement",
	PrivateEnclosingTypeCode:                       "PrivateEnclosingType",
	AbstractTypeCode:                               "AbstractType",
	NonStaticInnerTypeCode:                         "NonStaticInnerType",
	FinalFieldCode:                                 "FinalField",
	NoFactoryCode:                                  "NoFactory",
	MethodVisibilityCode:                           "MethodVisibility",
	ExcludedTypeCode:                               "ExcludedType",
	SkippedTypeCode:                                "SkippedType",
	ShadowedMethodCode:                             "ShadowedMethod",
	SyntaxErrorCode:                                "SyntaxError",
	ValidationErrorCode:                            "ValidationError",
	ConfigurationErrorCode:                         "ConfigurationError",
	GenerationErrorCode:                            "GenerationError",
	FileSystemErrorCode:                            "FileSystemError",
	LoadErrorCode:                                  "LoadError",
}

func (e ErrorCode) String() string {
	if name, ok := codeNames[e]; ok {
		return name
	}
	return "UnknownError"
}

// SourceLocation is a file position; Line and Column are 1-based and zero when unknown
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

func (s SourceLocation) String() string {
	switch {
	case s.File == "":
		return "unknown location"
	case s.Line == 0:
		return s.File
	case s.Column == 0:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// IsEmpty reports whether the file is unknown
func (s SourceLocation) IsEmpty() bool { return s.File == "" }

// BaseError is the ScopegenError used by tooling failures. The With*
// methods mutate and return the receiver so they chain at the call site.
type BaseError struct {
	Code        ErrorCode
	Message     string
	Loc         SourceLocation
	Cause       error
	ContextData map[string]interface{}
	Hints       []string
}

func (e *BaseError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.Loc.IsEmpty() {
		return msg
	}
	return e.Loc.String() + ": " + msg
}

func (e *BaseError) ErrorCode() ErrorCode     { return e.Code }
func (e *BaseError) Location() SourceLocation { return e.Loc }
func (e *BaseError) Suggestions() []string    { return e.Hints }
func (e *BaseError) Unwrap() error            { return e.Cause }

// Context never returns nil
func (e *BaseError) Context() map[string]interface{} {
	if e.ContextData == nil {
		return map[string]interface{}{}
	}
	return e.ContextData
}

func (e *BaseError) WithLocation(loc SourceLocation) *BaseError {
	e.Loc = loc
	return e
}

func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.ContextData == nil {
		e.ContextData = map[string]interface{}{}
	}
	e.ContextData[key] = value
	return e
}

func (e *BaseError) WithSuggestion(suggestion string) *BaseError {
	return e.WithSuggestions(suggestion)
}

func (e *BaseError) WithSuggestions(suggestions ...string) *BaseError {
	e.Hints = append(e.Hints, suggestions...)
	return e
}

// New returns an error with code and message and no cause
func New(code ErrorCode, message string) *BaseError {
	return Wrap(code, message, nil)
}

func Newf(code ErrorCode, format string, args ...interface{}) *BaseError {
	return Wrap(code, fmt.Sprintf(format, args...), nil)
}

// Wrap returns an error with code and message caused by cause
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return &BaseError{Code: code, Message: message, Cause: cause}
}

// MultipleErrors is the set of hard errors of one resolution pass
type MultipleErrors struct {
	Errors []ScopegenError
}

func (e *MultipleErrors) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d errors:", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, err)
	}
	return b.String()
}

// Unwrap exposes every collected error to errors.Is and errors.As
func (e *MultipleErrors) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = err
	}
	return out
}

func (e *MultipleErrors) Count() int {
	return len(e.Errors)
}

// HasCode reports whether any collected error carries code
func (e *MultipleErrors) HasCode(code ErrorCode) bool {
	for _, err := range e.Errors {
		if err.ErrorCode() == code {
			return true
		}
	}
	return false
}
