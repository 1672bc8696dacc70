// Package annotations parses //scopegen:: directive comments.
package annotations

import (
	"strings"

	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/models"
)

// Prefix opens every directive comment
const Prefix = "scopegen::"

// Directive keywords
const (
	InjectKeyword             = "inject"
	InjectConstructorKeyword  = "inject_constructor"
	NamedKeyword              = "named"
	SingletonKeyword          = "singleton"
	ReleasableKeyword         = "releasable"
	ProvidesSingletonKeyword  = "provides_singleton"
	ProvidesReleasableKeyword = "provides_releasable"
	SuppressKeyword           = "suppress"
	QualifierKeyword          = "qualifier"
	ScopeKeyword              = "scope"
	AnnotatedKeyword          = "annotated"
)

// Common parameter names
const (
	ParamParameter = "Param"     // routes a directive on a func to one of its parameters
	ParamRetention = "Retention" // retention of a scope or qualifier annotation type
)

// ParsedAnnotation is one parsed directive comment
type ParsedAnnotation struct {
	Keyword    string                // directive keyword
	Args       []string              // positional arguments, unquoted
	Parameters map[string]string     // -Name=Value parameters, -Flag is stored as "true"
	Location   errors.SourceLocation // where the comment was written
	Raw        string                // original comment text
}

// Arg returns the positional argument at index i, or ""
func (p *ParsedAnnotation) Arg(i int) string {
	if i < 0 || i >= len(p.Args) {
		return ""
	}
	return p.Args[i]
}

// GetString returns a string parameter value with optional default
func (p *ParsedAnnotation) GetString(paramName string, defaultValue ...string) string {
	if value, exists := p.Parameters[paramName]; exists {
		return value
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// HasParameter checks if a parameter exists
func (p *ParsedAnnotation) HasParameter(paramName string) bool {
	_, exists := p.Parameters[paramName]
	return exists
}

// Identity returns the built-in identity of the keyword, or "" for `annotated`
func (p *ParsedAnnotation) Identity() string {
	return models.BuiltinKeywords[p.Keyword]
}

// ToAnnotation converts the directive into a model annotation with the given identity.
// Positional arguments become the comma separated value; -Param is dropped.
func (p *ParsedAnnotation) ToAnnotation(identity string) models.Annotation {
	args := p.Args
	if p.Keyword == AnnotatedKeyword && len(args) > 0 {
		args = args[1:]
	}
	var params map[string]string
	for k, v := range p.Parameters {
		if k == ParamParameter {
			continue
		}
		if params == nil {
			params = make(map[string]string)
		}
		params[k] = v
	}
	return models.Annotation{
		Identity: identity,
		Value:    strings.Join(args, ","),
		Params:   params,
		Location: p.Location,
	}
}

// ParameterType represents the type of a parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
	IntType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	default:
		return "unknown"
	}
}

// ParameterSpec defines the specification for a directive parameter
type ParameterSpec struct {
	Type         ParameterType      // Parameter type
	Required     bool               // Whether parameter is required
	DefaultValue string             // Value used for a bare -Flag
	Description  string             // Parameter description
	Validator    func(string) error // Custom validator function
}

// PositionalSpec bounds the positional arguments of a directive
type PositionalSpec struct {
	Min         int
	Max         int // -1 for unbounded
	Description string
	Validator   func(string) error // applied to every comma separated value
}

// CustomValidator represents a custom validation function for directives
type CustomValidator func(*ParsedAnnotation) error

// AnnotationSchema defines the schema for a directive keyword
type AnnotationSchema struct {
	Keyword     string                   // directive keyword
	Description string                   // Human-readable description
	Targets     []models.ElementKind     // declarations the directive may be written on
	Positional  PositionalSpec           // positional arguments
	Parameters  map[string]ParameterSpec // Parameter specifications
	Validators  []CustomValidator        // Custom validation functions
	Examples    []string                 // Usage examples
}

// AllowsTarget reports whether the directive may be written on the element kind
func (s AnnotationSchema) AllowsTarget(kind models.ElementKind) bool {
	for _, t := range s.Targets {
		if t == kind {
			return true
		}
	}
	return false
}
