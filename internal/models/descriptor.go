package models

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// TypeKind classifies the leaf of a type descriptor
type TypeKind int

const (
	KindNamed TypeKind = iota // named struct or other defined type
	KindInterface
	KindBasic     // predeclared types: int, string, bool, ...
	KindComposite // slices, maps, funcs, channels, arrays
	KindWildcard  // unbounded placeholder (?)
	KindAny       // explicit any
	KindTypeParam
)

// String returns the string representation of the kind
func (k TypeKind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindInterface:
		return "interface"
	case KindBasic:
		return "basic"
	case KindComposite:
		return "composite"
	case KindWildcard:
		return "wildcard"
	case KindAny:
		return "any"
	case KindTypeParam:
		return "type-param"
	default:
		return "unknown"
	}
}

// TypeDescriptor is the structural description of a declared type
type TypeDescriptor struct {
	Name    string           // fully-qualified name, e.g. example.com/app/services.Widget
	Kind    TypeKind         // leaf classification
	Pointer bool             // declared through a pointer
	Args    []TypeDescriptor // type arguments, in order
}

// String renders the descriptor in Go-like syntax
func (t TypeDescriptor) String() string {
	var b strings.Builder
	if t.Pointer {
		b.WriteString("*")
	}
	b.WriteString(t.Name)
	if len(t.Args) > 0 {
		b.WriteString("[")
		for i, arg := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(arg.String())
		}
		b.WriteString("]")
	}
	return b.String()
}

// Erased returns the descriptor without its own type arguments
func (t TypeDescriptor) Erased() TypeDescriptor {
	t.Args = nil
	return t
}

// IsGeneric reports whether the descriptor carries type arguments
func (t TypeDescriptor) IsGeneric() bool {
	return len(t.Args) > 0
}

// IsPlaceholder reports whether the descriptor is a wildcard or an explicit any
func (t TypeDescriptor) IsPlaceholder() bool {
	return t.Kind == KindWildcard || t.Kind == KindAny
}

// Package returns the import path part of the name, or "" for predeclared types
func (t TypeDescriptor) Package() string {
	idx := strings.LastIndex(t.Name, ".")
	if idx < 0 || t.Kind == KindComposite {
		return ""
	}
	pkg := t.Name[:idx]
	// a dot inside the last path element belongs to the domain, not to the type name
	if strings.Contains(t.Name[idx:], "/") {
		return ""
	}
	return pkg
}

// Simple returns the unqualified type name
func (t TypeDescriptor) Simple() string {
	if pkg := t.Package(); pkg != "" {
		return t.Name[len(pkg)+1:]
	}
	return t.Name
}

// Equal reports structural equality
func (t TypeDescriptor) Equal(other TypeDescriptor) bool {
	if t.Name != other.Name || t.Kind != other.Kind || t.Pointer != other.Pointer || len(t.Args) != len(other.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(other.Args[i]) {
			return false
		}
	}
	return true
}

// Named builds a named descriptor
func Named(name string, args ...TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{Name: name, Kind: KindNamed, Args: args}
}

// PointerTo returns a copy of the descriptor declared through a pointer
func PointerTo(t TypeDescriptor) TypeDescriptor {
	t.Pointer = true
	return t
}

var basicTypes = map[string]bool{
	"bool": true, "string": true, "byte": true, "rune": true, "error": false,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
}

// IsBasicName reports whether name is a predeclared basic type
func IsBasicName(name string) bool {
	return basicTypes[name]
}

type typeExpr struct {
	Pointer  bool        `parser:"@'*'?"`
	Wildcard bool        `parser:"( @'?'"`
	Name     string      `parser:"| @Ident )"`
	Args     []*typeExpr `parser:"( '[' @@ ( ',' @@ )* ']' )?"`
}

var descriptorParser = participle.MustBuild[typeExpr](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.\-/]*`},
		{Name: "Punct", Pattern: `[*?\[\],]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})),
	participle.Elide("Whitespace"),
)

// ParseTypeDescriptor parses a descriptor written as
// `*example.com/pkg.Type[Arg, other.Arg[?]]`.
func ParseTypeDescriptor(s string) (TypeDescriptor, error) {
	expr, err := descriptorParser.ParseString("", s)
	if err != nil {
		return TypeDescriptor{}, fmt.Errorf("invalid type descriptor %q: %w", s, err)
	}
	return expr.descriptor(), nil
}

// MustParseTypeDescriptor is ParseTypeDescriptor that panics on error
func MustParseTypeDescriptor(s string) TypeDescriptor {
	t, err := ParseTypeDescriptor(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (e *typeExpr) descriptor() TypeDescriptor {
	t := TypeDescriptor{Name: e.Name, Pointer: e.Pointer}
	switch {
	case e.Wildcard:
		t.Name = "?"
		t.Kind = KindWildcard
	case e.Name == "any":
		t.Kind = KindAny
	case e.Name == "error":
		t.Kind = KindInterface
	case IsBasicName(e.Name):
		t.Kind = KindBasic
	default:
		t.Kind = KindNamed
	}
	for _, arg := range e.Args {
		t.Args = append(t.Args, arg.descriptor())
	}
	return t
}
