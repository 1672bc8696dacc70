package models

import (
	"fmt"
	"strings"

	"github.com/toyz/scopegen/internal/errors"
)

// Element is the part shared by every declaration.
// Declarations are read-only inputs owned by the symbol source.
type Element struct {
	Name        string                // simple name
	Kind        ElementKind           // what the element is
	Owner       string                // identity of the type the element belongs to (itself for types)
	Visibility  Visibility            // access level
	Static      bool                  // static member or top-level/static nested type
	Annotations Annotations           // declared annotations in source order
	Location    errors.SourceLocation // where the element is declared
}

// Describe returns a human readable description of the element
func (e *Element) Describe() string {
	switch e.Kind {
	case ElementType:
		return e.Owner
	case ElementConstructor:
		return fmt.Sprintf("%s constructor %s", e.Owner, e.Name)
	case ElementParameter:
		return fmt.Sprintf("%s parameter %s", e.Owner, e.Name)
	default:
		return fmt.Sprintf("%s#%s", e.Owner, e.Name)
	}
}

// IsPrivate reports whether the element is private
func (e *Element) IsPrivate() bool {
	return e.Visibility == VisibilityPrivate
}

// EmbedStep is one hop from a type to its embedded ancestor
type EmbedStep struct {
	Field   string // name of the embedded field
	Pointer bool   // embedded through a pointer
}

// Type is a type declaration together with its members
type Type struct {
	Element
	Identity     string         // fully-qualified identity (package path + "." + name)
	Package      string         // import path of the declaring package
	PackageName  string         // package clause name
	Category     TypeCategory   // class, interface, annotation
	Abstract     bool           // cannot be instantiated
	Enclosing    string         // identity of the enclosing type for nested types
	Retention    Retention      // annotation types only
	Super        string         // identity of the superclass, "" when none
	SuperPath    []EmbedStep    // how to reach the superclass value from an instance
	Constructors []*Constructor // declared or implicit constructors
	Fields       []*Field       // declared fields in source order
	Methods      []*Method      // declared methods in source order
}

// Descriptor returns the type as a descriptor
func (t *Type) Descriptor() TypeDescriptor {
	kind := KindNamed
	if t.Category == CategoryInterface {
		kind = KindInterface
	}
	return TypeDescriptor{Name: t.Identity, Kind: kind}
}

// IsNested reports whether the type is declared inside another type
func (t *Type) IsNested() bool {
	return t.Enclosing != ""
}

// IsInnerNonStatic reports whether the type is a nested type bound to an outer instance
func (t *Type) IsInnerNonStatic() bool {
	return t.IsNested() && !t.Static
}

// Method returns the first method with the given name
func (t *Type) Method(name string) (*Method, bool) {
	for _, m := range t.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Field returns the field with the given name
func (t *Type) Field(name string) (*Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Field is a member variable
type Field struct {
	Element
	Type  TypeDescriptor // declared type
	Final bool           // immutable after construction
}

// Parameter is a constructor or method parameter
type Parameter struct {
	Element
	Type TypeDescriptor // declared type
}

// Constructor builds an instance of its owner
type Constructor struct {
	Element
	Parameters     []*Parameter // in declaration order
	Implicit       bool         // zero-value construction, no function declared
	ThrowsChecked  bool         // the constructor reports failures
	ReturnsPointer bool         // the constructor returns *T rather than T
}

// Method is a member function
type Method struct {
	Element
	Parameters    []*Parameter // in declaration order
	ThrowsChecked bool         // the method reports failures
}

// Signature identifies the method when matching shadowed ancestor methods
func (m *Method) Signature() string {
	types := make([]string, len(m.Parameters))
	for i, p := range m.Parameters {
		types[i] = p.Type.String()
	}
	return fmt.Sprintf("%s(%s)", m.Name, strings.Join(types, ","))
}
