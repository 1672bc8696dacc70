package models

import "strings"

// Visibility represents the access level of a declaration
type Visibility int

const (
	VisibilityPrivate Visibility = iota
	VisibilityPackage
	VisibilityProtected
	VisibilityPublic
)

// String returns the string representation of the visibility
func (v Visibility) String() string {
	switch v {
	case VisibilityPrivate:
		return "private"
	case VisibilityPackage:
		return "package"
	case VisibilityProtected:
		return "protected"
	case VisibilityPublic:
		return "public"
	default:
		return "unknown"
	}
}

// ParseVisibility converts a string to a Visibility, defaulting to package
func ParseVisibility(s string) Visibility {
	switch strings.ToLower(s) {
	case "private":
		return VisibilityPrivate
	case "protected":
		return VisibilityProtected
	case "public":
		return VisibilityPublic
	default:
		return VisibilityPackage
	}
}

// Retention represents how long an annotation type is retained
type Retention int

const (
	RetentionRuntime Retention = iota
	RetentionClass
	RetentionSource
)

// String returns the string representation of the retention
func (r Retention) String() string {
	switch r {
	case RetentionRuntime:
		return "runtime"
	case RetentionClass:
		return "class"
	case RetentionSource:
		return "source"
	default:
		return "unknown"
	}
}

// ParseRetention converts a string to a Retention
func ParseRetention(s string) (Retention, bool) {
	switch strings.ToLower(s) {
	case "", "runtime":
		return RetentionRuntime, true
	case "class":
		return RetentionClass, true
	case "source":
		return RetentionSource, true
	default:
		return RetentionRuntime, false
	}
}

// ElementKind represents the kind of a declaration
type ElementKind int

const (
	ElementType ElementKind = iota
	ElementConstructor
	ElementField
	ElementMethod
	ElementParameter
)

// String returns the string representation of the element kind
func (k ElementKind) String() string {
	switch k {
	case ElementType:
		return "type"
	case ElementConstructor:
		return "constructor"
	case ElementField:
		return "field"
	case ElementMethod:
		return "method"
	case ElementParameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// TypeCategory represents what kind of type a type declaration is
type TypeCategory int

const (
	CategoryClass TypeCategory = iota
	CategoryInterface
	CategoryAnnotation
	CategoryOther
)

// String returns the string representation of the category
func (c TypeCategory) String() string {
	switch c {
	case CategoryClass:
		return "class"
	case CategoryInterface:
		return "interface"
	case CategoryAnnotation:
		return "annotation"
	default:
		return "other"
	}
}

// ParseCategory converts a string to a TypeCategory, defaulting to class
func ParseCategory(s string) TypeCategory {
	switch strings.ToLower(s) {
	case "interface":
		return CategoryInterface
	case "annotation":
		return CategoryAnnotation
	case "other":
		return CategoryOther
	default:
		return CategoryClass
	}
}

// Retrieval is the strategy used to obtain a dependency from a scope
type Retrieval int

const (
	RetrievalInstance Retrieval = iota
	RetrievalDeferred
	RetrievalFactory
)

// String returns the string representation of the retrieval
func (r Retrieval) String() string {
	switch r {
	case RetrievalInstance:
		return "instance"
	case RetrievalDeferred:
		return "lazy"
	case RetrievalFactory:
		return "provider"
	default:
		return "unknown"
	}
}

// ScopeTargetKind selects the scope a factory creates its instance in
type ScopeTargetKind int

const (
	TargetCurrentScope ScopeTargetKind = iota
	TargetRootScope
	TargetAncestorScope
)

// String returns the string representation of the target kind
func (k ScopeTargetKind) String() string {
	switch k {
	case TargetCurrentScope:
		return "current"
	case TargetRootScope:
		return "root"
	case TargetAncestorScope:
		return "ancestor"
	default:
		return "unknown"
	}
}
