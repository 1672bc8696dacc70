package models

import (
	"fmt"

	"github.com/toyz/scopegen/internal/errors"
)

// QualifierKey disambiguates bindings of the same type.
// Exactly one of Name or Annotation is set.
type QualifierKey struct {
	Name       string // literal name from a Named annotation
	Annotation string // identity of a qualifier annotation
}

// Value returns the key used for scope lookups
func (q QualifierKey) Value() string {
	if q.Annotation != "" {
		return q.Annotation
	}
	return q.Name
}

// String returns a readable form of the qualifier
func (q QualifierKey) String() string {
	if q.Annotation != "" {
		return "@" + q.Annotation
	}
	return fmt.Sprintf("%q", q.Name)
}

// DependencyRequirement is how one field or parameter is obtained from a scope
type DependencyRequirement struct {
	Name      string         // field or parameter name
	Declared  TypeDescriptor // type as declared
	Target    TypeDescriptor // type looked up in the scope
	Retrieval Retrieval      // instance, lazy or provider
	Qualifier *QualifierKey  // nil for unqualified lookups
}

// QualifierValue returns the qualifier lookup key, "" when unqualified
func (d DependencyRequirement) QualifierValue() string {
	if d.Qualifier == nil {
		return ""
	}
	return d.Qualifier.Value()
}

// ScopeBinding is the outcome of scope resolution for a type
type ScopeBinding struct {
	ScopeAnnotation    string // identity of the owning scope, "" when unscoped
	IsSingleton        bool
	IsReleasable       bool
	ProvidesSingleton  bool
	ProvidesReleasable bool
}

// HasScope reports whether a scope identity was resolved
func (s ScopeBinding) HasScope() bool {
	return s.ScopeAnnotation != ""
}

// ConstructionPlan is the recipe used to construct an owner type
type ConstructionPlan struct {
	Owner          string                  // identity of the constructed type
	Constructor    string                  // constructor function name, "" when implicit
	Implicit       bool                    // zero-value construction
	Arity          int                     // number of parameters
	Parameters     []DependencyRequirement // in declaration order
	ThrowsChecked  bool                    // the constructor reports failures
	ReturnsPointer bool                    // the constructor returns *T
}

// FieldRequirement is one injected field
type FieldRequirement struct {
	Name        string
	Requirement DependencyRequirement
}

// MethodRequirement is one injected method
type MethodRequirement struct {
	Name          string
	Parameters    []DependencyRequirement
	ThrowsChecked bool
}

// InjectorRef points at the member injector of a type reachable from an instance
type InjectorRef struct {
	Owner   string         // identity of the type owning the injector
	Type    TypeDescriptor // that type as a descriptor
	Package string         // import path of the injector
	Path    []EmbedStep    // embedding path from the instance, empty for the instance itself
}

// MemberInjectionPlan is the recipe used to populate an already constructed instance
type MemberInjectionPlan struct {
	Owner    string              // identity of the populated type
	Fields   []FieldRequirement  // in declaration order
	Methods  []MethodRequirement // in declaration order
	Ancestor *InjectorRef        // nearest ancestor injector, called first
}

// ScopeTarget selects the scope a factory builds in
type ScopeTarget struct {
	Kind     ScopeTargetKind
	Identity string // scope identity for ancestor lookups
}

// String returns a readable form of the target
func (t ScopeTarget) String() string {
	if t.Kind == TargetAncestorScope {
		return fmt.Sprintf("ancestor(%s)", t.Identity)
	}
	return t.Kind.String()
}

// FactoryPlan is the recipe for a Factory artifact
type FactoryPlan struct {
	Construction                    ConstructionPlan
	Target                          ScopeTarget
	HasScopeAnnotation              bool
	HasSingletonAnnotation          bool
	HasReleasableAnnotation         bool
	HasProvidesSingletonAnnotation  bool
	HasProvidesReleasableAnnotation bool
	MemberInjector                  *InjectorRef // construct-then-populate, nil when nothing to inject
}

// Origin identifies the declaration that triggered a plan
type Origin struct {
	Element  string
	Location errors.SourceLocation
	Triggers []string // discovery triggers that reached the owner
}

// GeneratedArtifactPlan is everything the code writer needs for one owner type
type GeneratedArtifactPlan struct {
	Owner          TypeDescriptor
	Package        string // import path of the owner
	PackageName    string // package clause name of the owner
	TypeName       string // unqualified owner name
	Description    string
	Origin         Origin
	Scope          ScopeBinding
	Factory        *FactoryPlan
	MemberInjector *MemberInjectionPlan
}

// Identity returns the owner identity
func (p *GeneratedArtifactPlan) Identity() string {
	return p.Owner.Name
}
