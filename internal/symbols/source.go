// Package symbols exposes annotated declarations to the resolver.
package symbols

import (
	"github.com/toyz/scopegen/internal/models"
)

// Source answers the read-only queries the resolver needs about declarations
type Source interface {
	// Types returns every declared type ordered by identity
	Types() []*models.Type
	// Lookup finds a type by its fully-qualified identity
	Lookup(identity string) (*models.Type, bool)
	// Superclass returns the direct superclass of t, if it is known
	Superclass(t *models.Type) (*models.Type, bool)
	// Ancestors returns the superclass chain of t, nearest first
	Ancestors(t *models.Type) []*models.Type
	// AnnotatedWith returns every element carrying the annotation identity
	AnnotatedWith(identity string) []*models.Element
	// AnnotationType returns the declaration of an annotation type
	AnnotationType(identity string) (*models.Type, bool)
	// Role classifies an annotation identity
	Role(identity string) Role
}

// Role is the closed classification of an annotation identity
type Role int

const (
	RoleOther Role = iota
	RoleQualifier
	RoleScope
	RoleSingleton
	RoleNamed
	RoleSuppression
	RoleInject
	RoleInjectConstructor
	RoleReleasable
	RoleProvidesSingleton
	RoleProvidesReleasable
)

// String returns the string representation of the role
func (r Role) String() string {
	switch r {
	case RoleQualifier:
		return "qualifier"
	case RoleScope:
		return "scope"
	case RoleSingleton:
		return "singleton"
	case RoleNamed:
		return "named"
	case RoleSuppression:
		return "suppression"
	case RoleInject:
		return "inject"
	case RoleInjectConstructor:
		return "inject-constructor"
	case RoleReleasable:
		return "releasable"
	case RoleProvidesSingleton:
		return "provides-singleton"
	case RoleProvidesReleasable:
		return "provides-releasable"
	default:
		return "other"
	}
}

var builtinRoles = map[string]Role{
	models.InjectIdentity:             RoleInject,
	models.InjectConstructorIdentity:  RoleInjectConstructor,
	models.NamedIdentity:              RoleNamed,
	models.SingletonIdentity:          RoleSingleton,
	models.ReleasableIdentity:         RoleReleasable,
	models.ProvidesSingletonIdentity:  RoleProvidesSingleton,
	models.ProvidesReleasableIdentity: RoleProvidesReleasable,
	models.SuppressIdentity:           RoleSuppression,
}

// Suppressions returns the suppression keywords declared on an element
func Suppressions(e *models.Element) map[string]bool {
	out := make(map[string]bool)
	for _, a := range e.Annotations.All(models.SuppressIdentity) {
		for _, keyword := range a.Values() {
			out[keyword] = true
		}
	}
	return out
}

// IsSuppressed reports whether an element suppresses the keyword
func IsSuppressed(e *models.Element, keyword string) bool {
	return Suppressions(e)[keyword]
}
