package models

// Built-in annotation identities. Directive keywords map onto these.
const (
	InjectIdentity             = "scopegen.Inject"
	InjectConstructorIdentity  = "scopegen.InjectConstructor"
	NamedIdentity              = "scopegen.Named"
	SingletonIdentity          = "scopegen.Singleton"
	ReleasableIdentity         = "scopegen.Releasable"
	ProvidesSingletonIdentity  = "scopegen.ProvidesSingleton"
	ProvidesReleasableIdentity = "scopegen.ProvidesReleasable"
	SuppressIdentity           = "scopegen.Suppress"

	// Meta markers placed on annotation types
	ScopeMarkerIdentity     = "scopegen.Scope"
	QualifierMarkerIdentity = "scopegen.Qualifier"
	RetentionIdentity       = "scopegen.Retention"
)

// Runtime handle identities
const (
	ScopePackage     = "github.com/toyz/scopegen/pkg/scope"
	LazyIdentity     = ScopePackage + ".Lazy"
	ProviderIdentity = ScopePackage + ".Provider"
)

// Suppression keywords accepted by the Suppress annotation
const (
	SuppressInjectable = "injectable"
	SuppressVisible    = "visible"
)

// Directive keywords that stand for a built-in annotation
var BuiltinKeywords = map[string]string{
	"inject":              InjectIdentity,
	"inject_constructor":  InjectConstructorIdentity,
	"named":               NamedIdentity,
	"singleton":           SingletonIdentity,
	"releasable":          ReleasableIdentity,
	"provides_singleton":  ProvidesSingletonIdentity,
	"provides_releasable": ProvidesReleasableIdentity,
	"suppress":            SuppressIdentity,
	"scope":               ScopeMarkerIdentity,
	"qualifier":           QualifierMarkerIdentity,
}

// Handle shorthands accepted wherever a type is spelled by hand
var HandleShorthands = map[string]string{
	"Lazy":           LazyIdentity,
	"scope.Lazy":     LazyIdentity,
	"Provider":       ProviderIdentity,
	"scope.Provider": ProviderIdentity,
}
