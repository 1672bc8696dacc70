package resolver

import (
	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/models"
	"github.com/toyz/scopegen/internal/symbols"
)

// ResolveScope computes the scope binding of a type from its annotations.
// Singleton without a dedicated scope binds to the root scope.
func (r *Resolver) ResolveScope(t *models.Type) models.ScopeBinding {
	var binding models.ScopeBinding
	var scopes []string
	seen := make(map[string]bool)

	for _, a := range t.Annotations {
		switch r.roleOf(a.Identity) {
		case symbols.RoleScope:
			if !seen[a.Identity] {
				seen[a.Identity] = true
				r.checkRetention(t, a.Identity)
				scopes = append(scopes, a.Identity)
			}
		case symbols.RoleSingleton:
			binding.IsSingleton = true
		case symbols.RoleReleasable:
			binding.IsReleasable = true
		case symbols.RoleProvidesSingleton:
			binding.ProvidesSingleton = true
		case symbols.RoleProvidesReleasable:
			binding.ProvidesReleasable = true
		}
	}

	if len(scopes) > 1 {
		r.fail(errors.MultipleScopesCode, &t.Element, "only one scope annotation is allowed, found %v", scopes)
	}
	switch {
	case len(scopes) > 0:
		binding.ScopeAnnotation = scopes[0]
	case binding.IsSingleton:
		binding.ScopeAnnotation = models.SingletonIdentity
	}

	if binding.IsReleasable && !binding.IsSingleton {
		r.fail(errors.ReleasableWithoutSingletonCode, &t.Element,
			"releasable types must also be singletons")
	}
	if binding.ProvidesReleasable && !binding.ProvidesSingleton {
		r.fail(errors.ProvidesReleasableWithoutProvidesSingletonCode, &t.Element,
			"provides-releasable types must also use provides-singleton")
	}
	if binding.ProvidesSingleton && !binding.HasScope() {
		r.fail(errors.ProvidesSingletonWithoutScopeCode, &t.Element,
			"uses provides-singleton but has no scope annotation").
			WithHint("add a scope annotation or singleton to the type")
	}
	return binding
}

// checkRetention rejects scope annotations that are not retained at runtime.
// Annotation types declared outside the loaded sources are not checked.
func (r *Resolver) checkRetention(t *models.Type, identity string) {
	decl, ok := r.source.AnnotationType(identity)
	if !ok || decl.Retention == models.RetentionRuntime {
		return
	}
	r.fail(errors.ScopeRetentionCode, &t.Element,
		"scope annotation %s must have runtime retention, found %s", identity, decl.Retention).
		WithHint("declare the annotation type with -Retention=runtime")
}

// Target maps a scope binding onto the scope the factory builds in
func Target(binding models.ScopeBinding) models.ScopeTarget {
	switch binding.ScopeAnnotation {
	case "":
		return models.ScopeTarget{Kind: models.TargetCurrentScope}
	case models.SingletonIdentity:
		return models.ScopeTarget{Kind: models.TargetRootScope}
	default:
		return models.ScopeTarget{Kind: models.TargetAncestorScope, Identity: binding.ScopeAnnotation}
	}
}
