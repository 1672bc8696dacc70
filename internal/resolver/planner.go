package resolver

import (
	"fmt"
	"strings"

	"github.com/toyz/scopegen/internal/models"
)

// Plan resolves everything needed to emit artifacts for t. It returns nil
// when t needs neither a factory nor a member injector. Plans are produced
// even when diagnostics were reported; callers decide whether to emit them.
func (r *Resolver) Plan(t *models.Type) *models.GeneratedArtifactPlan {
	if t.Category == models.CategoryAnnotation || t.Category == models.CategoryOther {
		return nil
	}

	binding := r.ResolveScope(t)
	fields, methods := r.CollectMembers(t)

	var injector *models.MemberInjectionPlan
	if len(fields)+len(methods) > 0 {
		injector = &models.MemberInjectionPlan{
			Owner:    t.Identity,
			Fields:   fields,
			Methods:  methods,
			Ancestor: r.NearestInjectedAncestor(t, false),
		}
	}

	triggered := binding.HasScope() || binding.ProvidesSingleton || r.hasOwnInjectedMembers(t)

	var factory *models.FactoryPlan
	if construction := r.ResolveConstructor(t, triggered); construction != nil {
		factory = &models.FactoryPlan{
			Construction:                    *construction,
			Target:                          Target(binding),
			HasScopeAnnotation:              binding.HasScope(),
			HasSingletonAnnotation:          binding.IsSingleton,
			HasReleasableAnnotation:         binding.IsReleasable,
			HasProvidesSingletonAnnotation:  binding.ProvidesSingleton,
			HasProvidesReleasableAnnotation: binding.ProvidesReleasable,
			MemberInjector:                  r.NearestInjectedAncestor(t, true),
		}
	}

	if factory == nil && injector == nil {
		return nil
	}

	return &models.GeneratedArtifactPlan{
		Owner:          t.Descriptor(),
		Package:        t.Package,
		PackageName:    t.PackageName,
		TypeName:       t.Name,
		Description:    describe(t, binding, factory, injector),
		Origin:         models.Origin{Element: t.Describe(), Location: t.Location},
		Scope:          binding,
		Factory:        factory,
		MemberInjector: injector,
	}
}

func describe(t *models.Type, binding models.ScopeBinding, factory *models.FactoryPlan, injector *models.MemberInjectionPlan) string {
	var artifacts []string
	if factory != nil {
		artifacts = append(artifacts, "Factory")
	}
	if injector != nil {
		artifacts = append(artifacts, "MemberInjector")
	}
	return fmt.Sprintf("%s for %s (scope: %s)", strings.Join(artifacts, "+"), t.Identity, Target(binding))
}
