package resolver

import (
	"github.com/toyz/scopegen/internal/models"
)

// NearestInjectedAncestor finds the closest type in the superclass chain of
// t that declares injected members of its own. With includeSelf, t itself is
// considered first. The returned path leads from an instance of t to the
// embedded value of that type. Nil means no injector is needed.
func (r *Resolver) NearestInjectedAncestor(t *models.Type, includeSelf bool) *models.InjectorRef {
	if includeSelf && r.hasOwnInjectedMembers(t) {
		return injectorRef(t, nil)
	}

	var path []models.EmbedStep
	current := t
	for _, ancestor := range r.source.Ancestors(t) {
		path = append(path, current.SuperPath...)
		if r.hasOwnInjectedMembers(ancestor) {
			return injectorRef(ancestor, path)
		}
		current = ancestor
	}
	return nil
}

func injectorRef(t *models.Type, path []models.EmbedStep) *models.InjectorRef {
	steps := make([]models.EmbedStep, len(path))
	copy(steps, path)
	return &models.InjectorRef{
		Owner:   t.Identity,
		Type:    t.Descriptor(),
		Package: t.Package,
		Path:    steps,
	}
}
