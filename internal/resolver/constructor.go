package resolver

import (
	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/models"
	"github.com/toyz/scopegen/internal/symbols"
)

// ResolveConstructor decides how t is constructed, or returns nil when no
// factory is produced. The exclusion filter always runs first. A type-level
// inject-constructor marker and an inject-marked constructor are explicit
// requests: any problem with them is an error. Otherwise, when triggered,
// the optimistic path looks for a zero-argument constructor.
func (r *Resolver) ResolveConstructor(t *models.Type, triggered bool) *models.ConstructionPlan {
	if r.opts.IsExcluded(t.Identity) {
		r.note(errors.ExcludedTypeCode, &t.Element, "excluded from factory generation")
		return nil
	}

	if r.hasRole(&t.Element, symbols.RoleInjectConstructor) {
		return r.fromInjectConstructorMarker(t)
	}

	var marked []*models.Constructor
	for _, c := range t.Constructors {
		if r.hasRole(&c.Element, symbols.RoleInject) {
			marked = append(marked, c)
		}
	}
	if len(marked) > 1 {
		r.fail(errors.MultipleInjectConstructorsCode, &t.Element,
			"cannot have more than one marked constructor, found %d", len(marked))
	}
	if len(marked) > 0 {
		return r.fromMarkedConstructor(t, marked[0])
	}

	if !triggered {
		return nil
	}
	return r.optimistic(t)
}

func (r *Resolver) fromInjectConstructorMarker(t *models.Type) *models.ConstructionPlan {
	if !r.checkConstructible(t, &t.Element) {
		return nil
	}
	if len(t.Constructors) != 1 || r.hasRole(&t.Constructors[0].Element, symbols.RoleInject) {
		r.fail(errors.InjectConstructorMarkerCode, &t.Element,
			"must have one unique constructor and it must not be marked").
			WithHint("remove the inject marker from the constructor or drop the type-level marker")
		return nil
	}
	return r.construct(t, t.Constructors[0])
}

func (r *Resolver) fromMarkedConstructor(t *models.Type, c *models.Constructor) *models.ConstructionPlan {
	if c.IsPrivate() {
		r.fail(errors.PrivateElementCode, &c.Element, "injected constructors must not be private")
		return nil
	}
	if !r.checkConstructible(t, &c.Element) {
		return nil
	}
	return r.construct(t, c)
}

// checkConstructible reports the type-level reasons a requested factory
// cannot be generated
func (r *Resolver) checkConstructible(t *models.Type, e *models.Element) bool {
	switch {
	case t.IsPrivate():
		r.fail(errors.PrivateEnclosingTypeCode, e, "the type of an injected constructor must not be private")
	case t.IsInnerNonStatic():
		r.fail(errors.NonStaticInnerTypeCode, e, "non-static inner types cannot be constructed, make %s static", t.Name)
	case t.Abstract:
		r.fail(errors.AbstractTypeCode, e, "abstract types cannot be constructed")
	default:
		return true
	}
	return false
}

// optimistic builds a zero-argument construction for types that need a
// factory but asked for none explicitly. Types that can never be built are
// skipped without complaint.
func (r *Resolver) optimistic(t *models.Type) *models.ConstructionPlan {
	if t.Abstract || t.IsPrivate() || t.IsInnerNonStatic() {
		r.note(errors.SkippedTypeCode, &t.Element, "no factory for %s %s", t.Visibility, t.Category)
		return nil
	}

	for _, c := range t.Constructors {
		if len(c.Parameters) == 0 && !c.IsPrivate() {
			return r.construct(t, c)
		}
	}

	if !symbols.IsSuppressed(&t.Element, models.SuppressInjectable) {
		r.policy(r.opts.CrashWhenNoFactoryCanBeCreated, errors.NoFactoryCode, &t.Element,
			"no factory can be created: the type has no usable zero-argument constructor").
			WithHint("mark a constructor with //scopegen::inject or add //scopegen::suppress injectable")
	}
	return nil
}

func (r *Resolver) construct(t *models.Type, c *models.Constructor) *models.ConstructionPlan {
	params, ok := r.parameters(c.Parameters)
	if !ok {
		return nil
	}
	plan := &models.ConstructionPlan{
		Owner:          t.Identity,
		Implicit:       c.Implicit,
		Arity:          len(params),
		Parameters:     params,
		ThrowsChecked:  c.ThrowsChecked,
		ReturnsPointer: c.ReturnsPointer,
	}
	if !c.Implicit {
		plan.Constructor = c.Name
	}
	return plan
}
