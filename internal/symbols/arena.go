package symbols

import (
	"fmt"
	"sort"

	"github.com/toyz/scopegen/internal/models"
)

// Arena is an in-memory Source. Types are added first and the arena is then
// sealed, which builds the parent index, the ancestor chains, the marker index
// and the role table once. A sealed arena is safe for concurrent reads.
type Arena struct {
	types     map[string]*models.Type
	order     []*models.Type
	parents   map[string]string
	ancestors map[string][]*models.Type
	marked    map[string][]*models.Element
	roles     map[string]Role
	sealed    bool
}

var _ Source = (*Arena)(nil)

// NewArena creates an empty arena
func NewArena() *Arena {
	return &Arena{
		types: make(map[string]*models.Type),
	}
}

// Add records a type. Identities must be unique.
func (a *Arena) Add(t *models.Type) error {
	if a.sealed {
		return fmt.Errorf("cannot add %s: arena is sealed", t.Identity)
	}
	if t.Identity == "" {
		return fmt.Errorf("type %q has no identity", t.Name)
	}
	if _, exists := a.types[t.Identity]; exists {
		return fmt.Errorf("type %s is declared more than once", t.Identity)
	}
	a.types[t.Identity] = t
	return nil
}

// Seal freezes the arena and builds its indexes
func (a *Arena) Seal() *Arena {
	if a.sealed {
		return a
	}
	a.sealed = true

	a.order = make([]*models.Type, 0, len(a.types))
	for _, t := range a.types {
		a.order = append(a.order, t)
	}
	sort.Slice(a.order, func(i, j int) bool { return a.order[i].Identity < a.order[j].Identity })

	a.parents = make(map[string]string, len(a.types))
	for _, t := range a.order {
		if t.Super != "" {
			a.parents[t.Identity] = t.Super
		}
	}

	a.ancestors = make(map[string][]*models.Type, len(a.types))
	for _, t := range a.order {
		a.ancestors[t.Identity] = a.chain(t)
	}

	a.marked = make(map[string][]*models.Element)
	for _, t := range a.order {
		a.index(&t.Element)
		for _, c := range t.Constructors {
			a.index(&c.Element)
			for _, p := range c.Parameters {
				a.index(&p.Element)
			}
		}
		for _, f := range t.Fields {
			a.index(&f.Element)
		}
		for _, m := range t.Methods {
			a.index(&m.Element)
			for _, p := range m.Parameters {
				a.index(&p.Element)
			}
		}
	}

	a.roles = make(map[string]Role, len(builtinRoles))
	for identity, role := range builtinRoles {
		a.roles[identity] = role
	}
	for _, t := range a.order {
		if t.Category != models.CategoryAnnotation {
			continue
		}
		switch {
		case t.Annotations.Has(models.ScopeMarkerIdentity):
			a.roles[t.Identity] = RoleScope
		case t.Annotations.Has(models.QualifierMarkerIdentity):
			a.roles[t.Identity] = RoleQualifier
		}
	}
	return a
}

// chain walks the parent index. Unknown parents end the chain and a
// repeated identity stops the walk.
func (a *Arena) chain(t *models.Type) []*models.Type {
	var out []*models.Type
	seen := map[string]bool{t.Identity: true}
	for parent := a.parents[t.Identity]; parent != "" && !seen[parent]; parent = a.parents[parent] {
		seen[parent] = true
		pt, ok := a.types[parent]
		if !ok {
			break
		}
		out = append(out, pt)
	}
	return out
}

func (a *Arena) index(e *models.Element) {
	seen := make(map[string]bool, len(e.Annotations))
	for _, ann := range e.Annotations {
		if seen[ann.Identity] {
			continue
		}
		seen[ann.Identity] = true
		a.marked[ann.Identity] = append(a.marked[ann.Identity], e)
	}
}

// Types returns every declared type ordered by identity
func (a *Arena) Types() []*models.Type {
	a.Seal()
	out := make([]*models.Type, len(a.order))
	copy(out, a.order)
	return out
}

// Lookup finds a type by its identity
func (a *Arena) Lookup(identity string) (*models.Type, bool) {
	t, ok := a.types[identity]
	return t, ok
}

// Superclass returns the direct superclass of t
func (a *Arena) Superclass(t *models.Type) (*models.Type, bool) {
	if t.Super == "" {
		return nil, false
	}
	return a.Lookup(t.Super)
}

// Ancestors returns the materialised superclass chain of t, nearest first
func (a *Arena) Ancestors(t *models.Type) []*models.Type {
	a.Seal()
	if chain, ok := a.ancestors[t.Identity]; ok {
		return chain
	}
	return a.chain(t)
}

// AnnotatedWith returns every element carrying the annotation identity
func (a *Arena) AnnotatedWith(identity string) []*models.Element {
	a.Seal()
	return a.marked[identity]
}

// AnnotationType returns the declaration of an annotation type
func (a *Arena) AnnotationType(identity string) (*models.Type, bool) {
	t, ok := a.types[identity]
	if !ok || t.Category != models.CategoryAnnotation {
		return nil, false
	}
	return t, true
}

// Role classifies an annotation identity
func (a *Arena) Role(identity string) Role {
	a.Seal()
	if role, ok := a.roles[identity]; ok {
		return role
	}
	return RoleOther
}

// Len returns the number of types in the arena
func (a *Arena) Len() int {
	return len(a.types)
}
