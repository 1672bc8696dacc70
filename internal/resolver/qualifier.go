package resolver

import (
	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/models"
	"github.com/toyz/scopegen/internal/symbols"
)

// ResolveQualifier returns the qualifier of a field or parameter, nil when
// it is unqualified. A Named annotation qualifies by its literal value and a
// qualifier annotation by its identity. When several qualify the element,
// one error is reported and the first one wins.
func (r *Resolver) ResolveQualifier(e *models.Element) *models.QualifierKey {
	var found []models.QualifierKey
	for _, a := range e.Annotations {
		switch r.roleOf(a.Identity) {
		case symbols.RoleNamed:
			found = append(found, models.QualifierKey{Name: a.Value})
		case symbols.RoleQualifier:
			found = append(found, models.QualifierKey{Annotation: a.Identity})
		}
	}

	if len(found) == 0 {
		return nil
	}
	if len(found) > 1 {
		r.fail(errors.MultipleQualifiersCode, e, "only one qualifier annotation is allowed").
			WithHint("keep either the named annotation or one qualifier annotation")
	}
	key := found[0]
	return &key
}
