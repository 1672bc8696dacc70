package resolver

import (
	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/models"
	"github.com/toyz/scopegen/internal/symbols"
)

// CollectMembers gathers the injected fields and methods declared on t, in
// declaration order. Invalid members are reported and left out. A method
// shadowing an injected ancestor method is kept: the ancestor injector calls
// the embedded value's method, never the outer one.
func (r *Resolver) CollectMembers(t *models.Type) ([]models.FieldRequirement, []models.MethodRequirement) {
	var fields []models.FieldRequirement
	for _, f := range t.Fields {
		if !r.hasRole(&f.Element, symbols.RoleInject) {
			continue
		}
		if req, ok := r.collectField(t, f); ok {
			fields = append(fields, req)
		}
	}

	var shadowed map[string]string
	var methods []models.MethodRequirement
	for _, m := range t.Methods {
		if !r.hasRole(&m.Element, symbols.RoleInject) {
			continue
		}
		req, ok := r.collectMethod(t, m)
		if !ok {
			continue
		}
		methods = append(methods, req)

		if shadowed == nil {
			shadowed = r.injectedAncestorMethods(t)
		}
		if owner, ok := shadowed[m.Signature()]; ok {
			r.note(errors.ShadowedMethodCode, &m.Element,
				"%s shadows the injected method of %s, both are invoked", m.Name, owner)
		}
	}
	return fields, methods
}

func (r *Resolver) collectField(t *models.Type, f *models.Field) (models.FieldRequirement, bool) {
	switch {
	case f.IsPrivate():
		r.fail(errors.PrivateElementCode, &f.Element, "injected fields must not be private")
		return models.FieldRequirement{}, false
	case f.Final:
		r.fail(errors.FinalFieldCode, &f.Element, "injected fields must not be final")
		return models.FieldRequirement{}, false
	case t.IsPrivate():
		r.fail(errors.PrivateEnclosingTypeCode, &f.Element, "the type declaring an injected field must not be private")
		return models.FieldRequirement{}, false
	}

	if !isHandle(f.Type) && !isSupportedField(f.Type) {
		r.fail(errors.UnsupportedFieldTypeCode, &f.Element,
			"field type %s cannot be injected, only named types and interfaces are supported", f.Type)
		return models.FieldRequirement{}, false
	}

	req, ok := r.requirement(f.Name, f.Type, &f.Element)
	if !ok {
		return models.FieldRequirement{}, false
	}
	return models.FieldRequirement{Name: f.Name, Requirement: req}, true
}

func (r *Resolver) collectMethod(t *models.Type, m *models.Method) (models.MethodRequirement, bool) {
	switch {
	case m.IsPrivate():
		r.fail(errors.PrivateElementCode, &m.Element, "injected methods must not be private")
		return models.MethodRequirement{}, false
	case t.IsPrivate():
		r.fail(errors.PrivateEnclosingTypeCode, &m.Element, "the type declaring an injected method must not be private")
		return models.MethodRequirement{}, false
	}

	params, ok := r.parameters(m.Parameters)
	if !ok {
		return models.MethodRequirement{}, false
	}

	if m.Visibility >= models.VisibilityProtected && !symbols.IsSuppressed(&m.Element, models.SuppressVisible) {
		r.policy(r.opts.CrashWhenInjectedMethodIsNotPackageVisible, errors.MethodVisibilityCode, &m.Element,
			"injected method is %s, prefer package visibility", m.Visibility).
			WithHint("unexport the method or add //scopegen::suppress visible")
	}

	return models.MethodRequirement{
		Name:          m.Name,
		Parameters:    params,
		ThrowsChecked: m.ThrowsChecked,
	}, true
}

// parameters resolves every parameter; ok is false when any one fails
func (r *Resolver) parameters(params []*models.Parameter) ([]models.DependencyRequirement, bool) {
	out := make([]models.DependencyRequirement, 0, len(params))
	ok := true
	for _, p := range params {
		req, valid := r.requirement(p.Name, p.Type, &p.Element)
		if !valid {
			ok = false
			continue
		}
		out = append(out, req)
	}
	return out, ok
}

// injectedAncestorMethods maps the signatures of injected methods declared
// in the ancestor chain of t to the nearest declaring ancestor
func (r *Resolver) injectedAncestorMethods(t *models.Type) map[string]string {
	out := make(map[string]string)
	for _, ancestor := range r.source.Ancestors(t) {
		for _, m := range ancestor.Methods {
			if _, seen := out[m.Signature()]; !seen && r.hasRole(&m.Element, symbols.RoleInject) {
				out[m.Signature()] = ancestor.Identity
			}
		}
	}
	return out
}

// hasOwnInjectedMembers reports whether t declares injected members of its
// own. It reports nothing.
func (r *Resolver) hasOwnInjectedMembers(t *models.Type) bool {
	for _, f := range t.Fields {
		if r.hasRole(&f.Element, symbols.RoleInject) {
			return true
		}
	}
	for _, m := range t.Methods {
		if r.hasRole(&m.Element, symbols.RoleInject) {
			return true
		}
	}
	return false
}

func isHandle(declared models.TypeDescriptor) bool {
	return declared.Name == models.LazyIdentity || declared.Name == models.ProviderIdentity
}
