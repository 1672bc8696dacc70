package resolver

import (
	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/models"
)

// Classify decides how a declared dependency type is retrieved from a scope
// and which type is looked up. Lazy[T] and Provider[T] take exactly one type
// argument; that argument may itself be generic only over placeholders
// (any or ?). Everything else is an instance lookup of the erased type.
func Classify(declared models.TypeDescriptor) (models.Retrieval, models.TypeDescriptor, error) {
	var retrieval models.Retrieval
	switch declared.Name {
	case models.LazyIdentity:
		retrieval = models.RetrievalDeferred
	case models.ProviderIdentity:
		retrieval = models.RetrievalFactory
	default:
		return models.RetrievalInstance, declared.Erased(), nil
	}

	if declared.Pointer {
		return retrieval, declared, errors.Newf(errors.InvalidHandleCode,
			"%s is not a valid handle type: handles are declared by value", declared)
	}
	if len(declared.Args) != 1 {
		return retrieval, declared, errors.Newf(errors.InvalidHandleCode,
			"%s is not a valid handle type", declared)
	}

	target := declared.Args[0]
	for _, nested := range target.Args {
		if !nested.IsPlaceholder() {
			return retrieval, declared, errors.Newf(errors.HandleGenericsCode,
				"%s: handle cannot wrap a generic type", declared)
		}
	}
	return retrieval, target.Erased(), nil
}

// codeOf extracts the code of a classification error
func codeOf(err error) errors.ErrorCode {
	if typed, ok := err.(errors.ScopegenError); ok {
		return typed.ErrorCode()
	}
	return errors.UnknownErrorCode
}

// messageOf extracts the message of a classification error without location
func messageOf(err error) string {
	if base, ok := err.(*errors.BaseError); ok {
		return base.Message
	}
	return err.Error()
}

// isSupportedField reports whether a field type can be injected directly.
// Predeclared, composite and placeholder types have no binding to look up.
func isSupportedField(declared models.TypeDescriptor) bool {
	switch declared.Kind {
	case models.KindNamed, models.KindInterface:
		return true
	default:
		return false
	}
}

// requirement resolves one field or parameter into a dependency requirement.
// Failures are reported against the element and reported as !ok.
func (r *Resolver) requirement(name string, declared models.TypeDescriptor, e *models.Element) (models.DependencyRequirement, bool) {
	retrieval, target, err := Classify(declared)
	if err != nil {
		r.fail(codeOf(err), e, "%s", messageOf(err))
		return models.DependencyRequirement{}, false
	}
	return models.DependencyRequirement{
		Name:      name,
		Declared:  declared,
		Target:    target,
		Retrieval: retrieval,
		Qualifier: r.ResolveQualifier(e),
	}, true
}
