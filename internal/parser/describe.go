package parser

import (
	"go/types"

	"github.com/toyz/scopegen/internal/models"
)

// describer maps go/types types onto type descriptors
type describer struct {
	scopePackage string // import path declaring Lazy and Provider
}

func (d describer) describe(t types.Type) models.TypeDescriptor {
	t = types.Unalias(t)
	switch typ := t.(type) {
	case *types.Pointer:
		elem := types.Unalias(typ.Elem())
		if _, double := elem.(*types.Pointer); double {
			return d.composite(t)
		}
		desc := d.describe(elem)
		if desc.Kind == models.KindComposite {
			return d.composite(t)
		}
		desc.Pointer = true
		return desc

	case *types.Named:
		obj := typ.Obj()
		desc := models.TypeDescriptor{Name: obj.Name(), Kind: models.KindNamed}
		if obj.Pkg() != nil {
			desc.Name = obj.Pkg().Path() + "." + obj.Name()
			if obj.Pkg().Path() == d.scopePackage {
				switch obj.Name() {
				case "Lazy":
					desc.Name = models.LazyIdentity
				case "Provider":
					desc.Name = models.ProviderIdentity
				}
			}
		}
		if _, ok := typ.Underlying().(*types.Interface); ok {
			desc.Kind = models.KindInterface
		}
		if args := typ.TypeArgs(); args != nil {
			for i := 0; i < args.Len(); i++ {
				desc.Args = append(desc.Args, d.describe(args.At(i)))
			}
		}
		return desc

	case *types.Basic:
		return models.TypeDescriptor{Name: typ.Name(), Kind: models.KindBasic}

	case *types.Interface:
		if typ.Empty() {
			return models.TypeDescriptor{Name: "any", Kind: models.KindAny}
		}
		return d.composite(t)

	case *types.TypeParam:
		return models.TypeDescriptor{Name: typ.Obj().Name(), Kind: models.KindTypeParam}

	default:
		return d.composite(t)
	}
}

func (d describer) composite(t types.Type) models.TypeDescriptor {
	name := types.TypeString(t, func(p *types.Package) string { return p.Path() })
	return models.TypeDescriptor{Name: name, Kind: models.KindComposite}
}

// isError reports whether t is the predeclared error type
func isError(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

// namedOf strips one pointer and returns the named type underneath
func namedOf(t types.Type) (*types.Named, bool, bool) {
	pointer := false
	t = types.Unalias(t)
	if p, ok := t.(*types.Pointer); ok {
		pointer = true
		t = types.Unalias(p.Elem())
	}
	named, ok := t.(*types.Named)
	return named, pointer, ok
}
