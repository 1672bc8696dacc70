package parser

import (
	"go/ast"
	"go/token"
	"go/types"
	"sort"
	"strconv"
	"unicode"

	"github.com/toyz/scopegen/internal/annotations"
	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/models"
)

// packageBuilder turns one type-checked package into type declarations
type packageBuilder struct {
	loader *Loader
	path   string
	name   string
	fset   *token.FileSet
	files  []*ast.File
	info   *types.Info
	pkg    *types.Package
	types  map[string]*models.Type // by simple name
}

func (b *packageBuilder) build() []*models.Type {
	b.types = make(map[string]*models.Type)

	for _, file := range b.files {
		scope := b.fileScope(file)
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(gen.Specs) == 1 {
					doc = gen.Doc
				}
				b.typeDecl(scope, ts, doc)
			}
		}
	}

	for _, file := range b.files {
		scope := b.fileScope(file)
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok {
				continue
			}
			if fn.Recv != nil {
				b.method(scope, fn)
			} else {
				b.constructor(scope, fn)
			}
		}
	}

	out := make([]*models.Type, 0, len(b.types))
	for _, t := range b.types {
		if t.Category == models.CategoryClass && !t.Abstract && len(t.Constructors) == 0 {
			t.Constructors = append(t.Constructors, implicitConstructor(t))
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out
}

func (b *packageBuilder) typeDecl(scope fileScope, ts *ast.TypeSpec, doc *ast.CommentGroup) {
	identity := b.path + "." + ts.Name.Name
	ds := b.directives(scope, identity, doc)

	t := &models.Type{
		Element: models.Element{
			Name:       ts.Name.Name,
			Kind:       models.ElementType,
			Owner:      identity,
			Visibility: visibility(ts.Name.Name),
			Static:     true,
			Location:   b.location(ts.Pos()),
		},
		Identity:    identity,
		Package:     b.path,
		PackageName: b.name,
		Abstract:    ts.TypeParams != nil,
	}

	scopeMarker, isScope := hasKeyword(ds, annotations.ScopeKeyword)
	qualifierMarker, isQualifier := hasKeyword(ds, annotations.QualifierKeyword)
	if isScope || isQualifier {
		marker := scopeMarker
		if !isScope {
			marker = qualifierMarker
		}
		retention, _ := models.ParseRetention(marker.parsed.GetString(annotations.ParamRetention))
		t.Category = models.CategoryAnnotation
		t.Retention = retention
		t.Annotations = b.attach(ds, models.ElementType, identity)
		b.types[t.Name] = t
		return
	}

	t.Annotations = b.attach(ds, models.ElementType, identity)

	obj, _ := b.info.Defs[ts.Name].(*types.TypeName)
	var underlying types.Type
	if obj != nil {
		underlying = obj.Type().Underlying()
	}
	switch underlying.(type) {
	case *types.Struct:
		t.Category = models.CategoryClass
		if st, ok := ts.Type.(*ast.StructType); ok {
			b.fields(scope, t, st)
		}
	case *types.Interface:
		t.Category = models.CategoryInterface
		t.Abstract = true
	default:
		t.Category = models.CategoryOther
	}
	b.types[t.Name] = t
}

func (b *packageBuilder) fields(scope fileScope, t *models.Type, st *ast.StructType) {
	for _, field := range st.Fields.List {
		fieldType := b.info.TypeOf(field.Type)

		if len(field.Names) == 0 {
			if t.Super != "" || fieldType == nil {
				continue
			}
			named, pointer, ok := namedOf(fieldType)
			if !ok || named.Obj().Pkg() == nil {
				continue
			}
			if _, isStruct := named.Underlying().(*types.Struct); !isStruct {
				continue
			}
			t.Super = named.Obj().Pkg().Path() + "." + named.Obj().Name()
			t.SuperPath = []models.EmbedStep{{Field: named.Obj().Name(), Pointer: pointer}}
			continue
		}

		for _, name := range field.Names {
			element := t.Identity + "#" + name.Name
			ds := b.directives(scope, element, field.Doc, field.Comment)
			f := &models.Field{
				Element: models.Element{
					Name:        name.Name,
					Kind:        models.ElementField,
					Owner:       t.Identity,
					Visibility:  visibility(name.Name),
					Annotations: b.attach(ds, models.ElementField, element),
					Location:    b.location(name.Pos()),
				},
			}
			if fieldType != nil {
				f.Type = b.loader.describer.describe(fieldType)
			}
			t.Fields = append(t.Fields, f)
		}
	}
}

func (b *packageBuilder) method(scope fileScope, fn *ast.FuncDecl) {
	owner, ok := b.types[receiverName(fn.Recv)]
	if !ok {
		return
	}
	element := owner.Identity + "#" + fn.Name.Name
	ds := b.directives(scope, element, fn.Doc)

	params, throws := b.signature(fn, ds, owner.Identity, element)
	owner.Methods = append(owner.Methods, &models.Method{
		Element: models.Element{
			Name:        fn.Name.Name,
			Kind:        models.ElementMethod,
			Owner:       owner.Identity,
			Visibility:  visibility(fn.Name.Name),
			Annotations: b.attach(withoutParams(ds), models.ElementMethod, element),
			Location:    b.location(fn.Pos()),
		},
		Parameters:    params,
		ThrowsChecked: throws,
	})
}

// constructor records fn as a constructor when it is marked for injection
// or named New<Type>/new<Type>, and returns T, *T, (T, error) or (*T, error)
// for a type of this package
func (b *packageBuilder) constructor(scope fileScope, fn *ast.FuncDecl) {
	obj, ok := b.info.Defs[fn.Name].(*types.Func)
	if !ok || fn.Type.TypeParams != nil {
		return
	}
	sig := obj.Type().(*types.Signature)
	results := sig.Results()

	var owner *models.Type
	var pointer bool
	if results.Len() == 1 || (results.Len() == 2 && isError(results.At(1).Type())) {
		if named, ptr, ok := namedOf(results.At(0).Type()); ok && named.Obj().Pkg() == b.pkg {
			owner = b.types[named.Obj().Name()]
			pointer = ptr
		}
	}

	element := b.path + "." + fn.Name.Name
	ds := b.directives(scope, element, fn.Doc)
	_, marked := hasKeyword(ds, annotations.InjectKeyword)

	if owner == nil || owner.Category != models.CategoryClass || (!marked && !isConstructorName(fn.Name.Name, owner.Name)) {
		if len(ds) > 0 {
			loc := ds[0].parsed.Location
			b.loader.report(errors.NewValidationError("function", "a constructor returning a struct of this package", fn.Name.Name).
				WithLocation(loc).
				WithSuggestion("name the function New<Type> and return *Type or (*Type, error)"), element, loc)
		}
		return
	}

	element = owner.Identity + " constructor " + fn.Name.Name
	params, throws := b.signature(fn, ds, owner.Identity, element)
	owner.Constructors = append(owner.Constructors, &models.Constructor{
		Element: models.Element{
			Name:        fn.Name.Name,
			Kind:        models.ElementConstructor,
			Owner:       owner.Identity,
			Visibility:  visibility(fn.Name.Name),
			Static:      true,
			Annotations: b.attach(withoutParams(ds), models.ElementConstructor, element),
			Location:    b.location(fn.Pos()),
		},
		Parameters:     params,
		ThrowsChecked:  throws,
		ReturnsPointer: pointer,
	})
}

// signature builds the parameters of fn, routing -Param directives onto them
func (b *packageBuilder) signature(fn *ast.FuncDecl, ds []directive, owner, element string) ([]*models.Parameter, bool) {
	var params []*models.Parameter
	index := make(map[string]*models.Parameter)

	for i, field := range fn.Type.Params.List {
		declared := b.loader.describer.describe(b.info.TypeOf(field.Type))
		names := field.Names
		if len(names) == 0 {
			names = []*ast.Ident{ast.NewIdent("p" + strconv.Itoa(i))}
		}
		for _, name := range names {
			p := &models.Parameter{
				Element: models.Element{
					Name:     name.Name,
					Kind:     models.ElementParameter,
					Owner:    owner,
					Location: b.location(name.Pos()),
				},
				Type: declared,
			}
			params = append(params, p)
			index[name.Name] = p
		}
	}

	for _, d := range ds {
		target := d.parameter()
		if target == "" {
			continue
		}
		p, ok := index[target]
		if !ok {
			b.loader.report(errors.NewValidationError(annotations.ParamParameter, "a parameter of "+fn.Name.Name, target).
				WithLocation(d.parsed.Location), element, d.parsed.Location)
			continue
		}
		p.Annotations = append(p.Annotations, b.attach([]directive{d}, models.ElementParameter, element+" parameter "+target)...)
	}

	throws := false
	if results := fn.Type.Results; results != nil && len(results.List) > 0 {
		last := results.List[len(results.List)-1]
		if t := b.info.TypeOf(last.Type); t != nil && isError(t) {
			throws = true
		}
	}
	return params, throws
}

func (b *packageBuilder) location(pos token.Pos) errors.SourceLocation {
	position := b.fset.Position(pos)
	return errors.SourceLocation{File: position.Filename, Line: position.Line, Column: position.Column}
}

func implicitConstructor(t *models.Type) *models.Constructor {
	return &models.Constructor{
		Element: models.Element{
			Name:       t.Name,
			Kind:       models.ElementConstructor,
			Owner:      t.Identity,
			Visibility: models.VisibilityPublic,
			Static:     true,
			Location:   t.Location,
		},
		Implicit:       true,
		ReturnsPointer: true,
	}
}

func withoutParams(ds []directive) []directive {
	out := make([]directive, 0, len(ds))
	for _, d := range ds {
		if d.parameter() == "" {
			out = append(out, d)
		}
	}
	return out
}

func receiverName(recv *ast.FieldList) string {
	if recv == nil || len(recv.List) == 0 {
		return ""
	}
	expr := recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	switch x := expr.(type) {
	case *ast.IndexExpr:
		expr = x.X
	case *ast.IndexListExpr:
		expr = x.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}

func isConstructorName(fn, typeName string) bool {
	return fn == "New"+upperFirst(typeName) || fn == "new"+upperFirst(typeName)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func visibility(name string) models.Visibility {
	if ast.IsExported(name) {
		return models.VisibilityPublic
	}
	return models.VisibilityPackage
}
