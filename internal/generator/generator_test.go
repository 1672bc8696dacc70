package generator

import (
	"context"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/models"
	"github.com/toyz/scopegen/internal/resolver"
	"github.com/toyz/scopegen/internal/symbols"
)

const (
	shop = "example.com/app/shop"
	base = "example.com/app/base"
)

func cartPlan() *models.GeneratedArtifactPlan {
	self := &models.InjectorRef{Owner: shop + ".Cart", Type: models.Named(shop + ".Cart"), Package: shop}
	return &models.GeneratedArtifactPlan{
		Owner:       models.Named(shop + ".Cart"),
		Package:     shop,
		PackageName: "shop",
		TypeName:    "Cart",
		Description: "Factory+MemberInjector for example.com/app/shop.Cart (scope: root)",
		Origin: models.Origin{
			Element:  "shop.Cart",
			Location: errors.SourceLocation{File: "/src/shop/cart.go", Line: 12},
			Triggers: []string{"inject-constructor", "field Audit"},
		},
		Scope: models.ScopeBinding{ScopeAnnotation: models.SingletonIdentity, IsSingleton: true},
		Factory: &models.FactoryPlan{
			Construction: models.ConstructionPlan{
				Owner:       shop + ".Cart",
				Constructor: "NewCart",
				Arity:       2,
				Parameters: []models.DependencyRequirement{
					{
						Name:      "store",
						Declared:  models.PointerTo(models.Named(shop + ".Store")),
						Target:    models.PointerTo(models.Named(shop + ".Store")),
						Retrieval: models.RetrievalInstance,
					},
					{
						Name:      "clock",
						Declared:  models.Named(models.LazyIdentity, models.PointerTo(models.Named(base+".Clock"))),
						Target:    models.PointerTo(models.Named(base + ".Clock")),
						Retrieval: models.RetrievalDeferred,
						Qualifier: &models.QualifierKey{Name: "wall"},
					},
				},
				ThrowsChecked:  true,
				ReturnsPointer: true,
			},
			Target:                 models.ScopeTarget{Kind: models.TargetRootScope},
			HasScopeAnnotation:     true,
			HasSingletonAnnotation: true,
			MemberInjector:         self,
		},
		MemberInjector: &models.MemberInjectionPlan{
			Owner: shop + ".Cart",
			Fields: []models.FieldRequirement{{
				Name: "Audit",
				Requirement: models.DependencyRequirement{
					Declared:  models.Named(models.ProviderIdentity, models.TypeDescriptor{Name: base + ".Auditor", Kind: models.KindInterface}),
					Target:    models.TypeDescriptor{Name: base + ".Auditor", Kind: models.KindInterface},
					Retrieval: models.RetrievalFactory,
				},
			}},
			Methods: []models.MethodRequirement{{
				Name: "SetLogger",
				Parameters: []models.DependencyRequirement{{
					Name:      "l",
					Declared:  models.TypeDescriptor{Name: base + ".Logger", Kind: models.KindInterface},
					Target:    models.TypeDescriptor{Name: base + ".Logger", Kind: models.KindInterface},
					Retrieval: models.RetrievalInstance,
					Qualifier: &models.QualifierKey{Annotation: base + ".Audit"},
				}},
				ThrowsChecked: true,
			}},
			Ancestor: &models.InjectorRef{
				Owner:   base + ".Base",
				Type:    models.Named(base + ".Base"),
				Package: base,
				Path:    []models.EmbedStep{{Field: "Base", Pointer: true}},
			},
		},
	}
}

func assertParses(t *testing.T, content string) {
	t.Helper()
	_, err := parser.ParseFile(token.NewFileSet(), FileName, content, parser.AllErrors)
	require.NoError(t, err, content)
}

func TestGenerateFile_FactoryAndInjector(t *testing.T) {
	g := NewGenerator()

	file, err := g.GenerateFile(shop, "shop", "/src/shop", []*models.GeneratedArtifactPlan{cartPlan()})
	require.NoError(t, err)
	assertParses(t, file.Content)

	assert.Equal(t, filepath.Join("/src/shop", FileName), file.FilePath)
	assert.Equal(t, []string{shop + ".Cart"}, file.Owners)

	for _, want := range []string{
		Header,
		"package shop",
		`base "example.com/app/base"`,
		`scope "github.com/toyz/scopegen/pkg/scope"`,

		"type Cart__Factory struct{}",
		"func (f Cart__Factory) CreateInstance(s scope.Scope) (*Cart, error) {",
		"var zero *Cart",
		"s, err := f.TargetScope(s)",
		`p0, err := scope.Instance[*Store](s, "")`,
		`p1 := scope.LazyOf[*base.Clock](s, "wall")`,
		"instance, err := NewCart(p0, p1)",
		"if err := (Cart__MemberInjector{}).Inject(instance, s); err != nil {",
		"return s.RootScope(), nil",
		"func (Cart__Factory) HasSingletonAnnotation() bool {\n\treturn true\n}",
		"func (Cart__Factory) HasReleasableAnnotation() bool {\n\treturn false\n}",

		"type Cart__MemberInjector struct{}",
		"func (Cart__MemberInjector) Inject(target *Cart, s scope.Scope) error {",
		"if target.Base != nil {",
		"if err := (base.Base__MemberInjector{}).Inject(target.Base, s); err != nil {",
		`f0 := scope.ProviderOf[base.Auditor](s, "")`,
		"target.Audit = f0",
		`m0p0, err := scope.Instance[base.Logger](s, "example.com/app/base.Audit")`,
		"if err := target.SetLogger(m0p0); err != nil {",

		"scope.RegisterFactory[*Cart](Cart__Factory{})",
		"scope.RegisterMemberInjector[*Cart](Cart__MemberInjector{})",
	} {
		assert.Contains(t, file.Content, want)
	}

	assert.NotContains(t, file.Content, "originating element")
}

func TestGenerateFile_AncestorDelegationOrder(t *testing.T) {
	file, err := NewGenerator().GenerateFile(shop, "shop", "/src/shop", []*models.GeneratedArtifactPlan{cartPlan()})
	require.NoError(t, err)

	content := file.Content
	inject := indexOf(t, content, "func (Cart__MemberInjector) Inject")
	super := indexOf(t, content, "(base.Base__MemberInjector{}).Inject")
	field := indexOf(t, content, "target.Audit = f0")
	method := indexOf(t, content, "target.SetLogger(m0p0)")

	assert.Less(t, inject, super)
	assert.Less(t, super, field, "the ancestor is populated first")
	assert.Less(t, field, method, "fields before methods")
}

func TestGenerateFile_ImplicitConstructorWithEmbeddedInjector(t *testing.T) {
	plan := &models.GeneratedArtifactPlan{
		Owner:       models.Named(shop + ".Session"),
		Package:     shop,
		PackageName: "shop",
		TypeName:    "Session",
		Factory: &models.FactoryPlan{
			Construction: models.ConstructionPlan{Owner: shop + ".Session", Implicit: true, ReturnsPointer: true},
			Target:       models.ScopeTarget{Kind: models.TargetAncestorScope, Identity: shop + ".RequestScope"},
			MemberInjector: &models.InjectorRef{
				Owner:   shop + ".Core",
				Type:    models.Named(shop + ".Core"),
				Package: shop,
				Path:    []models.EmbedStep{{Field: "Middle"}, {Field: "Core"}},
			},
			HasScopeAnnotation: true,
		},
	}

	file, err := NewGenerator().GenerateFile(shop, "shop", "/src/shop", []*models.GeneratedArtifactPlan{plan})
	require.NoError(t, err)
	assertParses(t, file.Content)

	assert.Contains(t, file.Content, "instance := &Session{}")
	assert.Contains(t, file.Content, "if err := (Core__MemberInjector{}).Inject(&instance.Middle.Core, s); err != nil {")
	assert.Contains(t, file.Content, `return s.GetParentScope("example.com/app/shop.RequestScope")`)
	assert.Contains(t, file.Content, "scope.RegisterFactory[*Session](Session__Factory{})")
	assert.NotContains(t, file.Content, "Session__MemberInjector")
	assert.NotContains(t, file.Content, "base \"", "no unused imports")
}

func TestGenerateFile_ValueConstructor(t *testing.T) {
	plan := &models.GeneratedArtifactPlan{
		Owner:       models.Named(shop + ".Money"),
		Package:     shop,
		PackageName: "shop",
		TypeName:    "Money",
		Factory: &models.FactoryPlan{
			Construction: models.ConstructionPlan{
				Owner:       shop + ".Money",
				Constructor: "newMoney",
				Arity:       1,
				Parameters: []models.DependencyRequirement{{
					Name:      "rates",
					Declared:  models.TypeDescriptor{Name: "map[string]example.com/app/base.Rate", Kind: models.KindComposite},
					Target:    models.TypeDescriptor{Name: "map[string]example.com/app/base.Rate", Kind: models.KindComposite},
					Retrieval: models.RetrievalInstance,
					Qualifier: &models.QualifierKey{Name: "rates"},
				}},
			},
			MemberInjector: &models.InjectorRef{Owner: shop + ".Money", Type: models.Named(shop + ".Money"), Package: shop},
		},
	}

	file, err := NewGenerator().GenerateFile(shop, "shop", "/src/shop", []*models.GeneratedArtifactPlan{plan})
	require.NoError(t, err)
	assertParses(t, file.Content)

	assert.Contains(t, file.Content, "func (f Money__Factory) CreateInstance(s scope.Scope) (Money, error) {")
	assert.Contains(t, file.Content, `p0, err := scope.Instance[map[string]base.Rate](s, "rates")`)
	assert.Contains(t, file.Content, "instance := newMoney(p0)")
	assert.Contains(t, file.Content, "(Money__MemberInjector{}).Inject(&instance, s)")
	assert.Contains(t, file.Content, "return s, nil")
	assert.Contains(t, file.Content, "scope.RegisterFactory[Money](Money__Factory{})")
}

func TestGenerateFile_OriginComments(t *testing.T) {
	g := NewGenerator(WithOriginComments(true))

	file, err := g.GenerateFile(shop, "shop", "/src/shop", []*models.GeneratedArtifactPlan{cartPlan()})
	require.NoError(t, err)

	assert.Contains(t, file.Content, "// originating element: shop.Cart (cart.go:12)")
	assert.Contains(t, file.Content, "// triggered by: inject-constructor, field Audit")
}

func TestGenerateFile_ScopePackage(t *testing.T) {
	g := NewGenerator(WithScopePackage("example.com/runtime/scope"))

	file, err := g.GenerateFile(shop, "shop", "/src/shop", []*models.GeneratedArtifactPlan{cartPlan()})
	require.NoError(t, err)

	assert.Contains(t, file.Content, `scope "example.com/runtime/scope"`)
	assert.NotContains(t, file.Content, models.ScopePackage)
}

func TestGenerateFile_ForeignPlan(t *testing.T) {
	_, err := NewGenerator().GenerateFile(base, "base", "/src/base", []*models.GeneratedArtifactPlan{cartPlan()})
	require.Error(t, err)

	var typed errors.ScopegenError
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errors.GenerationErrorCode, typed.ErrorCode())
}

func TestGenerate_GroupsByPackage(t *testing.T) {
	other := cartPlan()
	other.Package = base
	other.PackageName = "base"
	other.Owner = models.Named(base + ".Cart")

	dirs := map[string]string{shop: "/src/shop", base: "/src/base"}
	files, err := NewGenerator().Generate(
		[]*models.GeneratedArtifactPlan{cartPlan(), nil, other},
		func(path string) (string, bool) {
			dir, ok := dirs[path]
			return dir, ok
		},
	)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, base, files[0].PackagePath)
	assert.Equal(t, shop, files[1].PackagePath)
	assert.Contains(t, files[0].Content, "package base")
	assert.Contains(t, files[0].Content, "(Base__MemberInjector{}).Inject(target.Base, s)",
		"the ancestor lives in the same package")

	files, err = NewGenerator().Generate([]*models.GeneratedArtifactPlan{cartPlan()},
		func(string) (string, bool) { return "", false })
	require.NoError(t, err)
	assert.Empty(t, files, "packages without a directory are skipped")
}

const appManifest = `
package: example.com/app
annotations:
  - {name: RequestScope, scope: true}
types:
  - name: Store
    kind: interface
  - name: Repo
    fields:
      - {name: Store, type: Store, annotations: [inject]}
  - name: Users
    super: Repo
    annotations: [RequestScope]
  - name: Clock
    annotations: [singleton]
    constructors:
      - name: NewClock
        annotations: [inject]
        throws: true
        params:
          - {name: zone, type: string, annotations: [{name: named, value: zone}]}
          - {name: users, type: "Provider[*Users]"}
`

func TestGenerate_FromResolvedPlans(t *testing.T) {
	arena, err := symbols.ParseManifest("app.yaml", []byte(appManifest))
	require.NoError(t, err)

	sink := errors.NewCollector()
	session, err := resolver.NewSession(arena, nil, sink)
	require.NoError(t, err)

	plans, err := session.Resolve(context.Background())
	require.NoError(t, err)
	require.False(t, sink.HasErrors(), "%v", sink.Diagnostics())

	files, err := NewGenerator().Generate(plans, func(string) (string, bool) { return "/src/app", true })
	require.NoError(t, err)
	require.Len(t, files, 1)

	content := files[0].Content
	assertParses(t, content)
	assert.Equal(t, "example.com/app", files[0].PackagePath)
	assert.Equal(t, []string{"example.com/app.Clock", "example.com/app.Repo", "example.com/app.Users"}, files[0].Owners)

	assert.Contains(t, content, `p0, err := scope.Instance[string](s, "zone")`)
	assert.Contains(t, content, `p1 := scope.ProviderOf[*Users](s, "")`)
	assert.Contains(t, content, "instance, err := NewClock(p0, p1)")
	assert.Contains(t, content, `return s.GetParentScope("example.com/app.RequestScope")`)
	assert.Contains(t, content, "(Repo__MemberInjector{}).Inject(&instance.Repo, s)")
	assert.Contains(t, content, `f0, err := scope.Instance[Store](s, "")`)
	assert.Contains(t, content, "scope.RegisterMemberInjector[*Repo](Repo__MemberInjector{})")
}

const shadowManifest = `
package: example.com/app
types:
  - name: Parent
    methods:
      - {name: start, visibility: package, annotations: [inject]}
  - name: Child
    super: Parent
    methods:
      - {name: start, visibility: package, annotations: [inject]}
`

func TestGenerate_ShadowingMethodIsInvoked(t *testing.T) {
	arena, err := symbols.ParseManifest("app.yaml", []byte(shadowManifest))
	require.NoError(t, err)

	sink := errors.NewCollector()
	session, err := resolver.NewSession(arena, nil, sink)
	require.NoError(t, err)

	plans, err := session.Resolve(context.Background())
	require.NoError(t, err)
	require.False(t, sink.HasErrors(), "%v", sink.Diagnostics())

	files, err := NewGenerator().Generate(plans, func(string) (string, bool) { return "/src/app", true })
	require.NoError(t, err)
	require.Len(t, files, 1)

	content := files[0].Content
	assertParses(t, content)

	child := content[indexOf(t, content, "func (Child__MemberInjector) Inject(target *Child, s scope.Scope) error {"):]
	child = child[:indexOf(t, child, "\n}\n")]
	delegation := indexOf(t, child, "(Parent__MemberInjector{}).Inject(&target.Parent, s)")
	own := indexOf(t, child, "target.start()")
	assert.Less(t, delegation, own, "the embedded method runs before the outer one")
}

func indexOf(t *testing.T, s, sub string) int {
	t.Helper()
	i := strings.Index(s, sub)
	require.GreaterOrEqual(t, i, 0, "%q not found", sub)
	return i
}
