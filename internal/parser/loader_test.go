package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/models"
	"github.com/toyz/scopegen/internal/symbols"
)

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func moduleEnv() []string {
	return append(os.Environ(), "GOWORK=off", "GOFLAGS=-mod=mod", "GOPROXY=off")
}

func TestLoad_Module(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod": "module example.com/tmpapp\n\ngo 1.21\n",
		"scopes/scopes.go": `package scopes

//scopegen::scope
type Request struct{}
`,
		"base/base.go": `package base

type Logger interface{ Log(string) }

type Base struct {
	//scopegen::inject
	Logger Logger
}
`,
		"shop/cart.go": `package shop

import (
	"example.com/tmpapp/base"
	rq "example.com/tmpapp/scopes"
)

var _ rq.Request

//scopegen::annotated rq.Request
type Cart struct {
	*base.Base
	Items []string
}

//scopegen::annotated missing.Thing
type Broken struct{}
`,
	})

	sink := errors.NewCollector()
	program, err := NewLoader(sink, WithDir(dir), WithEnv(moduleEnv())).Load(context.Background(), "./...")
	require.NoError(t, err)

	var paths []string
	for _, pkg := range program.SortedPackages() {
		paths = append(paths, pkg.Path)
	}
	assert.Equal(t, []string{"example.com/tmpapp/base", "example.com/tmpapp/scopes", "example.com/tmpapp/shop"}, paths)

	shop := program.Packages["example.com/tmpapp/shop"]
	assert.Equal(t, "shop", shop.Name)
	assert.Equal(t, filepath.Join(dir, "shop"), shop.Dir)

	cart, ok := program.Arena.Lookup("example.com/tmpapp/shop.Cart")
	require.True(t, ok)
	assert.True(t, cart.Annotations.Has("example.com/tmpapp/scopes.Request"), "import aliases resolve")
	assert.Equal(t, "example.com/tmpapp/base.Base", cart.Super)
	assert.Equal(t, []models.EmbedStep{{Field: "Base", Pointer: true}}, cart.SuperPath)

	items, ok := cart.Field("Items")
	require.True(t, ok)
	assert.Equal(t, models.KindComposite, items.Type.Kind)

	ancestors := program.Arena.Ancestors(cart)
	require.Len(t, ancestors, 1)
	assert.Equal(t, "example.com/tmpapp/base.Base", ancestors[0].Identity)

	problems := sink.ByCode(errors.ValidationErrorCode)
	require.Len(t, problems, 1)
	assert.Equal(t, "example.com/tmpapp/shop.Broken", problems[0].Element)
}

func TestLoad_SubsetKeepsModuleDeclarations(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod": "module example.com/tmpapp\n\ngo 1.21\n",
		"scopes/scopes.go": `package scopes

//scopegen::scope
type Request struct{}
`,
		"base/base.go": `package base

type Logger interface{ Log(string) }

type Base struct {
	//scopegen::inject
	Logger Logger
}
`,
		"shop/cart.go": `package shop

import (
	"example.com/tmpapp/base"
	"example.com/tmpapp/scopes"
)

var _ scopes.Request

//scopegen::annotated scopes.Request
type Cart struct {
	base.Base
}

//scopegen::annotated example.com/tmpapp/scopes.Session
type Orphan struct{}
`,
	})

	sink := errors.NewCollector()
	program, err := NewLoader(sink, WithDir(dir), WithEnv(moduleEnv())).Load(context.Background(), "./shop")
	require.NoError(t, err)

	assert.Equal(t, "example.com/tmpapp", program.Module)
	assert.Len(t, program.Packages, 1)
	assert.Contains(t, program.Packages, "example.com/tmpapp/shop")
	assert.Contains(t, program.Imported, "example.com/tmpapp/base")
	assert.Contains(t, program.Imported, "example.com/tmpapp/scopes")

	request, ok := program.Arena.Lookup("example.com/tmpapp/scopes.Request")
	require.True(t, ok)
	assert.Equal(t, models.CategoryAnnotation, request.Category)

	cart, ok := program.Arena.Lookup("example.com/tmpapp/shop.Cart")
	require.True(t, ok)
	ancestors := program.Arena.Ancestors(cart)
	require.Len(t, ancestors, 1)
	assert.Equal(t, "example.com/tmpapp/base.Base", ancestors[0].Identity)

	problems := sink.ByCode(errors.ValidationErrorCode)
	require.Len(t, problems, 1)
	assert.Equal(t, "example.com/tmpapp/shop.Orphan", problems[0].Element)
	assert.Contains(t, problems[0].Message, "example.com/tmpapp/scopes.Session")
}

func TestLoad_SubsetLoadsFullPathReferences(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod": "module example.com/tmpapp\n\ngo 1.21\n",
		"scopes/scopes.go": `package scopes

//scopegen::scope
type Request struct{}
`,
		"shop/cart.go": `package shop

//scopegen::annotated example.com/tmpapp/scopes.Request
type Cart struct{}
`,
	})

	sink := errors.NewCollector()
	program, err := NewLoader(sink, WithDir(dir), WithEnv(moduleEnv())).Load(context.Background(), "./shop")
	require.NoError(t, err)

	assert.Len(t, program.Packages, 1)
	assert.Contains(t, program.Imported, "example.com/tmpapp/scopes", "loaded for the directive alone")
	assert.Empty(t, sink.ByCode(errors.ValidationErrorCode))

	cart, ok := program.Arena.Lookup("example.com/tmpapp/shop.Cart")
	require.True(t, ok)
	assert.True(t, cart.Annotations.Has("example.com/tmpapp/scopes.Request"))
	assert.Equal(t, symbols.RoleScope, program.Arena.Role("example.com/tmpapp/scopes.Request"))
}

func TestLoad_CompileErrors(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod":    "module example.com/broken\n\ngo 1.21\n",
		"broken.go": "package broken\n\nvar x int = \"nope\"\n",
	})

	_, err := NewLoader(errors.NewCollector(), WithDir(dir), WithEnv(moduleEnv())).Load(context.Background())
	require.Error(t, err)

	var typed errors.ScopegenError
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errors.LoadErrorCode, typed.ErrorCode())
}

func TestLoad_StaleGeneratedFile(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod": "module example.com/stale\n\ngo 1.21\n",
		"app.go": `package stale

type Clock struct {
	//scopegen::inject
	Zone string
}
`,
		"scopegen_gen.go": "package stale\n\nvar _ = Clock{}.Removed\n",
	})

	loader := NewLoader(errors.NewCollector(), WithDir(dir), WithEnv(moduleEnv()))
	_, err := loader.Load(context.Background())
	require.Error(t, err, "the stale file does not type-check")

	loader = NewLoader(errors.NewCollector(), WithDir(dir), WithEnv(moduleEnv()), WithGeneratedFile("scopegen_gen.go"))
	program, err := loader.Load(context.Background())
	require.NoError(t, err)

	_, ok := program.Arena.Lookup("example.com/stale.Clock")
	assert.True(t, ok)
}
