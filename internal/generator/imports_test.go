package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/scopegen/internal/models"
)

func TestImportManager_Aliases(t *testing.T) {
	im := NewImportManager("example.com/app/shop", "shop")

	assert.Equal(t, "", im.AddImport("example.com/app/shop"), "the local package is not imported")
	assert.Equal(t, "log", im.AddImport("example.com/a/log"))
	assert.Equal(t, "log2", im.AddImport("example.com/b/log"))
	assert.Equal(t, "log", im.AddImport("example.com/a/log"), "aliases are stable")
	assert.Equal(t, "chi", im.AddImport("github.com/go-chi/chi/v5"))
	assert.Equal(t, "yaml", im.AddImport("gopkg.in/yaml.v3"))
	assert.Equal(t, "target2", im.AddImport("example.com/target"), "generated locals are never shadowed")
	assert.Equal(t, "shop2", im.AddImport("example.com/other/shop"))

	assert.Equal(t, []ImportSpec{
		{Alias: "log", Path: "example.com/a/log"},
		{Alias: "log2", Path: "example.com/b/log"},
		{Alias: "shop2", Path: "example.com/other/shop"},
		{Alias: "target2", Path: "example.com/target"},
		{Alias: "chi", Path: "github.com/go-chi/chi/v5"},
		{Alias: "yaml", Path: "gopkg.in/yaml.v3"},
	}, im.Imports())
}

func TestImportManager_GenerateImports(t *testing.T) {
	im := NewImportManager("example.com/app", "app")
	assert.Empty(t, im.GenerateImports())

	im.AddImport("example.com/x/log")
	im.AddImport("github.com/toyz/scopegen/pkg/scope")
	assert.Equal(t, "import (\n\tlog \"example.com/x/log\"\n\tscope \"github.com/toyz/scopegen/pkg/scope\"\n)\n", im.GenerateImports())
}

func TestImportManager_TypeExpr(t *testing.T) {
	im := NewImportManager("example.com/app", "app")

	tests := []struct {
		name string
		in   models.TypeDescriptor
		want string
	}{
		{"local", models.Named("example.com/app.Widget"), "Widget"},
		{"pointer", models.PointerTo(models.Named("example.com/app/base.Clock")), "*base.Clock"},
		{"basic", models.TypeDescriptor{Name: "int", Kind: models.KindBasic}, "int"},
		{"error", models.TypeDescriptor{Name: "error", Kind: models.KindInterface}, "error"},
		{"generic", models.MustParseTypeDescriptor("example.com/app/base.Box[int, ?]"), "base.Box[int, any]"},
		{"versioned", models.MustParseTypeDescriptor("gopkg.in/yaml.v3.Node"), "yaml.Node"},
		{
			"composite",
			models.TypeDescriptor{Name: "map[string][]example.com/app/base.Rate", Kind: models.KindComposite},
			"map[string][]base.Rate",
		},
		{
			"func",
			models.TypeDescriptor{Name: "func(context.Context) (*example.com/app.Widget, error)", Kind: models.KindComposite},
			"func(context.Context) (*Widget, error)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, im.TypeExpr(tt.in))
		})
	}

	assert.Equal(t, []ImportSpec{
		{Alias: "context", Path: "context"},
		{Alias: "base", Path: "example.com/app/base"},
		{Alias: "yaml", Path: "gopkg.in/yaml.v3"},
	}, im.Imports(), "sorted by path")
}
