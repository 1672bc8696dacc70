package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/scopegen/internal/models"
)

func TestDefaultRegistry_HasBuiltins(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []string{
		"annotated", "inject", "inject_constructor", "named", "provides_releasable",
		"provides_singleton", "qualifier", "releasable", "scope", "singleton", "suppress",
	}, r.ListKeywords())

	for keyword, identity := range models.BuiltinKeywords {
		assert.True(t, r.IsRegistered(keyword), "keyword %s for %s", keyword, identity)
	}
}

func TestRegistry_RejectsInvalidSchemas(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(InjectSchema))
	assert.Error(t, r.Register(InjectSchema), "duplicates are rejected")

	assert.Error(t, r.Register(AnnotationSchema{Keyword: "", Targets: typeOnly}))
	assert.Error(t, r.Register(AnnotationSchema{Keyword: "orphan"}), "schemas need targets")
	assert.Error(t, r.Register(AnnotationSchema{
		Keyword:    "backwards",
		Targets:    typeOnly,
		Positional: PositionalSpec{Min: 2, Max: 1},
	}))
	assert.Error(t, r.Register(AnnotationSchema{
		Keyword:    "badparam",
		Targets:    typeOnly,
		Parameters: map[string]ParameterSpec{"X": {Type: ParameterType(42)}},
	}))

	_, err := r.GetSchema("missing")
	assert.Error(t, err)
}

func TestSchemaTargets(t *testing.T) {
	assert.True(t, InjectSchema.AllowsTarget(models.ElementField))
	assert.False(t, InjectSchema.AllowsTarget(models.ElementType))
	assert.True(t, NamedSchema.AllowsTarget(models.ElementParameter))
	assert.True(t, ScopeSchema.AllowsTarget(models.ElementType))
	assert.False(t, SingletonSchema.AllowsTarget(models.ElementMethod))
}

func TestCustomKeyword(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(AnnotationSchema{
		Keyword:    "tag",
		Targets:    typeOnly,
		Positional: PositionalSpec{Min: 1, Max: 1},
		Parameters: map[string]ParameterSpec{"Weight": {Type: IntType}},
	}))

	parser := NewParser(r)
	parsed, err := parser.Parse("//scopegen::tag blue -Weight=3", testLocation)
	require.NoError(t, err)
	assert.Equal(t, "3", parsed.GetString("Weight"))

	_, err = parser.Parse("//scopegen::tag blue -Weight=heavy", testLocation)
	assert.Error(t, err)

	_, err = parser.Parse("//scopegen::inject", testLocation)
	assert.Error(t, err, "the custom registry only knows its own keywords")
}
