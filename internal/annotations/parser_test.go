package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/models"
)

var testLocation = errors.SourceLocation{File: "widget.go", Line: 12, Column: 1}

func TestParse_ValidDirectives(t *testing.T) {
	parser := NewParser(nil)

	tests := []struct {
		name     string
		comment  string
		keyword  string
		args     []string
		params   map[string]string
		identity string
	}{
		{
			name:     "Inject",
			comment:  "//scopegen::inject",
			keyword:  InjectKeyword,
			params:   map[string]string{},
			identity: models.InjectIdentity,
		},
		{
			name:     "LeadingSpaces",
			comment:  "  // scopegen::singleton  ",
			keyword:  SingletonKeyword,
			params:   map[string]string{},
			identity: models.SingletonIdentity,
		},
		{
			name:     "NamedQuoted",
			comment:  `//scopegen::named "primary db"`,
			keyword:  NamedKeyword,
			args:     []string{"primary db"},
			params:   map[string]string{},
			identity: models.NamedIdentity,
		},
		{
			name:     "NamedOnParameter",
			comment:  "//scopegen::named cache -Param=store",
			keyword:  NamedKeyword,
			args:     []string{"cache"},
			params:   map[string]string{ParamParameter: "store"},
			identity: models.NamedIdentity,
		},
		{
			name:     "SuppressList",
			comment:  "//scopegen::suppress injectable,visible",
			keyword:  SuppressKeyword,
			args:     []string{"injectable,visible"},
			params:   map[string]string{},
			identity: models.SuppressIdentity,
		},
		{
			name:     "ScopeBareRetentionUsesDefault",
			comment:  "//scopegen::scope -Retention",
			keyword:  ScopeKeyword,
			params:   map[string]string{ParamRetention: "runtime"},
			identity: models.ScopeMarkerIdentity,
		},
		{
			name:     "ScopeClassRetention",
			comment:  "//scopegen::scope -Retention=class",
			keyword:  ScopeKeyword,
			params:   map[string]string{ParamRetention: "class"},
			identity: models.ScopeMarkerIdentity,
		},
		{
			name:    "AnnotatedQualified",
			comment: "//scopegen::annotated example.com/app/scopes.Request",
			keyword: AnnotatedKeyword,
			args:    []string{"example.com/app/scopes.Request"},
			params:  map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := parser.Parse(tt.comment, testLocation)
			require.NoError(t, err)

			assert.Equal(t, tt.keyword, parsed.Keyword)
			assert.Equal(t, tt.args, parsed.Args)
			assert.Equal(t, tt.params, parsed.Parameters)
			assert.Equal(t, tt.identity, parsed.Identity())
			assert.Equal(t, testLocation, parsed.Location)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	parser := NewParser(nil)

	tests := []struct {
		name    string
		comment string
		code    errors.ErrorCode
	}{
		{"NotADirective", "// just a comment", errors.SyntaxErrorCode},
		{"OtherTool", "//wire::core", errors.SyntaxErrorCode},
		{"MissingKeyword", "//scopegen::", errors.SyntaxErrorCode},
		{"UnterminatedString", `//scopegen::named "oops`, errors.SyntaxErrorCode},
		{"UnknownKeyword", "//scopegen::autowire", errors.SyntaxErrorCode},
		{"NamedWithoutName", "//scopegen::named", errors.ValidationErrorCode},
		{"NamedTwoNames", "//scopegen::named a b", errors.ValidationErrorCode},
		{"InjectWithArgs", "//scopegen::inject now", errors.ValidationErrorCode},
		{"UnknownParameter", "//scopegen::singleton -Mode=eager", errors.ValidationErrorCode},
		{"BadRetention", "//scopegen::scope -Retention=forever", errors.ValidationErrorCode},
		{"BadSuppression", "//scopegen::suppress everything", errors.ValidationErrorCode},
		{"BadParamName", "//scopegen::named x -Param=1abc", errors.ValidationErrorCode},
		{"BadAnnotatedRef", "//scopegen::annotated pkg.", errors.ValidationErrorCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.comment, testLocation)
			require.Error(t, err)

			var typed errors.ScopegenError
			require.ErrorAs(t, err, &typed)
			assert.Equal(t, tt.code, typed.ErrorCode())
			assert.Equal(t, testLocation, typed.Location())
		})
	}
}

func TestParse_UnknownKeywordSuggestsKeywords(t *testing.T) {
	_, err := NewParser(nil).Parse("//scopegen::autowire", testLocation)

	var syntax *errors.SyntaxError
	require.ErrorAs(t, err, &syntax)
	assert.Equal(t, "autowire", syntax.Token)
	require.NotEmpty(t, syntax.Suggestions())
	assert.Contains(t, syntax.Suggestions()[0], "inject_constructor")
}

func TestIsDirective(t *testing.T) {
	assert.True(t, IsDirective("//scopegen::inject"))
	assert.True(t, IsDirective("// scopegen::named x"))
	assert.False(t, IsDirective("// scopegen is great"))
	assert.False(t, IsDirective("/* scopegen::inject */"))
}

func TestToAnnotation(t *testing.T) {
	parser := NewParser(nil)

	parsed, err := parser.Parse("//scopegen::named primary -Param=db", testLocation)
	require.NoError(t, err)
	ann := parsed.ToAnnotation(parsed.Identity())
	assert.Equal(t, models.NamedIdentity, ann.Identity)
	assert.Equal(t, "primary", ann.Value)
	assert.Nil(t, ann.Params, "routing parameters are not part of the annotation")

	parsed, err = parser.Parse("//scopegen::annotated scopes.Request", testLocation)
	require.NoError(t, err)
	ann = parsed.ToAnnotation("example.com/app/scopes.Request")
	assert.Equal(t, "", ann.Value, "the reference is not a value")

	parsed, err = parser.Parse("//scopegen::scope -Retention=source", testLocation)
	require.NoError(t, err)
	ann = parsed.ToAnnotation(parsed.Identity())
	assert.Equal(t, "source", ann.Param(ParamRetention))
}
