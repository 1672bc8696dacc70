package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsQualifiedName(t *testing.T) {
	validate := IsQualifiedName("scope")

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"ModulePath", "example.com/app/scopes.RequestScope", false},
		{"ShortPath", "scopes.Request", false},
		{"NoPackage", "RequestScope", true},
		{"TrailingDot", "example.com/app.", true},
		{"DotInPath", "example.com/app", true},
		{"BadIdent", "example.com/app.1Scope", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAll(t *testing.T) {
	validate := All(NotEmpty("pattern"), IsRegex("pattern"))

	assert.NoError(t, validate(`^java\.`))
	assert.EqualError(t, validate(""), "invalid pattern: must not be empty")
	assert.Error(t, validate("(unclosed"))
}

func TestValidateEach(t *testing.T) {
	validate := ValidateEach("excludes", IsRegex("pattern"))

	assert.NoError(t, validate([]string{"^a", "b$"}))

	err := validate([]string{"^a", "("})
	var verr ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "excludes[1]", verr.Field)
}

func TestNotNegative(t *testing.T) {
	assert.NoError(t, NotNegative("parallelism")(0))
	assert.EqualError(t, NotNegative("parallelism")(-1), "invalid parallelism: must not be negative")
}
