package annotations

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/toyz/scopegen/internal/models"
)

// Built-in directive schemas

var typeOnly = []models.ElementKind{models.ElementType}

var paramRouting = ParameterSpec{
	Type:        StringType,
	Description: "Name of the function parameter the directive applies to",
	Validator: func(v string) error {
		if !token.IsIdentifier(v) {
			return fmt.Errorf("'%s' is not a valid parameter name", v)
		}
		return nil
	},
}

var retentionParam = ParameterSpec{
	Type:         StringType,
	DefaultValue: "runtime",
	Description:  "How long the annotation is retained: runtime (default), class or source",
	Validator: func(v string) error {
		if _, ok := models.ParseRetention(v); !ok {
			return fmt.Errorf("must be 'runtime', 'class' or 'source', got '%s'", v)
		}
		return nil
	},
}

// InjectSchema defines the schema for //scopegen::inject
var InjectSchema = AnnotationSchema{
	Keyword:     InjectKeyword,
	Description: "Marks a constructor, field or method for injection",
	Targets:     []models.ElementKind{models.ElementConstructor, models.ElementField, models.ElementMethod},
	Examples: []string{
		"//scopegen::inject",
	},
}

// InjectConstructorSchema defines the schema for //scopegen::inject_constructor
var InjectConstructorSchema = AnnotationSchema{
	Keyword:     InjectConstructorKeyword,
	Description: "Uses the single unique constructor of a type for injection",
	Targets:     typeOnly,
	Examples: []string{
		"//scopegen::inject_constructor",
	},
}

// NamedSchema defines the schema for //scopegen::named
var NamedSchema = AnnotationSchema{
	Keyword:     NamedKeyword,
	Description: "Qualifies a dependency by name",
	Targets:     []models.ElementKind{models.ElementField, models.ElementParameter},
	Positional:  PositionalSpec{Min: 1, Max: 1, Description: "the qualifier name"},
	Parameters: map[string]ParameterSpec{
		ParamParameter: paramRouting,
	},
	Examples: []string{
		`//scopegen::named "primary"`,
		`//scopegen::named cache -Param=store`,
	},
}

// SingletonSchema defines the schema for //scopegen::singleton
var SingletonSchema = AnnotationSchema{
	Keyword:     SingletonKeyword,
	Description: "Binds instances of the type to the root scope",
	Targets:     typeOnly,
	Examples:    []string{"//scopegen::singleton"},
}

// ReleasableSchema defines the schema for //scopegen::releasable
var ReleasableSchema = AnnotationSchema{
	Keyword:     ReleasableKeyword,
	Description: "Allows a singleton to be released by its scope",
	Targets:     typeOnly,
	Examples:    []string{"//scopegen::releasable"},
}

// ProvidesSingletonSchema defines the schema for //scopegen::provides_singleton
var ProvidesSingletonSchema = AnnotationSchema{
	Keyword:     ProvidesSingletonKeyword,
	Description: "Caches the instances handed out by providers of the type",
	Targets:     typeOnly,
	Examples:    []string{"//scopegen::provides_singleton"},
}

// ProvidesReleasableSchema defines the schema for //scopegen::provides_releasable
var ProvidesReleasableSchema = AnnotationSchema{
	Keyword:     ProvidesReleasableKeyword,
	Description: "Allows provider-cached instances to be released",
	Targets:     typeOnly,
	Examples:    []string{"//scopegen::provides_releasable"},
}

// SuppressSchema defines the schema for //scopegen::suppress
var SuppressSchema = AnnotationSchema{
	Keyword:     SuppressKeyword,
	Description: "Suppresses a warning category on the declaration",
	Targets: []models.ElementKind{
		models.ElementType, models.ElementConstructor, models.ElementField, models.ElementMethod,
	},
	Positional: PositionalSpec{
		Min:         1,
		Max:         -1,
		Description: "comma separated warning categories",
		Validator: func(v string) error {
			if v != models.SuppressInjectable && v != models.SuppressVisible {
				return fmt.Errorf("unknown warning category '%s' (expected '%s' or '%s')",
					v, models.SuppressInjectable, models.SuppressVisible)
			}
			return nil
		},
	},
	Examples: []string{
		"//scopegen::suppress injectable",
		"//scopegen::suppress injectable,visible",
	},
}

// QualifierSchema defines the schema for //scopegen::qualifier
var QualifierSchema = AnnotationSchema{
	Keyword:     QualifierKeyword,
	Description: "Declares the type as a qualifier annotation",
	Targets:     typeOnly,
	Parameters: map[string]ParameterSpec{
		ParamRetention: retentionParam,
	},
	Examples: []string{"//scopegen::qualifier"},
}

// ScopeSchema defines the schema for //scopegen::scope
var ScopeSchema = AnnotationSchema{
	Keyword:     ScopeKeyword,
	Description: "Declares the type as a scope annotation",
	Targets:     typeOnly,
	Parameters: map[string]ParameterSpec{
		ParamRetention: retentionParam,
	},
	Examples: []string{
		"//scopegen::scope",
		"//scopegen::scope -Retention=class",
	},
}

// AnnotatedSchema defines the schema for //scopegen::annotated
var AnnotatedSchema = AnnotationSchema{
	Keyword:     AnnotatedKeyword,
	Description: "Applies a user-declared annotation type. An alias.Type reference needs an import that the file also uses in code; otherwise write the full import path",
	Targets: []models.ElementKind{
		models.ElementType, models.ElementConstructor, models.ElementField,
		models.ElementMethod, models.ElementParameter,
	},
	Positional: PositionalSpec{
		Min:         1,
		Max:         -1,
		Description: "annotation type reference (Type, alias.Type or import/path.Type) followed by optional values",
	},
	Parameters: map[string]ParameterSpec{
		ParamParameter: paramRouting,
	},
	Validators: []CustomValidator{
		func(p *ParsedAnnotation) error {
			ref := p.Arg(0)
			name := ref[strings.LastIndex(ref, ".")+1:]
			if !token.IsIdentifier(name) {
				return fmt.Errorf("'%s' does not name an annotation type", ref)
			}
			return nil
		},
	},
	Examples: []string{
		"//scopegen::annotated RequestScope",
		"//scopegen::annotated qualifiers.Primary -Param=db",
		"//scopegen::annotated example.com/app/scopes.Request",
	},
}

// BuiltinSchemas lists every built-in directive schema
var BuiltinSchemas = []AnnotationSchema{
	InjectSchema,
	InjectConstructorSchema,
	NamedSchema,
	SingletonSchema,
	ReleasableSchema,
	ProvidesSingletonSchema,
	ProvidesReleasableSchema,
	SuppressSchema,
	QualifierSchema,
	ScopeSchema,
	AnnotatedSchema,
}
