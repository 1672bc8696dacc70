package annotations

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/scopegen/internal/errors"
)

// directive is the grammar root: `scopegen::keyword arg "arg" -Flag -Name=value`
type directive struct {
	Keyword string      `parser:"'scopegen' '::' @Word"`
	Args    []*argument `parser:"@@*"`
}

type argument struct {
	Flag  *flag   `parser:"  @@"`
	Value *string `parser:"| ( @String | @Word )"`
}

type flag struct {
	Name  string  `parser:"'-' @Word"`
	Value *string `parser:"( '=' ( @String | @Word ) )?"`
}

var directiveLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Sep", Pattern: `::`},
	{Name: "Word", Pattern: `[A-Za-z0-9_][A-Za-z0-9_./,\-]*`},
	{Name: "Punct", Pattern: `[-=]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Parser turns directive comments into ParsedAnnotations
type Parser struct {
	grammar  *participle.Parser[directive]
	registry AnnotationRegistry
}

// NewParser creates a parser validating against the registry.
// A nil registry uses the built-in schemas.
func NewParser(registry AnnotationRegistry) *Parser {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Parser{
		grammar: participle.MustBuild[directive](
			participle.Lexer(directiveLexer),
			participle.Elide("Whitespace"),
			participle.Unquote("String"),
			participle.UseLookahead(2),
		),
		registry: registry,
	}
}

// Registry returns the schemas the parser validates against
func (p *Parser) Registry() AnnotationRegistry {
	return p.registry
}

// IsDirective reports whether a comment line is a scopegen directive
func IsDirective(comment string) bool {
	_, ok := directiveBody(comment)
	return ok
}

func directiveBody(comment string) (string, bool) {
	text := strings.TrimSpace(comment)
	if !strings.HasPrefix(text, "//") {
		return "", false
	}
	text = strings.TrimSpace(strings.TrimPrefix(text, "//"))
	if !strings.HasPrefix(text, Prefix) {
		return "", false
	}
	return text, true
}

// Parse parses and validates a single directive comment
func (p *Parser) Parse(comment string, location errors.SourceLocation) (*ParsedAnnotation, error) {
	body, ok := directiveBody(comment)
	if !ok {
		return nil, errors.NewSyntaxError("comment is not a scopegen directive").
			WithLocation(location).
			WithSuggestion("Directives look like //scopegen::inject")
	}

	ast, err := p.grammar.ParseString(location.File, body)
	if err != nil {
		return nil, errors.WrapSyntaxError("directive", err).
			WithToken(body).
			WithLocation(location)
	}

	parsed := &ParsedAnnotation{
		Keyword:    ast.Keyword,
		Parameters: make(map[string]string),
		Location:   location,
		Raw:        comment,
	}

	schema, err := p.registry.GetSchema(parsed.Keyword)
	if err != nil {
		return nil, errors.NewSyntaxError(fmt.Sprintf("unknown directive '%s'", parsed.Keyword)).
			WithToken(parsed.Keyword).
			WithLocation(location).
			WithSuggestion("Use one of: " + strings.Join(p.registry.ListKeywords(), ", "))
	}

	for _, arg := range ast.Args {
		if arg.Flag == nil {
			parsed.Args = append(parsed.Args, *arg.Value)
			continue
		}
		if arg.Flag.Value != nil {
			parsed.Parameters[arg.Flag.Name] = *arg.Flag.Value
			continue
		}
		value := "true"
		if spec, ok := schema.Parameters[arg.Flag.Name]; ok && spec.Type != BoolType && spec.DefaultValue != "" {
			value = spec.DefaultValue
		}
		parsed.Parameters[arg.Flag.Name] = value
	}

	if err := p.validate(parsed, schema); err != nil {
		return nil, err
	}
	return parsed, nil
}

func (p *Parser) validate(parsed *ParsedAnnotation, schema AnnotationSchema) error {
	loc := parsed.Location

	values := splitPositional(parsed.Args)
	if len(values) < schema.Positional.Min {
		return errors.NewValidationError("arguments",
			fmt.Sprintf("at least %d (%s)", schema.Positional.Min, schema.Positional.Description),
			strconv.Itoa(len(values))).
			WithLocation(loc).
			WithSuggestion(exampleHint(schema))
	}
	if schema.Positional.Max >= 0 && len(parsed.Args) > schema.Positional.Max {
		return errors.NewValidationError("arguments",
			fmt.Sprintf("at most %d", schema.Positional.Max),
			strconv.Itoa(len(parsed.Args))).
			WithLocation(loc).
			WithSuggestion(exampleHint(schema))
	}
	if schema.Positional.Validator != nil {
		for _, v := range values {
			if err := schema.Positional.Validator(v); err != nil {
				return errors.NewValidationError("arguments", err.Error(), v).WithLocation(loc)
			}
		}
	}

	for name, value := range parsed.Parameters {
		spec, ok := schema.Parameters[name]
		if !ok {
			return errors.NewValidationError(name, "a known parameter", "-"+name).
				WithLocation(loc).
				WithSuggestion(fmt.Sprintf("'%s' takes %s", schema.Keyword, describeParameters(schema)))
		}
		if err := checkType(spec.Type, value); err != nil {
			return errors.NewValidationError(name, spec.Type.String(), value).WithLocation(loc)
		}
		if spec.Validator != nil {
			if err := spec.Validator(value); err != nil {
				return errors.NewValidationError(name, err.Error(), value).WithLocation(loc)
			}
		}
	}
	for name, spec := range schema.Parameters {
		if spec.Required && !parsed.HasParameter(name) {
			return errors.NewValidationError(name, "a value", "nothing").
				WithLocation(loc).
				WithSuggestion(exampleHint(schema))
		}
	}

	for _, validator := range schema.Validators {
		if err := validator(parsed); err != nil {
			return errors.NewValidationError(schema.Keyword, err.Error(), parsed.Raw).WithLocation(loc)
		}
	}
	return nil
}

func splitPositional(args []string) []string {
	var out []string
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func checkType(t ParameterType, value string) error {
	switch t {
	case BoolType:
		_, err := strconv.ParseBool(value)
		return err
	case IntType:
		_, err := strconv.Atoi(value)
		return err
	default:
		return nil
	}
}

func describeParameters(schema AnnotationSchema) string {
	if len(schema.Parameters) == 0 {
		return "no parameters"
	}
	names := make([]string, 0, len(schema.Parameters))
	for name := range schema.Parameters {
		names = append(names, "-"+name)
	}
	return strings.Join(names, ", ")
}

func exampleHint(schema AnnotationSchema) string {
	if len(schema.Examples) == 0 {
		return schema.Description
	}
	return "Example: " + schema.Examples[0]
}
