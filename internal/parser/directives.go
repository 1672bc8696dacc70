package parser

import (
	"go/ast"
	"strconv"
	"strings"

	"github.com/toyz/scopegen/internal/annotations"
	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/models"
)

// directive is a parsed comment together with the annotation it stands for
type directive struct {
	parsed     *annotations.ParsedAnnotation
	annotation models.Annotation
	schema     annotations.AnnotationSchema
}

// parameter returns the parameter the directive is routed to, "" when none
func (d directive) parameter() string {
	return d.parsed.GetString(annotations.ParamParameter)
}

// fileScope resolves annotation references written in one file
type fileScope struct {
	pkgPath string
	imports map[string]string // local name -> import path
}

func (b *packageBuilder) fileScope(file *ast.File) fileScope {
	scope := fileScope{pkgPath: b.path, imports: make(map[string]string)}
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := b.importedName(path)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if name == "_" || name == "." {
			continue
		}
		scope.imports[name] = path
	}
	return scope
}

func (b *packageBuilder) importedName(path string) string {
	if b.pkg != nil {
		for _, imported := range b.pkg.Imports() {
			if imported.Path() == path {
				return imported.Name()
			}
		}
	}
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// resolve turns Name, alias.Name or a full identity into an identity
func (s fileScope) resolve(ref string) (string, bool) {
	if strings.Contains(ref, "/") {
		return ref, true
	}
	idx := strings.Index(ref, ".")
	if idx < 0 {
		return s.pkgPath + "." + ref, true
	}
	path, ok := s.imports[ref[:idx]]
	if !ok {
		return ref, false
	}
	return path + "." + ref[idx+1:], true
}

// directives parses every directive in the comment groups. Problems are
// reported against element and the directive is dropped.
func (b *packageBuilder) directives(scope fileScope, element string, groups ...*ast.CommentGroup) []directive {
	var out []directive
	for _, group := range groups {
		if group == nil {
			continue
		}
		for _, comment := range group.List {
			if !annotations.IsDirective(comment.Text) {
				continue
			}
			loc := b.location(comment.Pos())
			parsed, err := b.loader.directives.Parse(comment.Text, loc)
			if err != nil {
				b.loader.report(err, element, loc)
				continue
			}
			schema, err := b.loader.directives.Registry().GetSchema(parsed.Keyword)
			if err != nil {
				b.loader.report(err, element, loc)
				continue
			}

			identity := parsed.Identity()
			if parsed.Keyword == annotations.AnnotatedKeyword {
				resolved, ok := scope.resolve(parsed.Arg(0))
				if !ok {
					b.loader.report(errors.NewValidationError("annotation", "an imported package", parsed.Arg(0)).
						WithLocation(loc).
						WithSuggestion("import the package declaring the annotation type and use it in code, for example var _ alias.Type").
						WithSuggestion("or write the full import path, example.com/mod/pkg.Type"), element, loc)
					continue
				}
				identity = resolved
				b.loader.refs = append(b.loader.refs, annotationRef{identity: resolved, element: element, loc: loc})
			}
			if identity == "" {
				continue
			}
			out = append(out, directive{parsed: parsed, annotation: parsed.ToAnnotation(identity), schema: schema})
		}
	}
	return out
}

// attach keeps the directives allowed on kind and returns their annotations
func (b *packageBuilder) attach(ds []directive, kind models.ElementKind, element string) models.Annotations {
	var out models.Annotations
	for _, d := range ds {
		if !d.schema.AllowsTarget(kind) {
			b.loader.report(errors.NewValidationError("target", allowedTargets(d.schema), kind.String()).
				WithLocation(d.parsed.Location), element, d.parsed.Location)
			continue
		}
		out = append(out, d.annotation)
	}
	return out
}

func allowedTargets(schema annotations.AnnotationSchema) string {
	names := make([]string, len(schema.Targets))
	for i, target := range schema.Targets {
		names[i] = target.String()
	}
	return "//scopegen::" + schema.Keyword + " on " + strings.Join(names, " or ")
}

// hasKeyword reports whether any directive uses the keyword
func hasKeyword(ds []directive, keyword string) (directive, bool) {
	for _, d := range ds {
		if d.parsed.Keyword == keyword {
			return d, true
		}
	}
	return directive{}, false
}
