package generator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/toyz/scopegen/internal/models"
)

// identifiers the generated code declares locally; aliases must not shadow them
var reservedNames = map[string]bool{
	"s": true, "f": true, "err": true, "zero": true, "target": true, "instance": true,
}

// ImportManager hands out import aliases for one generated file
type ImportManager struct {
	local   string            // import path of the file's own package
	aliases map[string]string // path -> alias
	taken   map[string]bool
}

// NewImportManager creates an import manager for a file of package localName at localPath
func NewImportManager(localPath, localName string) *ImportManager {
	im := &ImportManager{
		local:   localPath,
		aliases: make(map[string]string),
		taken:   make(map[string]bool),
	}
	im.taken[localName] = true
	for name := range reservedNames {
		im.taken[name] = true
	}
	return im
}

// AddImport registers path and returns its alias. The local package has no alias.
func (im *ImportManager) AddImport(path string) string {
	if path == "" || path == im.local {
		return ""
	}
	if alias, ok := im.aliases[path]; ok {
		return alias
	}

	base := aliasFor(path)
	alias := base
	for i := 2; im.taken[alias]; i++ {
		alias = fmt.Sprintf("%s%d", base, i)
	}
	im.taken[alias] = true
	im.aliases[path] = alias
	return alias
}

// Qualify returns the Go spelling of name declared in path
func (im *ImportManager) Qualify(path, name string) string {
	if alias := im.AddImport(path); alias != "" {
		return alias + "." + name
	}
	return name
}

// Imports returns the registered imports sorted by path
func (im *ImportManager) Imports() []ImportSpec {
	specs := make([]ImportSpec, 0, len(im.aliases))
	for path, alias := range im.aliases {
		specs = append(specs, ImportSpec{Alias: alias, Path: path})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Path < specs[j].Path })
	return specs
}

// GenerateImports renders the import section
func (im *ImportManager) GenerateImports() string {
	specs := im.Imports()
	if len(specs) == 0 {
		return ""
	}

	var result strings.Builder
	result.WriteString("import (\n")
	for _, spec := range specs {
		result.WriteString(fmt.Sprintf("\t%s %q\n", spec.Alias, spec.Path))
	}
	result.WriteString(")\n")
	return result.String()
}

// ImportSpec is one aliased import
type ImportSpec struct {
	Alias string
	Path  string
}

var (
	majorVersion = regexp.MustCompile(`^v[0-9]+$`)
	dotVersion   = regexp.MustCompile(`\.v[0-9]+$`)
)

// aliasFor derives an identifier from the last meaningful path element
func aliasFor(path string) string {
	parts := strings.Split(path, "/")
	last := parts[len(parts)-1]
	if majorVersion.MatchString(last) && len(parts) > 1 {
		last = parts[len(parts)-2]
	}
	last = dotVersion.ReplaceAllString(strings.TrimPrefix(last, "go-"), "")

	var b strings.Builder
	for _, r := range last {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if b.Len() == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "pkg"
	}
	return strings.ToLower(b.String())
}

// qualifiedName matches a fully qualified identifier inside a composite type string
var qualifiedName = regexp.MustCompile(`([A-Za-z0-9_\-.~]+(?:/[A-Za-z0-9_\-.~]+)*)\.([A-Za-z_][A-Za-z0-9_]*)`)

// TypeExpr renders a descriptor as Go source, importing what it references
func (im *ImportManager) TypeExpr(t models.TypeDescriptor) string {
	var b strings.Builder
	if t.Pointer {
		b.WriteString("*")
	}

	switch t.Kind {
	case models.KindComposite:
		b.WriteString(qualifiedName.ReplaceAllStringFunc(t.Name, func(m string) string {
			parts := qualifiedName.FindStringSubmatch(m)
			return im.Qualify(parts[1], parts[2])
		}))
	case models.KindWildcard, models.KindAny:
		b.WriteString("any")
	case models.KindNamed, models.KindInterface:
		if pkg := t.Package(); pkg != "" {
			b.WriteString(im.Qualify(pkg, t.Simple()))
		} else {
			b.WriteString(t.Name)
		}
	default:
		b.WriteString(t.Name)
	}

	if len(t.Args) > 0 {
		b.WriteString("[")
		for i, arg := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(im.TypeExpr(arg))
		}
		b.WriteString("]")
	}
	return b.String()
}
