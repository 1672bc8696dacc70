// Package generator renders artifact plans into Go source: one file per
// package holding the factories and member injectors of its types.
package generator

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/models"
)

const (
	// FileName is the name of the generated file in every package
	FileName = "scopegen_gen.go"

	// Header is the first line of every generated file
	Header = "// Code generated by scopegen. DO NOT EDIT."
)

// Generator turns plans into generated files
type Generator struct {
	scopePackage string
	origins      bool
}

// Option configures a Generator
type Option func(*Generator)

// WithScopePackage sets the import path of the runtime scope package
func WithScopePackage(path string) Option {
	return func(g *Generator) {
		g.scopePackage = path
	}
}

// WithOriginComments writes the originating element of every artifact as a comment
func WithOriginComments(enabled bool) Option {
	return func(g *Generator) {
		g.origins = enabled
	}
}

// NewGenerator creates a code generator
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{scopePackage: models.ScopePackage}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate renders one file per package. dirOf maps an import path to the
// directory the file is written to; packages it does not know are skipped.
func (g *Generator) Generate(plans []*models.GeneratedArtifactPlan, dirOf func(pkgPath string) (string, bool)) ([]*models.GeneratedFile, error) {
	byPackage := make(map[string][]*models.GeneratedArtifactPlan)
	for _, plan := range plans {
		if plan == nil {
			continue
		}
		byPackage[plan.Package] = append(byPackage[plan.Package], plan)
	}

	paths := make([]string, 0, len(byPackage))
	for path := range byPackage {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var files []*models.GeneratedFile
	for _, path := range paths {
		dir, ok := dirOf(path)
		if !ok {
			continue
		}
		group := byPackage[path]
		file, err := g.GenerateFile(path, group[0].PackageName, dir, group)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

// GenerateFile renders the plans of a single package
func (g *Generator) GenerateFile(pkgPath, pkgName, dir string, plans []*models.GeneratedArtifactPlan) (*models.GeneratedFile, error) {
	sorted := make([]*models.GeneratedArtifactPlan, len(plans))
	copy(sorted, plans)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Identity() < sorted[j].Identity() })

	im := NewImportManager(pkgPath, pkgName)
	scopeAlias := im.AddImport(g.scopePackage)

	data := fileData{Package: pkgName, Scope: scopeAlias}
	var owners []string
	for _, plan := range sorted {
		if plan.Package != pkgPath {
			return nil, errors.WrapGenerateError(pkgPath,
				fmt.Errorf("plan for %s belongs to package %s", plan.Identity(), plan.Package))
		}
		data.Artifacts = append(data.Artifacts, g.artifact(im, scopeAlias, plan))
		owners = append(owners, plan.Identity())
	}
	data.Imports = im.GenerateImports()

	var buf bytes.Buffer
	if err := fileTmpl.Execute(&buf, data); err != nil {
		return nil, errors.WrapGenerateError(pkgPath, err)
	}
	content, err := formatSource(buf.Bytes())
	if err != nil {
		return nil, errors.WrapGenerateError(pkgPath, err)
	}

	return &models.GeneratedFile{
		PackageName: pkgName,
		PackagePath: pkgPath,
		FilePath:    filepath.Join(dir, FileName),
		Content:     content,
		Owners:      owners,
	}, nil
}

type fileData struct {
	Package   string
	Imports   string
	Scope     string
	Artifacts []artifactData
}

type artifactData struct {
	Type        string
	Description string
	Origin      []string
	Factory     *factoryData
	Injector    *injectorData
}

type factoryData struct {
	Name        string
	Scope       string
	Produced    string
	Lookups     []lookupData
	Construct   string
	Throws      bool
	Populate    *delegateData
	TargetScope string
	Flags       []flagData
}

type injectorData struct {
	Name     string
	Scope    string
	Ancestor *delegateData
	Fields   []fieldData
	Methods  []methodData
}

type lookupData struct {
	Var   string
	Expr  string
	Fails bool
	Fail  string
}

type delegateData struct {
	Injector string
	Arg      string
	Guard    string
	Fail     string
}

type fieldData struct {
	Name   string
	Lookup lookupData
}

type methodData struct {
	Name    string
	Lookups []lookupData
	Args    string
	Throws  bool
}

type flagData struct {
	Name  string
	Value bool
}

func (g *Generator) artifact(im *ImportManager, scopeAlias string, plan *models.GeneratedArtifactPlan) artifactData {
	a := artifactData{Type: plan.TypeName, Description: plan.Description}
	if g.origins {
		a.Origin = originLines(plan.Origin)
	}
	if plan.Factory != nil {
		a.Factory = g.factory(im, scopeAlias, plan)
	}
	if plan.MemberInjector != nil {
		a.Injector = g.injector(im, scopeAlias, plan)
	}
	return a
}

func originLines(origin models.Origin) []string {
	lines := []string{fmt.Sprintf("originating element: %s", origin.Element)}
	if !origin.Location.IsEmpty() {
		lines[0] += fmt.Sprintf(" (%s)", filepath.Base(origin.Location.String()))
	}
	if len(origin.Triggers) > 0 {
		lines = append(lines, "triggered by: "+strings.Join(origin.Triggers, ", "))
	}
	return lines
}

func (g *Generator) factory(im *ImportManager, scopeAlias string, plan *models.GeneratedArtifactPlan) *factoryData {
	fp := plan.Factory
	construction := fp.Construction

	f := &factoryData{
		Name:        plan.TypeName + "__Factory",
		Scope:       scopeAlias,
		Produced:    plan.TypeName,
		Throws:      construction.ThrowsChecked,
		TargetScope: targetScope(fp.Target),
		Flags: []flagData{
			{Name: "HasScopeAnnotation", Value: fp.HasScopeAnnotation},
			{Name: "HasSingletonAnnotation", Value: fp.HasSingletonAnnotation},
			{Name: "HasReleasableAnnotation", Value: fp.HasReleasableAnnotation},
			{Name: "HasProvidesSingletonAnnotation", Value: fp.HasProvidesSingletonAnnotation},
			{Name: "HasProvidesReleasableAnnotation", Value: fp.HasProvidesReleasableAnnotation},
		},
	}
	pointer := construction.Implicit || construction.ReturnsPointer
	if pointer {
		f.Produced = "*" + plan.TypeName
	}

	var args []string
	for i, p := range construction.Parameters {
		lookup := g.lookup(im, scopeAlias, "p"+strconv.Itoa(i), p, "zero, err")
		f.Lookups = append(f.Lookups, lookup)
		args = append(args, lookup.Var)
	}
	if construction.Implicit {
		f.Construct = "&" + plan.TypeName + "{}"
	} else {
		f.Construct = construction.Constructor + "(" + strings.Join(args, ", ") + ")"
	}

	if fp.MemberInjector != nil {
		base := "instance"
		if !pointer {
			base = "&instance"
		}
		f.Populate = delegate(im, fp.MemberInjector, "instance", base, "zero, err")
	}
	return f
}

func (g *Generator) injector(im *ImportManager, scopeAlias string, plan *models.GeneratedArtifactPlan) *injectorData {
	mp := plan.MemberInjector
	inj := &injectorData{
		Name:  plan.TypeName + "__MemberInjector",
		Scope: scopeAlias,
	}
	if mp.Ancestor != nil {
		inj.Ancestor = delegate(im, mp.Ancestor, "target", "target", "err")
	}
	for i, field := range mp.Fields {
		inj.Fields = append(inj.Fields, fieldData{
			Name:   field.Name,
			Lookup: g.lookup(im, scopeAlias, "f"+strconv.Itoa(i), field.Requirement, "err"),
		})
	}
	for i, method := range mp.Methods {
		m := methodData{Name: method.Name, Throws: method.ThrowsChecked}
		var args []string
		for j, p := range method.Parameters {
			lookup := g.lookup(im, scopeAlias, fmt.Sprintf("m%dp%d", i, j), p, "err")
			m.Lookups = append(m.Lookups, lookup)
			args = append(args, lookup.Var)
		}
		m.Args = strings.Join(args, ", ")
		inj.Methods = append(inj.Methods, m)
	}
	return inj
}

// lookup renders the scope call that obtains one dependency
func (g *Generator) lookup(im *ImportManager, scopeAlias, name string, dep models.DependencyRequirement, fail string) lookupData {
	qualifier := strconv.Quote(dep.QualifierValue())
	switch dep.Retrieval {
	case models.RetrievalDeferred:
		return lookupData{
			Var:  name,
			Expr: fmt.Sprintf("%s.LazyOf[%s](s, %s)", scopeAlias, im.TypeExpr(dep.Declared.Args[0]), qualifier),
		}
	case models.RetrievalFactory:
		return lookupData{
			Var:  name,
			Expr: fmt.Sprintf("%s.ProviderOf[%s](s, %s)", scopeAlias, im.TypeExpr(dep.Declared.Args[0]), qualifier),
		}
	default:
		return lookupData{
			Var:   name,
			Expr:  fmt.Sprintf("%s.Instance[%s](s, %s)", scopeAlias, im.TypeExpr(dep.Declared), qualifier),
			Fails: true,
			Fail:  fail,
		}
	}
}

// delegate renders the call of another member injector on the value reached
// from root through the embedding path
func delegate(im *ImportManager, ref *models.InjectorRef, root, self, fail string) *delegateData {
	d := &delegateData{
		Injector: im.Qualify(ref.Package, ref.Type.Simple()+"__MemberInjector"),
		Arg:      self,
		Fail:     fail,
	}
	if len(ref.Path) == 0 {
		return d
	}

	var guards []string
	expr := root
	for i, step := range ref.Path {
		expr += "." + step.Field
		if step.Pointer && i < len(ref.Path)-1 {
			guards = append(guards, expr+" != nil")
		}
	}
	last := ref.Path[len(ref.Path)-1]
	if last.Pointer {
		guards = append(guards, expr+" != nil")
		d.Arg = expr
	} else {
		d.Arg = "&" + expr
	}
	d.Guard = strings.Join(guards, " && ")
	return d
}

func targetScope(target models.ScopeTarget) string {
	switch target.Kind {
	case models.TargetRootScope:
		return "return s.RootScope(), nil"
	case models.TargetAncestorScope:
		return "return s.GetParentScope(" + strconv.Quote(target.Identity) + ")"
	default:
		return "return s, nil"
	}
}
