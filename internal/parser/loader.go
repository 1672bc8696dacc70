// Package parser loads Go packages and exposes their scopegen directives
// as declarations for the resolver.
package parser

import (
	"context"
	"fmt"
	"go/ast"
	"go/importer"
	goparser "go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/scopegen/internal/annotations"
	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/models"
	"github.com/toyz/scopegen/internal/symbols"
)

// Package describes one loaded package
type Package struct {
	Path  string   // import path
	Name  string   // package clause name
	Dir   string   // directory holding the sources
	Files []string // absolute paths of the Go files
}

// Program is the result of loading a set of packages. The arena also holds
// the declarations of every main-module package the roots import, so scope
// annotations and ancestors declared there resolve; only Packages are
// generated into.
type Program struct {
	Arena    *symbols.Arena
	Module   string              // main module path, empty outside a module
	Packages map[string]*Package // roots, by import path
	Imported map[string]*Package // main-module dependencies of the roots
}

// SortedPackages returns the packages ordered by import path
func (p *Program) SortedPackages() []*Package {
	out := make([]*Package, 0, len(p.Packages))
	for _, pkg := range p.Packages {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Loader reads Go sources into a symbol arena. Directive problems are
// reported to the sink; only loading failures are returned as errors.
type Loader struct {
	dir        string
	env        []string
	buildFlags []string
	sink       errors.Sink
	directives *annotations.Parser
	describer  describer
	generated  string
	refs       []annotationRef
}

// annotationRef is a user annotation type named by an annotated directive
type annotationRef struct {
	identity string
	element  string
	loc      errors.SourceLocation
}

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes |
	packages.NeedTypesInfo | packages.NeedImports | packages.NeedDeps | packages.NeedModule

// Option configures a Loader
type Option func(*Loader)

// WithDir sets the directory patterns are resolved in
func WithDir(dir string) Option {
	return func(l *Loader) {
		l.dir = dir
	}
}

// WithEnv sets the environment of the go command
func WithEnv(env []string) Option {
	return func(l *Loader) {
		l.env = env
	}
}

// WithBuildFlags passes flags such as -tags to the go command
func WithBuildFlags(flags ...string) Option {
	return func(l *Loader) {
		l.buildFlags = flags
	}
}

// WithScopePackage sets the import path that declares Lazy and Provider
func WithScopePackage(path string) Option {
	return func(l *Loader) {
		l.describer.scopePackage = path
	}
}

// WithGeneratedFile loads files with the given base name as empty files,
// so output of an earlier run never takes part in type checking
func WithGeneratedFile(name string) Option {
	return func(l *Loader) {
		l.generated = name
	}
}

// NewLoader creates a loader reporting directive problems to sink
func NewLoader(sink errors.Sink, opts ...Option) *Loader {
	l := &Loader{
		sink:       sink,
		directives: annotations.NewParser(nil),
		describer:  describer{scopePackage: models.ScopePackage},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads the packages matching the patterns and builds their declarations
func (l *Loader) Load(ctx context.Context, patterns ...string) (*Program, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	env := l.env
	if env == nil {
		env = os.Environ()
	}

	fset := token.NewFileSet()
	cfg := &packages.Config{
		Context:    ctx,
		Mode:       loadMode,
		Dir:        l.dir,
		Env:        env,
		BuildFlags: l.buildFlags,
		Fset:       fset,
	}
	overlay, err := l.overlay(*cfg, patterns)
	if err != nil {
		return nil, errors.WrapLoadError(patterns, err)
	}
	cfg.Overlay = overlay

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.WrapLoadError(patterns, err)
	}

	roots := make(map[string]bool, len(pkgs))
	for _, pkg := range pkgs {
		roots[pkg.PkgPath] = true
	}

	var problems []string
	var imported []*packages.Package
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			problems = append(problems, e.Error())
		}
		if !roots[pkg.PkgPath] && inMainModule(pkg) && len(pkg.GoFiles) > 0 {
			imported = append(imported, pkg)
		}
	})
	if len(problems) > 0 {
		return nil, errors.WrapLoadError(patterns, fmt.Errorf("%s", strings.Join(problems, "\n")))
	}

	program := &Program{
		Arena:    symbols.NewArena(),
		Module:   mainModule(pkgs),
		Packages: make(map[string]*Package),
		Imported: make(map[string]*Package),
	}
	l.refs = nil
	for _, pkg := range pkgs {
		if len(pkg.GoFiles) == 0 {
			continue
		}
		if err := l.add(program, l.builder(pkg, fset), pkg.GoFiles, program.Packages); err != nil {
			return nil, err
		}
	}
	for _, pkg := range imported {
		if err := l.add(program, l.builder(pkg, fset), pkg.GoFiles, program.Imported); err != nil {
			return nil, err
		}
	}
	if err := l.loadReferenced(cfg, program); err != nil {
		return nil, err
	}
	program.Arena.Seal()
	l.checkRefs(program)
	return program, nil
}

// loadReferenced adds main-module packages that directives name by full
// import path without the code importing them. Packages that fail to load
// are left out; checkRefs reports the references.
func (l *Loader) loadReferenced(cfg *packages.Config, program *Program) error {
	tried := make(map[string]bool)
	for {
		var missing []string
		for _, ref := range l.refs {
			path, ok := program.modulePath(ref.identity)
			if !ok || tried[path] || program.Packages[path] != nil || program.Imported[path] != nil {
				continue
			}
			tried[path] = true
			missing = append(missing, path)
		}
		if len(missing) == 0 {
			return nil
		}

		extra, err := l.overlay(*cfg, missing)
		if err != nil {
			return errors.WrapLoadError(missing, err)
		}
		for file, content := range extra {
			if cfg.Overlay == nil {
				cfg.Overlay = make(map[string][]byte)
			}
			cfg.Overlay[file] = content
		}

		pkgs, err := packages.Load(cfg, missing...)
		if err != nil {
			return errors.WrapLoadError(missing, err)
		}
		var failed bool
		var found []*packages.Package
		packages.Visit(pkgs, nil, func(pkg *packages.Package) {
			if len(pkg.Errors) > 0 {
				failed = true
			}
			if inMainModule(pkg) && len(pkg.GoFiles) > 0 &&
				program.Packages[pkg.PkgPath] == nil && program.Imported[pkg.PkgPath] == nil {
				found = append(found, pkg)
			}
		})
		if failed {
			found = nil
		}
		for _, pkg := range found {
			if program.Imported[pkg.PkgPath] != nil {
				continue
			}
			if err := l.add(program, l.builder(pkg, cfg.Fset), pkg.GoFiles, program.Imported); err != nil {
				return err
			}
		}
	}
}

// modulePath returns the package path of identity when it lies in the main module
func (p *Program) modulePath(identity string) (string, bool) {
	dot := strings.LastIndex(identity, ".")
	if p.Module == "" || dot < 0 {
		return "", false
	}
	path := identity[:dot]
	if path != p.Module && !strings.HasPrefix(path, p.Module+"/") {
		return "", false
	}
	return path, true
}

func (l *Loader) builder(pkg *packages.Package, fset *token.FileSet) *packageBuilder {
	return &packageBuilder{
		loader: l,
		path:   pkg.PkgPath,
		name:   pkg.Name,
		fset:   fset,
		files:  pkg.Syntax,
		info:   pkg.TypesInfo,
		pkg:    pkg.Types,
	}
}

// checkRefs reports annotated directives naming a main-module type that
// does not exist. Such a reference would silently lose its scope or
// qualifier meaning.
func (l *Loader) checkRefs(program *Program) {
	for _, ref := range l.refs {
		if _, ok := program.modulePath(ref.identity); !ok {
			continue
		}
		if _, ok := program.Arena.Lookup(ref.identity); ok {
			continue
		}
		l.report(errors.NewValidationError("annotation", "a type declared in module "+program.Module, ref.identity).
			WithLocation(ref.loc).
			WithSuggestion("declare the type with //scopegen::scope or //scopegen::qualifier"), ref.element, ref.loc)
	}
}

func inMainModule(pkg *packages.Package) bool {
	return pkg.Module != nil && pkg.Module.Main
}

// mainModule returns the module path of the first root inside the main module
func mainModule(pkgs []*packages.Package) string {
	for _, pkg := range pkgs {
		if inMainModule(pkg) {
			return pkg.Module.Path
		}
	}
	return ""
}

// overlay replaces generated files of the roots and of their main-module
// dependencies with bare package clauses
func (l *Loader) overlay(cfg packages.Config, patterns []string) (map[string][]byte, error) {
	if l.generated == "" {
		return nil, nil
	}
	cfg.Mode = packages.NeedName | packages.NeedFiles | packages.NeedImports | packages.NeedDeps | packages.NeedModule
	cfg.Fset = nil
	pkgs, err := packages.Load(&cfg, patterns...)
	if err != nil {
		return nil, err
	}

	roots := make(map[string]bool, len(pkgs))
	for _, pkg := range pkgs {
		roots[pkg.PkgPath] = true
	}
	overlay := make(map[string][]byte)
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		if !roots[pkg.PkgPath] && !inMainModule(pkg) {
			return
		}
		for _, file := range pkg.GoFiles {
			if filepath.Base(file) == l.generated {
				overlay[file] = []byte("package " + pkg.Name + "\n")
			}
		}
	})
	return overlay, nil
}

// ParseSource type-checks one in-memory file as the package at pkgPath.
// Only standard library imports are resolved.
func (l *Loader) ParseSource(pkgPath, filename, source string) (*Program, error) {
	l.refs = nil
	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, filename, source, goparser.ParseComments)
	if err != nil {
		return nil, errors.WrapWithOperation("parse", filename, err)
	}

	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	pkg, err := conf.Check(pkgPath, fset, []*ast.File{file}, info)
	if err != nil {
		return nil, errors.WrapWithOperation("type-check", filename, err)
	}

	program := &Program{Arena: symbols.NewArena(), Packages: make(map[string]*Package), Imported: make(map[string]*Package)}
	if err := l.add(program, &packageBuilder{
		loader: l,
		path:   pkgPath,
		name:   file.Name.Name,
		fset:   fset,
		files:  []*ast.File{file},
		info:   info,
		pkg:    pkg,
	}, []string{filename}, program.Packages); err != nil {
		return nil, err
	}
	program.Arena.Seal()
	return program, nil
}

func (l *Loader) add(program *Program, b *packageBuilder, files []string, into map[string]*Package) error {
	for _, t := range b.build() {
		if err := program.Arena.Add(t); err != nil {
			return errors.Wrap(errors.LoadErrorCode, "failed to record declarations", err)
		}
	}
	dir := ""
	if len(files) > 0 {
		dir = filepath.Dir(files[0])
	}
	into[b.path] = &Package{Path: b.path, Name: b.name, Dir: dir, Files: files}
	return nil
}

// report turns a directive error into a diagnostic attached to element
func (l *Loader) report(err error, element string, loc errors.SourceLocation) {
	if l.sink == nil {
		return
	}
	d := &errors.Diagnostic{
		Code:     errors.ValidationErrorCode,
		Severity: errors.SeverityError,
		Message:  strings.TrimPrefix(err.Error(), loc.String()+": "),
		Element:  element,
		Loc:      loc,
	}
	if typed, ok := err.(errors.ScopegenError); ok {
		d.Code = typed.ErrorCode()
		d.Hints = typed.Suggestions()
	}
	l.sink.Report(d)
}
