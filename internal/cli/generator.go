package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/toyz/scopegen/internal/config"
	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/generator"
	"github.com/toyz/scopegen/internal/models"
	"github.com/toyz/scopegen/internal/parser"
	"github.com/toyz/scopegen/internal/resolver"
	"github.com/toyz/scopegen/internal/utils"
)

// Generator coordinates the CLI generation process
type Generator struct {
	moduleResolver *ModuleResolver
	reporter       *DiagnosticReporter
	diagnostics    *utils.DiagnosticSystem
	summary        GenerationSummary
}

// NewGenerator creates a CLI generator
func NewGenerator(reporter *DiagnosticReporter, diagnostics *utils.DiagnosticSystem) *Generator {
	if reporter == nil {
		reporter = NewDiagnosticReporter(false)
	}
	if diagnostics == nil {
		diagnostics = utils.NewQuietDiagnostics()
	}
	return &Generator{
		moduleResolver: NewModuleResolver(),
		reporter:       reporter,
		diagnostics:    diagnostics,
	}
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// Run executes the complete generation process: load, resolve, report,
// render and write. Any hard resolution error stops the run before files
// are written; warnings never do.
func (g *Generator) Run(ctx context.Context, cfg Config) error {
	startTime := time.Now()
	g.summary = GenerationSummary{RunID: uuid.NewString(), DryRun: cfg.DryRun}
	defer func() { g.summary.Duration = time.Since(startTime) }()

	g.diagnostics.Verbose("Starting code generation at %s", startTime.Format("15:04:05"))

	opts, err := cfg.options()
	if err != nil {
		return err
	}

	g.diagnostics.PhaseHeader("Resolving module")
	module, err := g.moduleResolver.Resolve(cfg.Dir)
	if err != nil {
		return err
	}
	g.summary.Module = module.Path
	g.diagnostics.PhaseItem("module " + module.Path)
	g.diagnostics.Verbose("module root %s (go %s)", module.Root, module.GoVersion)

	g.diagnostics.PhaseHeader("Loading packages")
	collector := errors.NewCollector()
	loaderOpts := []parser.Option{
		parser.WithDir(cfg.Dir),
		parser.WithGeneratedFile(generator.FileName),
	}
	if cfg.Env != nil {
		loaderOpts = append(loaderOpts, parser.WithEnv(cfg.Env))
	}
	if len(cfg.BuildTags) > 0 {
		loaderOpts = append(loaderOpts, parser.WithBuildFlags("-tags="+strings.Join(cfg.BuildTags, ",")))
	}
	program, err := parser.NewLoader(collector, loaderOpts...).Load(ctx, cfg.patterns()...)
	if err != nil {
		return err
	}
	g.summary.PackagesLoaded = len(program.Packages)
	g.diagnostics.PhaseItem("loaded packages")
	g.diagnostics.Indent()
	for _, pkg := range program.SortedPackages() {
		g.diagnostics.List("%s", pkg.Path)
	}
	g.diagnostics.Unindent()
	g.diagnostics.Verbose("%d module packages loaded for declarations only", len(program.Imported))

	g.diagnostics.PhaseHeader("Resolving bindings")
	plans, err := g.resolve(ctx, program, opts, collector)
	if err != nil {
		return err
	}

	g.reporter.Report(collector.Sorted())
	g.summary.Warnings = collector.WarningCount()
	if collector.HasErrors() {
		return collector.Err()
	}
	g.diagnostics.Summary("Bindings resolved", map[string]interface{}{
		"Types":            g.summary.TypesResolved,
		"Factories":        g.summary.Factories,
		"Member injectors": g.summary.MemberInjectors,
		"Warnings":         g.summary.Warnings,
	})

	g.diagnostics.PhaseHeader("Generating code")
	codeGenerator := generator.NewGenerator(generator.WithOriginComments(opts.DebugLogOriginatingElements))
	files, err := codeGenerator.Generate(plans, g.packageDirs(program, module))
	if err != nil {
		return err
	}

	if !cfg.DryRun {
		if err := g.write(ctx, files, opts.Workers()); err != nil {
			return err
		}
		if err := g.removeStale(program, module, files); err != nil {
			return err
		}
	}
	for _, file := range files {
		g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, file.FilePath)
	}

	g.diagnostics.GenerationComplete()
	return nil
}

// resolve runs one resolution session over the loaded program
func (g *Generator) resolve(ctx context.Context, program *parser.Program, opts *config.Options, collector *errors.Collector) ([]*models.GeneratedArtifactPlan, error) {
	roots := make([]string, 0, len(program.Packages))
	for path := range program.Packages {
		roots = append(roots, path)
	}
	session, err := resolver.NewSession(program.Arena, opts, collector,
		resolver.WithLogger(g.diagnostics),
		resolver.WithPackages(roots...))
	if err != nil {
		return nil, err
	}
	g.diagnostics.Debug("resolution session %s", session.ID)

	plans, err := session.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	g.summary.TypesResolved = len(plans)
	for _, plan := range plans {
		if plan.Factory != nil {
			g.summary.Factories++
		}
		if plan.MemberInjector != nil {
			g.summary.MemberInjectors++
		}
		g.diagnostics.PhaseProgress(plan.Description)
	}
	return plans, nil
}

// packageDirs maps loaded packages of the main module to their directories
func (g *Generator) packageDirs(program *parser.Program, module *ModuleInfo) func(string) (string, bool) {
	return func(pkgPath string) (string, bool) {
		pkg, ok := program.Packages[pkgPath]
		if !ok || pkg.Dir == "" {
			return "", false
		}
		if _, err := g.moduleResolver.BuildPackagePath(module, pkg.Dir); err != nil {
			g.diagnostics.Warn("skipping %s: %v", pkgPath, err)
			return "", false
		}
		return pkg.Dir, true
	}
}

// write stores the generated files concurrently
func (g *Generator) write(ctx context.Context, files []*models.GeneratedFile, workers int) error {
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for _, file := range files {
		file := file
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			g.diagnostics.PhaseProgress("Writing " + filepath.Base(filepath.Dir(file.FilePath)) + "/" + generator.FileName)
			if err := os.WriteFile(file.FilePath, []byte(file.Content), 0644); err != nil {
				return errors.WrapFileSystemError("write", file.FilePath, err)
			}
			return nil
		})
	}
	return group.Wait()
}

// removeStale deletes generated files of loaded packages that no longer produce any artifact
func (g *Generator) removeStale(program *parser.Program, module *ModuleInfo, files []*models.GeneratedFile) error {
	written := make(map[string]bool, len(files))
	for _, file := range files {
		written[file.PackagePath] = true
	}
	for _, pkg := range program.SortedPackages() {
		if written[pkg.Path] || pkg.Dir == "" {
			continue
		}
		if _, err := g.moduleResolver.BuildPackagePath(module, pkg.Dir); err != nil {
			continue
		}
		file := filepath.Join(pkg.Dir, generator.FileName)
		ok, err := isGenerated(file)
		if err != nil {
			return errors.WrapFileSystemError("read", file, err)
		}
		if !ok {
			continue
		}
		if err := os.Remove(file); err != nil {
			return errors.WrapFileSystemError("remove", file, err)
		}
		g.diagnostics.Verbose("removed stale %s", file)
	}
	return nil
}
