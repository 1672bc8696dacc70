package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/toyz/scopegen/internal/cli"
	"github.com/toyz/scopegen/internal/config"
	"github.com/toyz/scopegen/internal/utils"
)

var version = "dev"

// errReported marks failures whose details were already printed
var errReported = stderrors.New("reported")

// command is the root of the command line
type command struct {
	Verbose bool             `short:"v" help:"Enable verbose output and detailed error reporting."`
	Quiet   bool             `short:"q" help:"Only show errors and final results."`
	Config  string           `type:"path" placeholder:"FILE" help:"Path to a scopegen.yaml file (defaults to scopegen.yaml in the module directory)."`
	Version kong.VersionFlag `help:"Show version and exit."`

	Generate generateCmd `cmd:"" default:"withargs" help:"Resolve bindings and write generated files (default)."`
	Clean    cleanCmd    `cmd:"" help:"Delete generated files."`
	Inspect  inspectCmd  `cmd:"" help:"Resolve YAML manifests and print the artifact plans."`
}

// resolutionFlags override the options of the config file
type resolutionFlags struct {
	Exclude               []string `placeholder:"REGEX" help:"Skip types whose qualified name matches (repeatable)."`
	AdditionalScope       []string `name:"additional-scope" placeholder:"NAME" help:"Treat an annotation as scope-defining (repeatable)."`
	CrashNoFactory        bool     `name:"crash-no-factory" help:"Fail when a type referenced by an injection point has no factory."`
	CrashMethodVisibility bool     `name:"crash-method-visibility" help:"Fail on injected methods that are not package visible."`
	DebugOrigins          bool     `name:"debug-origins" help:"Write the originating element of every artifact as a comment."`
	Parallel              int      `placeholder:"N" help:"Number of resolution and write workers."`
}

func (f resolutionFlags) options() *config.Options {
	return &config.Options{
		Excludes:                                   f.Exclude,
		AdditionalScopeAnnotations:                 f.AdditionalScope,
		CrashWhenNoFactoryCanBeCreated:             f.CrashNoFactory,
		CrashWhenInjectedMethodIsNotPackageVisible: f.CrashMethodVisibility,
		DebugLogOriginatingElements:                f.DebugOrigins,
		Parallelism:                                f.Parallel,
	}
}

type generateCmd struct {
	Resolution resolutionFlags `embed:""`

	Dir      string   `short:"C" type:"existingdir" placeholder:"DIR" help:"Run as if started in DIR."`
	DryRun   bool     `name:"dry-run" help:"Resolve and render without writing files."`
	Tags     []string `sep:"," placeholder:"TAGS" help:"Build tags used while loading packages."`
	Patterns []string `arg:"" optional:"" default:"./..." help:"Package patterns to process."`
}

func (c *generateCmd) Run(ctx context.Context, root *command, env *environment) error {
	diagnostics := env.diagnostics(root)
	reporter := env.reporter(root)
	diagnostics.Header("resolving bindings")

	generator := cli.NewGenerator(reporter, diagnostics)
	err := generator.Run(ctx, cli.Config{
		Patterns:   c.Patterns,
		Dir:        c.Dir,
		ConfigFile: root.Config,
		Options:    c.Resolution.options(),
		DryRun:     c.DryRun,
		BuildTags:  c.Tags,
	})
	if err != nil {
		reporter.ReportError(err)
		return errReported
	}

	if !root.Quiet {
		reporter.ReportSuccess(generator.GetSummary())
	}
	return nil
}

type cleanCmd struct {
	Dir      string   `short:"C" type:"existingdir" placeholder:"DIR" help:"Run as if started in DIR."`
	DryRun   bool     `name:"dry-run" help:"List the files without removing them."`
	Patterns []string `arg:"" optional:"" default:"./..." help:"Directory patterns to clean."`
}

func (c *cleanCmd) Run(root *command, env *environment) error {
	diagnostics := env.diagnostics(root)
	reporter := env.reporter(root)
	diagnostics.Info("cleaning %s", strings.Join(c.Patterns, " "))

	removed, err := cli.NewCleaner(c.Dir, diagnostics).CleanGeneratedFiles(c.Patterns, c.DryRun)
	if err != nil {
		reporter.ReportError(err)
		return errReported
	}

	verb := "Removed"
	if c.DryRun {
		verb = "Would remove"
	}
	if !root.Quiet {
		for _, file := range removed {
			fmt.Fprintf(env.out, "%s %s\n", verb, file)
		}
		fmt.Fprintf(env.out, "%s %d generated files\n", verb, len(removed))
	}
	return nil
}

type inspectCmd struct {
	Resolution resolutionFlags `embed:""`

	Render    bool     `help:"Also print the generated source."`
	Manifests []string `arg:"" help:"YAML manifests describing the declarations."`
}

func (c *inspectCmd) Run(ctx context.Context, root *command, env *environment) error {
	reporter := env.reporter(root)
	inspector := cli.NewInspector(env.out, reporter, env.diagnostics(root))
	_, err := inspector.Inspect(ctx, cli.InspectConfig{
		Manifests:  c.Manifests,
		ConfigFile: root.Config,
		Options:    c.Resolution.options(),
		Render:     c.Render,
	})
	if err != nil {
		reporter.ReportError(err)
		return errReported
	}
	return nil
}

// environment carries the output streams into the commands
type environment struct {
	out    io.Writer
	errOut io.Writer
}

func (e *environment) redirected() bool {
	return e.out != io.Writer(os.Stdout) || e.errOut != io.Writer(os.Stderr)
}

func (e *environment) diagnostics(root *command) *utils.DiagnosticSystem {
	var diagnostics *utils.DiagnosticSystem
	switch {
	case root.Quiet:
		diagnostics = utils.NewQuietDiagnostics()
	case root.Verbose:
		diagnostics = utils.NewVerboseDiagnostics()
	default:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	if e.redirected() {
		diagnostics.SetOutput(e.out, e.errOut)
	}
	return diagnostics
}

func (e *environment) reporter(root *command) *cli.DiagnosticReporter {
	reporter := cli.NewDiagnosticReporter(root.Verbose)
	if e.redirected() {
		reporter.SetOutput(e.out, e.errOut)
	}
	return reporter
}

// run parses args and executes the selected command, returning the exit code
func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	exited := -1
	var root command
	parser, err := kong.New(&root,
		kong.Name("scopegen"),
		kong.Description("Resolves //scopegen:: directives and generates factories and member injectors."),
		kong.Writers(out, errOut),
		kong.Exit(func(code int) { exited = code }),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version},
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(&environment{out: out, errOut: errOut}),
	)
	if err != nil {
		fmt.Fprintf(errOut, "scopegen: %v\n", err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if exited >= 0 {
		return exited
	}
	if err != nil {
		fmt.Fprintf(errOut, "scopegen: %v\n", err)
		return 1
	}

	if err := kctx.Run(); err != nil {
		if !stderrors.Is(err, errReported) {
			fmt.Fprintf(errOut, "scopegen: %v\n", err)
		}
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
