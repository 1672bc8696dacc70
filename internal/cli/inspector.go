package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/scopegen/internal/config"
	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/generator"
	"github.com/toyz/scopegen/internal/models"
	"github.com/toyz/scopegen/internal/resolver"
	"github.com/toyz/scopegen/internal/symbols"
	"github.com/toyz/scopegen/internal/utils"
)

// InspectConfig holds the configuration of an inspect run
type InspectConfig struct {
	Manifests  []string        // YAML manifests describing the declarations
	ConfigFile string          // optional scopegen.yaml
	Options    *config.Options // command line options merged over the file
	Render     bool            // also print the generated source
}

// Inspector resolves manifests and prints the resulting plans
type Inspector struct {
	out         io.Writer
	reporter    *DiagnosticReporter
	diagnostics *utils.DiagnosticSystem
}

// NewInspector creates an inspector printing plans to out
func NewInspector(out io.Writer, reporter *DiagnosticReporter, diagnostics *utils.DiagnosticSystem) *Inspector {
	if reporter == nil {
		reporter = NewDiagnosticReporter(false)
	}
	if diagnostics == nil {
		diagnostics = utils.NewQuietDiagnostics()
	}
	return &Inspector{out: out, reporter: reporter, diagnostics: diagnostics}
}

// Inspect resolves the manifests. Plans are printed even when warnings were
// reported; a hard error is returned after the diagnostics are printed.
func (i *Inspector) Inspect(ctx context.Context, cfg InspectConfig) ([]*models.GeneratedArtifactPlan, error) {
	if len(cfg.Manifests) == 0 {
		return nil, errors.New(errors.ConfigurationErrorCode, "no manifest given").
			WithSuggestion("Pass one or more YAML manifests, e.g. 'scopegen inspect app.yaml'")
	}

	opts, err := Config{ConfigFile: cfg.ConfigFile, Options: cfg.Options}.options()
	if err != nil {
		return nil, err
	}

	arena, err := symbols.LoadManifest(cfg.Manifests...)
	if err != nil {
		return nil, err
	}
	i.diagnostics.Verbose("loaded %d types from %s", arena.Len(), strings.Join(cfg.Manifests, ", "))

	collector := errors.NewCollector()
	session, err := resolver.NewSession(arena, opts, collector, resolver.WithLogger(i.diagnostics))
	if err != nil {
		return nil, err
	}
	plans, err := session.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	i.reporter.Report(collector.Sorted())
	if collector.HasErrors() {
		return plans, collector.Err()
	}

	views := make([]planView, 0, len(plans))
	for _, plan := range plans {
		views = append(views, viewOf(plan))
	}
	enc := yaml.NewEncoder(i.out)
	enc.SetIndent(2)
	if err := enc.Encode(views); err != nil {
		return plans, errors.WrapWithOperation("encode", "plans", err)
	}
	if err := enc.Close(); err != nil {
		return plans, errors.WrapWithOperation("encode", "plans", err)
	}

	if cfg.Render {
		if err := i.render(plans, opts); err != nil {
			return plans, err
		}
	}
	return plans, nil
}

// render prints the generated source of every package
func (i *Inspector) render(plans []*models.GeneratedArtifactPlan, opts *config.Options) error {
	g := generator.NewGenerator(generator.WithOriginComments(opts.DebugLogOriginatingElements))
	files, err := g.Generate(plans, func(pkgPath string) (string, bool) { return pkgPath, true })
	if err != nil {
		return err
	}
	for _, file := range files {
		fmt.Fprintf(i.out, "---\n# %s\n%s", file.FilePath, file.Content)
	}
	return nil
}

type planView struct {
	Type           string        `yaml:"type"`
	Description    string        `yaml:"description"`
	Scope          string        `yaml:"scope,omitempty"`
	Factory        *factoryView  `yaml:"factory,omitempty"`
	MemberInjector *injectorView `yaml:"memberInjector,omitempty"`
}

type factoryView struct {
	Constructor string   `yaml:"constructor"`
	Throws      bool     `yaml:"throws,omitempty"`
	Parameters  []string `yaml:"parameters,omitempty"`
	Target      string   `yaml:"target"`
	Flags       []string `yaml:"flags,omitempty"`
	Injector    string   `yaml:"injector,omitempty"`
}

type injectorView struct {
	Ancestor string   `yaml:"ancestor,omitempty"`
	Fields   []string `yaml:"fields,omitempty"`
	Methods  []string `yaml:"methods,omitempty"`
}

func viewOf(plan *models.GeneratedArtifactPlan) planView {
	v := planView{
		Type:        plan.Identity(),
		Description: plan.Description,
		Scope:       plan.Scope.ScopeAnnotation,
	}

	if f := plan.Factory; f != nil {
		fv := &factoryView{
			Constructor: f.Construction.Constructor,
			Throws:      f.Construction.ThrowsChecked,
			Target:      f.Target.String(),
		}
		if f.Construction.Implicit {
			fv.Constructor = "implicit"
		}
		for _, p := range f.Construction.Parameters {
			fv.Parameters = append(fv.Parameters, dependencyString(p))
		}
		for _, flag := range []struct {
			name string
			set  bool
		}{
			{"provides-releasable", f.HasProvidesReleasableAnnotation},
			{"provides-singleton", f.HasProvidesSingletonAnnotation},
			{"releasable", f.HasReleasableAnnotation},
			{"scope", f.HasScopeAnnotation},
			{"singleton", f.HasSingletonAnnotation},
		} {
			if flag.set {
				fv.Flags = append(fv.Flags, flag.name)
			}
		}
		if f.MemberInjector != nil {
			fv.Injector = injectorString(f.MemberInjector)
		}
		v.Factory = fv
	}

	if m := plan.MemberInjector; m != nil {
		iv := &injectorView{}
		if m.Ancestor != nil {
			iv.Ancestor = injectorString(m.Ancestor)
		}
		for _, field := range m.Fields {
			iv.Fields = append(iv.Fields, dependencyString(field.Requirement))
		}
		for _, method := range m.Methods {
			params := make([]string, 0, len(method.Parameters))
			for _, p := range method.Parameters {
				params = append(params, dependencyString(p))
			}
			iv.Methods = append(iv.Methods, fmt.Sprintf("%s(%s)", method.Name, strings.Join(params, ", ")))
		}
		v.MemberInjector = iv
	}
	return v
}

// dependencyString renders "name: retrieval type [qualifier]"
func dependencyString(d models.DependencyRequirement) string {
	var b strings.Builder
	if d.Name != "" {
		b.WriteString(d.Name + ": ")
	}
	fmt.Fprintf(&b, "%s %s", d.Retrieval, d.Target)
	if d.Qualifier != nil {
		fmt.Fprintf(&b, " %s", d.Qualifier)
	}
	return b.String()
}

func injectorString(ref *models.InjectorRef) string {
	if len(ref.Path) == 0 {
		return ref.Owner
	}
	steps := make([]string, 0, len(ref.Path))
	for _, step := range ref.Path {
		steps = append(steps, step.Field)
	}
	return ref.Owner + " via " + strings.Join(steps, ".")
}
