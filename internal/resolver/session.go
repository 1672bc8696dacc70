package resolver

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/toyz/scopegen/internal/config"
	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/models"
	"github.com/toyz/scopegen/internal/symbols"
	"github.com/toyz/scopegen/internal/utils"
)

// Session is one resolution run over a symbol source. Owner types are
// planned at most once per session, however many declarations reach them.
type Session struct {
	ID       string
	resolver *Resolver
	source   symbols.Source
	planned  *utils.BaseRegistry[string, struct{}]
	triggers map[string][]string
	packages map[string]bool
	log      *utils.DiagnosticSystem
}

// SessionOption configures a session
type SessionOption func(*Session)

// WithLogger routes debug output through the diagnostic system
func WithLogger(log *utils.DiagnosticSystem) SessionOption {
	return func(s *Session) {
		s.log = log
	}
}

// WithPackages limits planning to owner types declared in the given
// packages. Types of other packages still take part in resolution as
// ancestors and annotation types.
func WithPackages(paths ...string) SessionOption {
	return func(s *Session) {
		s.packages = make(map[string]bool, len(paths))
		for _, path := range paths {
			s.packages[path] = true
		}
	}
}

// NewSession creates a session. The options are compiled up front so the
// resolver can share them across workers.
func NewSession(source symbols.Source, opts *config.Options, sink errors.Sink, options ...SessionOption) (*Session, error) {
	if opts == nil {
		opts = config.Default()
	}
	if err := opts.Compile(); err != nil {
		return nil, err
	}
	s := &Session{
		ID:       uuid.NewString(),
		resolver: New(source, opts, sink),
		source:   source,
		planned:  utils.NewBaseRegistry[string, struct{}]("planned type", "owner"),
		triggers: make(map[string][]string),
		log:      utils.NewQuietDiagnostics(),
	}
	for _, option := range options {
		option(s)
	}
	return s, nil
}

// Resolver returns the resolver used by the session
func (s *Session) Resolver() *Resolver {
	return s.resolver
}

// Discover returns the owner types reached by any trigger, ordered by
// identity. Triggers are inject-marked constructors, fields and methods,
// the type-level inject-constructor marker, and scope, singleton or
// provides-singleton annotations on a type.
func (s *Session) Discover() []*models.Type {
	triggers := make(map[string][]string)
	add := func(owner, why string) {
		triggers[owner] = append(triggers[owner], why)
	}

	for _, e := range s.source.AnnotatedWith(models.InjectIdentity) {
		add(e.Owner, e.Kind.String()+" "+e.Name)
	}
	for _, e := range s.source.AnnotatedWith(models.InjectConstructorIdentity) {
		add(e.Owner, "inject-constructor")
	}
	for _, t := range s.source.Types() {
		for _, a := range t.Annotations {
			switch role := s.resolver.roleOf(a.Identity); role {
			case symbols.RoleScope, symbols.RoleSingleton, symbols.RoleProvidesSingleton:
				add(t.Identity, role.String()+" "+a.Identity)
			}
		}
	}

	var owners []*models.Type
	for identity, why := range triggers {
		t, ok := s.source.Lookup(identity)
		if !ok || t.Category == models.CategoryAnnotation {
			continue
		}
		if s.packages != nil && !s.packages[t.Package] {
			continue
		}
		s.triggers[identity] = why
		owners = append(owners, t)
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i].Identity < owners[j].Identity })
	return owners
}

// Resolve plans every discovered owner type that this session has not
// planned yet. Plans come back ordered by owner identity. A cancelled
// context stops the run between owner types; the plans finished so far are
// returned with the context error.
func (s *Session) Resolve(ctx context.Context) ([]*models.GeneratedArtifactPlan, error) {
	owners := s.Discover()
	opts := s.resolver.Options()

	var mu sync.Mutex
	var plans []*models.GeneratedArtifactPlan

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers())

	for _, t := range owners {
		if err := gctx.Err(); err != nil {
			break
		}
		if !s.planned.RegisterIfAbsent(t.Identity, struct{}{}) {
			continue
		}
		t := t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plan := s.resolver.Plan(t)
			if plan == nil {
				return nil
			}
			plan.Origin.Triggers = s.triggers[t.Identity]
			if opts.DebugLogOriginatingElements {
				s.log.Debug("%s originates from %s %v", plan.Description, plan.Origin.Element, plan.Origin.Triggers)
			}
			mu.Lock()
			plans = append(plans, plan)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].Identity() < plans[j].Identity() })
	return plans, err
}

// Planned returns the identities planned so far, sorted
func (s *Session) Planned() []string {
	return utils.SortedKeys(s.planned)
}
