package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/scopegen/internal/config"
	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/symbols"
)

func newSession(t *testing.T, manifest string, opts *config.Options) (*Session, *errors.Collector) {
	t.Helper()
	arena, err := symbols.ParseManifest("app.yaml", []byte(manifest))
	require.NoError(t, err)
	sink := errors.NewCollector()
	session, err := NewSession(arena, opts, sink)
	require.NoError(t, err)
	return session, sink
}

func identities(t *testing.T, session *Session) []string {
	t.Helper()
	plans, err := session.Resolve(context.Background())
	require.NoError(t, err)
	out := make([]string, 0, len(plans))
	for _, p := range plans {
		out = append(out, p.Identity())
	}
	return out
}

func TestSession_Discover(t *testing.T) {
	session, _ := newSession(t, hierarchyManifest, nil)

	var found []string
	for _, typ := range session.Discover() {
		found = append(found, typ.Name)
	}
	assert.Equal(t, []string{"A", "C", "D", "Widget"}, found)
	assert.ElementsMatch(t, []string{"field Backup", "singleton " + "scopegen.Singleton"}, session.triggers[app+"C"])
}

func TestSession_Deduplication(t *testing.T) {
	session, sink := newSession(t, hierarchyManifest, nil)

	assert.Equal(t, []string{app + "A", app + "C", app + "D", app + "Widget"}, identities(t, session),
		"C is reached by its field and by its singleton annotation and is planned once")
	assert.False(t, sink.HasErrors())

	assert.Empty(t, identities(t, session), "a second pass plans nothing new")
	assert.Equal(t, []string{app + "A", app + "C", app + "D", app + "Widget"}, session.Planned())
}

func TestSession_Parallel(t *testing.T) {
	sequential, _ := newSession(t, hierarchyManifest, &config.Options{Parallelism: 1})
	parallel, _ := newSession(t, hierarchyManifest, &config.Options{Parallelism: 8})

	assert.Equal(t, identities(t, sequential), identities(t, parallel))
	assert.NotEqual(t, sequential.ID, parallel.ID)
}

func TestSession_Cancelled(t *testing.T) {
	session, _ := newSession(t, hierarchyManifest, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plans, err := session.Resolve(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, plans)
}

func TestSession_InvalidOptions(t *testing.T) {
	arena, err := symbols.ParseManifest("app.yaml", []byte(hierarchyManifest))
	require.NoError(t, err)

	_, err = NewSession(arena, &config.Options{Excludes: []string{"("}}, errors.NewCollector())
	assert.Error(t, err)
}

func TestSession_DiagnosticsAcrossTypes(t *testing.T) {
	session, sink := newSession(t, constructorManifest, nil)

	_, err := session.Resolve(context.Background())
	require.NoError(t, err)

	assert.True(t, sink.HasErrors())
	assert.Len(t, sink.ByCode(errors.MultipleInjectConstructorsCode), 1)
	assert.Len(t, sink.ByCode(errors.InjectConstructorMarkerCode), 2)
	assert.Empty(t, sink.ByCode(errors.NoFactoryCode), "types without triggers are not planned")
}
