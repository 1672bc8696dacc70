package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/generator"
	"github.com/toyz/scopegen/internal/utils"
)

const shopSource = `package shop

type Store interface{ Get(key string) string }

type Repo struct {
	//scopegen::inject
	Store Store
}

type Clock struct{ zone string }

//scopegen::inject
func NewClock() *Clock { return &Clock{zone: "UTC"} }
`

func writeTestModule(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		writeFile(t, filepath.Join(root, name), content)
	}
	return root
}

func testEnv() []string {
	return append(os.Environ(), "GOWORK=off", "GOFLAGS=-mod=mod", "GOPROXY=off")
}

func newTestGenerator() (*Generator, *bytes.Buffer) {
	color.NoColor = true
	var errOut bytes.Buffer
	reporter := NewDiagnosticReporter(false)
	reporter.SetOutput(&bytes.Buffer{}, &errOut)
	diagnostics := utils.NewQuietDiagnostics()
	diagnostics.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})
	return NewGenerator(reporter, diagnostics), &errOut
}

func TestGenerator_Run(t *testing.T) {
	root := writeTestModule(t, map[string]string{
		"go.mod":        "module example.com/shopapp\n\ngo 1.21\n",
		"shop/shop.go":  shopSource,
		"plain/util.go": "package plain\n\nfunc Double(n int) int { return n * 2 }\n",
		// left behind by an earlier run, plain no longer declares anything injectable
		"plain/" + generator.FileName: generator.Header + "\n\npackage plain\n",
	})

	g, _ := newTestGenerator()
	err := g.Run(context.Background(), Config{Dir: root, Env: testEnv()})
	require.NoError(t, err)

	generated := filepath.Join(root, "shop", generator.FileName)
	require.FileExists(t, generated)
	content, err := os.ReadFile(generated)
	require.NoError(t, err)

	src := string(content)
	assert.True(t, strings.HasPrefix(src, generator.Header))
	assert.Contains(t, src, "package shop")
	assert.Contains(t, src, "type Clock__Factory struct{}")
	assert.Contains(t, src, "instance := NewClock()")
	assert.Contains(t, src, "type Repo__MemberInjector struct{}")
	assert.Contains(t, src, `f0, err := scope.Instance[Store](s, "")`)

	assert.NoFileExists(t, filepath.Join(root, "plain", generator.FileName), "stale generated file is removed")

	summary := g.GetSummary()
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, "example.com/shopapp", summary.Module)
	assert.Equal(t, 2, summary.PackagesLoaded)
	assert.Equal(t, []string{generated}, summary.GeneratedFiles)
	assert.GreaterOrEqual(t, summary.Factories, 1)
	assert.GreaterOrEqual(t, summary.MemberInjectors, 1)
	assert.False(t, summary.DryRun)
}

func TestGenerator_RunDryRun(t *testing.T) {
	root := writeTestModule(t, map[string]string{
		"go.mod":       "module example.com/shopapp\n\ngo 1.21\n",
		"shop/shop.go": shopSource,
	})

	g, _ := newTestGenerator()
	err := g.Run(context.Background(), Config{Dir: root, Env: testEnv(), DryRun: true})
	require.NoError(t, err)

	generated := filepath.Join(root, "shop", generator.FileName)
	assert.NoFileExists(t, generated)
	assert.Equal(t, []string{generated}, g.GetSummary().GeneratedFiles)
	assert.True(t, g.GetSummary().DryRun)
}

func TestGenerator_RunStopsOnHardErrors(t *testing.T) {
	root := writeTestModule(t, map[string]string{
		"go.mod": "module example.com/shopapp\n\ngo 1.21\n",
		"shop/shop.go": shopSource + `
type Counter struct {
	//scopegen::inject
	Count int
}
`,
	})

	g, errOut := newTestGenerator()
	err := g.Run(context.Background(), Config{Dir: root, Env: testEnv()})
	require.Error(t, err)

	var multiple *errors.MultipleErrors
	require.ErrorAs(t, err, &multiple)
	assert.True(t, multiple.HasCode(errors.UnsupportedFieldTypeCode))
	assert.Contains(t, errOut.String(), "[UnsupportedFieldType]")
	assert.NoFileExists(t, filepath.Join(root, "shop", generator.FileName), "nothing is written after a hard error")
}

func TestGenerator_RunOutsideModule(t *testing.T) {
	g, _ := newTestGenerator()
	err := g.Run(context.Background(), Config{Dir: filepath.Join(string(filepath.Separator), "definitely", "not", "a", "module")})
	require.Error(t, err)

	var typed errors.ScopegenError
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errors.ConfigurationErrorCode, typed.ErrorCode())
}

func TestGenerator_RunSubsetPattern(t *testing.T) {
	root := writeTestModule(t, map[string]string{
		"go.mod": "module example.com/shopapp\n\ngo 1.21\n",
		"scopes/scopes.go": `package scopes

//scopegen::scope
type Request struct{}
`,
		"base/base.go": `package base

type Logger interface{ Log(string) }

type Base struct {
	//scopegen::inject
	Logger Logger
}
`,
		"shop/cart.go": `package shop

import (
	"example.com/shopapp/base"
	"example.com/shopapp/scopes"
)

var _ scopes.Request

type Store interface{ Get(key string) string }

//scopegen::annotated scopes.Request
type Cart struct {
	base.Base

	//scopegen::inject
	Store Store
}

//scopegen::inject
func NewCart() *Cart { return &Cart{} }
`,
	})

	g, errOut := newTestGenerator()
	err := g.Run(context.Background(), Config{Dir: root, Env: testEnv(), Patterns: []string{"./shop"}})
	require.NoError(t, err, errOut.String())

	generated := filepath.Join(root, "shop", generator.FileName)
	require.FileExists(t, generated)
	assert.NoFileExists(t, filepath.Join(root, "base", generator.FileName), "packages outside the patterns are not written")
	assert.NoFileExists(t, filepath.Join(root, "scopes", generator.FileName))

	content, err := os.ReadFile(generated)
	require.NoError(t, err)
	src := string(content)

	assert.Contains(t, src, `return s.GetParentScope("example.com/shopapp/scopes.Request")`)
	assert.Contains(t, src, "func (Cart__Factory) HasScopeAnnotation() bool {\n\treturn true\n}")
	assert.Contains(t, src, "if err := (base.Base__MemberInjector{}).Inject(&target.Base, s); err != nil {")
	assert.Contains(t, src, `f0, err := scope.Instance[Store](s, "")`)

	assert.Equal(t, []string{generated}, g.GetSummary().GeneratedFiles)
}
