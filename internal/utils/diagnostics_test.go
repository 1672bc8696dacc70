package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosticSystem_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(DiagnosticWarn)
	d.SetOutput(&out, &errOut)

	d.Error("failed %d", 1)
	d.Warn("careful")
	d.Info("hidden")
	d.Debug("hidden too")

	assert.Equal(t, "[ERROR] failed 1\n", errOut.String())
	assert.Equal(t, "[WARN] careful\n", out.String())
}

func TestDiagnosticSystem_SummaryIsSorted(t *testing.T) {
	var out bytes.Buffer
	d := NewDiagnosticSystem(DiagnosticInfo)
	d.SetOutput(&out, &out)

	d.Summary("Done", map[string]interface{}{"b": 2, "a": 1})

	assert.Equal(t, "\nDone\n   a: 1\n   b: 2\n\n", out.String())
}

func TestDiagnosticSystem_Indent(t *testing.T) {
	var out bytes.Buffer
	d := NewDiagnosticSystem(DiagnosticInfo)
	d.SetOutput(&out, &out)

	d.Indent()
	d.List("item")
	d.Unindent()
	d.Unindent()
	d.List("top")

	assert.Equal(t, "  - item\n- top\n", out.String())
}

func TestDiagnosticSystem_Phases(t *testing.T) {
	var out bytes.Buffer
	d := NewDiagnosticSystem(DiagnosticInfo)
	d.SetOutput(&out, &out)

	d.Info("cleaning %s", "./...")
	d.PhaseHeader("Generating code")
	d.PhaseProgress("Writing app/scopegen_gen.go")
	d.PhaseProgress("Factory for app.Clock")
	d.PhaseItem("done")
	d.Verbose("hidden")

	assert.Equal(t, "[INFO] cleaning ./...\nGenerating code:\n✏ Writing app/scopegen_gen.go\n- Factory for app.Clock\n✓ done\n", out.String())
}
