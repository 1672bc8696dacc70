package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSource(t *testing.T) {
	src := "package app\nimport (\n\"strings\"\n\"fmt\"\n)\nfunc  f( ) string {return fmt.Sprint(strings.ToUpper(\"x\"))}\n"

	out, err := formatSource([]byte(src))
	require.NoError(t, err)
	assert.Contains(t, out, "import (\n\t\"fmt\"\n\t\"strings\"\n)")
	assert.Contains(t, out, "func f() string {")
}

func TestFormatSource_ReportsLine(t *testing.T) {
	_, err := formatSource([]byte("package app\n\nfunc f() {\n\treturn )\n}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rendered source does not parse: line 4")
}
