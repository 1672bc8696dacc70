package generator

import (
	stderrors "errors"
	"fmt"
	"go/scanner"

	"golang.org/x/tools/imports"
)

var formatOptions = &imports.Options{
	FormatOnly: true,
	Comments:   true,
	TabIndent:  true,
	TabWidth:   8,
}

// formatSource gofmts rendered source and sorts its import block. A render
// that does not parse is reported with the first offending line.
func formatSource(src []byte) (string, error) {
	out, err := imports.Process(FileName, src, formatOptions)
	if err == nil {
		return string(out), nil
	}
	var list scanner.ErrorList
	if stderrors.As(err, &list) && len(list) > 0 {
		first := list[0]
		return "", fmt.Errorf("rendered source does not parse: line %d: %s (%d errors)", first.Pos.Line, first.Msg, len(list))
	}
	return "", err
}
