package transpile

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// SourceFile is the name reported in transpile diagnostics.
const SourceFile = "snippet.ts"

// Fixed output shape: ES2020 in CommonJS form, types erased without checking.
var esbuildOptions = api.TransformOptions{
	Loader:     api.LoaderTS,
	Target:     api.ES2020,
	Format:     api.FormatCommonJS,
	Sourcefile: SourceFile,
	LogLevel:   api.LogLevelSilent,
}

type esbuildTranspiler struct{}

func acquireEsbuild() (Transpiler, error) {
	probe := api.Transform("", esbuildOptions)
	if len(probe.Errors) > 0 {
		return nil, fmt.Errorf("esbuild probe failed: %s", probe.Errors[0].Text)
	}
	return esbuildTranspiler{}, nil
}

func (esbuildTranspiler) Transpile(source string) (string, error) {
	result := api.Transform(source, esbuildOptions)
	if len(result.Errors) > 0 {
		return "", newSyntaxError(result.Errors)
	}
	return string(result.Code), nil
}

// Diagnostic is one transpiler error with its location, when known.
type Diagnostic struct {
	File     string
	Line     int // 1-based
	Column   int // 0-based
	Text     string
	LineText string
}

func (d Diagnostic) String() string {
	if d.File == "" {
		return d.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Text)
}

// SyntaxError reports source that the transpiler rejected.
type SyntaxError struct {
	Diagnostics []Diagnostic
}

func newSyntaxError(msgs []api.Message) *SyntaxError {
	e := &SyntaxError{Diagnostics: make([]Diagnostic, 0, len(msgs))}
	for _, m := range msgs {
		d := Diagnostic{Text: m.Text}
		if loc := m.Location; loc != nil {
			d.File = loc.File
			d.Line = loc.Line
			d.Column = loc.Column
			d.LineText = loc.LineText
		}
		e.Diagnostics = append(e.Diagnostics, d)
	}
	return e
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	for i, d := range e.Diagnostics {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("SyntaxError: ")
		b.WriteString(d.String())
		if d.LineText != "" {
			fmt.Fprintf(&b, "\n    %d | %s", d.Line, d.LineText)
			fmt.Fprintf(&b, "\n    %s | %s^", strings.Repeat(" ", len(fmt.Sprint(d.Line))), strings.Repeat(" ", d.Column))
		}
	}
	return b.String()
}
