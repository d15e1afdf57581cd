package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes the canonical form of a pipeline followed by a newline:
// commands joined by " | ", then "< input", "> output", and ">@" when the
// pipeline captures its output. ParsePipeline accepts exactly this form.
func Fprint(w io.Writer, p *Pipeline) error {
	_, err := fmt.Fprintln(w, Sprint(p))
	return err
}

// Sprint returns the canonical form of a pipeline without the newline.
func Sprint(p *Pipeline) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	for i, c := range p.Commands {
		if i > 0 {
			b.WriteString(" | ")
		}
		for k, arg := range c.Args {
			if k > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(arg.Expr.String())
		}
	}
	if p.InputFile != "" {
		b.WriteString(" < ")
		b.WriteString(p.InputFile)
	}
	if p.OutputFile != "" {
		b.WriteString(" > ")
		b.WriteString(p.OutputFile)
	}
	if p.CaptureOutput {
		b.WriteString(" >@")
	}
	return b.String()
}
