package syntax

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmpty indicates the parsed text contains no commands.
var ErrEmpty = errors.New("syntax: empty pipeline")

// ParsePipeline parses the surface pipeline syntax:
//
//	words... ( | words... )* [ < input ] [ > output ] [ >@ ]
//
// Words starting with $ are variable references, words of digits (with an
// optional leading -) are numbers, everything else is a literal.
func ParsePipeline(text string) (*Pipeline, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, ErrEmpty
	}

	p := &Pipeline{}
	cmd := &Command{}
	i := 0
	for ; i < len(fields); i++ {
		tok := fields[i]
		if tok == "<" || tok == ">" || tok == ">@" {
			break
		}
		if tok == "|" {
			if len(cmd.Args) == 0 {
				return nil, fmt.Errorf("syntax: empty command before %q", tok)
			}
			p.Commands = append(p.Commands, cmd)
			cmd = &Command{}
			continue
		}
		cmd.Args = append(cmd.Args, &Arg{Expr: parseWord(tok)})
	}
	if len(cmd.Args) == 0 {
		return nil, ErrEmpty
	}
	p.Commands = append(p.Commands, cmd)

	for ; i < len(fields); i++ {
		switch tok := fields[i]; tok {
		case "<", ">":
			if i+1 >= len(fields) {
				return nil, fmt.Errorf("syntax: %q needs a file name", tok)
			}
			i++
			if tok == "<" {
				p.InputFile = fields[i]
			} else {
				p.OutputFile = fields[i]
			}
		case ">@":
			p.CaptureOutput = true
		default:
			return nil, fmt.Errorf("syntax: unexpected %q after redirections", tok)
		}
	}
	return p, nil
}

// parseWord classifies a single token as a variable reference, a number, or
// a literal.
func parseWord(tok string) Expr {
	if strings.HasPrefix(tok, "$") && len(tok) > 1 {
		return Var(tok[1:])
	}
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil && tok[0] != '+' {
		return Num(n)
	}
	return Literal(tok)
}
