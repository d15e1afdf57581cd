// Package syntax defines the pipeline trees shared by the mush interpreter
// and the job runner, their pretty-printed form, and a parser for the same
// surface syntax.
package syntax

import "strconv"

// Env resolves variable references during argument evaluation.
type Env interface {
	Get(name string) (string, bool)
}

// Pipeline is an ordered list of commands with optional redirections and an
// output-capture flag.
type Pipeline struct {
	Commands   []*Command
	InputFile  string
	OutputFile string

	// CaptureOutput redirects the last stage's stdout to the parent, which
	// saves it on the job for later retrieval.
	CaptureOutput bool
}

// Command is a single pipeline stage: a command word and its arguments.
type Command struct {
	Args []*Arg
}

// Arg wraps one argument expression.
type Arg struct {
	Expr Expr
}

// Expr is an argument expression, evaluated to a string against an Env.
type Expr interface {
	Eval(env Env) string
	String() string
}

// Literal is a verbatim word.
type Literal string

// Eval returns the literal text.
func (l Literal) Eval(Env) string { return string(l) }

func (l Literal) String() string { return string(l) }

// Var is a variable reference. An unset variable evaluates to the empty
// string.
type Var string

// Eval resolves the variable against env.
func (v Var) Eval(env Env) string {
	if env == nil {
		return ""
	}
	val, _ := env.Get(string(v))
	return val
}

func (v Var) String() string { return "$" + string(v) }

// Num is an integer literal.
type Num int64

// Eval returns the decimal form of the number.
func (n Num) Eval(Env) string { return strconv.FormatInt(int64(n), 10) }

func (n Num) String() string { return strconv.FormatInt(int64(n), 10) }

// Word builds a literal Arg, the common case.
func Word(text string) *Arg { return &Arg{Expr: Literal(text)} }

// Simple builds a one-stage pipeline from literal words.
func Simple(words ...string) *Pipeline {
	cmd := &Command{}
	for _, w := range words {
		cmd.Args = append(cmd.Args, Word(w))
	}
	return &Pipeline{Commands: []*Command{cmd}}
}
