//go:build unix

package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tgrossb/mush/internal/logger"
	"github.com/tgrossb/mush/jobs"
	"github.com/tgrossb/mush/program"
	"github.com/tgrossb/mush/store"
	"github.com/tgrossb/mush/syntax"
)

// interp wires the program store, variable store, and job runner together
// under the REPL.
type interp struct {
	prog   *program.Program
	vars   *store.Store
	runner *jobs.Runner
	out    io.Writer
}

func newInterp(out io.Writer) *interp {
	vars := store.New()
	return &interp{
		prog:   program.New(),
		vars:   vars,
		runner: jobs.NewRunner(vars),
		out:    out,
	}
}

// runREPL reads statements until EOF or quit.
func runREPL(in io.Reader, out io.Writer) error {
	it := newInterp(out)
	defer it.runner.Fini()

	sc := bufio.NewScanner(in)
	fmt.Fprint(out, prompt())
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "quit" {
			break
		}
		if line != "" {
			if err := it.exec(line); err != nil {
				fmt.Fprintln(out, errorLine(err.Error()))
			}
		}
		fmt.Fprint(out, prompt())
	}
	fmt.Fprintln(out)
	return sc.Err()
}

// exec runs one statement: a numbered line goes into the program store,
// anything else executes immediately.
func (it *interp) exec(line string) error {
	fields := strings.Fields(line)
	if lineno, err := strconv.Atoi(fields[0]); err == nil {
		body := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
		if body == "" {
			it.prog.Delete(lineno, lineno)
			return nil
		}
		return it.prog.Insert(&program.Statement{LineNo: lineno, Body: body})
	}

	switch fields[0] {
	case "list":
		return it.prog.List(it.out)

	case "delete":
		if len(fields) != 3 {
			return fmt.Errorf("usage: delete <from> <to>")
		}
		lo, err := strconv.Atoi(fields[1])
		if err != nil {
			return err
		}
		hi, err := strconv.Atoi(fields[2])
		if err != nil {
			return err
		}
		it.prog.Delete(lo, hi)
		return nil

	case "run":
		return it.runProgram()

	case "jobs":
		return it.runner.Show(it.out)

	case "wait":
		id, err := it.jobArg(fields)
		if err != nil {
			return err
		}
		status, err := it.runner.Wait(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(it.out, "job %d done, wait status %#x\n", id, status)
		return nil

	case "poll":
		id, err := it.jobArg(fields)
		if err != nil {
			return err
		}
		done, err := it.runner.Poll(id)
		if err != nil {
			return err
		}
		if done {
			fmt.Fprintf(it.out, "job %d has terminated\n", id)
		} else {
			fmt.Fprintf(it.out, "job %d is still running\n", id)
		}
		return nil

	case "cancel":
		id, err := it.jobArg(fields)
		if err != nil {
			return err
		}
		return it.runner.Cancel(id)

	case "expunge":
		id, err := it.jobArg(fields)
		if err != nil {
			return err
		}
		return it.runner.Expunge(id)

	case "output":
		if len(fields) != 3 {
			return fmt.Errorf("usage: output <job> <var>")
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return err
		}
		out := it.runner.Output(id)
		if out == nil {
			return fmt.Errorf("no captured output for job %d", id)
		}
		it.vars.Set(fields[2], string(out))
		return nil

	case "pause":
		return it.runner.Pause()

	case "set":
		if len(fields) < 3 {
			return fmt.Errorf("usage: set <var> <value>")
		}
		it.vars.Set(fields[1], strings.Join(fields[2:], " "))
		return nil

	case "unset":
		if len(fields) != 2 {
			return fmt.Errorf("usage: unset <var>")
		}
		it.vars.Unset(fields[1])
		return nil

	case "show":
		it.vars.Show(it.out)
		return nil
	}

	return it.runPipeline(line)
}

// runProgram executes the stored program from the top. A "goto N" body
// repositions the cursor.
func (it *interp) runProgram() error {
	it.prog.Reset()
	for {
		stmt := it.prog.Fetch()
		if stmt == nil {
			return nil
		}
		it.prog.Next()

		fields := strings.Fields(stmt.Body)
		if len(fields) == 2 && fields[0] == "goto" {
			lineno, err := strconv.Atoi(fields[1])
			if err != nil {
				return err
			}
			if err := it.prog.Goto(lineno); err != nil {
				return err
			}
			continue
		}
		if err := it.exec(stmt.Body); err != nil {
			return fmt.Errorf("line %d: %w", stmt.LineNo, err)
		}
	}
}

// runPipeline parses and runs a pipeline, waiting unless it ends in &.
func (it *interp) runPipeline(line string) error {
	background := false
	if trimmed := strings.TrimSuffix(strings.TrimSpace(line), "&"); trimmed != line {
		background = true
		line = trimmed
	}

	pline, err := syntax.ParsePipeline(line)
	if err != nil {
		return err
	}

	id, err := it.runner.Run(pline)
	if err != nil {
		return err
	}
	logger.L.Info("started job", "job", id, "pipeline", syntax.Sprint(pline))

	if background {
		fmt.Fprintf(it.out, "[%d]\n", id)
		return nil
	}

	if _, err := it.runner.Wait(id); err != nil {
		return err
	}
	return it.runner.Expunge(id)
}

// jobArg parses the single job-id argument of a job command.
func (it *interp) jobArg(fields []string) (int, error) {
	if len(fields) != 2 {
		return 0, fmt.Errorf("usage: %s <job>", fields[0])
	}
	return strconv.Atoi(fields[1])
}
