//go:build linux || darwin

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func runLines(t *testing.T, lines ...string) string {
	t.Helper()
	noColor = true
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, runREPL(in, &out))
	return out.String()
}

func Test_REPLStoresNumberedStatements(t *testing.T) {
	out := runLines(t,
		"20 echo b",
		"10 echo a",
		"list",
		"quit",
	)
	require.Contains(t, out, "10 echo a\n20 echo b\n")
}

func Test_REPLDeletesLines(t *testing.T) {
	out := runLines(t,
		"10 echo a",
		"20 echo b",
		"30 echo c",
		"delete 15 25",
		"list",
		"quit",
	)
	require.Contains(t, out, "10 echo a\n30 echo c\n")
	require.NotContains(t, out, "20 echo b")
}

func Test_REPLVariables(t *testing.T) {
	out := runLines(t,
		"set greeting hello there",
		"show",
		"unset greeting",
		"show",
		"quit",
	)
	require.Contains(t, out, "\tgreeting:\t\"hello there\"\n")
	require.Equal(t, 1, strings.Count(out, "greeting"))
}

func Test_REPLForegroundPipeline(t *testing.T) {
	// A foreground job runs to completion and is expunged; the job table
	// prints empty afterwards.
	out := runLines(t,
		"echo ok",
		"jobs",
		"quit",
	)
	require.NotContains(t, out, "running")
}

func Test_REPLBackgroundJobAndOutputCapture(t *testing.T) {
	out := runLines(t,
		"echo hi | tr h H >@ &",
		"wait 0",
		"output 0 captured",
		"show",
		"quit",
	)
	require.Contains(t, out, "[0]")
	require.Contains(t, out, "\tcaptured:\t\"Hi\\n\"\n")
}

func Test_REPLRunsStoredProgram(t *testing.T) {
	out := runLines(t,
		"10 set x first",
		"20 set y second",
		"run",
		"show",
		"quit",
	)
	require.Contains(t, out, "\tx:\t\"first\"\n")
	require.Contains(t, out, "\ty:\t\"second\"\n")
}

func Test_REPLReportsErrors(t *testing.T) {
	out := runLines(t,
		"cancel notanumber",
		"expunge 42",
		"quit",
	)
	require.Contains(t, out, "unknown job id")
}
