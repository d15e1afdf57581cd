package syntax

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

type mapEnv map[string]string

func (m mapEnv) Get(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

func Test_ParsePipeline(t *testing.T) {
	p, err := ParsePipeline("grep -v foo | sort | uniq -c < in.txt > out.txt")
	require.NoError(t, err)
	require.Len(t, p.Commands, 3)
	require.Equal(t, "in.txt", p.InputFile)
	require.Equal(t, "out.txt", p.OutputFile)
	require.False(t, p.CaptureOutput)

	require.Len(t, p.Commands[0].Args, 3)
	require.Equal(t, Literal("grep"), p.Commands[0].Args[0].Expr)
	require.Equal(t, Literal("-v"), p.Commands[0].Args[1].Expr)
}

func Test_ParsePipelineCapture(t *testing.T) {
	p, err := ParsePipeline("echo hi >@")
	require.NoError(t, err)
	require.True(t, p.CaptureOutput)
	require.Empty(t, p.OutputFile)
}

func Test_ParsePipelineWords(t *testing.T) {
	p, err := ParsePipeline("echo $name 42 -7 plain")
	require.NoError(t, err)
	args := p.Commands[0].Args
	require.Equal(t, Var("name"), args[1].Expr)
	require.Equal(t, Num(42), args[2].Expr)
	require.Equal(t, Num(-7), args[3].Expr)
	require.Equal(t, Literal("plain"), args[4].Expr)
}

func Test_ParsePipelineErrors(t *testing.T) {
	_, err := ParsePipeline("")
	require.ErrorIs(t, err, ErrEmpty)
	_, err = ParsePipeline("   ")
	require.ErrorIs(t, err, ErrEmpty)
	_, err = ParsePipeline("| sort")
	require.Error(t, err)
	_, err = ParsePipeline("echo hi >")
	require.Error(t, err)
	_, err = ParsePipeline("echo < in extra")
	require.Error(t, err)
}

func Test_PrintRoundTrip(t *testing.T) {
	for _, text := range []string{
		"echo hi",
		"echo hi | tr h H",
		"cat < in.txt > out.txt",
		"echo $name | wc -c >@",
	} {
		p, err := ParsePipeline(text)
		require.NoError(t, err)
		require.Equal(t, text, Sprint(p))

		var buf bytes.Buffer
		require.NoError(t, Fprint(&buf, p))
		require.Equal(t, text+"\n", buf.String())
	}
}

func Test_Eval(t *testing.T) {
	env := mapEnv{"name": "world"}

	require.Equal(t, "world", Var("name").Eval(env))
	require.Equal(t, "", Var("missing").Eval(env))
	require.Equal(t, "", Var("name").Eval(nil))
	require.Equal(t, "plain", Literal("plain").Eval(env))
	require.Equal(t, "-12", Num(-12).Eval(env))
}
