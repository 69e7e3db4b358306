package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with args and an empty config file, returning what
// it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	cfgPath := filepath.Join(t.TempDir(), "cinlook.toml")
	require.NoError(t, os.WriteFile(cfgPath, nil, 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", cfgPath))
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestLookupKeys(t *testing.T) {
	out, err := run(t, "lookup", "--table", cangjieTable, "ykb", "rsqf", "zzz")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ykb\t八", lines[0])
	assert.Equal(t, "rsqf\t嗎 哪", lines[1])
	assert.Equal(t, "zzz\t(none)", lines[2])
}

func TestLookupSymbols(t *testing.T) {
	out, err := run(t, "lookup", "--symbols", "--table", phoneticTable, "ㄅㄚ")
	require.NoError(t, err)
	assert.Equal(t, "ㄅㄚ\t八 巴 疤\n", out)
}

func TestLookupUnknownSymbol(t *testing.T) {
	_, err := run(t, "lookup", "--symbols", "--table", phoneticTable, "ㄅX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"X"`)
}

func TestLookupNeedsTable(t *testing.T) {
	_, err := run(t, "lookup", "ykb")
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "--table")
}

func TestReverse(t *testing.T) {
	out, err := run(t, "reverse", "--table", cangjieTable, "八 龍")
	require.NoError(t, err)
	assert.Equal(t, "八：卜大月\n龍：？\n", out)

	out, err = run(t, "reverse", "--keys", "--table", cangjieTable, "八")
	require.NoError(t, err)
	assert.Equal(t, "八：ykb\n", out)
}

func TestCheck(t *testing.T) {
	broken := filepath.Join(t.TempDir(), "broken.cin")
	require.NoError(t, os.WriteFile(broken, []byte("%keyname begin\na 日\n%keyname end\n%chardef begin\nab\n%chardef end\n"), 0o644))

	out, err := run(t, "check", phoneticTable, broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, out, "注音")
	assert.Contains(t, out, "18 keynames")
	assert.Contains(t, out, "line 5")
}

func TestConfigCommand(t *testing.T) {
	out, err := run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, `accent = "63"`)
	assert.Contains(t, out, "[keys]")
}

func TestConfigCommandFlagOverride(t *testing.T) {
	out, err := run(t, "config", "--terminator-in-key=false", "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "terminator_in_key = false")
	assert.Contains(t, out, "strict = true")
	assert.Len(t, tableOptions(), 1)
}

func TestPrintErrorHint(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, errors.WithHint(errors.New("boom"), "try again"))
	assert.Equal(t, "cinlook: boom\nhint: try again\n", buf.String())
}
