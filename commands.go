package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/cockroachdb/errors"
	"github.com/cursork/cinlook/cin"
	"github.com/cursork/cinlook/logger"
	"github.com/spf13/cobra"
)

var (
	lookupSymbols bool
	lookupTable   string
	reverseKeys   bool
	reverseTable  string
)

var lookupCmd = &cobra.Command{
	Use:   "lookup QUERY...",
	Short: "Print the characters for key sequences",
	Long: `Print the characters each key sequence produces, in table order.

Queries are keystrokes as typed unless --symbols is given, in which case they
are the symbols the table displays for those keys.

Examples:
  cinlook lookup --table cj5.cin ykb vss
  cinlook lookup --symbols --table phonetic.cin ㄅㄚ`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

var reverseCmd = &cobra.Command{
	Use:   "reverse TEXT...",
	Short: "Print the encodings of every character",
	Long: `Print each character of TEXT with every key sequence that produces it,
written in the table's symbols, or as raw keystrokes with --keys.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReverse,
}

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Parse tables and report their size or the first error",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return errors.Wrap(toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg), "encode config")
	},
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupSymbols, "symbols", false, "queries are display symbols")
	lookupCmd.Flags().StringVar(&lookupTable, "table", "", "table file (default: tables.compose)")
	reverseCmd.Flags().BoolVar(&reverseKeys, "keys", false, "print raw keystrokes instead of symbols")
	reverseCmd.Flags().StringVar(&reverseTable, "table", "", "table file (default: tables.reference)")
}

var (
	queryStyle = lipgloss.NewStyle().Bold(true)
	noneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// stdout returns the command's output, downsampled to what the terminal
// supports.
func stdout(cmd *cobra.Command) io.Writer {
	return colorprofile.NewWriter(cmd.OutOrStdout(), os.Environ())
}

func openTable(path, flag string) (*cin.Table, error) {
	if path == "" {
		return nil, errors.WithHintf(errors.New("no table given"),
			"pass --table FILE or set tables.%s in cinlook.toml", flag)
	}
	opts := append(tableOptions(), cin.WithLogger(logger.Named("cin")))
	return cin.Load(path, opts...)
}

func runLookup(cmd *cobra.Command, args []string) error {
	path := lookupTable
	if path == "" {
		path = cfg.Tables.Compose
	}
	t, err := openTable(path, "compose")
	if err != nil {
		return err
	}

	out := stdout(cmd)
	for _, q := range args {
		chars, err := t.Lookup(q, lookupSymbols)
		if err != nil {
			return errors.Wrapf(err, "lookup %q", q)
		}
		result := noneStyle.Render("(none)")
		if len(chars) > 0 {
			result = strings.Join(chars, " ")
		}
		fmt.Fprintf(out, "%s\t%s\n", queryStyle.Render(q), result)
	}
	return nil
}

func runReverse(cmd *cobra.Command, args []string) error {
	path := reverseTable
	if path == "" {
		path = TablePaths{Compose: cfg.Tables.Compose, Reference: cfg.Tables.Reference}.reference()
	}
	t, err := openTable(path, "reference")
	if err != nil {
		return err
	}

	out := stdout(cmd)
	for _, text := range args {
		for _, r := range text {
			if unicode.IsSpace(r) {
				continue
			}
			char := string(r)
			enc, err := t.ReverseLookup(char, !reverseKeys)
			if err != nil {
				return errors.Wrapf(err, "reverse %q", char)
			}
			a := cin.Annotation{Char: char, Encodings: enc}
			fmt.Fprintln(out, queryStyle.Render(a.Char)+strings.TrimPrefix(a.String(), a.Char))
		}
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := stdout(cmd)
	opts := append(tableOptions(), cin.WithLogger(logger.Named("cin")))

	failed := 0
	for _, path := range args {
		t, err := cin.Load(path, opts...)
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s\t%s\n", queryStyle.Render(path), failStyle.Render(err.Error()))
			continue
		}
		st := t.Stats()
		name := st.Name
		if name == "" {
			name = noneStyle.Render("(unnamed)")
		}
		fmt.Fprintf(out, "%s\t%s\t%d keynames, %d keys, %d characters, %d entries\n",
			queryStyle.Render(path), name, st.Tokens, st.Keys, st.Chars, st.Entries)
	}
	if failed > 0 {
		return errors.Newf("%d of %d tables failed to parse", failed, len(args))
	}
	return nil
}
