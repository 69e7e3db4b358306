package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/cockroachdb/errors"
	"github.com/cursork/cinlook/cin"
	"github.com/cursork/cinlook/logger"
	"github.com/cursork/cinlook/watch"
	"github.com/spf13/cobra"
)

var (
	configFile    string
	composeFile   string
	referenceFile string
	strict        bool
	termInKey     bool

	logFile  string
	logLevel string
	logJSON  bool

	// cfg is the effective configuration, loaded before any command runs.
	cfg Config
)

var rootCmd = &cobra.Command{
	Use:   "cinlook",
	Short: "Compose and look up characters with CIN input method tables",
	Long: `cinlook reads CIN input method tables and lets you type with one table
while every character is annotated with its keys in another.

Without a subcommand it starts the terminal UI.

Examples:
  cinlook --compose phonetic.cin --reference cj5.cin
  cinlook lookup --table cj5.cin ykb
  cinlook reverse --table cj5.cin 八媽
  cinlook check *.cin`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runTUI,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default ./cinlook.toml, then ~/.config/cinlook/cinlook.toml)")
	pf.BoolVar(&strict, "strict", false, "reject tables that declare a keyname twice")
	pf.BoolVar(&termInKey, "terminator-in-key", false, "commit a declared terminator (a tone mark) as the last key")
	pf.StringVar(&logFile, "log-file", "", "write log entries to this file")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&logJSON, "log-json", false, "JSON log file format")

	rootCmd.Flags().StringVar(&composeFile, "compose", "", "table to type with")
	rootCmd.Flags().StringVar(&referenceFile, "reference", "", "table to annotate with (default: the compose table)")

	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(reverseCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
}

// setup loads the config, applies flag overrides and starts the logger.
func setup(cmd *cobra.Command, args []string) error {
	c, path, err := LoadConfig(configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-file") {
		c.Log.File = logFile
	}
	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
	if flags.Changed("log-json") {
		c.Log.JSON = logJSON
	}
	if flags.Changed("strict") {
		c.Tables.Strict = strict
	}
	if flags.Changed("terminator-in-key") {
		c.Tables.TerminatorInKey = termInKey
	}
	if flags.Changed("compose") {
		c.Tables.Compose = composeFile
	}
	if flags.Changed("reference") {
		c.Tables.Reference = referenceFile
	}
	cfg = c

	if err := logger.Initialize(logger.Config{
		File:  cfg.Log.File,
		Level: cfg.Log.Level,
		JSON:  cfg.Log.JSON,
	}); err != nil {
		return err
	}
	if path != "" {
		logger.Logger.Debugw("config loaded", "path", path)
	}
	if cfg.Accent != "" {
		AccentColor = lipgloss.Color(cfg.Accent)
	}
	return nil
}

// tableOptions returns the parse options the config asks for.
func tableOptions() []cin.Option {
	var opts []cin.Option
	if cfg.Tables.Strict {
		opts = append(opts, cin.WithStrictKeynames())
	}
	if cfg.Tables.TerminatorInKey {
		opts = append(opts, cin.WithTerminatorInKey())
	}
	return opts
}

func runTUI(cmd *cobra.Command, args []string) error {
	paths := TablePaths{Compose: cfg.Tables.Compose, Reference: cfg.Tables.Reference}
	opts := tableOptions()

	ctx, cancel := context.WithCancel(cmd.Context())
	coord, err := LoadTables(ctx, paths, opts...)
	if err != nil {
		cancel()
		return err
	}

	var (
		w       *watch.Watcher
		reloads <-chan reloadEvent
	)
	if cfg.Tables.Watch {
		w, err = watch.New(paths.Files(), watch.WithLogger(logger.Named("watch")))
		if err == nil {
			if err = w.Start(ctx); err != nil {
				w.Stop()
			}
		}
		if err != nil {
			logger.Logger.Warnw("not watching tables", "error", err)
			w = nil
		} else {
			reloads = watchTables(ctx, w, paths, opts...)
		}
	}
	defer func() {
		cancel()
		if w != nil {
			w.Stop()
		}
	}()

	p := tea.NewProgram(
		NewModel(coord, paths, cfg.ToKeyMap(), reloads, opts...),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = p.Run()
	return errors.Wrap(err, "run terminal UI")
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		logger.Cleanup()
		os.Exit(1)
	}
}

// printError prints err and any hints attached to it.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "cinlook: %v\n", err)
	if hint := errors.FlattenHints(err); hint != "" {
		fmt.Fprintf(w, "hint: %s\n", hint)
	}
}
