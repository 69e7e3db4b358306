package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cinlook.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "63", cfg.Accent)
	assert.True(t, cfg.Tables.Watch)
	assert.False(t, cfg.Tables.Strict)
	assert.True(t, cfg.Tables.TerminatorInKey)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, []string{"ctrl+]"}, cfg.Keys.Leader)
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
accent = "202"

[tables]
compose = "phonetic.cin"
watch = false

[keys]
quit = ["ctrl+q"]
`)
	cfg, used, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, path, used)
	assert.Equal(t, "202", cfg.Accent)
	assert.Equal(t, "phonetic.cin", cfg.Tables.Compose)
	assert.False(t, cfg.Tables.Watch)
	assert.Equal(t, []string{"ctrl+q"}, cfg.Keys.Quit)
	// untouched keys keep their defaults
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, []string{"backspace"}, cfg.Keys.Erase)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfigSyntaxError(t *testing.T) {
	_, _, err := LoadConfig(writeConfig(t, "accent = \n"))
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "cinlook config")
}

func TestLoadConfigUnknownKey(t *testing.T) {
	_, _, err := LoadConfig(writeConfig(t, "[tables]\ncomposer = \"x.cin\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tables.composer")
}

func TestToKeyMap(t *testing.T) {
	cfg := DefaultConfig()
	km := cfg.ToKeyMap()

	assert.Equal(t, "ctrl+] d", km.ToggleDebug.Help().Key)
	assert.Equal(t, "debug", km.ToggleDebug.Help().Desc)
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlCloseBracket}, km.Leader))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}}, km.ToggleMode))

	cfg.Keys.Info = nil
	km = cfg.ToKeyMap()
	assert.False(t, km.Info.Enabled())
}
