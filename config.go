package main

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/bubbles/key"
	"github.com/cockroachdb/errors"
)

//go:embed cinlook.default.toml
var defaultConfigTOML []byte

// Config holds all cinlook configuration
type Config struct {
	Accent string       `toml:"accent"`
	Tables TablesConfig `toml:"tables"`
	Log    LogConfig    `toml:"log"`
	Keys   KeyMapConfig `toml:"keys"`
}

// TablesConfig names the table files the TUI opens.
type TablesConfig struct {
	Compose   string `toml:"compose"`
	Reference string `toml:"reference"` // empty: same as Compose
	Watch     bool   `toml:"watch"`
	Strict    bool   `toml:"strict"`

	// Phonetic tables spell tone marks into their keys.
	TerminatorInKey bool `toml:"terminator_in_key"`
}

type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// KeyMapConfig defines key bindings in config file format
type KeyMapConfig struct {
	Leader         []string `toml:"leader"`
	Quit           []string `toml:"quit"`
	ToggleDebug    []string `toml:"toggle_debug"`
	ToggleMode     []string `toml:"toggle_mode"`
	CommandPalette []string `toml:"command_palette"`
	Keynames       []string `toml:"keynames"`
	Info           []string `toml:"info"`
	CyclePane      []string `toml:"cycle_pane"`
	CyclePanePrev  []string `toml:"cycle_pane_prev"`
	ClosePane      []string `toml:"close_pane"`
	Erase          []string `toml:"erase"`
	Clear          []string `toml:"clear"`
	Up             []string `toml:"up"`
	Down           []string `toml:"down"`
	Select         []string `toml:"select"`
	Help           []string `toml:"help"`
}

// configPaths lists user config files in search order.
func configPaths() []string {
	paths := []string{"cinlook.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "cinlook", "cinlook.toml"))
	}
	return paths
}

// DefaultConfig returns the embedded default configuration.
func DefaultConfig() Config {
	var cfg Config
	if _, err := toml.NewDecoder(bytes.NewReader(defaultConfigTOML)).Decode(&cfg); err != nil {
		panic("embedded default config is invalid: " + err.Error())
	}
	return cfg
}

// LoadConfig layers a user config file over the embedded default. An explicit
// path must exist; otherwise the first readable file on the search path is
// used, and none at all is fine. It returns the file it read, if any.
func LoadConfig(explicit string) (Config, string, error) {
	cfg := DefaultConfig()

	paths := configPaths()
	if explicit != "" {
		paths = []string{explicit}
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if explicit != "" {
				return cfg, "", errors.Wrap(err, "read config")
			}
			continue
		}
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, path, errors.WithHint(
				errors.Wrapf(err, "parse config %s", path),
				"compare with the defaults printed by 'cinlook config'")
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return cfg, path, errors.Newf("config %s: unknown key %q", path, undec[0].String())
		}
		return cfg, path, nil
	}
	return cfg, "", nil
}

// ToKeyMap converts config to KeyMap
func (c *Config) ToKeyMap() KeyMap {
	return KeyMap{
		Leader:         c.binding(c.Keys.Leader, "", "leader"),
		Quit:           c.binding(c.Keys.Quit, "", "quit"),
		ToggleDebug:    c.bindingWithLeader(c.Keys.ToggleDebug, "debug"),
		ToggleMode:     c.bindingWithLeader(c.Keys.ToggleMode, "mode"),
		CommandPalette: c.bindingWithLeader(c.Keys.CommandPalette, "commands"),
		Keynames:       c.bindingWithLeader(c.Keys.Keynames, "keynames"),
		Info:           c.bindingWithLeader(c.Keys.Info, "table info"),
		CyclePane:      c.binding(c.Keys.CyclePane, "", "cycle pane"),
		CyclePanePrev:  c.binding(c.Keys.CyclePanePrev, "", "previous pane"),
		ClosePane:      c.binding(c.Keys.ClosePane, "", "close pane"),
		Erase:          c.binding(c.Keys.Erase, "", "erase"),
		Clear:          c.binding(c.Keys.Clear, "", "clear"),
		Up:             c.binding(c.Keys.Up, "", "up"),
		Down:           c.binding(c.Keys.Down, "", "down"),
		Select:         c.binding(c.Keys.Select, "", "select"),
		Help:           c.bindingWithLeader(c.Keys.Help, "help"),
	}
}

// binding creates a key binding, returning disabled binding if keys is empty
func (c *Config) binding(keys []string, prefix, help string) key.Binding {
	if len(keys) == 0 {
		return key.NewBinding(key.WithDisabled())
	}
	helpText := keys[0]
	if prefix != "" {
		helpText = prefix + " " + keys[0]
	}
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(helpText, help),
	)
}

// bindingWithLeader creates a key binding with leader prefix in help text
func (c *Config) bindingWithLeader(keys []string, help string) key.Binding {
	prefix := ""
	if len(c.Keys.Leader) > 0 {
		prefix = c.Keys.Leader[0]
	}
	return c.binding(keys, prefix, help)
}
