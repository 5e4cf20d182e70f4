// Package config resolves catalog settings from defaults, JSONC config files
// and command line overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tailscale/hujson"
	"golang.org/x/text/language"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	Data        string `json:"data,omitempty"`
	Locale      string `json:"locale"`
	LogLevel    string `json:"log_level,omitempty"`
	HistoryFile string `json:"history_file,omitempty"`

	// Resolved (computed, not serialized)
	EffectiveCwd string       `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	DataAbs      string       `json:"-"` // Absolute data file path; empty means builtin seed
	HistoryAbs   string       `json:"-"` // Absolute REPL history path; empty disables history
	Tag          language.Tag `json:"-"` // Parsed Locale

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// HistoryDisabled is the history_file value that turns REPL history off.
const HistoryDisabled = "-"

// LogLevels lists the accepted log_level values. Empty disables logging.
var LogLevels = []string{"", "debug", "info", "warn", "error"}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Locale: "en",
	}
}

// FileName is the project config file name.
const FileName = ".catalog.json"

// globalPath returns $XDG_CONFIG_HOME/catalog/config.json if set, otherwise
// ~/.config/catalog/config.json. Empty if neither variable is set.
func globalPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "catalog", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "catalog", "config.json")
	}

	return ""
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride  string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath       string            // -c/--config flag value
	DataOverride     string            // --data flag value; empty means no override
	LocaleOverride   string            // --locale flag value
	LogLevelOverride string            // --log-level flag value
	Env              map[string]string // environment variables
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/catalog/config.json or $XDG_CONFIG_HOME/catalog/config.json)
// 3. Project config file (.catalog.json, if exists)
// 4. Explicit config file via ConfigPath (replaces the project file)
// 5. CLI overrides.
//
// All paths in the returned Config are resolved to absolute paths.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	globalCfg, globalFile, err := loadGlobal(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalFile
	cfg = merge(cfg, globalCfg)

	projectCfg, projectFile, err := loadProject(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectFile
	cfg = merge(cfg, projectCfg)

	cfg = merge(cfg, Config{
		Data:     input.DataOverride,
		Locale:   input.LocaleOverride,
		LogLevel: input.LogLevelOverride,
	})

	tag, err := validate(cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.Tag = tag
	cfg.EffectiveCwd = workDir
	cfg.DataAbs = absPath(workDir, cfg.Data)

	switch cfg.HistoryFile {
	case HistoryDisabled:
		cfg.HistoryAbs = ""
	case "":
		if home := input.Env["HOME"]; home != "" {
			cfg.HistoryAbs = filepath.Join(home, ".catalog_history")
		}
	default:
		cfg.HistoryAbs = absPath(workDir, cfg.HistoryFile)
	}

	return cfg, nil
}

func absPath(workDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(workDir, path)
}

func loadGlobal(env map[string]string) (Config, string, error) {
	path := globalPath(env)
	if path == "" {
		return Config{}, "", nil
	}

	cfg, loaded, err := loadFile(path, false)
	if err != nil || !loaded {
		return Config{}, "", err
	}

	return cfg, path, nil
}

// loadProject loads .catalog.json from workDir, or the explicit configPath
// which must exist.
func loadProject(workDir, configPath string) (Config, string, error) {
	path := filepath.Join(workDir, FileName)
	mustExist := false

	if configPath != "" {
		path = absPath(workDir, configPath)
		mustExist = true

		_, statErr := os.Stat(path)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	}

	cfg, loaded, err := loadFile(path, mustExist)
	if err != nil || !loaded {
		return Config{}, "", err
	}

	return cfg, path, nil
}

// loadFile loads a config file. If mustExist is false, missing files return
// zero config and loaded=false.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	// An explicit "locale": "" would otherwise be indistinguishable from
	// an absent key and silently fall back to the default.
	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	if val, exists := raw["locale"]; exists {
		if str, ok := val.(string); ok && strings.TrimSpace(str) == "" {
			return Config{}, ErrLocaleEmpty
		}
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.Data != "" {
		base.Data = overlay.Data
	}

	if overlay.Locale != "" {
		base.Locale = overlay.Locale
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	if overlay.HistoryFile != "" {
		base.HistoryFile = overlay.HistoryFile
	}

	return base
}

func validate(cfg Config) (language.Tag, error) {
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return language.Und, fmt.Errorf("%w: %q", ErrInvalidLocale, cfg.Locale)
	}

	if !slices.Contains(LogLevels, cfg.LogLevel) {
		return language.Und, fmt.Errorf("%w: %q (want debug|info|warn|error)", ErrInvalidLogLevel, cfg.LogLevel)
	}

	return tag, nil
}

// Format renders the resolved configuration as key=value lines.
func Format(cfg Config) string {
	data := cfg.DataAbs
	if data == "" {
		data = "(builtin)"
	}

	history := cfg.HistoryAbs
	if history == "" {
		history = "(disabled)"
	}

	logLevel := cfg.LogLevel
	if logLevel == "" {
		logLevel = "(off)"
	}

	lines := []string{
		"data=" + data,
		"locale=" + cfg.Tag.String(),
		"log_level=" + logLevel,
		"history_file=" + history,
	}

	return strings.Join(lines, "\n")
}
