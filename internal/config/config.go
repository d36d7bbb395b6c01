// Package config loads layered settings: built-in defaults, an optional YAML
// file, KNOLSTUDY_ environment variables and command-line flags, in that
// order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/knolstudy/internal/domain"
)

const (
	envPrefix = "KNOLSTUDY_"
	// ConfigEnv names the variable holding the config file path when
	// --config is not given.
	ConfigEnv = envPrefix + "CONFIG"
)

type Config struct {
	DB      string  `koanf:"db" validate:"required"`
	Log     Log     `koanf:"log"`
	Study   Study   `koanf:"study"`
	Library Library `koanf:"library"`
}

type Log struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

type Study struct {
	// Ahead includes cards that are not yet due in due-date sessions.
	Ahead          bool   `koanf:"ahead"`
	DuePolicy      string `koanf:"due_policy" validate:"oneof=fixed adaptive"`
	PriorityPolicy string `koanf:"priority_policy" validate:"oneof=fixed adaptive"`
}

type Library struct {
	ReposDir string `koanf:"repos_dir" validate:"required"`
}

var defaults = map[string]any{
	"db":                    "knolstudy.db",
	"log.level":             "info",
	"log.format":            "text",
	"study.ahead":           false,
	"study.due_policy":      "fixed",
	"study.priority_policy": "adaptive",
	"library.repos_dir":     "repos",
}

// flagKeys maps command-line flag names to config keys. Flags not listed
// here are command arguments, not settings.
var flagKeys = map[string]string{
	"db":              "db",
	"log-level":       "log.level",
	"log-format":      "log.format",
	"ahead":           "study.ahead",
	"due-policy":      "study.due_policy",
	"priority-policy": "study.priority_policy",
	"repos-dir":       "library.repos_dir",
}

// Load builds the configuration. path may be empty, in which case
// KNOLSTUDY_CONFIG is consulted; a missing file at either location is an
// error, no file at all is not. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return Config{}, fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey(flags)), nil); err != nil {
			return Config{}, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey turns KNOLSTUDY_STUDY__DUE_POLICY into study.due_policy.
func envKey(s string) string {
	if s == ConfigEnv {
		return ""
	}
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func flagKey(flags *pflag.FlagSet) func(*pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(flags, f)
	}
}

// Validate checks the settings that have a closed set of values.
func (c Config) Validate() error {
	return domain.Validate(c)
}
