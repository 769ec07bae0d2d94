package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by Load.
// Nested keys use a double underscore: CANCERML_TUNE__FOLDS sets tune.folds.
const EnvPrefix = "CANCERML_"

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"state":           "state_path",
	"train-data-size": "train_size",
}

// Load reads configuration from defaults, the config file, environment
// variables and flags, in increasing order of precedence. Only flags that were
// set on the command line override other sources.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used, err := findConfigFile(cfgFile)
	if err != nil {
		return nil, err
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// CANCERML_SPLIT__MAX_LABEL_DRIFT -> split.max_label_drift
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile returns the explicit path, which must exist, or
// DefaultConfigFile when present in the working directory.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("config file %s does not exist", explicit)
			}
			return "", err
		}
		return explicit, nil
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile, nil
	}
	return "", nil
}
