package ingest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	tt "github.com/gnoswap-labs/dissect/internal/types"
)

// DefaultConfigFile is the rule file looked up when none is given.
const DefaultConfigFile = ".dissect.yaml"

// Config represents the rule file: a name, a default append separator and an
// ordered list of rules.
type Config struct {
	Name            string          `yaml:"name"`
	AppendSeparator string          `yaml:"append_separator"`
	Rules           []tt.ConfigRule `yaml:"rules"`
}

// DefaultConfig is the skeleton written by `dissect init`.
func DefaultConfig() Config {
	return Config{
		Name:            "dissect",
		AppendSeparator: " ",
		Rules: []tt.ConfigRule{
			{
				Name:    "access",
				Pattern: `%{clientip} %{} %{} [%{ts}] "%{verb} %{path} %{proto}" %{status} %{size}`,
				Prefix:  "http.",
			},
			{
				Name:    "syslog",
				Pattern: "%{ts->} %{+ts} %{+ts} %{host} %{program}: %{message}",
			},
			{
				Name:          "kv",
				Pattern:       "%{?key}=%{&key}",
				IgnoreFailure: true,
			},
		},
	}
}

// LoadConfig decodes the rule file at path.
func LoadConfig(path string) (Config, error) {
	var config Config

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("error parsing %s: %w", path, err)
	}

	return config, nil
}

// LoadRules reads the rule file at path. Its signature fits
// internal.RuleLoader for rule file watching.
func LoadRules(path string) (string, []tt.ConfigRule, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return "", nil, err
	}
	return config.AppendSeparator, config.Rules, nil
}

// WriteConfig writes config as YAML to path.
func WriteConfig(path string, config Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
