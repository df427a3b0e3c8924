// Package config loads the optional YAML config file with the engine's
// tunables. Missing file or fields fall back to defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	// SnoozeDuration is added to a reminder's due instant when snoozed.
	SnoozeDuration Duration `yaml:"snooze_duration"`
	// SyncInterval is the cadence of the background session sync.
	SyncInterval Duration `yaml:"sync_interval"`
}

func Default() Config {
	return Config{
		SnoozeDuration: Duration(30 * time.Minute),
		SyncInterval:   Duration(6 * time.Hour),
	}
}

// Load reads the config at path. An empty path or a missing file yields
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.SnoozeDuration <= 0 {
		cfg.SnoozeDuration = Default().SnoozeDuration
	}
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = Default().SyncInterval
	}
	return cfg, nil
}
