package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"orderbatch/pkg/batch/support/configbinder"
	"orderbatch/pkg/batch/support/exception"
	"orderbatch/pkg/batch/support/logger"
)

// envPrefix is the prefix of environment variables that override
// configuration values, e.g. ORDERBATCH_DATABASE_DSN.
const envPrefix = "ORDERBATCH_"

// LoadConfig builds the application configuration in three layers:
// compiled-in defaults, the embedded YAML file (with ${VAR} placeholders
// expanded from the environment), and ORDERBATCH_* environment overrides.
func LoadConfig(embedded EmbeddedConfig) (*Config, error) {
	// A missing .env file is not an error; it is a local dev convenience.
	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file found, skipping. (%v)", err)
	}

	cfg := NewConfig()

	if len(embedded) > 0 {
		expanded := os.ExpandEnv(string(embedded))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, exception.NewBatchError(exception.ModuleConfig, "failed to unmarshal embedded config YAML", err)
		}
		logger.Debugf("Loaded embedded configuration (%d bytes).", len(embedded))
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, exception.NewBatchError(exception.ModuleConfig, "failed to apply environment variable overrides", err)
	}

	return cfg, nil
}

// applyEnvOverrides binds ORDERBATCH_<SECTION>_<KEY> environment variables
// onto the matching config section. The key after the section prefix is
// lowercased and matched against the section's yaml tags, so
// ORDERBATCH_SCHEDULER_INTERVAL_SECONDS maps to scheduler.interval_seconds.
func applyEnvOverrides(cfg *Config) error {
	sections := []struct {
		name   string
		target interface{}
	}{
		{"DATABASE", &cfg.Database},
		{"REPOSITORY", &cfg.Repository},
		{"LOGGING", &cfg.Logging},
		{"SCHEDULER", &cfg.Scheduler},
		{"JOB", &cfg.Job},
		{"METRICS", &cfg.Metrics},
	}

	for _, section := range sections {
		prefix := envPrefix + section.name + "_"
		props := make(map[string]string)
		for _, kv := range os.Environ() {
			key, value, ok := strings.Cut(kv, "=")
			if !ok || !strings.HasPrefix(key, prefix) {
				continue
			}
			props[strings.ToLower(strings.TrimPrefix(key, prefix))] = value
		}
		if len(props) == 0 {
			continue
		}
		if err := configbinder.BindProperties(props, section.target); err != nil {
			return err
		}
		logger.Debugf("Applied %d environment override(s) to section '%s'.", len(props), strings.ToLower(section.name))
	}

	return nil
}
