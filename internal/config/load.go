package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a typecore.yaml file at path, overlaying its fields onto
// Default(). A missing file is not an error — it just yields defaults,
// mirroring the teacher's own ext/config.go tolerance for absent config.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.WidenThreshold <= 0 {
		cfg.WidenThreshold = Default().WidenThreshold
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = Default().LogLevel
	}
	return cfg, nil
}
