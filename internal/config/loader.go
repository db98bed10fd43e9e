package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const routingFile = "routing.yaml"

// LoadRouting loads the routing puzzle configuration.
// Search order: customPath -> ~/.routeboard/configs/routing.yaml -> ./configs/routing.yaml -> embedded default.
// Fields missing from a file keep their default values.
func LoadRouting(customPath string) (RoutingConfig, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return DefaultRoutingConfig(), fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parseRouting(data)
		if err != nil {
			return DefaultRoutingConfig(), fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	if userCfgPath := userConfigPath(routingFile); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parseRouting(data); err == nil {
				return cfg, nil
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join("configs", routingFile)); err == nil {
		if cfg, err := parseRouting(data); err == nil {
			return cfg, nil
		}
	}

	cfg, err := parseRouting(defaultRoutingYAML)
	if err != nil {
		return DefaultRoutingConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

func parseRouting(data []byte) (RoutingConfig, error) {
	cfg := DefaultRoutingConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".routeboard", "configs", filename)
}
