package config

import (
	_ "embed"

	"github.com/vovakirdan/routeboard/internal/games/routing/core"
)

//go:embed defaults/routing.yaml
var defaultRoutingYAML []byte

// DefaultRoutingConfig returns the standard rule set in YAML form.
func DefaultRoutingConfig() RoutingConfig {
	return FromRules(core.StandardRules())
}

// DefaultYAML returns the embedded default routing.yaml.
func DefaultYAML() []byte {
	return defaultRoutingYAML
}
