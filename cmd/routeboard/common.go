package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/vovakirdan/routeboard/internal/core"
	"github.com/vovakirdan/routeboard/internal/games/routing"
	routingcore "github.com/vovakirdan/routeboard/internal/games/routing/core"
	"github.com/vovakirdan/routeboard/internal/storage"
)

// runtimeConfig builds the platform config from the terminal size and
// global flags.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	return cfg
}

// openStoreOrWarn opens the episodes database; failures only disable saving.
func openStoreOrWarn() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open episodes database: %v\n", err)
		return nil
	}
	return store
}

// variantRules resolves a variant id to its rules, or exits.
func variantRules(id string) (routing.Variant, routingcore.Rules) {
	v, ok := routing.VariantByID(id)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown variant %q\n", id)
		fmt.Fprintln(os.Stderr, "Run 'routeboard list' to see available variants.")
		os.Exit(1)
	}
	rules, err := routing.LoadRules(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using %s defaults)\n", err, v.Preset)
	}
	return v, rules
}

// variantArg returns the optional variant argument.
func variantArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return routing.Variants[0].ID
}
