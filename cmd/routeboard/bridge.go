package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/routeboard/internal/bridge"
	"github.com/vovakirdan/routeboard/internal/games/routing"
	routingcore "github.com/vovakirdan/routeboard/internal/games/routing/core"
)

var (
	flagBridgeAddr   string
	flagBridgeRouter string
	flagBridgeNoSave bool
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Start the websocket environment server",
	Long: `Serve the environment to external agents over a websocket.

Connect to ws://<addr>/env?variant=<id>&seed=<n>. Each connection owns one
environment. Messages are JSON envelopes {"type": ..., "data": ...}:

  reset    {"seed": 42}          -> observation
  step     {"action": [...]}     -> observation (reward, terminated, score)
  render                         -> render {"text": ...}
  rules                          -> rules of the variant
  suggest                        -> action proposed by the baseline router

Finished episodes are stored with source "bridge" unless --no-save is set.

Examples:
  routeboard bridge
  routeboard bridge --addr 127.0.0.1:9000 --router random`,
	Run: runBridge,
}

func init() {
	bridgeCmd.Flags().StringVar(&flagBridgeAddr, "addr", ":8765", "HTTP listen address (host:port)")
	bridgeCmd.Flags().StringVar(&flagBridgeRouter, "router", "flow", "Router answering suggest requests")
	bridgeCmd.Flags().BoolVar(&flagBridgeNoSave, "no-save", false, "Do not store finished episodes")
}

func runBridge(_ *cobra.Command, _ []string) {
	cfg := bridge.DefaultConfig()
	cfg.Address = flagBridgeAddr
	cfg.Router = flagBridgeRouter
	cfg.Variants = make(map[string]routingcore.Rules, len(routing.Variants))
	for _, v := range routing.Variants {
		rules, err := routing.LoadRules(v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using %s defaults for %s)\n", err, v.Preset, v.ID)
		}
		cfg.Variants[v.ID] = rules
	}
	cfg.DefaultVariant = routing.Variants[0].ID

	if !flagBridgeNoSave {
		if store := openStoreOrWarn(); store != nil {
			defer store.Close()
			cfg.Store = store
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Agents connect to ws://%s/env\n", flagBridgeAddr)
	if err := bridge.NewServer(cfg).ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
