package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jiralite/jl/internal/cache"
	"github.com/jiralite/jl/internal/config"
	"github.com/jiralite/jl/internal/coordinator"
	"github.com/jiralite/jl/internal/gateway"
	"github.com/jiralite/jl/internal/output"
	"github.com/jiralite/jl/internal/session"
	"github.com/jiralite/jl/internal/store"
)

var (
	version string
	verbose bool
)

// SetVersion sets the version string shown by the version command.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "jl",
	Short: "Issue tracker client with an optimistic local store",
	Long: `jl - A command line client for the issue tracker.

Mutations apply to the local store immediately and reconcile with the
server in the background; failures roll the local state back.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

func logger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// app bundles the wired client: config, session, gateway, store and
// coordinator, built once per invocation.
type app struct {
	cfg   *config.Config
	sess  *session.Session
	gw    gateway.Gateway
	coord *coordinator.Coordinator
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	sess := session.New(cfg.Token)
	sess.OnInvalidate(func() {
		if err := config.ClearToken(); err == nil {
			output.Warn("session expired, run: jl login")
		}
	})

	client := gateway.NewClient(cfg.ServerURL(), sess,
		gateway.WithUnauthorizedHook(sess.Invalidate))

	coord := coordinator.New(store.New(), client, sess, logger())
	return &app{cfg: cfg, sess: sess, gw: client, coord: coord}, nil
}

func (a *app) requireAuth() error {
	if !a.sess.Active() {
		return fmt.Errorf("not logged in (run: jl login)")
	}
	return nil
}

func (a *app) openCache() (*cache.Cache, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return cache.Open(dir)
}
