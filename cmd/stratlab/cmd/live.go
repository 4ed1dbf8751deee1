package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stratlab/broker"
	"github.com/rustyeddy/stratlab/config"
	"github.com/rustyeddy/stratlab/data"
	"github.com/rustyeddy/stratlab/live"
	"github.com/rustyeddy/stratlab/notify"
	"github.com/rustyeddy/stratlab/store"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Run the paper-trading loop against current quotes",
	Long: `Live polls current quotes on a fixed interval and runs every configured
strategy each tick. Broker state is persisted between ticks so the loop
survives restarts. A kill switch stops the loop once aggregate drawdown
exceeds the configured fraction of session-start equity.

Example:
  stratlab live --config trader.yaml`,
	RunE: runLive,
}

var liveConfigPath string

func init() {
	rootCmd.AddCommand(liveCmd)

	liveCmd.Flags().StringVarP(&liveConfigPath, "config", "c", "", "path to config file (default: built-in five-policy set)")
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(liveConfigPath)
	if err != nil {
		return err
	}

	strats, err := cfg.BuildStrategies()
	if err != nil {
		return fmt.Errorf("build strategies: %w", err)
	}

	interval, err := cfg.Live.ParseInterval()
	if err != nil {
		return err
	}

	st, err := buildStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Notify.Topic != "" {
		notifier = notify.NewNtfy(cfg.Notify.Topic)
	}

	loop := live.New(strats, data.NewStooq(), live.Options{
		Interval:      interval,
		KillSwitchPct: cfg.Live.KillSwitchPct,
		Store:         st,
		Notifier:      notifier,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = loop.Run(ctx)
	if errors.Is(err, live.ErrKillSwitch) {
		// State is flushed and the event notified; stopping is the
		// intended outcome, not a failure.
		fmt.Println("kill switch tripped, loop stopped")
		return nil
	}
	return err
}

func buildStore(cfg config.StoreConfig) (broker.Store, error) {
	switch cfg.Type {
	case "file":
		dir := cfg.Dir
		if dir == "" {
			dir = "data"
		}
		return store.NewFileStore(dir)
	case "sqlite":
		path := cfg.DBPath
		if path == "" {
			path = "stratlab.sqlite"
		}
		return store.NewSQLiteStore(path)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}
