package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stratlab/backtest"
	"github.com/rustyeddy/stratlab/config"
	"github.com/rustyeddy/stratlab/data"
	"github.com/rustyeddy/stratlab/journal"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay a historical price table through the configured strategies",
	Long: `Backtest replays daily prices through every configured strategy, each
with its own broker, and prints a results table with equity, ROI, trade
counts and buy-and-hold benchmarks.

The dataset is a long-format CSV (time,instrument,close), optionally
xz-compressed or bundled in a zip archive.

Example:
  stratlab backtest --data prices.csv --from 2024-01-01 --to 2024-12-31`,
	RunE: runBacktest,
}

var (
	btConfigPath string
	btDataPath   string
	btFrom       string
	btTo         string
	btJournalDB  string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to config file (default: built-in five-policy set)")
	backtestCmd.Flags().StringVarP(&btDataPath, "data", "d", "", "path to price dataset (.csv, .csv.xz or .zip) (required)")
	backtestCmd.Flags().StringVar(&btFrom, "from", "", "start date (2006-01-02), default: dataset start")
	backtestCmd.Flags().StringVar(&btTo, "to", "", "end date (2006-01-02), default: dataset end")
	backtestCmd.Flags().StringVarP(&btJournalDB, "journal", "j", "", "path to SQLite journal (optional)")

	backtestCmd.MarkFlagRequired("data")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(btConfigPath)
	if err != nil {
		return err
	}

	strats, err := cfg.BuildStrategies()
	if err != nil {
		return fmt.Errorf("build strategies: %w", err)
	}

	table, err := data.LoadArchive(btDataPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	from, to, err := parseRange(btFrom, btTo)
	if err != nil {
		return err
	}

	engine := backtest.New(from, to, strats, table)
	if btJournalDB != "" {
		j, err := journal.NewSQLite(btJournalDB)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()
		engine.SetJournal(j)
	}

	results, err := engine.Run(context.Background())
	if err != nil {
		return err
	}

	results.Print(os.Stdout)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(path)
}

func parseRange(fromStr, toStr string) (from, to time.Time, err error) {
	if fromStr != "" {
		from, err = time.Parse("2006-01-02", fromStr)
		if err != nil {
			return from, to, fmt.Errorf("bad --from: %w", err)
		}
	}
	if toStr != "" {
		to, err = time.Parse("2006-01-02", toStr)
		if err != nil {
			return from, to, fmt.Errorf("bad --to: %w", err)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, fmt.Errorf("--to must not be before --from")
	}
	return from, to, nil
}
