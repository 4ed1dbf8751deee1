package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stratlab/data"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download daily price history into a dataset CSV",
	Long: `Fetch downloads daily close prices for a set of symbols and writes a
long-format CSV (time,instrument,close) suitable for the backtest command.

Example:
  stratlab fetch -s aapl.us -s msft.us --from 2024-01-01 --to 2024-12-31 -o prices.csv`,
	RunE: runFetch,
}

var (
	fetchSymbols []string
	fetchFrom    string
	fetchTo      string
	fetchOut     string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringArrayVarP(&fetchSymbols, "symbol", "s", nil, "symbol to fetch (repeatable) (required)")
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "start date (2006-01-02) (required)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "end date (2006-01-02), default: today")
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "prices.csv", "output CSV path")

	fetchCmd.MarkFlagRequired("symbol")
	fetchCmd.MarkFlagRequired("from")
}

func runFetch(cmd *cobra.Command, args []string) error {
	from, to, err := parseRange(fetchFrom, fetchTo)
	if err != nil {
		return err
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}

	fmt.Printf("Fetching %d symbols (%s -> %s)...\n",
		len(fetchSymbols), from.Format("2006-01-02"), to.Format("2006-01-02"))

	table, err := data.NewStooq().FetchDaily(context.Background(), fetchSymbols, from, to)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	f, err := os.Create(fetchOut)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "instrument", "close"}); err != nil {
		return err
	}
	for i := 0; i < table.Len(); i++ {
		ts := table.Time(i).Format("2006-01-02")
		snap := table.Row(i)
		for _, instr := range table.Instruments() {
			if price, ok := snap[instr]; ok {
				w.Write([]string{ts, instr, strconv.FormatFloat(price, 'f', -1, 64)})
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	fmt.Printf("Wrote %d rows to %s\n", table.Len(), fetchOut)
	return nil
}
