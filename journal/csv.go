package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSV struct {
	fills  *csv.Writer
	equity *csv.Writer
	ff, ef *os.File
}

func NewCSV(fillsPath, equityPath string) (*CSV, error) {
	ff, err := os.Create(fillsPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		ff.Close()
		return nil, err
	}

	fw := csv.NewWriter(ff)
	ew := csv.NewWriter(ef)

	if err := fw.Write([]string{"id", "strategy", "time", "action", "instrument", "price", "quantity", "fee", "balance", "realized_pl"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"strategy", "time", "equity"}); err != nil {
		return nil, err
	}

	fw.Flush()
	if err := fw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSV{fills: fw, equity: ew, ff: ff, ef: ef}, nil
}

func (j *CSV) RecordFill(rec Fill) error {
	j.fills.Write([]string{
		rec.ID,
		rec.Strategy,
		rec.Time.Format(time.RFC3339),
		rec.Action,
		rec.Instrument,
		f(rec.Price),
		f(rec.Quantity),
		f(rec.Fee),
		f(rec.Balance),
		f(rec.RealizedPL),
	})
	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSV) RecordEquity(rec EquityMark) error {
	err := j.equity.Write([]string{
		rec.Strategy,
		rec.Time.Format(time.RFC3339),
		f(rec.Equity),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	j.fills.Flush()
	if err := j.fills.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.ff.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
