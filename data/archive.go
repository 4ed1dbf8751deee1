package data

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"

	"github.com/rustyeddy/stratlab/market"
)

// LoadArchive loads a dataset bundle into one price table. Supported
// layouts: a .zip of long-format CSV files (one per instrument or mixed),
// an .xz-compressed CSV, or a plain CSV.
func LoadArchive(path string) (*market.Table, error) {
	switch {
	case strings.HasSuffix(path, ".zip"):
		return loadZip(path)
	default:
		return LoadCSVFile(path)
	}
}

func loadZip(path string) (*market.Table, error) {
	dir, err := os.MkdirTemp("", "stratlab-dataset-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := unzip.Extract(path, dir); err != nil {
		return nil, fmt.Errorf("extract %q: %w", path, err)
	}

	var table *market.Table
	err = filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		if !strings.HasSuffix(p, ".csv") && !strings.HasSuffix(p, ".csv.xz") {
			return nil
		}

		part, err := LoadCSVFile(p)
		if err != nil {
			return fmt.Errorf("load %q: %w", filepath.Base(p), err)
		}
		table, err = Merge(table, part)
		return err
	})
	if err != nil {
		return nil, err
	}
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("archive %q holds no CSV data", path)
	}
	return table, nil
}

func loadXZ(r io.Reader) (*market.Table, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xz stream: %w", err)
	}
	return LoadCSV(xr)
}
