// Package feed loads recorded market data from CSV exports into a
// market.Series. Files may be plain, gzip or xz compressed; columns
// are found by header name so the exporter's column order does not
// matter.
package feed

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/rustyeddy/mdsim/config"
	"github.com/rustyeddy/mdsim/market"
)

var (
	ErrNoHeader      = errors.New("missing header row")
	ErrMissingColumn = errors.New("missing column")
)

// Load reads the configured trade file, and the quote file when one
// is set, into a single series.
func Load(cfg config.DataConfig) (*market.Series, error) {
	trades, err := ReadTrades(cfg.Trades)
	if err != nil {
		return nil, fmt.Errorf("trades: %w", err)
	}

	s := &market.Series{Instrument: cfg.Instrument, Trades: trades}
	if cfg.BBO != "" {
		quotes, err := ReadBBO(cfg.BBO)
		if err != nil {
			return nil, fmt.Errorf("bbo: %w", err)
		}
		s.Quotes = quotes
	}
	return s, nil
}

// ReadTrades parses a trade export. Required columns:
//
//	local_timestamp,side,price,amount
//
// Rows come back stably sorted by timestamp, so ties keep their
// recorded order.
func ReadTrades(path string) ([]market.Trade, error) {
	rc, err := openData(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.FieldsPerRecord = -1

	cols, err := header(r, path)
	if err != nil {
		return nil, err
	}
	tsCol, err := cols.index("local_timestamp")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sideCol, err := cols.index("side")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	priceCol, err := cols.index("price")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	amountCol, err := cols.index("amount")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var out []market.Trade
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		var t market.Trade
		t.Timestamp, err = intCell(row, tsCol, "local_timestamp")
		if err == nil {
			t.Side, err = market.ParseSide(cell(row, sideCol))
		}
		if err == nil {
			t.Price, err = floatCell(row, priceCol, "price")
		}
		if err == nil {
			t.Amount, err = floatCell(row, amountCol, "amount")
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// ReadBBO parses a best bid/offer export. Required columns:
//
//	local_timestamp,ask_amount,ask_price,bid_price,bid_amount
func ReadBBO(path string) ([]market.BBO, error) {
	rc, err := openData(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.FieldsPerRecord = -1

	cols, err := header(r, path)
	if err != nil {
		return nil, err
	}
	names := []string{"local_timestamp", "ask_amount", "ask_price", "bid_price", "bid_amount"}
	idx := make([]int, len(names))
	for i, n := range names {
		if idx[i], err = cols.index(n); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	var out []market.BBO
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		var q market.BBO
		q.Timestamp, err = intCell(row, idx[0], "local_timestamp")
		if err == nil {
			q.AskAmount, err = floatCell(row, idx[1], "ask_amount")
		}
		if err == nil {
			q.AskPrice, err = floatCell(row, idx[2], "ask_price")
		}
		if err == nil {
			q.BidPrice, err = floatCell(row, idx[3], "bid_price")
		}
		if err == nil {
			q.BidAmount, err = floatCell(row, idx[4], "bid_amount")
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		out = append(out, q)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// openData opens path, transparently decompressing by extension.
func openData(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &decompressed{r: zr, f: f}, nil

	case ".xz":
		zr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &decompressed{r: zr, f: f}, nil
	}
	return f, nil
}

// decompressed pairs a decompressing reader with the file underneath
// it so Close releases the descriptor.
type decompressed struct {
	r io.Reader
	f *os.File
}

func (d *decompressed) Read(p []byte) (int, error) { return d.r.Read(p) }
func (d *decompressed) Close() error               { return d.f.Close() }

type colIndex map[string]int

func header(r *csv.Reader, path string) (colIndex, error) {
	row, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: %w", path, ErrNoHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cols := make(colIndex, len(row))
	for i, h := range row {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols, nil
}

func (c colIndex) index(name string) (int, error) {
	i, ok := c[name]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrMissingColumn, name)
	}
	return i, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func intCell(row []string, i int, name string) (int64, error) {
	v, err := strconv.ParseInt(cell(row, i), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q: %w", name, cell(row, i), err)
	}
	return v, nil
}

func floatCell(row []string, i int, name string) (float64, error) {
	v, err := strconv.ParseFloat(cell(row, i), 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q: %w", name, cell(row, i), err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s %v is not positive", name, v)
	}
	return v, nil
}
