package engine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

// ErrMissingColumn is returned when the CSV header lacks profit_loss.
var ErrMissingColumn = errors.New("missing required column: profit_loss")

// ErrNoTrades is returned for a CSV with a header and no rows.
var ErrNoTrades = errors.New("no trades found in file")

// ParseCSV reads trades from a CSV with a header row. Only profit_loss is
// required. Columns reports which optional columns were present.
func ParseCSV(r io.Reader) ([]models.Trade, Columns, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, Columns{}, ErrNoTrades
		}
		return nil, Columns{}, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx["profit_loss"]; !ok {
		return nil, Columns{}, ErrMissingColumn
	}
	has := func(names ...string) bool {
		for _, n := range names {
			if _, ok := idx[n]; !ok {
				return false
			}
		}
		return true
	}
	cols := Columns{
		Sizing:   has("lot_size", "account_balance_before"),
		StopLoss: has("stop_loss"),
		Times:    has("entry_time", "exit_time"),
		Symbol:   has("symbol"),
	}

	var trades []models.Trade
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, Columns{}, fmt.Errorf("line %d: %w", line, err)
		}
		field := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		num := func(name string) (float64, error) {
			s := field(name)
			if s == "" {
				return 0, nil
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, fmt.Errorf("line %d: %s: %w", line, name, err)
			}
			return v, nil
		}

		var t models.Trade
		if t.ProfitLoss, err = num("profit_loss"); err != nil {
			return nil, Columns{}, err
		}
		if t.LotSize, err = num("lot_size"); err != nil {
			return nil, Columns{}, err
		}
		if t.AccountBalanceBefore, err = num("account_balance_before"); err != nil {
			return nil, Columns{}, err
		}
		if s := field("stop_loss"); s != "" {
			v, err := num("stop_loss")
			if err != nil {
				return nil, Columns{}, err
			}
			t.StopLoss = &v
		}
		if s := field("trade_id"); s != "" {
			t.TradeID = s
		} else {
			t.TradeID = line - 1
		}
		t.EntryTime = field("entry_time")
		t.ExitTime = field("exit_time")
		t.Symbol = field("symbol")
		trades = append(trades, t)
	}
	if len(trades) == 0 {
		return nil, Columns{}, ErrNoTrades
	}
	return trades, cols, nil
}
