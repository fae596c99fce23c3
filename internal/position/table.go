package position

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Table holds one refresh cycle's valuated rows, sorted by absolute UPNL
// descending with unvalued rows pinned last, and indexed by contract symbol.
type Table struct {
	Rows     []Row
	bySymbol map[string]int
}

// BuildTable valuates every raw position in input order, then sorts and
// indexes the result. The sort is stable so equal-magnitude rows keep their
// exchange ordering.
func BuildTable(positions []gjson.Result, index map[string]float64) *Table {
	rows := make([]Row, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, Valuate(p, index))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return sortKey(rows[i]) > sortKey(rows[j])
	})
	by := make(map[string]int, len(rows))
	for i, r := range rows {
		if _, ok := by[r.Symbol]; !ok {
			by[r.Symbol] = i
		}
	}
	return &Table{Rows: rows, bySymbol: by}
}

// sortKey is |UPNL|, with "no value" below every real number.
func sortKey(r Row) float64 {
	if r.UPNL == nil {
		return math.Inf(-1)
	}
	return math.Abs(*r.UPNL)
}

// Lookup returns the row for a contract symbol; the first row wins when the
// exchange reports a symbol twice.
func (t *Table) Lookup(symbol string) (Row, bool) {
	if t == nil {
		return Row{}, false
	}
	i, ok := t.bySymbol[symbol]
	if !ok {
		return Row{}, false
	}
	return t.Rows[i], true
}

// FormattedRow carries display strings: lot size at 0 decimals, everything
// else at 2. An empty string means the value never resolved; it must not be
// rendered as 0.00.
type FormattedRow struct {
	Symbol     string `json:"symbol"`
	SizeLots   string `json:"size_lots,omitempty"`
	SizeCoins  string `json:"size_coins,omitempty"`
	EntryPrice string `json:"entry_price,omitempty"`
	IndexPrice string `json:"index_price,omitempty"`
	MarkPrice  string `json:"mark_price,omitempty"`
	UPNL       string `json:"upnl_usd,omitempty"`
}

// Format renders every row for display, preserving table order.
func (t *Table) Format() []FormattedRow {
	if t == nil {
		return nil
	}
	out := make([]FormattedRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, FormattedRow{
			Symbol:     r.Symbol,
			SizeLots:   fixed(r.SizeLots, 0),
			SizeCoins:  fixed(r.SizeCoins, 2),
			EntryPrice: fixed(r.EntryPrice, 2),
			IndexPrice: fixed(r.IndexPrice, 2),
			MarkPrice:  fixed(r.MarkPrice, 2),
			UPNL:       fixed(r.UPNL, 2),
		})
	}
	return out
}

func fixed(v *float64, places int32) string {
	if v == nil {
		return ""
	}
	return decimal.NewFromFloat(*v).StringFixed(places)
}
