package position

import (
	"math"

	"github.com/tidwall/gjson"
)

// Contract sizes: how many exchange lots make up one coin of the underlying.
var lotsPerCoin = map[string]float64{
	AssetBTC: 1000,
	AssetETH: 100,
}

// LotsPerCoin returns the lot conversion for an asset; unclassified assets
// trade 1:1.
func LotsPerCoin(underlying string) float64 {
	if v, ok := lotsPerCoin[underlying]; ok {
		return v
	}
	return 1
}

// Row is one normalized, valuated position. A nil field means the source
// value was absent or non-numeric; formatting and sorting must preserve that
// distinction instead of collapsing it to zero.
type Row struct {
	Symbol     string
	Underlying string
	SizeLots   *float64
	SizeCoins  *float64
	EntryPrice *float64
	MarkPrice  *float64
	IndexPrice *float64
	UPNL       *float64
}

// Valuate combines a raw margined position, its embedded product metadata and
// the per-asset index map into a normalized row. Unrealized P&L is valued at
// mark against entry: shorts gain when mark drops below entry.
func Valuate(pos gjson.Result, index map[string]float64) Row {
	product := pos.Get("product")

	symbol := product.Get("symbol").String()
	if symbol == "" {
		symbol = pos.Get("symbol").String()
	}
	underlying := DetectUnderlying(product, symbol)

	row := Row{
		Symbol:     symbol,
		Underlying: underlying,
		SizeLots:   Float(pos.Get("size")),
		EntryPrice: Float(pos.Get("entry_price")),
		MarkPrice:  Float(pos.Get("mark_price")),
		IndexPrice: resolveIndexPrice(pos, product, underlying, index),
	}

	if row.SizeLots != nil && underlying != Unknown {
		coins := *row.SizeLots / LotsPerCoin(underlying)
		row.SizeCoins = &coins
	}
	if row.EntryPrice != nil && row.MarkPrice != nil && row.SizeCoins != nil {
		var upnl float64
		if *row.SizeCoins < 0 {
			upnl = (*row.EntryPrice - *row.MarkPrice) * math.Abs(*row.SizeCoins)
		} else {
			upnl = (*row.MarkPrice - *row.EntryPrice) * math.Abs(*row.SizeCoins)
		}
		row.UPNL = &upnl
	}
	return row
}

// resolveIndexPrice walks the index price sources in priority order and stops
// at the first one that coerces to a number: the position's own index_price
// field, the product's, the product's spot index descriptor, and finally the
// per-asset index map built from the ticker feed.
func resolveIndexPrice(pos, product gjson.Result, underlying string, index map[string]float64) *float64 {
	probes := []func() *float64{
		func() *float64 { return unwrapPrice(pos.Get("index_price")) },
		func() *float64 { return unwrapPrice(product.Get("index_price")) },
		func() *float64 {
			spot := product.Get("spot_index")
			if !spot.IsObject() {
				return nil
			}
			if v := Float(spot.Get("index_price")); v != nil {
				return v
			}
			return Float(spot.Get("spot_price"))
		},
		func() *float64 {
			if underlying == Unknown {
				return nil
			}
			if v, ok := index[underlying]; ok {
				return &v
			}
			return nil
		},
	}
	for _, probe := range probes {
		if v := probe(); v != nil {
			return v
		}
	}
	return nil
}

// unwrapPrice coerces a scalar price field, first unwrapping one level of
// object nesting ({"index_price": ..., "price": ...}) when the exchange sends
// the composite form.
func unwrapPrice(v gjson.Result) *float64 {
	if v.IsObject() {
		if f := Float(v.Get("index_price")); f != nil {
			return f
		}
		return Float(v.Get("price"))
	}
	return Float(v)
}
