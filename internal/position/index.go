package position

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Ticker fields tried for a representative price, in priority order.
var tickerPriceKeys = []string{"index_price", "spot_price", "last_traded_price", "mark_price"}

// BuildIndexMap extracts one representative USD price per asset from the raw
// ticker list. Only USD-quoted tickers qualify, zero and unparseable prices
// never do, and the first qualifying ticker per asset wins: later tickers for
// the same asset are ignored.
func BuildIndexMap(tickers []gjson.Result) map[string]float64 {
	index := make(map[string]float64, 2)
	for _, t := range tickers {
		var price *float64
		for _, key := range tickerPriceKeys {
			if v := t.Get(key); truthy(v) {
				price = Float(v)
				break
			}
		}
		if price == nil || *price == 0 {
			continue
		}
		sym := strings.ToUpper(t.Get("symbol").String())
		if !strings.Contains(sym, "USD") {
			continue
		}
		if strings.Contains(sym, AssetBTC) {
			if _, ok := index[AssetBTC]; !ok {
				index[AssetBTC] = *price
			}
		}
		if strings.Contains(sym, AssetETH) {
			if _, ok := index[AssetETH]; !ok {
				index[AssetETH] = *price
			}
		}
	}
	return index
}
