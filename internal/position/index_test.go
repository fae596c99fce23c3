package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func tickers(docs ...string) []gjson.Result {
	out := make([]gjson.Result, 0, len(docs))
	for _, d := range docs {
		out = append(out, gjson.Parse(d))
	}
	return out
}

func TestBuildIndexMapFirstMatchWins(t *testing.T) {
	index := BuildIndexMap(tickers(
		`{"symbol": "BTCUSD", "index_price": 50000}`,
		`{"symbol": "BTCUSDT", "index_price": 51000}`,
		`{"symbol": "ETHUSD", "spot_price": 3000}`,
	))
	assert.Equal(t, 50000.0, index[AssetBTC])
	assert.Equal(t, 3000.0, index[AssetETH])
}

func TestBuildIndexMapPriceKeyPriority(t *testing.T) {
	index := BuildIndexMap(tickers(
		`{"symbol": "BTCUSD", "index_price": 0, "spot_price": "", "last_traded_price": 49000, "mark_price": 48000}`,
	))
	assert.Equal(t, 49000.0, index[AssetBTC])
}

func TestBuildIndexMapSkipsUnusableTickers(t *testing.T) {
	index := BuildIndexMap(tickers(
		// Not USD-quoted.
		`{"symbol": "ETHBTC", "index_price": 0.05}`,
		// All price fields falsy.
		`{"symbol": "BTCUSD", "index_price": 0, "spot_price": null}`,
		// Truthy but not numeric.
		`{"symbol": "BTCUSD", "index_price": "n/a"}`,
		`{"symbol": "BTCUSD", "index_price": 47000}`,
	))
	assert.Equal(t, map[string]float64{AssetBTC: 47000}, index)
}

func TestBuildIndexMapSymbolMatchingBothAssets(t *testing.T) {
	// A symbol containing both asset names fills both slots.
	index := BuildIndexMap(tickers(
		`{"symbol": "ETHBTCUSD", "index_price": 123}`,
	))
	assert.Equal(t, 123.0, index[AssetBTC])
	assert.Equal(t, 123.0, index[AssetETH])
}

func TestBuildIndexMapEmptyInput(t *testing.T) {
	assert.Empty(t, BuildIndexMap(nil))
}
