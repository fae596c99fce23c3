package position

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Assets the monitor classifies. Everything else stays Unknown and is
// valuated without a lot conversion.
const (
	AssetBTC = "BTC"
	AssetETH = "ETH"
	Unknown  = ""
)

// Product metadata keys that may carry an underlying hint, in priority order.
var underlyingKeys = []string{
	"underlying_symbol",
	"underlying",
	"base_asset_symbol",
	"settlement_asset_symbol",
}

var wholeWordAsset = regexp.MustCompile(`\b(BTC|ETH)\b`)

// DetectUnderlying classifies the base asset of a contract from its product
// metadata, falling back to the contract symbol text. Malformed or missing
// metadata never fails the classification, it only narrows the signal: first
// the metadata keys above, then the spot index descriptor, then a whole-word
// match in the symbol, then bare substring containment.
func DetectUnderlying(product gjson.Result, fallbackSymbol string) string {
	if product.IsObject() {
		for _, key := range underlyingKeys {
			v := product.Get(key)
			if v.Type != gjson.String {
				continue
			}
			if asset := classify(v.Str); asset != Unknown {
				return asset
			}
		}
		if spot := product.Get("spot_index"); spot.IsObject() {
			if asset := classify(spot.Get("symbol").String()); asset != Unknown {
				return asset
			}
		}
	}
	txt := strings.ToUpper(fallbackSymbol)
	if m := wholeWordAsset.FindStringSubmatch(txt); m != nil {
		return m[1]
	}
	return classify(txt)
}

func classify(s string) string {
	s = strings.ToUpper(s)
	if strings.Contains(s, AssetBTC) {
		return AssetBTC
	}
	if strings.Contains(s, AssetETH) {
		return AssetETH
	}
	return Unknown
}
