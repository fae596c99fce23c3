package position

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Float converts a raw payload field to a number, or nil when the field is
// absent, null, or not representable as one. This is the only path by which
// exchange payload values become numbers anywhere in the pipeline; it never
// panics, whatever the payload looks like.
func Float(v gjson.Result) *float64 {
	switch v.Type {
	case gjson.Number:
		f := v.Num
		return &f
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		// Objects, arrays, booleans and nulls carry no numeric meaning here;
		// nested price objects are unwrapped before they reach this point.
		return nil
	}
}

// truthy mirrors the exchange payload convention that zero, empty and null
// all mean "not provided" when walking fallback chains.
func truthy(v gjson.Result) bool {
	if !v.Exists() {
		return false
	}
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	case gjson.JSON:
		raw := strings.TrimSpace(v.Raw)
		return raw != "{}" && raw != "[]"
	}
	return true
}
