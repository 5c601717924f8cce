package render

import (
	"math"
	"strconv"
	"strings"
)

type int64er interface {
	Int64() (int64, error)
}

type float64er interface {
	Float64() (float64, error)
}

// numeric unwraps store number types so spreadsheet cells are typed as numbers.
// Anything that is not a number passes through untouched.
func numeric(value any) any {
	switch n := value.(type) {
	case int64er:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, ok := n.(float64er); ok {
			if v, err := f.Float64(); err == nil {
				return v
			}
		}
	}
	return value
}

func toInt64(value any) (int64, bool) {
	switch n := value.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	case int64er:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}
