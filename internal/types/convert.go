// Package types contains shared value types and conversions used across packages.
package types

import "strconv"

// Row holds a single row's values, aligned with the column list it was
// fetched with.
type Row []interface{}

// ToInt64 converts a scanned database value to int64.
// The MySQL driver returns int64 for integer columns but may return []byte
// for values fetched without type information (e.g. MAX() aggregates),
// so textual forms are parsed as well.
func ToInt64(v interface{}) (int64, bool) {
	switch i := v.(type) {
	case int64:
		return i, true
	case int:
		return int64(i), true
	case int32:
		return int64(i), true
	case int16:
		return int64(i), true
	case int8:
		return int64(i), true
	case uint:
		return int64(i), true
	case uint64:
		return int64(i), true
	case uint32:
		return int64(i), true
	case uint16:
		return int64(i), true
	case uint8:
		return int64(i), true
	case float64:
		return int64(i), true
	case float32:
		return int64(i), true
	case []byte:
		n, err := strconv.ParseInt(string(i), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(i, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
