package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CellText is the canonical textual form of a cell, shared by every encoder
// so that all output formats agree byte-for-byte on cell content.
func CellText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// RowText renders every cell of a row with CellText.
func RowText(row Row) []string {
	fields := make([]string, len(row))
	for i, v := range row {
		fields[i] = CellText(v)
	}
	return fields
}
