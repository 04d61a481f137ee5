package models

// Raw row helpers. Rows read straight from the store arrive as
// map[string]any with driver-dependent value types (int64, float64, bool,
// []byte, string, nil). Missing columns default to the zero value so that
// rows written by older schema versions keep constructing.

// RowString reads a string column from a raw row.
func RowString(row map[string]any, key string) string {
	switch v := row[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// RowInt reads an integer column from a raw row.
func RowInt(row map[string]any, key string) int {
	switch v := row[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// RowBool reads a boolean column from a raw row.
func RowBool(row map[string]any, key string) bool {
	switch v := row[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v == "1" || v == "true"
	default:
		return false
	}
}

func rowString(row map[string]any, key string) string { return RowString(row, key) }
func rowInt(row map[string]any, key string) int       { return RowInt(row, key) }
func rowBool(row map[string]any, key string) bool     { return RowBool(row, key) }
