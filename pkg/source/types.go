package source

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DataType is the declared type of a column.
type DataType string

const (
	TypeInteger   DataType = "INTEGER"
	TypeInt       DataType = "INT"
	TypeReal      DataType = "REAL"
	TypeFloat     DataType = "FLOAT"
	TypeDouble    DataType = "DOUBLE"
	TypeDecimal   DataType = "DECIMAL"
	TypeText      DataType = "TEXT"
	TypeVarchar   DataType = "VARCHAR"
	TypeBoolean   DataType = "BOOLEAN"
	TypeBool      DataType = "BOOL"
	TypeDate      DataType = "DATE"
	TypeDatetime  DataType = "DATETIME"
	TypeTimestamp DataType = "TIMESTAMP"
	TypeBlob      DataType = "BLOB"
)

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
}

// ParseHeader splits "name (TYPE) *" into its parts.
func ParseHeader(header string) (name string, fieldType DataType, isKey bool) {
	header = strings.TrimSpace(header)
	if strings.HasSuffix(header, "*") {
		isKey = true
		header = strings.TrimSpace(strings.TrimSuffix(header, "*"))
	}

	name, fieldType = header, TypeText
	if idx := strings.LastIndex(header, "("); idx > 0 {
		if end := strings.LastIndex(header, ")"); end > idx {
			name = strings.TrimSpace(header[:idx])
			fieldType = DataType(strings.ToUpper(strings.TrimSpace(header[idx+1 : end])))
		}
	}
	return name, fieldType, isKey
}

// Convert turns a cell into a Go value of the column type. Empty cells of
// non-text columns and cells equal to nullLiteral become nil.
func Convert(raw string, fieldType DataType, nullLiteral string) (any, error) {
	if nullLiteral != "" && raw == nullLiteral {
		return nil, nil
	}

	switch fieldType {
	case TypeText, TypeVarchar:
		return raw, nil
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	switch fieldType {
	case TypeDecimal:
		// Kept textual so that no precision is lost on the way.
		return raw, nil
	case TypeInteger, TypeInt:
		return strconv.ParseInt(raw, 10, 64)
	case TypeReal, TypeFloat, TypeDouble:
		return strconv.ParseFloat(raw, 64)
	case TypeBoolean, TypeBool:
		return parseBool(raw)
	case TypeDate:
		return time.Parse(time.DateOnly, raw)
	case TypeDatetime, TypeTimestamp:
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("invalid datetime %q", raw)
	case TypeBlob:
		return base64.StdEncoding.DecodeString(raw)
	default:
		return nil, fmt.Errorf("unsupported column type %q", fieldType)
	}
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y":
		return true, nil
	case "0", "false", "f", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", raw)
}
