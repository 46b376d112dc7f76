package base

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// timeLayout понимают MySQL DATETIME(6) и функции дат SQLite
const timeLayout = "2006-01-02 15:04:05.999999"

// ValueFormatter преобразует значения Go в SQL литералы.
// СУБД различаются только экранированием строк
type ValueFormatter struct {
	// EscapeString экранирует s для вставки между одинарными кавычками
	EscapeString func(s string) string
}

// FormatValue преобразует v в литерал: NULL, числа, строки в кавычках,
// X'..' для бинарных данных и даты в кавычках
func (f ValueFormatter) FormatValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if val {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.FormatInt(int64(val), 10), nil
	case int8:
		return strconv.FormatInt(int64(val), 10), nil
	case int16:
		return strconv.FormatInt(int64(val), 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float32:
		return formatFloat(float64(val), 32)
	case float64:
		return formatFloat(val, 64)
	case string:
		return f.quote(val), nil
	case []byte:
		if val == nil {
			return "NULL", nil
		}
		return "X'" + hex.EncodeToString(val) + "'", nil
	case time.Time:
		if val.IsZero() {
			return "NULL", nil
		}
		return f.quote(val.Format(timeLayout)), nil
	case json.RawMessage:
		return f.quote(string(val)), nil
	case fmt.Stringer:
		return f.quote(val.String()), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func (f ValueFormatter) quote(s string) string {
	return "'" + f.EscapeString(s) + "'"
}

func formatFloat(v float64, bits int) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("cannot store %v as SQL number", v)
	}
	return strconv.FormatFloat(v, 'g', -1, bits), nil
}

// FormatRow преобразует строку в "(v1,v2,...)"
func (f ValueFormatter) FormatRow(row []any) (string, error) {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		lit, err := f.FormatValue(v)
		if err != nil {
			return "", fmt.Errorf("value %d: %w", i+1, err)
		}
		b.WriteString(lit)
	}
	b.WriteByte(')')
	return b.String(), nil
}

// BackslashEscape экранирует s так, как ожидает MySQL в sql_mode по умолчанию
func BackslashEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	// Побайтово: экранируются только ASCII символы,
	// остальные байты (в том числе не UTF-8) копируются как есть
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\x00':
			b.WriteString(`\0`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '"':
			b.WriteString(`\"`)
		case '\x1a':
			b.WriteString(`\Z`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// DoubleQuoteEscape удваивает одинарные кавычки (стандартный SQL, SQLite)
func DoubleQuoteEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
