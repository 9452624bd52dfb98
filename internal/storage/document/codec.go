package document

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Codec переводит сущность V в документ и обратно.
type Codec[V any] interface {
	ToDocument(v V) Document
	FromDocument(doc Document) (V, error)
	ID(v V) string
	WithID(v V, id string) V
}

// String читает строковое поле. Отсутствующее поле даёт пустую строку.
func (d Document) String(key string) (string, error) {
	switch v := d[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("field %q: expected string, got %T", key, v)
	}
}

// Int читает целое поле в любом числовом представлении бэкендов.
func (d Document) Int(key string) (int64, error) {
	switch v := d[key].(type) {
	case nil:
		return 0, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("field %q: %v is not an integer", key, v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("field %q: expected integer, got %T", key, v)
	}
}

// Decimal читает денежное поле. Хранится строкой, числа тоже принимаются.
func (d Document) Decimal(key string) (decimal.Decimal, error) {
	switch v := d[key].(type) {
	case nil:
		return decimal.Zero, nil
	case string:
		return decimal.NewFromString(v)
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case fmt.Stringer:
		return decimal.NewFromString(v.String())
	default:
		return decimal.Zero, fmt.Errorf("field %q: expected decimal, got %T", key, v)
	}
}
