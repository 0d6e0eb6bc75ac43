package evidence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// NA is the marker emitted for any value that could not be derived.
const NA = "N/A"

type valueKind uint8

const (
	kindNA valueKind = iota
	kindNumber
	kindText
)

// Value is a leaf of a tool payload: a rounded number, a trimmed string, or
// the "N/A" marker. The zero Value is N/A.
type Value struct {
	kind valueKind
	num  float64
	text string
}

func NotAvailable() Value { return Value{} }

// Number rounds f to places decimals. NaN and Inf become N/A.
func Number(f float64, places int32) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	r, _ := decimal.NewFromFloat(f).Round(places).Float64()
	return Value{kind: kindNumber, num: r}
}

func Text(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" || s == NA {
		return Value{}
	}
	return Value{kind: kindText, text: s}
}

func (v Value) IsNA() bool { return v.kind == kindNA }

// Float returns the numeric value, if any.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == kindNumber
}

func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case kindText:
		return v.text
	default:
		return NA
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumber:
		return []byte(strconv.FormatFloat(v.num, 'f', -1, 64)), nil
	case kindText:
		return json.Marshal(v.text)
	default:
		return []byte(`"N/A"`), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("evidence value: %w", err)
	}
	*v = Value{kind: kindNumber, num: f}
	return nil
}

// ToFloat coerces numeric kinds, decimals and numeric strings. Booleans,
// nil, NaN and Inf are rejected.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case decimal.Decimal:
		f, _ = x.Float64()
	case *decimal.Decimal:
		if x == nil {
			return 0, false
		}
		f, _ = x.Float64()
	case Value:
		return x.Float()
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Serializable converts a raw source value into a payload leaf: numbers
// (and numeric strings) round to 4 decimals, other values become trimmed
// text, and nil or blank become N/A.
func Serializable(v any) Value {
	if f, ok := ToFloat(v); ok {
		return Number(f, 4)
	}
	switch x := v.(type) {
	case nil:
		return Value{}
	case Value:
		return x
	case string:
		return Text(x)
	default:
		return Text(fmt.Sprint(x))
	}
}

// PctChange is (current-previous)/|previous|*100 rounded to 2 decimals.
func PctChange(current, previous Value) Value {
	cur, ok := current.Float()
	if !ok {
		return Value{}
	}
	prev, ok := previous.Float()
	if !ok || prev == 0 {
		return Value{}
	}
	return Number((cur-prev)/math.Abs(prev)*100, 2)
}
