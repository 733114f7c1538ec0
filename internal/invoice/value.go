package invoice

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

type valueKind uint8

const (
	kindNull valueKind = iota
	kindNumber
	kindText
)

// Value is a scalar extracted from a document: null, a number or a piece of text.
// The zero Value is null.
type Value struct {
	kind valueKind
	num  float64
	text string
}

// Number returns a numeric Value
func Number(f float64) Value {
	return Value{kind: kindNumber, num: f}
}

// Text returns a text Value
func Text(s string) Value {
	return Value{kind: kindText, text: s}
}

// IsNull reports whether the value is absent
func (v Value) IsNull() bool {
	return v.kind == kindNull
}

// IsNumber reports whether the value holds a number
func (v Value) IsNumber() bool {
	return v.kind == kindNumber
}

// Float returns the numeric value and whether the value is numeric
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == kindNumber
}

// IsEmpty reports whether the value is null or empty text
func (v Value) IsEmpty() bool {
	return v.kind == kindNull || (v.kind == kindText && v.text == "")
}

// String renders the value the way it appears in exports: numbers in their
// shortest exact decimal form, text unchanged and null as "".
func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return formatFloat(v.num)
	case kindText:
		return v.text
	default:
		return ""
	}
}

// Any returns nil, a float64 or a string
func (v Value) Any() any {
	switch v.kind {
	case kindNumber:
		return v.num
	case kindText:
		return v.text
	default:
		return nil
	}
}

// MarshalJSON encodes the value as a JSON number, string or null
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return []byte(formatFloat(v.num)), nil
	case kindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON scalar. Booleans, objects and arrays are kept
// as their JSON text so that nothing from the extractor is lost.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = Value{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			*v = Text(string(data))
			return nil
		}
		*v = Number(f)
	default:
		*v = Text(string(data))
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
