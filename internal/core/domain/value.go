package domain

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Kind tags the JSON type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// undefinedText is what a missing field renders as when compared as text.
const undefinedText = "undefined"

var nullRaw = jsontext.Value("null")

// Value is a single JSON value kept in its encoded form, so numbers and nested
// objects round-trip exactly as they were read.
type Value struct {
	raw jsontext.Value
}

// NewValue validates raw and wraps a private copy of it.
func NewValue(raw jsontext.Value) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if !raw.IsValid() {
		return Value{}, fmt.Errorf("invalid JSON value: %q", raw)
	}
	return Value{raw: raw.Clone()}, nil
}

// StringValue returns a JSON string value.
func StringValue(s string) Value {
	raw, err := jsontext.AppendQuote(nil, s)
	if err != nil {
		// invalid UTF-8 is the only failure; the quoted form still replaces it
		raw, _ = json.Marshal(s)
	}
	return Value{raw: raw}
}

// Raw returns the encoded JSON of the value. The zero Value encodes as null.
func (v Value) Raw() jsontext.Value {
	if len(v.raw) == 0 {
		return nullRaw
	}
	return v.raw
}

func (v Value) Kind() Kind {
	if len(v.raw) == 0 {
		return KindNull
	}

	switch v.raw[0] {
	case 'n':
		return KindNull
	case 't', 'f':
		return KindBool
	case '"':
		return KindString
	case '[':
		return KindArray
	case '{':
		return KindObject
	default:
		return KindNumber
	}
}

// Text renders the value the way loose string comparisons see it: strings
// unquoted, arrays joined with commas and objects as an opaque marker.
func (v Value) Text() string {
	switch v.Kind() {
	case KindNull:
		return "null"

	case KindBool:
		return string(v.raw)

	case KindString:
		var s string
		if err := json.Unmarshal(v.raw, &s); err != nil {
			return string(v.raw)
		}
		return s

	case KindNumber:
		if bytes.ContainsAny(v.raw, ".eE") {
			if f, err := strconv.ParseFloat(string(v.raw), 64); err == nil {
				return strconv.FormatFloat(f, 'f', -1, 64)
			}
		}
		return string(v.raw)

	case KindArray:
		elems, err := v.Elements()
		if err != nil {
			return string(v.raw)
		}

		parts := make([]string, len(elems))
		for i, elem := range elems {
			// null members of an array render empty
			if elem.Kind() != KindNull {
				parts[i] = elem.Text()
			}
		}
		return strings.Join(parts, ",")

	default:
		return "[object Object]"
	}
}

// Number returns the numeric view of the value: JSON numbers, and strings
// whose trimmed text is a finite number.
func (v Value) Number() (float64, bool) {
	var text string
	switch v.Kind() {
	case KindNumber:
		text = string(v.raw)
	case KindString:
		text = strings.TrimSpace(v.Text())
	default:
		return 0, false
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Elements decodes the members of an array value.
func (v Value) Elements() ([]Value, error) {
	if v.Kind() != KindArray {
		return nil, fmt.Errorf("value is a %s, not an array", v.Kind())
	}

	dec := jsontext.NewDecoder(bytes.NewReader(v.raw))
	if _, err := dec.ReadToken(); err != nil {
		return nil, err
	}

	var elems []Value
	for dec.PeekKind() != ']' {
		raw, err := dec.ReadValue()
		if err != nil {
			return nil, err
		}
		elems = append(elems, Value{raw: raw.Clone()})
	}
	return elems, nil
}

// TextOf renders an optional value; a missing value is "undefined".
func TextOf(v Value, ok bool) string {
	if !ok {
		return undefinedText
	}
	return v.Text()
}

func (v Value) MarshalJSONTo(enc *jsontext.Encoder) error {
	return enc.WriteValue(v.Raw())
}

func (v *Value) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	raw, err := dec.ReadValue()
	if err != nil {
		return err
	}
	v.raw = raw.Clone()
	return nil
}
