package domain

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

const idField = "id"

// Field is a single named member of an Item.
type Field struct {
	Name  string
	Value Value
}

// Item is one schema-free record. Fields keep the order they were decoded or
// set in, so an item is written back exactly as it was read.
type Item struct {
	fields []Field
}

func NewItem(fields ...Field) Item {
	return Item{fields: fields}
}

// ParseItem decodes a JSON object into an Item.
func ParseItem(data []byte) (Item, error) {
	var item Item
	if err := json.Unmarshal(data, &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (it Item) Len() int {
	return len(it.fields)
}

// Fields returns the item's fields in order. The slice must not be modified.
func (it Item) Fields() []Field {
	return it.fields
}

func (it Item) Get(name string) (Value, bool) {
	for _, f := range it.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Set replaces the named field in place, or appends it when absent.
func (it *Item) Set(name string, value Value) {
	for i := range it.fields {
		if it.fields[i].Name == name {
			it.fields[i].Value = value
			return
		}
	}
	it.fields = append(it.fields, Field{Name: name, Value: value})
}

func (it Item) ID() (string, bool) {
	v, ok := it.Get(idField)
	if !ok {
		return "", false
	}
	return v.Text(), true
}

// SetID stores id as a JSON string. A missing id field is placed first.
func (it *Item) SetID(id string) {
	value := StringValue(id)
	if _, ok := it.Get(idField); ok {
		it.Set(idField, value)
		return
	}

	fields := make([]Field, 0, len(it.fields)+1)
	fields = append(fields, Field{Name: idField, Value: value})
	it.fields = append(fields, it.fields...)
}

func (it Item) Clone() Item {
	if it.fields == nil {
		return Item{}
	}
	fields := make([]Field, len(it.fields))
	copy(fields, it.fields)
	return Item{fields: fields}
}

func (it Item) MarshalJSONTo(enc *jsontext.Encoder) error {
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}

	for _, f := range it.fields {
		if err := enc.WriteToken(jsontext.String(f.Name)); err != nil {
			return err
		}
		if err := enc.WriteValue(f.Value.Raw()); err != nil {
			return err
		}
	}

	return enc.WriteToken(jsontext.EndObject)
}

func (it *Item) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	tok, err := dec.ReadToken()
	if err != nil {
		return err
	}
	if tok.Kind() != '{' {
		return fmt.Errorf("item must be a JSON object, got %v", tok.Kind())
	}

	fields := make([]Field, 0)
	for {
		switch dec.PeekKind() {
		case '}':
			if _, err := dec.ReadToken(); err != nil {
				return err
			}
			it.fields = fields
			return nil

		case 0:
			// surfaces the underlying syntax or IO error
			_, err := dec.ReadToken()
			if err == nil {
				err = fmt.Errorf("unexpected end of item")
			}
			return err
		}

		name, err := dec.ReadToken()
		if err != nil {
			return err
		}
		key := name.String()

		raw, err := dec.ReadValue()
		if err != nil {
			return err
		}
		fields = append(fields, Field{Name: key, Value: Value{raw: raw.Clone()}})
	}
}
