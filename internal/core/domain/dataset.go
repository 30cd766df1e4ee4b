package domain

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Dataset is the whole persisted document: top-level names mapped either to a
// collection of items or to any other JSON value, which is kept untouched.
type Dataset struct {
	names       []string
	collections map[string][]Item
	others      map[string]Value
}

func NewDataset() *Dataset {
	return &Dataset{
		collections: make(map[string][]Item),
		others:      make(map[string]Value),
	}
}

// Names returns every top-level name in document order.
func (d *Dataset) Names() []string {
	return slices.Clone(d.names)
}

// CollectionNames returns the names that hold collections, in document order.
func (d *Dataset) CollectionNames() []string {
	names := make([]string, 0, len(d.collections))
	for _, name := range d.names {
		if _, ok := d.collections[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

func (d *Dataset) Collection(name string) ([]Item, bool) {
	items, ok := d.collections[name]
	return items, ok
}

// SetCollection stores items under name, replacing whatever was there.
func (d *Dataset) SetCollection(name string, items []Item) {
	d.track(name)
	delete(d.others, name)
	if items == nil {
		items = []Item{}
	}
	d.collections[name] = items
}

// Put classifies a raw top-level value: an array made only of objects becomes
// a collection, anything else is kept verbatim.
func (d *Dataset) Put(name string, raw jsontext.Value) error {
	value, err := NewValue(raw)
	if err != nil {
		return fmt.Errorf("resource %q: %w", name, err)
	}

	if items, ok := asCollection(value); ok {
		d.SetCollection(name, items)
		return nil
	}

	d.track(name)
	delete(d.collections, name)
	d.others[name] = value
	return nil
}

// Entry returns the encoded value stored under name.
func (d *Dataset) Entry(name string) (jsontext.Value, bool, error) {
	if items, ok := d.collections[name]; ok {
		raw, err := json.Marshal(items)
		if err != nil {
			return nil, true, err
		}
		return raw, true, nil
	}

	if value, ok := d.others[name]; ok {
		return value.Raw(), true, nil
	}
	return nil, false, nil
}

func (d *Dataset) Clone() *Dataset {
	clone := NewDataset()
	clone.names = slices.Clone(d.names)

	for name, items := range d.collections {
		copied := make([]Item, len(items))
		for i, item := range items {
			copied[i] = item.Clone()
		}
		clone.collections[name] = copied
	}

	for name, value := range d.others {
		clone.others[name] = value
	}
	return clone
}

func (d *Dataset) track(name string) {
	if !slices.Contains(d.names, name) {
		d.names = append(d.names, name)
	}
}

func asCollection(value Value) ([]Item, bool) {
	if value.Kind() != KindArray {
		return nil, false
	}

	elems, err := value.Elements()
	if err != nil {
		return nil, false
	}

	items := make([]Item, 0, len(elems))
	for _, elem := range elems {
		if elem.Kind() != KindObject {
			return nil, false
		}

		item, err := ParseItem(elem.Raw())
		if err != nil {
			return nil, false
		}
		items = append(items, item)
	}
	return items, true
}

func (d *Dataset) MarshalJSONTo(enc *jsontext.Encoder) error {
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}

	for _, name := range d.names {
		if err := enc.WriteToken(jsontext.String(name)); err != nil {
			return err
		}

		if items, ok := d.collections[name]; ok {
			if err := json.MarshalEncode(enc, items); err != nil {
				return err
			}
			continue
		}

		if err := enc.WriteValue(d.others[name].Raw()); err != nil {
			return err
		}
	}

	return enc.WriteToken(jsontext.EndObject)
}

func (d *Dataset) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	tok, err := dec.ReadToken()
	if err != nil {
		return err
	}
	if tok.Kind() != '{' {
		return fmt.Errorf("dataset must be a JSON object, got %v", tok.Kind())
	}

	fresh := NewDataset()
	for {
		switch dec.PeekKind() {
		case '}':
			if _, err := dec.ReadToken(); err != nil {
				return err
			}
			*d = *fresh
			return nil

		case 0:
			_, err := dec.ReadToken()
			if err == nil {
				err = fmt.Errorf("unexpected end of dataset")
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
		if err := fresh.Put(key, raw); err != nil {
			return err
		}
	}
}

// ParseDataset decodes a whole document. Blank input is an empty dataset.
func ParseDataset(data []byte) (*Dataset, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewDataset(), nil
	}

	ds := NewDataset()
	if err := json.Unmarshal(data, ds); err != nil {
		return nil, err
	}
	return ds, nil
}
