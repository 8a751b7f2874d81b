package revista

import (
	"bytes"
	"encoding/json"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// Extra holds JSON object members a type does not model, so they survive a
// decode/encode round trip.
type Extra map[string]json.RawMessage

var knownKeysCache sync.Map // reflect.Type -> map[string]bool

// knownKeys lists the JSON member names of a struct type, including those of
// embedded structs.
func knownKeys(t reflect.Type) map[string]bool {
	if cached, ok := knownKeysCache.Load(t); ok {
		return cached.(map[string]bool)
	}
	keys := make(map[string]bool)
	collectKeys(t, keys)
	knownKeysCache.Store(t, keys)
	return keys
}

func collectKeys(t reflect.Type, keys map[string]bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			collectKeys(f.Type, keys)
			continue
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		keys[name] = true
	}
}

// decodeWithExtra decodes data into v (a pointer to a struct without custom
// unmarshalling) and returns the members v did not claim. Keys listed in
// skip are neither decoded nor kept.
func decodeWithExtra(data []byte, v any, skip ...string) (Extra, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	known := knownKeys(reflect.TypeOf(v).Elem())
	var extra Extra
	for k, raw := range all {
		if known[k] || slices.Contains(skip, k) {
			continue
		}
		if extra == nil {
			extra = make(Extra)
		}
		extra[k] = raw
	}
	return extra, nil
}

// encodeWithExtra encodes v and merges extra members and, when typ is set,
// the "type" discriminator. Modeled fields win over extra ones.
func encodeWithExtra(v any, extra Extra, typ string) ([]byte, error) {
	data, err := marshalRaw(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 && typ == "" {
		return data, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := obj[k]; !ok {
			obj[k] = raw
		}
	}
	if typ != "" {
		obj["type"], _ = marshalRaw(typ)
	}
	return marshalRaw(obj)
}

// marshalRaw is json.Marshal without HTML escaping, so text keeps its
// literal <, > and & on every nesting level.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
