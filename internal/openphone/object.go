package openphone

import (
	"bytes"
	"encoding/json"
)

// object is a JSON object whose members are held as raw bytes, so
// fields the relay does not model pass through unchanged.
type object map[string]json.RawMessage

func decodeObject(data []byte) (object, error) {
	var obj object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		obj = object{}
	}
	return obj, nil
}

func (o object) set(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	o[key] = b
	return nil
}

func (o object) encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]json.RawMessage(o)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// overlayPage re-encodes an upstream page with data, totalItems and
// nextPageToken taken from the typed page, plus any extra members.
// An empty token becomes null when upstream sent the key, and stays
// absent otherwise.
func overlayPage[T any](raw json.RawMessage, data []T, total int, next string, extra map[string]any) ([]byte, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []T{}
	}
	if err := obj.set("data", data); err != nil {
		return nil, err
	}
	if err := obj.set("totalItems", total); err != nil {
		return nil, err
	}
	switch _, sent := obj["nextPageToken"]; {
	case next != "":
		if err := obj.set("nextPageToken", next); err != nil {
			return nil, err
		}
	case sent:
		obj["nextPageToken"] = json.RawMessage("null")
	}
	for k, v := range extra {
		if err := obj.set(k, v); err != nil {
			return nil, err
		}
	}
	return obj.encode()
}
