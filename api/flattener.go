package api

import (
	"errors"
	"slices"
)

// ErrPayloadNotObject is returned when a submission's top level is not an object
var ErrPayloadNotObject = errors.New("submission payload must be a JSON object")

// ExtractLeafNames collects every key whose value is a scalar, at any depth.
// Keys holding objects or arrays are branches and are walked, not emitted.
// The result is sorted and free of duplicates.
func ExtractLeafNames(payload *Value) []string {
	seen := make(map[string]struct{})
	collectLeafNames(payload, seen)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func collectLeafNames(v *Value, seen map[string]struct{}) {
	if v == nil {
		return
	}
	switch v.Kind() {
	case ValueObject:
		for _, m := range v.Members() {
			if m.Value.IsScalar() {
				seen[m.Key] = struct{}{}
				continue
			}
			collectLeafNames(m.Value, seen)
		}
	case ValueArray:
		for _, e := range v.Elements() {
			collectLeafNames(e, seen)
		}
	}
}

// Flatten produces one row per top-level key of payload, in payload order.
// Scalars are stored as their text and branches as compact JSON.
func Flatten(payload *Value, formID string) ([]FormRecord, error) {
	if payload == nil || payload.Kind() != ValueObject {
		return nil, ErrPayloadNotObject
	}

	members := payload.Members()
	rows := make([]FormRecord, 0, len(members))
	for _, m := range members {
		rows = append(rows, FormRecord{
			FormID: formID,
			Key:    m.Key,
			Value:  m.Value.Text(),
		})
	}
	return rows, nil
}
