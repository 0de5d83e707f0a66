package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

// maxPayloadDepth bounds object and array nesting in a submission
const maxPayloadDepth = 64

// ErrInvalidPayload wraps every decoding failure of a submission body
var ErrInvalidPayload = errors.New("invalid payload")

// ValueKind identifies the variant held by a Value
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueString
	ValueNumber
	ValueBool
	ValueObject
	ValueArray
)

func (k ValueKind) String() string {
	switch k {
	case ValueNull:
		return "null"
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueBool:
		return "bool"
	case ValueObject:
		return "object"
	case ValueArray:
		return "array"
	default:
		return "unknown"
	}
}

// Member is one key/value pair of an object, kept in document order
type Member struct {
	Key   string
	Value *Value
}

// Value is a decoded JSON document. Objects keep their members in the order
// they were received; numbers keep their literal text.
type Value struct {
	kind     ValueKind
	text     string
	boolean  bool
	members  []Member
	elements []*Value
}

// NewNull returns a null value
func NewNull() *Value { return &Value{kind: ValueNull} }

// NewString returns a string value
func NewString(s string) *Value { return &Value{kind: ValueString, text: s} }

// NewNumber returns a number value holding the given literal
func NewNumber(literal string) *Value { return &Value{kind: ValueNumber, text: literal} }

// NewBool returns a boolean value
func NewBool(b bool) *Value { return &Value{kind: ValueBool, boolean: b} }

// NewObject returns an object holding members in the given order
func NewObject(members ...Member) *Value {
	return &Value{kind: ValueObject, members: members}
}

// NewArray returns an array holding elements in the given order
func NewArray(elements ...*Value) *Value {
	return &Value{kind: ValueArray, elements: elements}
}

// Kind returns the variant held by v
func (v *Value) Kind() ValueKind { return v.kind }

// IsScalar reports whether v is a string, number, boolean or null
func (v *Value) IsScalar() bool {
	return v.kind != ValueObject && v.kind != ValueArray
}

// IsEmpty reports whether v is null or the empty string
func (v *Value) IsEmpty() bool {
	return v.kind == ValueNull || (v.kind == ValueString && v.text == "")
}

// Text renders a scalar as stored text: strings verbatim, numbers as their
// literal, booleans as true or false and null as the empty string.
// Objects and arrays render as compact JSON.
func (v *Value) Text() string {
	switch v.kind {
	case ValueNull:
		return ""
	case ValueString, ValueNumber:
		return v.text
	case ValueBool:
		return strconv.FormatBool(v.boolean)
	default:
		b, _ := v.MarshalJSON()
		return string(b)
	}
}

// Members returns the members of an object, or nil for any other kind
func (v *Value) Members() []Member {
	if v.kind != ValueObject {
		return nil
	}
	return v.members
}

// Elements returns the elements of an array, or nil for any other kind
func (v *Value) Elements() []*Value {
	if v.kind != ValueArray {
		return nil
	}
	return v.elements
}

// Get returns the member of an object named key
func (v *Value) Get(key string) (*Value, bool) {
	for _, m := range v.Members() {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Set replaces the member named key in place or appends it. Set on a
// non-object is a no-op.
func (v *Value) Set(key string, value *Value) {
	if v.kind != ValueObject {
		return
	}
	for i := range v.members {
		if v.members[i].Key == key {
			v.members[i].Value = value
			return
		}
	}
	v.members = append(v.members, Member{Key: key, Value: value})
}

// Clone returns a deep copy of v
func (v *Value) Clone() *Value {
	out := &Value{kind: v.kind, text: v.text, boolean: v.boolean}
	if v.members != nil {
		out.members = make([]Member, len(v.members))
		for i, m := range v.members {
			out.members[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		}
	}
	if v.elements != nil {
		out.elements = make([]*Value, len(v.elements))
		for i, e := range v.elements {
			out.elements[i] = e.Clone()
		}
	}
	return out
}

// Interface converts v to the generic form produced by json.Unmarshal into
// an any, with numbers as json.Number.
func (v *Value) Interface() any {
	switch v.kind {
	case ValueString:
		return v.text
	case ValueNumber:
		return json.Number(v.text)
	case ValueBool:
		return v.boolean
	case ValueObject:
		out := make(map[string]any, len(v.members))
		for _, m := range v.members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	case ValueArray:
		out := make([]any, len(v.elements))
		for i, e := range v.elements {
			out[i] = e.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON renders v as compact JSON without HTML escaping
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes data with the same rules as DecodePayload
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := DecodePayload(data)
	if err != nil {
		return err
	}
	*v = *decoded
	return nil
}

func (v *Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case ValueNull:
		buf.WriteString("null")
	case ValueString:
		return encodeString(buf, v.text)
	case ValueNumber:
		buf.WriteString(v.text)
	case ValueBool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case ValueObject:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case ValueArray:
		buf.WriteByte('[')
		for i, e := range v.elements {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("unknown value kind %d", v.kind)
	}
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// DecodePayload decodes a single JSON document. Duplicate keys within one
// object, nesting deeper than maxPayloadDepth and trailing data are rejected,
// as are invalid UTF-8 and unpaired surrogate escapes.
func DecodePayload(data []byte) (*Value, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: body is not valid UTF-8", ErrInvalidPayload)
	}
	if err := checkSurrogateEscapes(data); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec, "", 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after top-level value", ErrInvalidPayload)
	}
	return v, nil
}

// checkSurrogateEscapes rejects \u escapes that do not form a valid UTF-16
// pair. The decoder would otherwise store them as U+FFFD.
func checkSurrogateEscapes(data []byte) error {
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			continue
		}
		if data[i+1] != 'u' {
			i++
			continue
		}
		r, ok := hexEscape(data, i+2)
		if !ok {
			// malformed escapes are reported by the decoder
			i++
			continue
		}
		start := i
		i += 5
		switch {
		case r >= 0xD800 && r <= 0xDBFF:
			if i+6 < len(data) && data[i+1] == '\\' && data[i+2] == 'u' {
				if lo, ok := hexEscape(data, i+3); ok && lo >= 0xDC00 && lo <= 0xDFFF {
					i += 6
					continue
				}
			}
			return fmt.Errorf("%w: unpaired surrogate escape at offset %d", ErrInvalidPayload, start)
		case r >= 0xDC00 && r <= 0xDFFF:
			return fmt.Errorf("%w: unpaired surrogate escape at offset %d", ErrInvalidPayload, start)
		}
	}
	return nil
}

func hexEscape(data []byte, at int) (rune, bool) {
	if at+4 > len(data) {
		return 0, false
	}
	n, err := strconv.ParseUint(string(data[at:at+4]), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}

func decodeValue(dec *json.Decoder, path string, depth int) (*Value, error) {
	if depth > maxPayloadDepth {
		return nil, fmt.Errorf("%w: nesting exceeds %d levels", ErrInvalidPayload, maxPayloadDepth)
	}

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec, path, depth)
		case '[':
			return decodeArray(dec, path, depth)
		default:
			return nil, fmt.Errorf("%w: unexpected %q", ErrInvalidPayload, t)
		}
	case string:
		return NewString(t), nil
	case json.Number:
		return NewNumber(string(t)), nil
	case float64:
		return NewNumber(strconv.FormatFloat(t, 'f', -1, 64)), nil
	case bool:
		return NewBool(t), nil
	case nil:
		return NewNull(), nil
	default:
		return nil, fmt.Errorf("%w: unexpected token %v", ErrInvalidPayload, tok)
	}
}

func decodeObject(dec *json.Decoder, path string, depth int) (*Value, error) {
	obj := NewObject()
	seen := make(map[string]bool)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key must be a string", ErrInvalidPayload)
		}

		keyPath := key
		if path != "" {
			keyPath = path + "." + key
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate key '%s' in JSON object", ErrInvalidPayload, keyPath)
		}
		seen[key] = true

		value, err := decodeValue(dec, keyPath, depth+1)
		if err != nil {
			return nil, err
		}
		obj.members = append(obj.members, Member{Key: key, Value: value})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder, path string, depth int) (*Value, error) {
	arr := NewArray()
	for i := 0; dec.More(); i++ {
		elemPath := strconv.Itoa(i)
		if path != "" {
			elemPath = path + "." + elemPath
		}
		elem, err := decodeValue(dec, elemPath, depth+1)
		if err != nil {
			return nil, err
		}
		arr.elements = append(arr.elements, elem)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return arr, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q", ErrInvalidPayload, want)
	}
	return nil
}
