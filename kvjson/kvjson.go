// Package kvjson converts between raw JSON text and a generic document
// model with exact numeric narrowing.
//
// Numbers keep their original literal (via json.Number) until a caller asks
// for a concrete type, so AsI32 on 4000000000 or on 2.5 fails instead of
// silently truncating. A literal like 2.0 narrows to any integer type it
// fits exactly.
package kvjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Doc is a generic JSON document node: object, array, string, bool, null or
// number. The zero Doc is null.
type Doc struct {
	v any // nil | bool | string | json.Number | []Doc | map[string]Doc
}

// Parse decodes a single JSON document. Trailing non-whitespace content is
// an error.
func Parse(data []byte) (Doc, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Doc{}, fmt.Errorf("kvjson: parse: %w", err)
	}
	if err := dec.Decode(new(any)); err != io.EOF {
		return Doc{}, fmt.Errorf("kvjson: parse: trailing content after document")
	}
	return fromRaw(raw), nil
}

// Serialize encodes a document as JSON text.
func Serialize(doc Doc) ([]byte, error) {
	data, err := json.Marshal(toRaw(doc))
	if err != nil {
		return nil, fmt.Errorf("kvjson: serialize: %w", err)
	}
	return data, nil
}

func fromRaw(raw any) Doc {
	switch t := raw.(type) {
	case map[string]any:
		obj := make(map[string]Doc, len(t))
		for k, v := range t {
			obj[k] = fromRaw(v)
		}
		return Doc{v: obj}
	case []any:
		arr := make([]Doc, len(t))
		for i, v := range t {
			arr[i] = fromRaw(v)
		}
		return Doc{v: arr}
	default:
		// bool, string, json.Number or nil, all stored as is.
		return Doc{v: t}
	}
}

func toRaw(doc Doc) any {
	switch t := doc.v.(type) {
	case map[string]Doc:
		obj := make(map[string]any, len(t))
		for k, v := range t {
			obj[k] = toRaw(v)
		}
		return obj
	case []Doc:
		arr := make([]any, len(t))
		for i, v := range t {
			arr[i] = toRaw(v)
		}
		return arr
	default:
		return t
	}
}

func NewObject(entries map[string]Doc) Doc {
	if entries == nil {
		entries = map[string]Doc{}
	}
	return Doc{v: entries}
}

func NewArray(elems []Doc) Doc {
	if elems == nil {
		elems = []Doc{}
	}
	return Doc{v: elems}
}

func NewString(s string) Doc { return Doc{v: s} }

func NewBool(b bool) Doc { return Doc{v: b} }

func NewNull() Doc { return Doc{} }

func NewNumberInt64(n int64) Doc { return Doc{v: json.Number(strconv.FormatInt(n, 10))} }

func NewNumberUint64(n uint64) Doc { return Doc{v: json.Number(strconv.FormatUint(n, 10))} }

func NewNumberFloat64(n float64) Doc {
	return Doc{v: json.Number(strconv.FormatFloat(n, 'g', -1, 64))}
}

// Object returns the member map iff the node is an object.
func (d Doc) Object() (map[string]Doc, bool) {
	obj, ok := d.v.(map[string]Doc)
	return obj, ok
}

// Array returns the elements iff the node is an array.
func (d Doc) Array() ([]Doc, bool) {
	arr, ok := d.v.([]Doc)
	return arr, ok
}

func (d Doc) Str() (string, bool) {
	s, ok := d.v.(string)
	return s, ok
}

func (d Doc) Bool() (bool, bool) {
	b, ok := d.v.(bool)
	return b, ok
}

func (d Doc) IsNull() bool { return d.v == nil }

// Number returns the raw numeric literal iff the node is a number.
func (d Doc) Number() (json.Number, bool) {
	n, ok := d.v.(json.Number)
	return n, ok
}

// AsI32 narrows the node to int32. Fails unless the node is a number and
// the value is exactly representable as int32.
func (d Doc) AsI32() (int32, bool) {
	n, ok := signedInRange(d, math.MinInt32, math.MaxInt32)
	return int32(n), ok
}

// AsI64 narrows the node to int64; same exactness contract as AsI32.
func (d Doc) AsI64() (int64, bool) {
	return signedInRange(d, math.MinInt64, math.MaxInt64)
}

// AsU32 narrows the node to uint32; same exactness contract as AsI32.
func (d Doc) AsU32() (uint32, bool) {
	n, ok := d.unsignedNumber(32)
	return uint32(n), ok
}

// AsU64 narrows the node to uint64; same exactness contract as AsI32.
func (d Doc) AsU64() (uint64, bool) {
	return d.unsignedNumber(64)
}

// AsF64 returns the node as float64. Any JSON number qualifies.
func (d Doc) AsF64() (float64, bool) {
	n, ok := d.v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// Float-to-int conversion is only defined in range, so the float fallbacks
// below bounds-check before converting. 2^63 and 2^64 are exact as float64.
const (
	maxI64PlusOneF = float64(1 << 63)
	maxU64PlusOneF = float64(1<<63) * 2
)

func signedInRange(d Doc, min, max int64) (int64, bool) {
	n, ok := d.v.(json.Number)
	if !ok {
		return 0, false
	}
	if v, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		if v < min || v > max {
			return 0, false
		}
		return v, true
	}
	// Not a plain integer literal; accept floats with an exact integer value
	// (e.g. 2.0 or 1e3).
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	if f < -maxI64PlusOneF || f >= maxI64PlusOneF {
		return 0, false
	}
	v := int64(f)
	if float64(v) != f || v < min || v > max {
		return 0, false
	}
	return v, true
}

func (d Doc) unsignedNumber(bits int) (uint64, bool) {
	n, ok := d.v.(json.Number)
	if !ok {
		return 0, false
	}
	if v, err := strconv.ParseUint(n.String(), 10, bits); err == nil {
		return v, true
	}
	f, err := n.Float64()
	if err != nil || f < 0 || f != math.Trunc(f) || f >= maxU64PlusOneF {
		return 0, false
	}
	v := uint64(f)
	if float64(v) != f || (bits < 64 && v > 1<<uint(bits)-1) {
		return 0, false
	}
	return v, true
}
