package kvs

import "github.com/andreyvit/kvs/kvjson"

// Every persisted member is wrapped in a two-field envelope
// {"t": <tag>, "v": <payload>} so the generic JSON document remains
// self-describing for decode. Field names and the lowercase tags are a
// stable wire contract; the earlier {"type","value"} revision with
// PascalCase tags is a compatibility break and is rejected like any other
// malformed envelope.
const (
	envTagField   = "t"
	envValueField = "v"
)

// EncodeValue maps a Value to its envelope document. Arrays and objects
// recurse and abort on the first child failure; a value with an unreachable
// tag fails with ErrInvalidValueType.
func EncodeValue(v Value) (kvjson.Doc, error) {
	var payload kvjson.Doc
	switch v.typ {
	case TypeI32:
		n, _ := v.AsI32()
		payload = kvjson.NewNumberInt64(int64(n))
	case TypeU32:
		n, _ := v.AsU32()
		payload = kvjson.NewNumberUint64(uint64(n))
	case TypeI64:
		n, _ := v.AsI64()
		payload = kvjson.NewNumberInt64(n)
	case TypeU64:
		n, _ := v.AsU64()
		payload = kvjson.NewNumberUint64(n)
	case TypeF64:
		n, _ := v.AsF64()
		payload = kvjson.NewNumberFloat64(n)
	case TypeBool:
		b, _ := v.AsBool()
		payload = kvjson.NewBool(b)
	case TypeString:
		s, _ := v.AsString()
		payload = kvjson.NewString(s)
	case TypeNull:
		payload = kvjson.NewNull()
	case TypeArray:
		elems := make([]kvjson.Doc, len(v.arr))
		for i, e := range v.arr {
			d, err := EncodeValue(e)
			if err != nil {
				return kvjson.Doc{}, err
			}
			elems[i] = d
		}
		payload = kvjson.NewArray(elems)
	case TypeObject:
		entries := make(map[string]kvjson.Doc, len(v.obj))
		for k, e := range v.obj {
			d, err := EncodeValue(e)
			if err != nil {
				return kvjson.Doc{}, err
			}
			entries[k] = d
		}
		payload = kvjson.NewObject(entries)
	default:
		return kvjson.Doc{}, ErrInvalidValueType
	}
	return kvjson.NewObject(map[string]kvjson.Doc{
		envTagField:   kvjson.NewString(v.typ.String()),
		envValueField: payload,
	}), nil
}

// DecodeValue recovers a Value from its envelope document. Any structural
// mismatch (missing field, unknown tag, payload of the wrong native type, a
// number the tagged type cannot represent exactly, or a nested failure)
// yields ErrInvalidValueType; no further detail is preserved.
func DecodeValue(doc kvjson.Doc) (Value, error) {
	obj, ok := doc.Object()
	if !ok {
		return Value{}, ErrInvalidValueType
	}
	tagDoc, ok := obj[envTagField]
	if !ok {
		return Value{}, ErrInvalidValueType
	}
	payload, ok := obj[envValueField]
	if !ok {
		return Value{}, ErrInvalidValueType
	}
	tag, ok := tagDoc.Str()
	if !ok {
		return Value{}, ErrInvalidValueType
	}

	switch tag {
	case "i32":
		if n, ok := payload.AsI32(); ok {
			return I32(n), nil
		}
	case "u32":
		if n, ok := payload.AsU32(); ok {
			return U32(n), nil
		}
	case "i64":
		if n, ok := payload.AsI64(); ok {
			return I64(n), nil
		}
	case "u64":
		if n, ok := payload.AsU64(); ok {
			return U64(n), nil
		}
	case "f64":
		if n, ok := payload.AsF64(); ok {
			return F64(n), nil
		}
	case "bool":
		if b, ok := payload.Bool(); ok {
			return Bool(b), nil
		}
	case "str":
		if s, ok := payload.Str(); ok {
			return String(s), nil
		}
	case "null":
		if payload.IsNull() {
			return Null(), nil
		}
	case "arr":
		elems, ok := payload.Array()
		if !ok {
			break
		}
		arr := make([]Value, len(elems))
		for i, e := range elems {
			v, err := DecodeValue(e)
			if err != nil {
				return Value{}, err
			}
			arr[i] = v
		}
		return Value{typ: TypeArray, arr: arr}, nil
	case "obj":
		entries, ok := payload.Object()
		if !ok {
			break
		}
		m := make(map[string]Value, len(entries))
		for k, e := range entries {
			v, err := DecodeValue(e)
			if err != nil {
				return Value{}, err
			}
			m[k] = v
		}
		return Value{typ: TypeObject, obj: m}, nil
	}
	return Value{}, ErrInvalidValueType
}
