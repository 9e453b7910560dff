package kvs

import "math"

// Type is the active variant tag of a Value.
type Type int

const (
	TypeNull Type = iota
	TypeI32
	TypeU32
	TypeI64
	TypeU64
	TypeF64
	TypeBool
	TypeString
	TypeArray
	TypeObject
)

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeI32:
		return "i32"
	case TypeU32:
		return "u32"
	case TypeI64:
		return "i64"
	case TypeU64:
		return "u64"
	case TypeF64:
		return "f64"
	case TypeBool:
		return "bool"
	case TypeString:
		return "str"
	case TypeArray:
		return "arr"
	case TypeObject:
		return "obj"
	default:
		return "invalid"
	}
}

// Value is a closed tagged union over every storable datum. The zero Value
// is null. Array and object values own their children exclusively: every
// constructor and accessor deep-copies, so no two Values ever share a
// subtree and cycles cannot be formed.
//
// Scalar payloads share the bits field (integers as their two's-complement
// bits, floats via math.Float64bits, bools as 0/1); the tag decides the
// interpretation.
type Value struct {
	typ  Type
	bits uint64
	str  string
	arr  []Value
	obj  map[string]Value
}

// Null returns the null Value. Equivalent to the zero Value.
func Null() Value { return Value{} }

func I32(v int32) Value { return Value{typ: TypeI32, bits: uint64(int64(v))} }

func U32(v uint32) Value { return Value{typ: TypeU32, bits: uint64(v)} }

func I64(v int64) Value { return Value{typ: TypeI64, bits: uint64(v)} }

func U64(v uint64) Value { return Value{typ: TypeU64, bits: v} }

func F64(v float64) Value { return Value{typ: TypeF64, bits: math.Float64bits(v)} }

func Bool(v bool) Value {
	var bits uint64
	if v {
		bits = 1
	}
	return Value{typ: TypeBool, bits: bits}
}

func String(v string) Value { return Value{typ: TypeString, str: v} }

// Array returns an array Value holding deep copies of elems.
func Array(elems []Value) Value {
	return Value{typ: TypeArray, arr: cloneSlice(elems)}
}

// Object returns an object Value holding deep copies of entries.
func Object(entries map[string]Value) Value {
	return Value{typ: TypeObject, obj: cloneMap(entries)}
}

// Type returns the active variant tag.
func (v Value) Type() Type { return v.typ }

func (v Value) IsNull() bool { return v.typ == TypeNull }

// AsI32 returns the payload iff the value is an i32.
func (v Value) AsI32() (int32, bool) {
	if v.typ != TypeI32 {
		return 0, false
	}
	return int32(int64(v.bits)), true
}

func (v Value) AsU32() (uint32, bool) {
	if v.typ != TypeU32 {
		return 0, false
	}
	return uint32(v.bits), true
}

func (v Value) AsI64() (int64, bool) {
	if v.typ != TypeI64 {
		return 0, false
	}
	return int64(v.bits), true
}

func (v Value) AsU64() (uint64, bool) {
	if v.typ != TypeU64 {
		return 0, false
	}
	return v.bits, true
}

func (v Value) AsF64() (float64, bool) {
	if v.typ != TypeF64 {
		return 0, false
	}
	return math.Float64frombits(v.bits), true
}

func (v Value) AsBool() (bool, bool) {
	if v.typ != TypeBool {
		return false, false
	}
	return v.bits != 0, true
}

func (v Value) AsString() (string, bool) {
	if v.typ != TypeString {
		return "", false
	}
	return v.str, true
}

// AsArray returns a deep copy of the elements iff the value is an array.
func (v Value) AsArray() ([]Value, bool) {
	if v.typ != TypeArray {
		return nil, false
	}
	return cloneSlice(v.arr), true
}

// AsObject returns a deep copy of the entries iff the value is an object.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.typ != TypeObject {
		return nil, false
	}
	return cloneMap(v.obj), true
}

// Clone returns a deep copy. Scalars copy trivially; arrays and objects
// recursively copy every descendant.
func (v Value) Clone() Value {
	switch v.typ {
	case TypeArray:
		return Value{typ: TypeArray, arr: cloneSlice(v.arr)}
	case TypeObject:
		return Value{typ: TypeObject, obj: cloneMap(v.obj)}
	default:
		return v
	}
}

// Equal reports deep structural equality. Floats compare by ==, matching
// the numeric equality the rest of the system uses.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeNull:
		return true
	case TypeF64:
		return math.Float64frombits(v.bits) == math.Float64frombits(other.bits)
	case TypeString:
		return v.str == other.str
	case TypeArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case TypeObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, e := range v.obj {
			o, ok := other.obj[k]
			if !ok || !e.Equal(o) {
				return false
			}
		}
		return true
	default:
		return v.bits == other.bits
	}
}

func cloneSlice(elems []Value) []Value {
	if elems == nil {
		return nil
	}
	result := make([]Value, len(elems))
	for i, e := range elems {
		result[i] = e.Clone()
	}
	return result
}

func cloneMap(entries map[string]Value) map[string]Value {
	if entries == nil {
		return nil
	}
	result := make(map[string]Value, len(entries))
	for k, e := range entries {
		result[k] = e.Clone()
	}
	return result
}
