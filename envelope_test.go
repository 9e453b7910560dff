package kvs

import (
	"errors"
	"testing"

	"github.com/andreyvit/kvs/kvjson"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	values := []Value{
		I32(-42),
		U32(4000000000),
		I64(-1 << 40),
		U64(1 << 63),
		F64(3.1415),
		Bool(true),
		Bool(false),
		String("hello"),
		String(""),
		Null(),
		Array(nil),
		Array([]Value{I32(456), Bool(false), String("Second")}),
		Object(map[string]Value{
			"sub-number": F64(789),
			"sub-array":  Array([]Value{I32(1246), Bool(false), String("Fourth")}),
			"sub-null":   Null(),
		}),
		Object(map[string]Value{
			"deep": Object(map[string]Value{"deeper": Array([]Value{U64(1), Null()})}),
		}),
	}
	for _, v := range values {
		doc, err := EncodeValue(v)
		if err != nil {
			t.Fatalf("EncodeValue(%v) failed: %v", v.Type(), err)
		}
		back, err := DecodeValue(doc)
		if err != nil {
			t.Fatalf("DecodeValue(%v) failed: %v", v.Type(), err)
		}
		if !back.Equal(v) {
			t.Fatalf("round trip changed %v value", v.Type())
		}
	}
}

func TestEnvelopeRoundTripThroughText(t *testing.T) {
	v := Object(map[string]Value{"arr": Array([]Value{I32(1), F64(2.5)}), "s": String("x")})
	doc, err := EncodeValue(v)
	if err != nil {
		t.Fatal(err)
	}
	data, err := kvjson.Serialize(doc)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := kvjson.Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	back, err := DecodeValue(parsed)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(v) {
		t.Fatalf("text round trip changed the value")
	}
}

func TestDecodeValueRejectsMalformedEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not an object", `42`},
		{"missing tag", `{"v":1}`},
		{"missing payload", `{"t":"i32"}`},
		{"non-string tag", `{"t":5,"v":1}`},
		{"unknown tag", `{"t":"i16","v":1}`},
		{"legacy pascal-case revision", `{"type":"I32","value":1}`},
		{"i32 payload not numeric", `{"t":"i32","v":"1"}`},
		{"i32 payload fractional", `{"t":"i32","v":1.5}`},
		{"i32 payload out of range", `{"t":"i32","v":4000000000}`},
		{"u32 payload negative", `{"t":"u32","v":-1}`},
		{"u64 payload negative", `{"t":"u64","v":-1}`},
		{"bool payload numeric", `{"t":"bool","v":1}`},
		{"str payload null", `{"t":"str","v":null}`},
		{"null payload non-null", `{"t":"null","v":0}`},
		{"arr payload not a list", `{"t":"arr","v":{}}`},
		{"obj payload not an object", `{"t":"obj","v":[]}`},
		{"bad nested element", `{"t":"arr","v":[{"t":"i32","v":1},{"t":"i32","v":"x"}]}`},
		{"bad nested member", `{"t":"obj","v":{"k":{"t":"nope","v":1}}}`},
	}
	for _, test := range tests {
		doc, err := kvjson.Parse([]byte(test.json))
		if err != nil {
			t.Fatalf("%s: fixture does not parse: %v", test.name, err)
		}
		_, err = DecodeValue(doc)
		if !errors.Is(err, ErrInvalidValueType) {
			t.Errorf("%s: DecodeValue err = %v, wanted ErrInvalidValueType", test.name, err)
		}
	}
}

func TestDecodeValueExactNarrowing(t *testing.T) {
	// 2.0 is exactly representable as i32; it must decode.
	doc, err := kvjson.Parse([]byte(`{"t":"i32","v":2.0}`))
	if err != nil {
		t.Fatal(err)
	}
	v, err := DecodeValue(doc)
	if err != nil {
		t.Fatalf("DecodeValue(i32 2.0) failed: %v", err)
	}
	if n, _ := v.AsI32(); n != 2 {
		t.Fatalf("decoded i32 = %d, wanted 2", n)
	}

	// u64 values above 2^53 must survive exactly, which a float path would
	// destroy.
	doc, err = kvjson.Parse([]byte(`{"t":"u64","v":9223372036854775809}`))
	if err != nil {
		t.Fatal(err)
	}
	v, err = DecodeValue(doc)
	if err != nil {
		t.Fatalf("DecodeValue(large u64) failed: %v", err)
	}
	if n, _ := v.AsU64(); n != 9223372036854775809 {
		t.Fatalf("decoded u64 = %d, wanted 9223372036854775809", n)
	}
}

func TestEncodeValueUnreachableVariant(t *testing.T) {
	// Not constructible through the public API; exercises the defensive
	// default branch.
	broken := Value{typ: Type(99)}
	_, err := EncodeValue(broken)
	if !errors.Is(err, ErrInvalidValueType) {
		t.Fatalf("EncodeValue err = %v, wanted ErrInvalidValueType", err)
	}

	_, err = EncodeValue(Array([]Value{I32(1), broken}))
	if !errors.Is(err, ErrInvalidValueType) {
		t.Fatalf("EncodeValue(nested) err = %v, wanted ErrInvalidValueType", err)
	}
}

func TestEncodeValueTags(t *testing.T) {
	tests := []struct {
		value Value
		tag   string
	}{
		{I32(1), "i32"},
		{U32(1), "u32"},
		{I64(1), "i64"},
		{U64(1), "u64"},
		{F64(1), "f64"},
		{Bool(true), "bool"},
		{String("s"), "str"},
		{Null(), "null"},
		{Array(nil), "arr"},
		{Object(nil), "obj"},
	}
	for _, test := range tests {
		doc, err := EncodeValue(test.value)
		if err != nil {
			t.Fatalf("EncodeValue(%v) failed: %v", test.value.Type(), err)
		}
		obj, ok := doc.Object()
		if !ok {
			t.Fatalf("envelope for %v is not an object", test.value.Type())
		}
		if tag, _ := obj["t"].Str(); tag != test.tag {
			t.Errorf("tag for %v = %q, wanted %q", test.value.Type(), tag, test.tag)
		}
		if _, ok := obj["v"]; !ok {
			t.Errorf("envelope for %v lacks payload field", test.value.Type())
		}
	}
}
