package wire

import (
	"math/big"
	"testing"
	"time"
)

func TestMarshalValueRoundTripPlain(t *testing.T) {
	cases := []any{
		nil,
		"hello",
		42.0,
		true,
		[]any{1.0, 2.0, "three"},
		map[string]any{"a": 1.0, "b": []any{true, false}},
	}
	for _, v := range cases {
		raw, err := MarshalValue(v, Plain)
		if err != nil {
			t.Fatalf("MarshalValue(%v): %v", v, err)
		}
		got, err := UnmarshalValue(raw, Plain)
		if err != nil {
			t.Fatalf("UnmarshalValue(%v): %v", v, err)
		}
		if !deepEqual(got, v) {
			t.Errorf("round trip mismatch: got %#v, want %#v", got, v)
		}
	}
}

func TestMarshalValueByteArrayTag(t *testing.T) {
	b := []byte{1, 2, 3}
	for _, d := range []Dialect{Plain, Enhanced} {
		raw, err := MarshalValue(b, d)
		if err != nil {
			t.Fatalf("MarshalValue: %v", err)
		}
		got, err := UnmarshalValue(raw, d)
		if err != nil {
			t.Fatalf("UnmarshalValue: %v", err)
		}
		gb, ok := got.([]byte)
		if !ok {
			t.Fatalf("dialect %v: expected []byte, got %T", d, got)
		}
		if string(gb) != string(b) {
			t.Errorf("dialect %v: got %v, want %v", d, gb, b)
		}
	}
}

func TestMarshalValueEnhancedDate(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	raw, err := MarshalValue(now, Enhanced)
	if err != nil {
		t.Fatalf("MarshalValue: %v", err)
	}
	got, err := UnmarshalValue(raw, Enhanced)
	if err != nil {
		t.Fatalf("UnmarshalValue: %v", err)
	}
	ts, ok := got.(time.Time)
	if !ok {
		t.Fatalf("expected time.Time, got %T", got)
	}
	if !ts.Equal(now) {
		t.Errorf("got %v, want %v", ts, now)
	}
}

func TestMarshalValuePlainDateDegradesToString(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	raw, err := MarshalValue(now, Plain)
	if err != nil {
		t.Fatalf("MarshalValue: %v", err)
	}
	got, err := UnmarshalValue(raw, Plain)
	if err != nil {
		t.Fatalf("UnmarshalValue: %v", err)
	}
	if _, ok := got.(string); !ok {
		t.Fatalf("expected plain dialect to degrade Date to string, got %T", got)
	}
}

func TestMarshalValueEnhancedBigInt(t *testing.T) {
	n, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	raw, err := MarshalValue(n, Enhanced)
	if err != nil {
		t.Fatalf("MarshalValue: %v", err)
	}
	got, err := UnmarshalValue(raw, Enhanced)
	if err != nil {
		t.Fatalf("UnmarshalValue: %v", err)
	}
	gn, ok := got.(*big.Int)
	if !ok {
		t.Fatalf("expected *big.Int, got %T", got)
	}
	if gn.Cmp(n) != 0 {
		t.Errorf("got %v, want %v", gn, n)
	}
}

func TestMarshalValueEnhancedSet(t *testing.T) {
	s := NewSet("a", "b", "a")
	if len(s.Items()) != 2 {
		t.Fatalf("expected duplicates dropped, got %v", s.Items())
	}
	raw, err := MarshalValue(s, Enhanced)
	if err != nil {
		t.Fatalf("MarshalValue: %v", err)
	}
	got, err := UnmarshalValue(raw, Enhanced)
	if err != nil {
		t.Fatalf("UnmarshalValue: %v", err)
	}
	gs, ok := got.(*Set)
	if !ok {
		t.Fatalf("expected *Set, got %T", got)
	}
	if len(gs.Items()) != 2 {
		t.Errorf("got %d items, want 2", len(gs.Items()))
	}
}

func TestMarshalValueEnhancedNonStringMap(t *testing.T) {
	m := map[int]string{1: "one", 2: "two"}
	raw, err := MarshalValue(m, Enhanced)
	if err != nil {
		t.Fatalf("MarshalValue: %v", err)
	}
	got, err := UnmarshalValue(raw, Enhanced)
	if err != nil {
		t.Fatalf("UnmarshalValue: %v", err)
	}
	out, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected decoded Map tag as map[string]any, got %T", got)
	}
	if out["1"] != "one" || out["2"] != "two" {
		t.Errorf("got %v", out)
	}
}

// deepEqual is a small structural comparison sufficient for the JSON-shaped
// trees these tests exercise — full reflect.DeepEqual chokes on float64 vs
// int literals in table cases, which is why this stays local and simple.
func deepEqual(a, b any) bool {
	switch av := a.(type) {
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if !deepEqual(v, bv[k]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
