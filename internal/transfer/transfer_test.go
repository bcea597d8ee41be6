package transfer

import "testing"

func TestMarkTakeConsumesOnce(t *testing.T) {
	r := NewRegistry()
	key := new(int)
	handles := []any{"h1"}

	if err := r.Mark(key, handles); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	m, ok := r.Take(key)
	if !ok {
		t.Fatalf("expected marker to be present")
	}
	if len(m.Handles) != 1 || m.Handles[0] != "h1" {
		t.Errorf("unexpected handles: %v", m.Handles)
	}

	if _, ok := r.Take(key); ok {
		t.Errorf("expected marker to be consumed after first Take")
	}
}

func TestMarkRejectsNonReferenceTypes(t *testing.T) {
	cases := []any{42, "string", []int{1, 2}, map[string]int{"a": 1}}
	for _, v := range cases {
		r := NewRegistry()
		if err := r.Mark(v, nil); err != ErrInvalidArgument {
			t.Errorf("Mark(%v): got %v, want ErrInvalidArgument", v, err)
		}
	}
}

func TestMarkAcceptsPointerAndChan(t *testing.T) {
	r := NewRegistry()
	p := new(string)
	ch := make(chan int)
	if err := r.Mark(p, nil); err != nil {
		t.Errorf("Mark(pointer): %v", err)
	}
	if err := r.Mark(ch, nil); err != nil {
		t.Errorf("Mark(chan): %v", err)
	}
}

type fakeHandler struct {
	canHandle func(v any) bool
}

func (f fakeHandler) CanHandle(v any) bool { return f.canHandle(v) }
func (f fakeHandler) Serialize(v any) (any, []any, error) {
	return v, nil, nil
}
func (f fakeHandler) Deserialize(metadata any) (any, error) { return metadata, nil }

func TestFindHandlerFirstMatchWins(t *testing.T) {
	r := NewRegistry()
	r.RegisterHandler("always-false", fakeHandler{canHandle: func(any) bool { return false }})
	r.RegisterHandler("always-true", fakeHandler{canHandle: func(any) bool { return true }})
	r.RegisterHandler("also-true", fakeHandler{canHandle: func(any) bool { return true }})

	name, _, ok := r.FindHandler("anything")
	if !ok {
		t.Fatalf("expected a handler match")
	}
	if name != "always-true" {
		t.Errorf("got handler %q, want first registered match %q", name, "always-true")
	}
}

func TestHandlerByName(t *testing.T) {
	r := NewRegistry()
	r.RegisterHandler("named", fakeHandler{canHandle: func(any) bool { return true }})
	if _, ok := r.HandlerByName("named"); !ok {
		t.Errorf("expected to find registered handler by name")
	}
	if _, ok := r.HandlerByName("missing"); ok {
		t.Errorf("expected no handler for unregistered name")
	}
}
