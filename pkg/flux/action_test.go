package flux

import "testing"

func TestCreatorProducesFixedKind(t *testing.T) {
	setCounter := Creator[int]("counter.set")
	action := setCounter(12)
	if action.Kind != "counter.set" {
		t.Fatalf("kind = %q", action.Kind)
	}
	v, err := PayloadAs[int](action)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if v != 12 {
		t.Fatalf("payload = %d, want 12", v)
	}
}

func TestPayloadAsTypeMismatch(t *testing.T) {
	action := NewAction("counter.set", "not an int")
	if _, err := PayloadAs[int](action); err == nil {
		t.Fatal("expected type mismatch error")
	}
}

func TestTypedReducerRejectsWrongSliceType(t *testing.T) {
	reducer := Typed(func(n int, _ Action) (int, error) { return n + 1, nil })
	if _, err := reducer("not an int", NewAction("x", nil)); err == nil {
		t.Fatal("expected slice type error")
	}
	out, err := reducer(41, NewAction("x", nil))
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if out != 42 {
		t.Fatalf("out = %v, want 42", out)
	}
}
