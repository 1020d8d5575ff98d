package value

import (
	"testing"

	"github.com/lumen-lang/lumen/internal/types"
)

func TestTruthyTable(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Boolean(false), false},
		{Boolean(true), true},
		{Integer(0), false},
		{Integer(1), true},
		{String(""), false},
		{String("x"), true},
		{Unit{}, true},
	}
	for _, c := range cases {
		if got := Truthy(c.v); got != c.want {
			t.Errorf("Truthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestRecordDisplayPreservesFieldOrder(t *testing.T) {
	r := NewRecord([]string{"y", "x"}, map[string]Value{"x": Integer(1), "y": Integer(2)})
	if got, want := r.Display(), "{y: 2, x: 1}"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestListDisplay(t *testing.T) {
	l := NewList([]Value{Integer(1), Integer(2), Integer(3)}, types.Int)
	if got, want := l.Display(), "[1, 2, 3]"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEnumVariantDisplay(t *testing.T) {
	enum := types.NewEnumType("shapes", "Shape")
	v := NewEnumVariant(enum, "Circle", []Value{Integer(5)})
	if got, want := v.Display(), "Circle(5)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	bare := NewEnumVariant(enum, "Point", nil)
	if got, want := bare.Display(), "Point"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
