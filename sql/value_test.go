package sql

import (
	"database/sql/driver"
	"errors"
	"testing"
	"time"
)

type status string

type valuer struct {
	value driver.Value
	err   error
}

func (v valuer) Value() (driver.Value, error) {
	return v.value, v.err
}

func TestValueOf(t *testing.T) {
	number := 7
	var nilPointer *int
	now := time.Now()

	tests := []struct {
		name     string
		input    any
		expected Kind
	}{
		{"nil", nil, NullKind},
		{"bool", true, BoolKind},
		{"int", 1, IntKind},
		{"int8", int8(1), IntKind},
		{"uint32", uint32(1), IntKind},
		{"huge uint64", uint64(1 << 63), FloatKind},
		{"float32", float32(1.5), FloatKind},
		{"string", "a", StringKind},
		{"named string", status("active"), StringKind},
		{"bytes", []byte("abc"), StringKind},
		{"time", now, TimeKind},
		{"time pointer", &now, TimeKind},
		{"pointer", &number, IntKind},
		{"nil pointer", nilPointer, NullKind},
		{"slice", []string{"a"}, ListKind},
		{"array", [2]int{1, 2}, ListKind},
		{"any slice", []any{1, "a"}, ListKind},
		{"valuer", valuer{value: int64(3)}, IntKind},
		{"failing valuer", valuer{err: errors.New("boom")}, UnsupportedKind},
		{"map", map[string]int{}, UnsupportedKind},
		{"value", Raw("NOW()"), StringKind},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if kind := ValueOf(test.input).Kind(); kind != test.expected {
				t.Errorf("Expected %s, got %s", test.expected, kind)
			}
		})
	}
}

func TestValueOfKeepsRaw(t *testing.T) {
	if !ValueOf(Raw("NOW()")).IsRaw() {
		t.Error("Expected raw flag to survive ValueOf")
	}
	if String("x").IsRaw() {
		t.Error("Expected plain string not to be raw")
	}
}

func TestValuesOfNested(t *testing.T) {
	value := ValueOf([][]int{{1, 2}, {3}})
	if !value.IsList() || len(value.Elements()) != 2 {
		t.Fatalf("Expected list of two rows, got %v", value)
	}
	if inner := value.Elements()[1]; !inner.IsList() || inner.Elements()[0].Int() != 3 {
		t.Errorf("Unexpected inner list %v", inner)
	}
}
