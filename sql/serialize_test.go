package sql

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/nickyhof/CommitQuery/core"
)

func TestSerialize(t *testing.T) {
	serializer := Serializer{Quoting: core.DefaultQuoting}
	local := time.Date(2011, time.March, 4, 5, 6, 7, 0, time.Local)

	tests := []struct {
		name     string
		value    Value
		inArray  bool
		escape   bool
		expected string
	}{
		{"list", ValueOf([]int{1, 2, 3}), false, true, "(1,2,3)"},
		{"nested list", ValueOf([][]int{{1, 2}, {3, 4}}), false, true, "(1,2),(3,4)"},
		{"list in array", ValueOf([]int{1, 2}), true, true, "1,2"},
		{"empty list", List(), false, true, "()"},
		{"list with null", List(Int(1), Null(), Int(3)), false, true, "(1,,3)"},
		{"mixed list", List(String("a"), Bool(true), Float(1.5)), false, true, "('a',1,1.5)"},
		{"raw element", List(Raw("DEFAULT"), String("x")), false, true, "(DEFAULT,'x')"},
		{"true", Bool(true), false, true, "1"},
		{"false", Bool(false), false, true, "0"},
		{"negative int", Int(-17), false, true, "-17"},
		{"large float", Float(12345678901234.5), false, true, "12345678901234.5"},
		{"small float", Float(0.000001), false, true, "0.000001"},
		{"integral float", Float(3), false, true, "3"},
		{"string escaped", String("a'b"), false, true, "'a''b'"},
		{"string raw", String("COUNT(*)"), false, false, "COUNT(*)"},
		{"null", Null(), false, true, ""},
		{"unsupported", ValueOf(struct{}{}), false, true, ""},
		{"time", Time(local), false, true, "'2011-03-04 05:06:07'"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			text, err := serializer.Serialize(test.value, test.inArray, test.escape)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}
			if text != test.expected {
				t.Errorf("Expected %q, got %q", test.expected, text)
			}
		})
	}
}

func TestSerializeNeverLeavesQuoteUnescaped(t *testing.T) {
	serializer := Serializer{Quoting: core.DefaultQuoting}

	inputs := []string{"'", "''", "a'b'c", "'; DROP TABLE users; --"}
	for _, input := range inputs {
		text, err := serializer.Serialize(String(input), false, true)
		if err != nil {
			t.Fatalf("Failed to serialize: %v", err)
		}
		inner := text[1 : len(text)-1]
		for i := 0; i < len(inner); i++ {
			if inner[i] != '\'' {
				continue
			}
			if i+1 >= len(inner) || inner[i+1] != '\'' {
				t.Fatalf("Unescaped quote in %q", text)
			}
			i++
		}
	}
}

func TestSerializeFloatPrecision(t *testing.T) {
	serializer := Serializer{Quoting: core.DefaultQuoting}
	text, err := serializer.Serialize(Float(math.Pi), false, true)
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}
	if text != "3.141592653589793" {
		t.Errorf("Expected full precision, got %q", text)
	}
}

func TestSerializeNonFiniteFloat(t *testing.T) {
	serializer := Serializer{Quoting: core.DefaultQuoting}

	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := serializer.Serialize(Float(f), false, true); !errors.Is(err, core.ErrSerialization) {
			t.Errorf("Expected ErrSerialization for %v, got %v", f, err)
		}
	}

	if _, err := serializer.Serialize(List(Int(1), Float(math.NaN())), false, true); !errors.Is(err, core.ErrSerialization) {
		t.Errorf("Expected ErrSerialization for a list holding NaN, got %v", err)
	}
}

func TestFormatDateTime(t *testing.T) {
	date, err := FormatDateTime(time.Date(1999, time.December, 31, 23, 59, 58, 0, time.Local))
	if err != nil {
		t.Fatalf("Failed to format: %v", err)
	}
	if date != "1999-12-31 23:59:58" {
		t.Errorf("Unexpected date %q", date)
	}
}
