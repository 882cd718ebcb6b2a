package sql

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nickyhof/CommitQuery/core"
)

func setupTestBinder() *Binder {
	return NewBinder(Serializer{Quoting: core.DefaultQuoting})
}

func TestBind(t *testing.T) {
	tests := []struct {
		name     string
		template string
		values   []any
		expected string
	}{
		{"no placeholders", "SELECT 1", nil, "SELECT 1"},
		{"quoted question mark", "SELECT '?' FROM t", nil, "SELECT '?' FROM t"},
		{"escaped question mark", `a = \?`, nil, "a = ?"},
		{"int", "id = ?", []any{42}, "id = 42"},
		{"float", "price > ?", []any{9.75}, "price > 9.75"},
		{"bool", "active = ? AND deleted = ?", []any{true, false}, "active = 1 AND deleted = 0"},
		{"string", "name = ?", []any{"Alice"}, "name = 'Alice'"},
		{"string with quote", "name = ?", []any{"O'Brien"}, "name = 'O''Brien'"},
		{"list", "id IN ?", []any{[]int{1, 2, 3}}, "id IN (1,2,3)"},
		{"tuples", "INSERT INTO t VALUES ?", []any{[][]any{{1, "a"}, {2, "b"}}}, "INSERT INTO t VALUES (1,'a'),(2,'b')"},
		{"raw", "created = ?", []any{Raw("NOW()")}, "created = NOW()"},
		{"null", "x = ?", []any{nil}, "x = "},
		{"value containing placeholder", "a = ? AND b = ?", []any{"?", "'?'"}, "a = '?' AND b = '''?'''"},
		{"placeholder after literal", "a = 'x' AND b = ?", []any{1}, "a = 'x' AND b = 1"},
	}

	binder := setupTestBinder()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bound, err := binder.Bind(test.template, ValuesOf(test.values))
			if err != nil {
				t.Fatalf("Failed to bind: %v", err)
			}
			if bound != test.expected {
				t.Errorf("Expected %q, got %q", test.expected, bound)
			}
		})
	}
}

func TestBindWrongNumberOfValues(t *testing.T) {
	binder := setupTestBinder()

	tests := []struct {
		template string
		values   []any
	}{
		{"a=? AND b=?", []any{1}},
		{"a=?", nil},
		{"a=1", []any{1}},
		{"SELECT '?'", []any{1}},
	}

	for _, test := range tests {
		_, err := binder.Bind(test.template, ValuesOf(test.values))
		if !errors.Is(err, core.ErrBinding) {
			t.Errorf("Expected ErrBinding for %q, got %v", test.template, err)
		}
	}
}

func TestBindIdempotent(t *testing.T) {
	binder := setupTestBinder()
	values := ValuesOf([]any{"a'b", 3, []string{"x", "y"}})

	first, err := binder.Bind("a = ? AND b = ? AND c IN ?", values)
	if err != nil {
		t.Fatalf("Failed to bind: %v", err)
	}
	second, err := binder.Bind("a = ? AND b = ? AND c IN ?", values)
	if err != nil {
		t.Fatalf("Failed to bind: %v", err)
	}
	if first != second {
		t.Errorf("Expected identical output, got %q and %q", first, second)
	}
}

func TestBindUsesConnectionEscape(t *testing.T) {
	calls := 0
	binder := NewBinder(Serializer{
		Quoting: core.DefaultQuoting,
		Escape: func(s string) string {
			calls++
			return strings.ReplaceAll(s, "'", `\'`)
		},
	})

	bound, err := binder.Bind("name = ?", []Value{String("a'b")})
	if err != nil {
		t.Fatalf("Failed to bind: %v", err)
	}
	if bound != `name = 'a\'b'` {
		t.Errorf("Unexpected bound text %q", bound)
	}
	if calls != 1 {
		t.Errorf("Expected escape to be called once, got %d", calls)
	}
}

func TestBindSerializationError(t *testing.T) {
	binder := setupTestBinder()
	_, err := binder.Bind("d = ?", []Value{Time(time.Date(12000, 1, 1, 0, 0, 0, 0, time.UTC))})
	if !errors.Is(err, core.ErrSerialization) {
		t.Errorf("Expected ErrSerialization, got %v", err)
	}
}

func TestBindDialectQuote(t *testing.T) {
	binder := NewBinder(Serializer{Quoting: core.Quoting{String: '"', Field: '`', Table: '`'}})

	bound, err := binder.Bind(`a = "?" AND b = ?`, []Value{String("x")})
	if err != nil {
		t.Fatalf("Failed to bind: %v", err)
	}
	if bound != `a = "?" AND b = "x"` {
		t.Errorf("Unexpected bound text %q", bound)
	}
}

func TestBindSegments(t *testing.T) {
	binder := setupTestBinder()

	tests := []struct {
		name     string
		segments []Segment
		values   []any
		expected string
	}{
		{
			"bound text is not scanned",
			[]Segment{{Text: `SELECT * FROM t WHERE name = 'C:\?'`, Bound: true}},
			nil,
			`SELECT * FROM t WHERE name = 'C:\?'`,
		},
		{
			"trailing backslash does not open a quote",
			[]Segment{{Text: `WHERE name = '\'`, Bound: true}, {Text: " OR age = ?"}},
			[]any{30},
			`WHERE name = '\' OR age = 30`,
		},
		{
			"values span templates in order",
			[]Segment{{Text: "a = ?"}, {Text: " AND b = 'x?'", Bound: true}, {Text: " AND c = ?"}},
			[]any{1, "y"},
			"a = 1 AND b = 'x?' AND c = 'y'",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bound, err := binder.BindSegments(test.segments, ValuesOf(test.values))
			if err != nil {
				t.Fatalf("Failed to bind: %v", err)
			}
			if bound != test.expected {
				t.Errorf("Expected %q, got %q", test.expected, bound)
			}
		})
	}
}

func TestBindSegmentsArity(t *testing.T) {
	binder := setupTestBinder()

	segments := []Segment{{Text: "a = ?", Bound: true}, {Text: " AND b = ?"}}
	if _, err := binder.BindSegments(segments, nil); !errors.Is(err, core.ErrBinding) {
		t.Errorf("Expected ErrBinding with too few values, got %v", err)
	}
	if _, err := binder.BindSegments(segments, ValuesOf([]any{1, 2})); !errors.Is(err, core.ErrBinding) {
		t.Errorf("Expected ErrBinding with too many values, got %v", err)
	}
}
