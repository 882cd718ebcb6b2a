package conn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nickyhof/CommitQuery/core"
)

func TestColumnOf(t *testing.T) {
	tests := []struct {
		databaseType string
		expected     core.ColumnType
		binary       bool
	}{
		{"INTEGER", core.IntType, false},
		{"bigint", core.IntType, false},
		{"INT UNSIGNED", core.IntType, false},
		{"DECIMAL(18,3)", core.NumberType, false},
		{"DOUBLE", core.NumberType, false},
		{"VARCHAR(20)", core.StringType, false},
		{"TEXT", core.TextType, false},
		{"BLOB", core.TextType, true},
		{"VARBINARY", core.StringType, true},
		{"DATE", core.DateType, false},
		{"TIME", core.TimeType, false},
		{"TIMESTAMP", core.DateTimeType, false},
		{"BOOLEAN", core.BoolType, false},
		{"SET", core.SetType, false},
		{"", core.StringType, false},
		{"INTERVAL", core.StringType, false},
	}

	for _, test := range tests {
		column := ColumnOf("c", test.databaseType)
		if column.Type != test.expected || column.Binary != test.binary {
			t.Errorf("ColumnOf(%q): expected %s binary=%v, got %s binary=%v",
				test.databaseType, test.expected, test.binary, column.Type, column.Binary)
		}
	}
}

func TestFormatField(t *testing.T) {
	moment := time.Date(2024, 3, 5, 13, 14, 15, 0, time.UTC)

	tests := []struct {
		value      any
		columnType core.ColumnType
		expected   string
	}{
		{"x", core.StringType, "x"},
		{[]byte("y"), core.TextType, "y"},
		{int64(-4), core.IntType, "-4"},
		{2.5, core.NumberType, "2.5"},
		{true, core.BoolType, "1"},
		{false, core.BoolType, "0"},
		{moment, core.DateType, "2024-03-05"},
		{moment, core.TimeType, "13:14:15"},
		{moment, core.DateTimeType, "2024-03-05 13:14:15"},
		{int32(9), core.IntType, "9"},
	}

	for _, test := range tests {
		field := FormatField(test.value, test.columnType)
		if field == nil || *field != test.expected {
			t.Errorf("FormatField(%#v): expected %q, got %v", test.value, test.expected, field)
		}
	}

	if FormatField(nil, core.StringType) != nil {
		t.Error("Expected nil for NULL")
	}
}

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		sql      string
		expected bool
	}{
		{"SELECT 1", true},
		{"  select * from t", true},
		{"(SELECT 1) UNION (SELECT 2)", true},
		{"WITH x AS (SELECT 1) SELECT * FROM x", true},
		{"PRAGMA table_info(t)", true},
		{"INSERT INTO t VALUES (1)", false},
		{"INSERT INTO t VALUES (1) RETURNING id", true},
		{"UPDATE t SET a = 1", false},
		{"CREATE TABLE t (id INT)", false},
		{"", false},
	}

	for _, test := range tests {
		if returns := ReturnsRows(test.sql); returns != test.expected {
			t.Errorf("ReturnsRows(%q): expected %v, got %v", test.sql, test.expected, returns)
		}
	}
}

func TestConnectionNotOpened(t *testing.T) {
	connection := New(Dialect{Name: "none", Driver: "none", Quoting: core.StandardQuoting}, "")

	if connection.IsOpened() {
		t.Error("Expected a new connection to be closed")
	}
	if _, err := connection.Execute(context.Background(), "SELECT 1"); !errors.Is(err, core.ErrNotOpened) {
		t.Errorf("Expected ErrNotOpened, got %v", err)
	}
	if err := connection.Close(); err != nil {
		t.Errorf("Expected closing an unopened connection to succeed, got %v", err)
	}
}

func TestConnectionEscape(t *testing.T) {
	connection := New(Dialect{Quoting: core.StandardQuoting}, "")
	if escaped := connection.Escape("it's"); escaped != "it''s" {
		t.Errorf("Expected doubled quote, got %q", escaped)
	}

	custom := New(Dialect{Quoting: core.DefaultQuoting, Escape: func(s string) string { return "<" + s + ">" }}, "")
	if escaped := custom.Escape("x"); escaped != "<x>" {
		t.Errorf("Expected custom escape, got %q", escaped)
	}
}
