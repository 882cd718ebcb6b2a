//go:build integration

package duckdb

import (
	"context"
	"testing"

	"github.com/nickyhof/CommitQuery/core"
	"github.com/nickyhof/CommitQuery/db"
)

func TestQueryPipeline(t *testing.T) {
	connection := New("")
	if err := connection.Open(context.Background()); err != nil {
		t.Fatalf("Failed to open DuckDB: %v", err)
	}
	defer connection.Close()

	query := db.NewQuery(connection, nil)
	for _, statement := range []string{
		"CREATE TABLE users (id INTEGER, name VARCHAR, score DOUBLE, joined TIMESTAMP)",
		"INSERT INTO users VALUES (1, 'Alice', 1.5, '2024-01-02 03:04:05'), (2, 'Bob', NULL, NULL)",
	} {
		if _, err := query.Reset().Run(context.Background(), statement); err != nil {
			t.Fatalf("Failed to execute %q: %v", statement, err)
		}
	}

	result, err := query.Reset().Select([]any{"id", "name", "score"}).From("users").Where("id > ?", 0).Add("ORDER BY id").Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(result.Rows))
	}
	if result.Columns[0].Type != core.IntType || result.Columns[2].Type != core.NumberType {
		t.Errorf("Unexpected column types %+v", result.Columns)
	}
	if result.Rows[0]["id"] != int64(1) || result.Rows[0]["score"] != 1.5 {
		t.Errorf("Unexpected first row %v", result.Rows[0])
	}
	if result.Rows[1]["score"] != nil {
		t.Errorf("Expected NULL score, got %#v", result.Rows[1]["score"])
	}
}
