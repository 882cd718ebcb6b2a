package db

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectScheme(t *testing.T) {
	tests := []struct {
		path     string
		expected urlScheme
	}{
		{"s3://bucket/key.csv", schemeS3},
		{"S3://bucket/key.csv", schemeS3},
		{"https://example.com/q.sql", schemeHTTPS},
		{"http://example.com/q.sql", schemeHTTP},
		{"file:///tmp/out.csv", schemeFile},
		{"/tmp/out.csv", schemeLocal},
		{"out.csv", schemeLocal},
	}

	for _, test := range tests {
		if scheme := detectScheme(test.path); scheme != test.expected {
			t.Errorf("detectScheme(%q): expected %s, got %s", test.path, test.expected, scheme)
		}
	}
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://results/daily/users.csv")
	if err != nil {
		t.Fatalf("parseS3URL failed: %v", err)
	}
	if bucket != "results" || key != "daily/users.csv" {
		t.Errorf("Expected results and daily/users.csv, got %s and %s", bucket, key)
	}

	for _, url := range []string{"s3://bucket", "s3://bucket/", "s3:///key"} {
		if _, _, err := parseS3URL(url); err == nil {
			t.Errorf("Expected error for %q", url)
		}
	}
}

func TestOpenWriterRejectsHTTP(t *testing.T) {
	if _, err := OpenWriter(context.Background(), "https://example.com/out.csv", nil); err == nil {
		t.Error("Expected HTTP writes to fail")
	}
}

type nopWriteCloser struct {
	*bytes.Buffer
}

func (nopWriteCloser) Close() error { return nil }

func TestResultExport(t *testing.T) {
	var buffer bytes.Buffer
	var created string
	original := osCreate
	osCreate = func(path string) (io.WriteCloser, error) {
		created = path
		return nopWriteCloser{&buffer}, nil
	}
	defer func() { osCreate = original }()

	if err := setupTestResult().Export(context.Background(), "file:///tmp/users.csv", nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if created != "/tmp/users.csv" {
		t.Errorf("Expected /tmp/users.csv, got %s", created)
	}
	expected := "id,name,tags\n1,Alice,\"a,b\"\n2,NULL,\n"
	if buffer.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buffer.String())
	}
}

func TestOpenReaderLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statements.sql")
	if err := os.WriteFile(path, []byte("SELECT 1;"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	reader, err := OpenReader(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !strings.HasPrefix(string(content), "SELECT 1") {
		t.Errorf("Unexpected content %q", content)
	}
}
