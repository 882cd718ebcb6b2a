// Package main provides a TCP SQL server for CommitQuery.
package main

import (
	"encoding/json"

	"github.com/nickyhof/CommitQuery/core"
	"github.com/nickyhof/CommitQuery/db"
)

// Request is a JSON request line. A line that is not JSON is treated as a
// bare SQL statement.
type Request struct {
	Query string `json:"query"`
	// Values are bound to the ? placeholders of Query.
	Values []any `json:"values,omitempty"`
	// Stream asks for one Event line per notification instead of a single
	// Response.
	Stream bool `json:"stream,omitempty"`
}

// Response represents the server's response to a request.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Type    string          `json:"type,omitempty"` // "query", "exec" or "auth"
	Result  json.RawMessage `json:"result,omitempty"`
}

type ColumnResponse struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// QueryResponse contains tabular query results.
type QueryResponse struct {
	SQL     string           `json:"sql"`
	Columns []ColumnResponse `json:"columns"`
	Data    [][]string       `json:"data"`
	TimeMs  float64          `json:"time_ms"`
}

// ExecResponse is returned for statements without a result set.
type ExecResponse struct {
	SQL      string  `json:"sql"`
	InsertID int64   `json:"insert_id"`
	TimeMs   float64 `json:"time_ms"`
}

// AuthResponse contains authentication results.
type AuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	Identity      string `json:"identity,omitempty"`
	ExpiresIn     int    `json:"expires_in,omitempty"`
}

// Event is one streamed notification of an execution.
type Event struct {
	Event   string           `json:"event"` // start, row, success, error or finish
	SQL     string           `json:"sql,omitempty"`
	Index   int              `json:"index,omitempty"`
	Last    bool             `json:"last,omitempty"`
	Row     map[string]any   `json:"row,omitempty"`
	Rows    int              `json:"rows,omitempty"`
	Columns []ColumnResponse `json:"columns,omitempty"`
	Error   string           `json:"error,omitempty"`
}

func columnsOf(columns []core.Column) []ColumnResponse {
	out := make([]ColumnResponse, len(columns))
	for i, column := range columns {
		out[i] = ColumnResponse{Name: column.Name, Type: column.Type.String()}
	}
	return out
}

// rowOf renders row values as text, keeping NULL as JSON null.
func rowOf(row db.Row) map[string]any {
	out := make(map[string]any, len(row))
	for name, value := range row {
		if value == nil {
			out[name] = nil
			continue
		}
		out[name] = db.FormatValue(value)
	}
	return out
}

func resultResponse(result *db.Result) Response {
	if len(result.Columns) == 0 {
		data, _ := json.Marshal(ExecResponse{
			SQL:      result.SQL,
			InsertID: result.InsertID,
			TimeMs:   result.ExecutionTimeSec * 1000,
		})
		return Response{Success: true, Type: "exec", Result: data}
	}

	data, _ := json.Marshal(QueryResponse{
		SQL:     result.SQL,
		Columns: columnsOf(result.Columns),
		Data:    result.Data(),
		TimeMs:  result.ExecutionTimeSec * 1000,
	})
	return Response{Success: true, Type: "query", Result: data}
}

// EncodeResponse serializes a Response to JSON with a newline.
func EncodeResponse(resp Response) ([]byte, error) {
	return encodeLine(resp)
}

// EncodeEvent serializes an Event to JSON with a newline.
func EncodeEvent(event Event) ([]byte, error) {
	return encodeLine(event)
}

func encodeLine(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeRequest parses a request line. JSON objects are decoded, anything
// else becomes the Query of the request.
func DecodeRequest(line string) (Request, error) {
	if len(line) == 0 || line[0] != '{' {
		return Request{Query: line}, nil
	}
	var req Request
	err := json.Unmarshal([]byte(line), &req)
	return req, err
}
