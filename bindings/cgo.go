package main

/*
#include <stdlib.h>
*/
import "C"
import (
	"context"
	"encoding/json"
	"sync"
	"unsafe"

	"github.com/nickyhof/CommitQuery"
	"github.com/nickyhof/CommitQuery/conn/sqlite"
	"github.com/nickyhof/CommitQuery/core"
	"github.com/nickyhof/CommitQuery/db"
	"github.com/nickyhof/CommitQuery/ps"
)

var identity = core.Identity{
	Name:  "CommitQuery Python",
	Email: "python@commitquery.local",
}

var (
	handlesMu  sync.Mutex
	handles    = make(map[int]*CommitQuery.Instance)
	nextHandle = 1
)

// Response mirrors the server protocol for consistency
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Type    string          `json:"type,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

type QueryResponse struct {
	Columns         []string   `json:"columns"`
	Types           []string   `json:"types"`
	Data            [][]string `json:"data"`
	ExecutionTimeMs float64    `json:"execution_time_ms"`
}

type ExecResponse struct {
	InsertID        int64   `json:"insert_id"`
	ExecutionTimeMs float64 `json:"execution_time_ms"`
}

func open(path string, journal *ps.Journal, err error) C.int {
	if err != nil {
		return -1
	}

	instance, err := CommitQuery.Open(context.Background(), sqlite.New(path), CommitQuery.Options{Journal: journal})
	if err != nil {
		return -1
	}

	handlesMu.Lock()
	defer handlesMu.Unlock()
	handle := nextHandle
	nextHandle++
	handles[handle] = instance
	return C.int(handle)
}

//export commitquery_open_memory
func commitquery_open_memory() C.int {
	journal, err := ps.NewMemoryJournal(identity)
	return open(sqlite.Memory, journal, err)
}

// commitquery_open_file opens the SQLite database at path and journals to
// journalDir.
//
//export commitquery_open_file
func commitquery_open_file(path *C.char, journalDir *C.char) C.int {
	journal, err := ps.NewFileJournal(C.GoString(journalDir), identity, nil)
	return open(C.GoString(path), journal, err)
}

//export commitquery_close
func commitquery_close(handle C.int) {
	handlesMu.Lock()
	instance, ok := handles[int(handle)]
	delete(handles, int(handle))
	handlesMu.Unlock()

	if ok {
		instance.Close()
	}
}

//export commitquery_execute
func commitquery_execute(handle C.int, query *C.char) *C.char {
	handlesMu.Lock()
	instance, ok := handles[int(handle)]
	handlesMu.Unlock()
	if !ok {
		return makeErrorResponse("Invalid handle")
	}

	result, err := instance.Query().Run(context.Background(), C.GoString(query))
	if err != nil {
		return makeErrorResponse(err.Error())
	}

	var resp Response
	if len(result.Columns) > 0 {
		types := make([]string, len(result.Columns))
		for i, column := range result.Columns {
			types[i] = column.Type.String()
		}
		data, _ := json.Marshal(QueryResponse{
			Columns:         result.ColumnNames(),
			Types:           types,
			Data:            result.Data(),
			ExecutionTimeMs: result.ExecutionTimeSec * 1000,
		})
		resp = Response{Success: true, Type: "query", Result: data}
	} else {
		data, _ := json.Marshal(ExecResponse{
			InsertID:        result.InsertID,
			ExecutionTimeMs: result.ExecutionTimeSec * 1000,
		})
		resp = Response{Success: true, Type: "exec", Result: data}
	}

	return makeResponse(resp)
}

// commitquery_export writes the result of query as CSV to path, which may
// be a local file or an s3:// URL.
//
//export commitquery_export
func commitquery_export(handle C.int, query *C.char, path *C.char) *C.char {
	handlesMu.Lock()
	instance, ok := handles[int(handle)]
	handlesMu.Unlock()
	if !ok {
		return makeErrorResponse("Invalid handle")
	}

	ctx := context.Background()
	result, err := instance.Query().Run(ctx, C.GoString(query))
	if err != nil {
		return makeErrorResponse(err.Error())
	}
	if err := result.Export(ctx, C.GoString(path), &db.S3Config{}); err != nil {
		return makeErrorResponse(err.Error())
	}
	return makeResponse(Response{Success: true, Type: "export"})
}

//export commitquery_free
func commitquery_free(ptr *C.char) {
	C.free(unsafe.Pointer(ptr))
}

func makeResponse(resp Response) *C.char {
	data, _ := json.Marshal(resp)
	return C.CString(string(data))
}

func makeErrorResponse(msg string) *C.char {
	return makeResponse(Response{
		Success: false,
		Error:   msg,
	})
}

func main() {}
