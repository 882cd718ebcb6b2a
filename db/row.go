package db

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/nickyhof/CommitQuery/core"
	"github.com/nickyhof/CommitQuery/sql"
)

// Row maps column names to typed values. With duplicate column names the
// last column wins.
type Row map[string]any

// CastRow converts a textual row into typed values following the column
// types. With cast false every non-NULL field stays a string.
func CastRow(raw core.RawRow, columns []core.Column, cast, bufferText bool) (Row, error) {
	if len(raw) != len(columns) {
		return nil, fmt.Errorf("%w: row has %d fields but %d columns were reported", core.ErrDriver, len(raw), len(columns))
	}

	row := make(Row, len(columns))
	for i, column := range columns {
		row[column.Name] = CastValue(raw[i], column.Type, cast, bufferText)
	}
	return row, nil
}

// CastValue converts one field. A nil field is SQL NULL and yields nil.
// Values that fail to parse for their column type are returned as text.
func CastValue(field *string, columnType core.ColumnType, doCast, bufferText bool) any {
	if field == nil {
		return nil
	}
	text := *field
	if !doCast {
		return text
	}

	switch columnType {
	case core.BoolType:
		return text != "0"
	case core.IntType:
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n
		}
		f, err := cast.ToFloat64E(text)
		if err != nil {
			return text
		}
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return f
		}
		return int64(f)
	case core.NumberType:
		f, err := cast.ToFloat64E(text)
		if err != nil {
			return text
		}
		return f
	case core.TimeType:
		var hour, minute, second int
		if n, _ := fmt.Sscanf(text, "%d:%d:%d", &hour, &minute, &second); n != 3 {
			return text
		}
		return time.Unix(int64(hour*3600+minute*60+second), 0).UTC()
	case core.DateType:
		var year, month, day int
		if n, _ := fmt.Sscanf(text, "%d-%d-%d", &year, &month, &day); n != 3 {
			return text
		}
		return localInstant(year, month, day, 0, 0, 0)
	case core.DateTimeType:
		var year, month, day, hour, minute, second int
		if n, _ := fmt.Sscanf(text, "%d-%d-%d %d:%d:%d", &year, &month, &day, &hour, &minute, &second); n != 6 {
			return text
		}
		return localInstant(year, month, day, hour, minute, second)
	case core.SetType:
		members := []string{}
		for _, member := range strings.Split(text, ",") {
			if member != "" {
				members = append(members, member)
			}
		}
		return members
	case core.TextType:
		if bufferText {
			return []byte(text)
		}
		return text
	default:
		return text
	}
}

// localInstant reads the wall clock as local time and shifts it by the
// process GMT offset, so stored wall clocks come back as their UTC reading.
func localInstant(year, month, day, hour, minute, second int) time.Time {
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local).Add(sql.GMTOffset())
}
