package sql

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nickyhof/CommitQuery/core"
)

const dateTimeLayout = "2006-01-02 15:04:05"

// Serializer renders bound values as SQL literal text for one dialect.
type Serializer struct {
	Quoting core.Quoting

	// Escape is the connection's escape function. When nil, string quotes
	// are doubled.
	Escape func(string) string
}

// Serialize renders v. Lists are parenthesized unless inArray is set, and a
// nested list starts a new group, so [[1,2],[3,4]] renders as (1,2),(3,4).
// Strings are quoted and escaped when escape is set and emitted verbatim
// otherwise. Null and unsupported values render as empty text.
func (serializer Serializer) Serialize(v Value, inArray bool, escape bool) (string, error) {
	var builder strings.Builder
	if err := serializer.write(&builder, v, inArray, escape); err != nil {
		return "", err
	}
	return builder.String(), nil
}

func (serializer Serializer) write(builder *strings.Builder, v Value, inArray bool, escape bool) error {
	switch v.kind {
	case ListKind:
		if !inArray {
			builder.WriteByte('(')
		}
		for i, child := range v.list {
			if child.kind == ListKind && i > 0 {
				builder.WriteString("),(")
			} else if i > 0 {
				builder.WriteByte(',')
			}
			if err := serializer.write(builder, child, true, escape && !child.raw); err != nil {
				return err
			}
		}
		if !inArray {
			builder.WriteByte(')')
		}

	case TimeKind:
		date, err := FormatDateTime(v.t)
		if err != nil {
			return err
		}
		serializer.writeQuoted(builder, date)

	case BoolKind:
		if v.b {
			builder.WriteByte('1')
		} else {
			builder.WriteByte('0')
		}

	case IntKind:
		builder.WriteString(strconv.FormatInt(v.i, 10))

	case FloatKind:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return fmt.Errorf("%w: can't serialize non-finite float %v", core.ErrSerialization, v.f)
		}
		builder.WriteString(strconv.FormatFloat(v.f, 'f', -1, 64))

	case StringKind:
		if escape {
			serializer.writeQuoted(builder, serializer.escape(v.s))
		} else {
			builder.WriteString(v.s)
		}
	}

	return nil
}

func (serializer Serializer) writeQuoted(builder *strings.Builder, text string) {
	quote := serializer.Quoting.String
	if quote == 0 {
		quote = '\''
	}
	builder.WriteByte(quote)
	builder.WriteString(text)
	builder.WriteByte(quote)
}

func (serializer Serializer) escape(s string) string {
	if serializer.Escape != nil {
		return serializer.Escape(s)
	}
	quote := serializer.Quoting.String
	if quote == 0 {
		quote = '\''
	}
	return EscapeQuotes(quote, s)
}

// EscapeQuotes doubles every occurrence of quote, the ANSI SQL way of
// embedding a quote in a string literal.
func EscapeQuotes(quote byte, s string) string {
	q := string(quote)
	return strings.ReplaceAll(s, q, q+q)
}

// FormatDateTime formats t in local time as YYYY-MM-DD HH:MM:SS.
func FormatDateTime(t time.Time) (string, error) {
	local := t.In(time.Local)
	if year := local.Year(); year < 0 || year > 9999 {
		return "", fmt.Errorf("%w: can't format date with year %d", core.ErrSerialization, year)
	}
	return local.Format(dateTimeLayout), nil
}
