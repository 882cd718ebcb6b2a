package db

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/nickyhof/CommitQuery/core"
	"github.com/nickyhof/CommitQuery/sql"
)

// Query is a statement under construction together with its execution
// settings. A Query is owned by one caller and runs one execution at a
// time: the text buffer and bound values are reused between executions.
type Query struct {
	connection  core.Connection
	coordinator *Coordinator
	binder      *sql.Binder
	quoting     core.Quoting

	segments   []sql.Segment
	whereAdded bool
	values     []sql.Value
	err        error

	settings  settings
	listeners []Listener

	refs atomic.Int32
}

// NewQuery creates a query bound to connection. A nil coordinator makes
// every execution synchronous.
func NewQuery(connection core.Connection, coordinator *Coordinator) *Query {
	quoting := connection.Quoting()
	return &Query{
		connection:  connection,
		coordinator: coordinator,
		quoting:     quoting,
		binder: sql.NewBinder(sql.Serializer{
			Quoting: quoting,
			Escape:  connection.Escape,
		}),
		settings: defaultSettings(),
	}
}

// SQL returns the statement text accumulated so far.
func (query *Query) SQL() string {
	var builder strings.Builder
	for _, segment := range query.segments {
		builder.WriteString(segment.Text)
	}
	return builder.String()
}

// write appends text that is final. Clauses bound by Where and Join go
// here so their literals are never scanned for placeholders again.
func (query *Query) write(text string) {
	query.append(text, true)
}

// writeTemplate appends text whose placeholders are bound at execution.
func (query *Query) writeTemplate(text string) {
	query.append(text, false)
}

func (query *Query) append(text string, bound bool) {
	if n := len(query.segments); n > 0 && query.segments[n-1].Bound == bound {
		query.segments[n-1].Text += text
		return
	}
	query.segments = append(query.segments, sql.Segment{Text: text, Bound: bound})
}

func (query *Query) replace(text string, bound bool) {
	query.segments = query.segments[:0]
	query.append(text, bound)
}

// Err returns the first builder error recorded on the query.
func (query *Query) Err() error {
	return query.err
}

// Outstanding reports whether an execution has been dispatched and not yet
// finished.
func (query *Query) Outstanding() bool {
	return query.refs.Load() > 0
}

// Reset clears the statement text, bound values and any builder error.
// Settings and listeners are kept.
func (query *Query) Reset() *Query {
	query.segments = nil
	query.whereAdded = false
	query.values = nil
	query.err = nil
	return query
}

func (query *Query) fail(format string, args ...any) *Query {
	if query.err == nil {
		query.err = fmt.Errorf("%w: "+format, append([]any{core.ErrBuilder}, args...)...)
	}
	return query
}

func (query *Query) serializer() sql.Serializer {
	return query.binder.Serializer
}

// Select starts a SELECT clause. A string is appended as written, like
// Add, so Select("*") and Select("COUNT(*)") work. A slice of fields quotes each
// string as a column name and renders aliases; an Alias, Aliases or a
// map[string]any renders "value AS alias" entries.
func (query *Query) Select(fields any) *Query {
	if query.err != nil {
		return query
	}

	var text string
	switch f := fields.(type) {
	case string:
		query.write("SELECT ")
		query.writeTemplate(f)
		return query
	case []string:
		if len(f) == 0 {
			return query.fail("no fields specified in select")
		}
		quoted := make([]string, len(f))
		for i, field := range f {
			quoted[i] = core.EscapeName(query.quoting.Field, field)
		}
		text = strings.Join(quoted, ",")
	case []any:
		if len(f) == 0 {
			return query.fail("no fields specified in select")
		}
		rendered := make([]string, len(f))
		for i, field := range f {
			fieldText, err := query.selectField(field)
			if err != nil {
				query.err = err
				return query
			}
			rendered[i] = fieldText
		}
		text = strings.Join(rendered, ",")
	default:
		fieldText, err := query.selectField(fields)
		if err != nil {
			query.err = err
			return query
		}
		text = fieldText
	}

	query.write("SELECT " + text)
	return query
}

func (query *Query) selectField(field any) (string, error) {
	switch f := field.(type) {
	case string:
		return core.EscapeName(query.quoting.Field, f), nil
	case Alias:
		return query.renderAliases(Aliases{f})
	case Aliases:
		return query.renderAliases(f)
	case map[string]any:
		return query.renderAliases(aliasesOf(f))
	default:
		return "", fmt.Errorf("%w: incorrect value type %T provided as field for select", core.ErrBuilder, field)
	}
}

func (query *Query) renderAliases(aliases Aliases) (string, error) {
	if len(aliases) == 0 {
		return "", fmt.Errorf("%w: non empty objects should be used for value aliasing in select", core.ErrBuilder)
	}

	quote := query.quoting.Field
	var builder strings.Builder
	for j, alias := range aliases {
		if j > 0 {
			builder.WriteByte(',')
		}

		var value sql.Value
		var escape bool
		if expr, ok := alias.Value.(Expr); ok {
			value = sql.ValueOf(expr.Value)
			escape = expr.Escape
		} else {
			value = sql.ValueOf(alias.Value)
			escape = value.IsString() && !value.IsRaw()
		}

		literal, err := query.serializer().Serialize(value, false, escape)
		if err != nil {
			return "", err
		}
		builder.WriteString(literal)
		builder.WriteString(" AS ")
		builder.WriteString(core.EscapeName(quote, alias.Name))
	}
	return builder.String(), nil
}

// From appends a FROM clause. table is a table name or an alias mapping:
// an Alias whose value is the table name, or a single entry
// map[string]string{alias: table}. Names are quoted unless escape is false.
func (query *Query) From(table any, escape ...bool) *Query {
	if query.err != nil {
		return query
	}
	if len(escape) > 1 {
		return query.fail("from takes at most one escape flag")
	}
	quote := query.quoting.Table
	if len(escape) == 1 && !escape[0] {
		quote = 0
	}

	var text string
	switch t := table.(type) {
	case string:
		if t == "" {
			return query.fail("no table specified in from")
		}
		text = core.EscapeName(quote, t)
	case Alias:
		name, ok := t.Value.(string)
		if !ok || t.Name == "" || name == "" {
			return query.fail("only strings are allowed for table / alias name in from")
		}
		text = core.EscapeName(quote, name) + " AS " + core.EscapeName(quote, t.Name)
	case map[string]string:
		if len(t) == 0 {
			return query.fail("non empty objects should be used for aliasing in from")
		}
		keys := make([]string, 0, len(t))
		for alias := range t {
			keys = append(keys, alias)
		}
		sort.Strings(keys)
		text = core.EscapeName(quote, t[keys[0]]) + " AS " + core.EscapeName(quote, keys[0])
	default:
		return query.fail("incorrect value type %T provided as table for from", table)
	}

	query.write(" FROM " + text)
	return query
}

// JoinSpec describes one JOIN clause. Type defaults to INNER and Escape to
// true. Conditions may hold ? placeholders bound from the Join values.
type JoinSpec struct {
	Type       string
	Table      string
	Alias      string
	Conditions string
	Escape     *bool
}

func (query *Query) Join(join JoinSpec, values ...any) *Query {
	if query.err != nil {
		return query
	}
	if join.Table == "" {
		return query.fail("a table must be specified for join")
	}

	joinType := "INNER"
	if join.Type != "" {
		joinType = strings.ToUpper(join.Type)
	}
	quote := query.quoting.Table
	if join.Escape != nil && !*join.Escape {
		quote = 0
	}

	var conditions string
	if join.Conditions != "" {
		bound, err := query.binder.Bind(join.Conditions, sql.ValuesOf(values))
		if err != nil {
			query.err = err
			return query
		}
		conditions = bound
	}

	query.write(" " + joinType + " JOIN " + core.EscapeName(quote, join.Table))
	if join.Alias != "" {
		query.write(" AS " + core.EscapeName(quote, join.Alias))
	}
	if join.Conditions != "" {
		query.write(" ON (" + conditions + ")")
	}
	return query
}

// Where appends conditions after binding values into their placeholders.
// The first call opens the WHERE clause and later calls are joined with AND.
func (query *Query) Where(conditions string, values ...any) *Query {
	if query.err != nil {
		return query
	}

	bound, err := query.binder.Bind(conditions, sql.ValuesOf(values))
	if err != nil {
		query.err = err
		return query
	}

	if query.whereAdded {
		query.write(" AND " + bound)
	} else {
		query.whereAdded = true
		query.write(" WHERE " + bound)
	}
	return query
}

// Limit appends LIMIT rows, or LIMIT offset,rows when given two arguments.
func (query *Query) Limit(rowsOrOffset ...int) *Query {
	if query.err != nil {
		return query
	}
	if len(rowsOrOffset) == 0 || len(rowsOrOffset) > 2 {
		return query.fail("limit takes one or two arguments, got %d", len(rowsOrOffset))
	}
	for _, n := range rowsOrOffset {
		if n < 0 {
			return query.fail("limit arguments must be non-negative, got %d", n)
		}
	}

	limit := " LIMIT " + strconv.Itoa(rowsOrOffset[0])
	if len(rowsOrOffset) == 2 {
		limit += "," + strconv.Itoa(rowsOrOffset[1])
	}
	query.write(limit)
	return query
}

// Add appends raw SQL as written. Its placeholders are bound from the
// values given to Execute.
func (query *Query) Add(raw string) *Query {
	if query.err != nil {
		return query
	}
	query.writeTemplate(" " + raw)
	return query
}
