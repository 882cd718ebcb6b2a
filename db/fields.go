package db

import "sort"

// Alias names a select value or a table: Select(As("total", Expr{Value: "SUM(x)"}))
// renders SUM(x) AS `total`, From(As("u", "users")) renders `users` AS `u`.
type Alias struct {
	Name  string
	Value any
}

// Aliases is an ordered list of aliased select values.
type Aliases []Alias

func As(name string, value any) Alias {
	return Alias{Name: name, Value: value}
}

// Expr wraps a select value with an explicit escape policy. Without
// Escape the value is emitted as raw SQL.
type Expr struct {
	Value  any
	Escape bool
}

func aliasesOf(fields map[string]any) Aliases {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	aliases := make(Aliases, len(names))
	for i, name := range names {
		aliases[i] = Alias{Name: name, Value: fields[name]}
	}
	return aliases
}
