// Package sql provides placeholder binding and SQL literal serialization
// for CommitQuery.
//
// The package turns a statement template with positional ? placeholders
// and a list of bound values into literal SQL text for one dialect.
//
// # Lexer Usage
//
// The lexer splits a template into text runs and placeholders. Question
// marks inside string literals are text, and \? is a literal question mark:
//
//	lexer := sql.NewLexer(`SELECT '?' FROM t WHERE a = ? AND b = \?`, '\'')
//	for {
//	    token := lexer.NextToken()
//	    if token.Type == sql.EOF {
//	        break
//	    }
//	    fmt.Println(token)
//	}
//
// # Binding
//
//	binder := sql.NewBinder(sql.Serializer{Quoting: core.StandardQuoting})
//	text, err := binder.Bind("SELECT * FROM users WHERE id IN ?", []sql.Value{
//	    sql.ValueOf([]int{1, 2, 3}),
//	})
//	// text == "SELECT * FROM users WHERE id IN (1,2,3)"
//
// # Values
//
// Bound values are a closed set of kinds: Null, Bool, Int, Float, String,
// Time and List. ValueOf converts ordinary Go values; Raw marks text that
// is emitted verbatim instead of being quoted and escaped.
package sql
