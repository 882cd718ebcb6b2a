package sql

type TokenType int

const (
	Text TokenType = iota
	Placeholder
	EOF
)

type Token struct {
	Type  TokenType
	Value string
}

func (token Token) String() string {
	switch token.Type {
	case Text:
		return "Text(" + token.Value + ")"
	case Placeholder:
		return "Placeholder"
	case EOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

// Lexer splits a statement template into text runs and placeholders.
//
// A backslash escapes the following character. An escaped ? loses its
// backslash and becomes literal text; any other escaped character is kept
// as written, backslash included, and never opens or closes a quote. The
// dialect string quote opens a quoted region in which ? is plain text.
type Lexer struct {
	sql          string
	position     int
	readPosition int
	ch           byte
	quote        byte // dialect string quote
	open         byte // quote currently open, 0 when outside literals
	escaped      bool
}

func NewLexer(sql string, quote byte) *Lexer {
	lexer := &Lexer{sql: sql, quote: quote}
	lexer.readChar()
	return lexer
}

func (lexer *Lexer) readChar() {
	if lexer.readPosition >= len(lexer.sql) {
		lexer.ch = 0
	} else {
		lexer.ch = lexer.sql[lexer.readPosition]
	}
	lexer.position = lexer.readPosition
	lexer.readPosition++
}

func (lexer *Lexer) atEOF() bool {
	return lexer.position >= len(lexer.sql)
}

func (lexer *Lexer) NextToken() Token {
	if lexer.atEOF() {
		return Token{Type: EOF}
	}

	if lexer.isPlaceholder() {
		lexer.readChar()
		return Token{Type: Placeholder, Value: "?"}
	}

	return Token{Type: Text, Value: lexer.readText()}
}

// readText consumes characters up to the next placeholder or the end of
// input, dropping the backslash of every escaped ?.
func (lexer *Lexer) readText() string {
	text := make([]byte, 0, 16)
	for !lexer.atEOF() && !lexer.isPlaceholder() {
		ch := lexer.ch
		switch {
		case lexer.escaped:
			if ch == '?' {
				text[len(text)-1] = '?'
			} else {
				text = append(text, ch)
			}
			lexer.escaped = false
		case ch == '\\':
			lexer.escaped = true
			text = append(text, ch)
		case lexer.open != 0 && ch == lexer.open:
			lexer.open = 0
			text = append(text, ch)
		case lexer.open == 0 && lexer.quote != 0 && ch == lexer.quote:
			lexer.open = ch
			text = append(text, ch)
		default:
			text = append(text, ch)
		}
		lexer.readChar()
	}
	return string(text)
}

func (lexer *Lexer) isPlaceholder() bool {
	return lexer.ch == '?' && !lexer.escaped && lexer.open == 0 && !lexer.atEOF()
}
