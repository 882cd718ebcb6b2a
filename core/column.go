package core

type ColumnType int

const (
	StringType ColumnType = iota
	TextType
	IntType
	NumberType
	DateType
	TimeType
	DateTimeType
	BoolType
	SetType
)

var columnTypeNames = [...]string{
	StringType:   "STRING",
	TextType:     "TEXT",
	IntType:      "INT",
	NumberType:   "NUMBER",
	DateType:     "DATE",
	TimeType:     "TIME",
	DateTimeType: "DATETIME",
	BoolType:     "BOOL",
	SetType:      "SET",
}

func (columnType ColumnType) String() string {
	if columnType < 0 || int(columnType) >= len(columnTypeNames) {
		return "UNKNOWN"
	}
	return columnTypeNames[columnType]
}

// Column describes one result column as reported by the driver.
type Column struct {
	Name   string     `json:"name"`
	Type   ColumnType `json:"type"`
	Binary bool       `json:"binary,omitempty"`
}

// RawRow is one textual result row. A nil field is SQL NULL.
type RawRow []*string
