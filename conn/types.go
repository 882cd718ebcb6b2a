package conn

import (
	"strings"

	"github.com/nickyhof/CommitQuery/core"
)

var columnTypes = map[string]core.ColumnType{
	"BOOL":    core.BoolType,
	"BOOLEAN": core.BoolType,
	"BIT":     core.BoolType,

	"TINYINT":   core.IntType,
	"SMALLINT":  core.IntType,
	"MEDIUMINT": core.IntType,
	"INT":       core.IntType,
	"INTEGER":   core.IntType,
	"BIGINT":    core.IntType,
	"HUGEINT":   core.IntType,
	"UTINYINT":  core.IntType,
	"USMALLINT": core.IntType,
	"UINTEGER":  core.IntType,
	"UBIGINT":   core.IntType,
	"UHUGEINT":  core.IntType,
	"INT2":      core.IntType,
	"INT4":      core.IntType,
	"INT8":      core.IntType,
	"YEAR":      core.IntType,

	"FLOAT":            core.NumberType,
	"FLOAT4":           core.NumberType,
	"FLOAT8":           core.NumberType,
	"DOUBLE":           core.NumberType,
	"DOUBLE PRECISION": core.NumberType,
	"REAL":             core.NumberType,
	"DECIMAL":          core.NumberType,
	"NUMERIC":          core.NumberType,

	"DATE": core.DateType,
	"TIME": core.TimeType,

	"DATETIME":                 core.DateTimeType,
	"TIMESTAMP":                core.DateTimeType,
	"TIMESTAMPTZ":              core.DateTimeType,
	"TIMESTAMP WITH TIME ZONE": core.DateTimeType,
	"TIMESTAMP_S":              core.DateTimeType,
	"TIMESTAMP_MS":             core.DateTimeType,
	"TIMESTAMP_NS":             core.DateTimeType,

	"TEXT":       core.TextType,
	"TINYTEXT":   core.TextType,
	"MEDIUMTEXT": core.TextType,
	"LONGTEXT":   core.TextType,
	"CLOB":       core.TextType,
	"BLOB":       core.TextType,
	"BYTEA":      core.TextType,
	"TINYBLOB":   core.TextType,
	"MEDIUMBLOB": core.TextType,
	"LONGBLOB":   core.TextType,

	"SET": core.SetType,
}

var binaryTypes = map[string]bool{
	"BLOB":       true,
	"BYTEA":      true,
	"TINYBLOB":   true,
	"MEDIUMBLOB": true,
	"LONGBLOB":   true,
	"BINARY":     true,
	"VARBINARY":  true,
}

// ColumnOf builds column metadata from a driver's database type name.
// Length and precision suffixes are ignored and unknown names map to
// StringType.
func ColumnOf(name, databaseType string) core.Column {
	typeName := strings.ToUpper(strings.TrimSpace(databaseType))
	if i := strings.IndexByte(typeName, '('); i >= 0 {
		typeName = strings.TrimSpace(typeName[:i])
	}
	typeName = strings.TrimSuffix(typeName, " UNSIGNED")

	columnType, ok := columnTypes[typeName]
	if !ok {
		columnType = core.StringType
	}
	return core.Column{
		Name:   name,
		Type:   columnType,
		Binary: binaryTypes[typeName],
	}
}
