package sql

import (
	"database/sql/driver"
	"reflect"
	"time"
)

type Kind int

const (
	NullKind Kind = iota
	BoolKind
	IntKind
	FloatKind
	StringKind
	TimeKind
	ListKind
	UnsupportedKind
)

var kindNames = [...]string{"Null", "Bool", "Int", "Float", "String", "Time", "List", "Unsupported"}

func (kind Kind) String() string {
	if kind < 0 || int(kind) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[kind]
}

// Value is a bound value awaiting substitution into a placeholder.
// The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	t    time.Time
	list []Value
	raw  bool
}

func Null() Value { return Value{} }
func Bool(b bool) Value { return Value{kind: BoolKind, b: b} }
func Int(i int64) Value { return Value{kind: IntKind, i: i} }
func Float(f float64) Value { return Value{kind: FloatKind, f: f} }
func String(s string) Value { return Value{kind: StringKind, s: s} }
func Time(t time.Time) Value { return Value{kind: TimeKind, t: t} }
func List(values ...Value) Value { return Value{kind: ListKind, list: values} }

// Raw is a string emitted verbatim, without quoting or escaping. It is
// meant for SQL fragments such as NOW(), never for user data.
func Raw(s string) Value { return Value{kind: StringKind, s: s, raw: true} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsRaw() bool { return v.raw }
func (v Value) IsString() bool { return v.kind == StringKind }
func (v Value) IsList() bool { return v.kind == ListKind }
func (v Value) Bool() bool { return v.b }
func (v Value) Int() int64 { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Text() string { return v.s }
func (v Value) Time() time.Time { return v.t }
func (v Value) Elements() []Value { return v.list }

// ValueOf converts a Go value into a bound value. Types without a SQL
// literal form become Unsupported and serialize to empty text.
func ValueOf(x any) Value {
	switch val := x.(type) {
	case nil:
		return Null()
	case Value:
		return val
	case bool:
		return Bool(val)
	case int:
		return Int(int64(val))
	case int8:
		return Int(int64(val))
	case int16:
		return Int(int64(val))
	case int32:
		return Int(int64(val))
	case int64:
		return Int(val)
	case uint:
		return Int(int64(val))
	case uint8:
		return Int(int64(val))
	case uint16:
		return Int(int64(val))
	case uint32:
		return Int(int64(val))
	case uint64:
		if val > 1<<63-1 {
			return Float(float64(val))
		}
		return Int(int64(val))
	case float32:
		return Float(float64(val))
	case float64:
		return Float(val)
	case string:
		return String(val)
	case []byte:
		return String(string(val))
	case time.Time:
		return Time(val)
	case []any:
		return ValuesOfList(val)
	case driver.Valuer:
		dv, err := val.Value()
		if err != nil {
			return Value{kind: UnsupportedKind}
		}
		if _, loops := dv.(driver.Valuer); loops {
			return Value{kind: UnsupportedKind}
		}
		return ValueOf(dv)
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return Null()
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return List()
		}
		elements := make([]Value, rv.Len())
		for i := range elements {
			elements[i] = ValueOf(rv.Index(i).Interface())
		}
		return List(elements...)
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ValueOf(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	case reflect.String:
		return String(rv.String())
	}
	return Value{kind: UnsupportedKind}
}

// ValuesOfList converts a []any into a List value.
func ValuesOfList(xs []any) Value {
	return List(ValuesOf(xs)...)
}

// ValuesOf converts each element with ValueOf.
func ValuesOf(xs []any) []Value {
	if len(xs) == 0 {
		return nil
	}
	values := make([]Value, len(xs))
	for i, x := range xs {
		values[i] = ValueOf(x)
	}
	return values
}
