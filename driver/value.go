package driver

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Value is a non-NULL cell. The set of implementations is closed.
type Value interface {
	String() string
	isValue()
}

type (
	Bool     bool
	Int      int64
	Float    float64
	Number   string // exact numerics keep their textual form
	Char     string
	VarChar  string
	DateTime time.Time
	Bytes    []byte
	// Unsupported keeps the driver's textual rendering of a type with no
	// dedicated variant.
	Unsupported struct{ Raw string }
)

const dateTimeLayout = "2006-01-02 15:04:05.999999999"

func (v Bool) String() string {
	if v {
		return "true"
	}
	return "false"
}

func (v Int) String() string         { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string       { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Number) String() string      { return string(v) }
func (v Char) String() string        { return string(v) }
func (v VarChar) String() string     { return string(v) }
func (v DateTime) String() string    { return time.Time(v).Format(dateTimeLayout) }
func (v Bytes) String() string       { return fmt.Sprintf("%X", []byte(v)) }
func (v Unsupported) String() string { return v.Raw }

func (Bool) isValue()        {}
func (Int) isValue()         {}
func (Float) isValue()       {}
func (Number) isValue()      {}
func (Char) isValue()        {}
func (VarChar) isValue()     {}
func (DateTime) isValue()    {}
func (Bytes) isValue()       {}
func (Unsupported) isValue() {}

// typeFamily buckets a DatabaseTypeName for value conversion and display
// sizing.
type typeFamily int

const (
	familyOther typeFamily = iota
	familyBool
	familyInt
	familyFloat
	familyNumber
	familyChar
	familyVarChar
	familyDateTime
	familyBinary
)

var intTypes = map[string]bool{
	"INT": true, "INTEGER": true, "INT2": true, "INT4": true, "INT8": true,
	"TINYINT": true, "SMALLINT": true, "MEDIUMINT": true, "BIGINT": true,
	"SERIAL": true, "SMALLSERIAL": true, "BIGSERIAL": true, "YEAR": true,
}

func familyOf(dbType string) typeFamily {
	t := strings.ToUpper(dbType)
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	switch {
	case t == "BOOL" || t == "BOOLEAN":
		return familyBool
	case intTypes[t] || strings.HasPrefix(t, "UNSIGNED "):
		return familyInt
	case t == "FLOAT" || t == "FLOAT4" || t == "FLOAT8" || t == "DOUBLE" || t == "REAL" ||
		strings.HasPrefix(t, "DOUBLE"):
		return familyFloat
	case t == "NUMERIC" || t == "DECIMAL" || t == "NUMBER":
		return familyNumber
	case t == "CHAR" || t == "BPCHAR" || t == "NCHAR" || t == "CHARACTER":
		return familyChar
	case strings.Contains(t, "CHAR") || strings.Contains(t, "TEXT") || t == "CLOB" ||
		t == "JSON" || t == "JSONB" || t == "UUID" || t == "ENUM":
		return familyVarChar
	case strings.Contains(t, "DATE") || strings.Contains(t, "TIME"):
		return familyDateTime
	case strings.Contains(t, "BLOB") || strings.Contains(t, "BINARY") || t == "BYTEA" || t == "BIT":
		return familyBinary
	default:
		return familyOther
	}
}

// convertValue maps a value scanned through database/sql into a Value.
// A nil source is SQL NULL and yields nil.
func convertValue(dbType string, src any) Value {
	fam := familyOf(dbType)
	switch v := src.(type) {
	case nil:
		return nil
	case bool:
		return Bool(v)
	case int64:
		if fam == familyBool {
			return Bool(v != 0)
		}
		return Int(v)
	case int32:
		return Int(v)
	case float64:
		return Float(v)
	case float32:
		return Float(v)
	case time.Time:
		return DateTime(v)
	case []byte:
		if fam == familyBinary || (fam == familyOther && !isPrintable(v)) {
			return Bytes(append([]byte(nil), v...))
		}
		return textValue(fam, string(v))
	case string:
		return textValue(fam, v)
	default:
		return Unsupported{Raw: fmt.Sprint(v)}
	}
}

func textValue(fam typeFamily, s string) Value {
	switch fam {
	case familyNumber, familyInt, familyFloat:
		return Number(s)
	case familyChar:
		return Char(s)
	case familyVarChar, familyDateTime:
		return VarChar(s)
	case familyBinary:
		return Bytes(s)
	default:
		return VarChar(s)
	}
}

func isPrintable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 && c != '\n' && c != '\r' && c != '\t' {
			return false
		}
	}
	return true
}

// displaySize estimates how many cells a column needs when the driver does
// not report it.
func displaySize(c Column) int64 {
	switch familyOf(c.DatabaseType) {
	case familyBool:
		return 5
	case familyInt:
		return 20
	case familyFloat:
		return 24
	case familyNumber:
		if c.Precision > 0 {
			return c.Precision + 2
		}
		return 40
	case familyDateTime:
		return int64(len(dateTimeLayout))
	case familyChar, familyVarChar:
		return c.CharSize
	case familyBinary:
		return c.CharSize * 2
	default:
		return 0
	}
}
