package ddlkit

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-mysql-org/go-mysql/mysql"
)

// Raw is a literal SQL expression that QuoteValue emits verbatim,
// e.g. Raw("CURRENT_TIMESTAMP") as a column default.
type Raw string

// MySQL is the default dialector.
var MySQL Dialector = MySQLDialector{}

// MySQLDialector implements the Dialector interface for MySQL.
type MySQLDialector struct{}

// Name returns "mysql".
func (d MySQLDialector) Name() string {
	return "mysql"
}

// Quote wraps identifier in backticks, doubling embedded backticks.
func (d MySQLDialector) Quote(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}

// QuoteValue renders value as a MySQL literal. Numbers keep their native form,
// strings are single-quoted and backslash-escaped, nil becomes NULL.
// NaN and infinities have no numeric literal and are quoted.
func (d MySQLDialector) QuoteValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case Raw:
		return string(v)
	case string:
		return quoteString(v)
	case []byte:
		return quoteString(string(v))
	case bool:
		if v {
			return "1"
		}
		return "0"
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return quoteFloat(float64(v), 32)
	case float64:
		return quoteFloat(v, 64)
	case time.Time:
		return quoteString(v.Format("2006-01-02 15:04:05"))
	case fmt.Stringer:
		return quoteString(v.String())
	default:
		return quoteString(fmt.Sprint(v))
	}
}

func quoteString(s string) string {
	return "'" + mysql.Escape(s) + "'"
}

func quoteFloat(f float64, bitSize int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return quoteString(strconv.FormatFloat(f, 'f', -1, bitSize))
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize)
}

// quoteIdentifiers quotes each name and joins them with ", ".
func quoteIdentifiers(d Dialector, names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = d.Quote(name)
	}
	return strings.Join(quoted, ", ")
}
