package driver

import (
	"strings"

	"github.com/bawdo/gosqlplus/internal/diag"
	"github.com/cockroachdb/errors"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
)

// Diagnose extracts a DiagInfo from a driver error. sql is the statement
// that failed, or "" when the error is not tied to one (connect failures).
func Diagnose(err error, sql string) *diag.DiagInfo {
	if err == nil {
		return nil
	}
	var d diag.DiagInfo

	var (
		existing *diag.DiagInfo
		pgErr    *pgconn.PgError
		myErr    *mysql.MySQLError
		liteErr  *sqlite.Error
	)
	switch {
	case errors.As(err, &existing):
		d = *existing
	case errors.As(err, &pgErr):
		d = diag.DiagInfo{Message: pgErr.Message, SQLState: pgErr.Code}
		if pgErr.Position > 0 {
			d.Line, d.Column = diag.Position(sql, int(pgErr.Position))
		}
	case errors.As(err, &myErr):
		d = diag.DiagInfo{
			Message:  myErr.Message,
			Code:     int(myErr.Number),
			SQLState: strings.TrimRight(string(myErr.SQLState[:]), "\x00"),
		}
	case errors.As(err, &liteErr):
		d = diag.DiagInfo{Message: liteErr.Error(), Code: liteErr.Code()}
	default:
		d = diag.DiagInfo{Message: err.Error()}
	}
	if d.SQL == "" {
		d.SQL = sql
	}
	d = diag.Unpack(d)
	return &d
}
