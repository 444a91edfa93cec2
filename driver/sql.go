package driver

import (
	"context"
	"database/sql"
	"io"
	"math"
	"net"
	"net/url"
	"sort"
	"strconv"

	"github.com/bawdo/gosqlplus/internal/quoting"
	"github.com/cockroachdb/errors"
	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

var driverName = map[string]string{
	"postgres": "pgx",
	"mysql":    "mysql",
	"sqlite":   "sqlite",
}

// Engines lists the supported engine names.
func Engines() []string {
	names := make([]string, 0, len(driverName))
	for name := range driverName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Params are fully-resolved connection parameters.
type Params struct {
	Engine   string
	Host     string
	Port     uint16
	Username string
	Password string
	// Database is the database name, or the file path for sqlite.
	Database string
}

// DSN renders p as a data source name for the engine's driver.
func (p Params) DSN() (string, error) {
	addr := net.JoinHostPort(p.Host, strconv.Itoa(int(p.Port)))
	switch p.Engine {
	case "postgres":
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(p.Username, p.Password),
			Host:     addr,
			RawQuery: "sslmode=disable",
		}
		if p.Database != "" {
			u.Path = "/" + p.Database
		}
		return u.String(), nil
	case "mysql":
		cfg := mysql.NewConfig()
		cfg.User = p.Username
		cfg.Passwd = p.Password
		cfg.Net = "tcp"
		cfg.Addr = addr
		cfg.DBName = p.Database
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	case "sqlite":
		if p.Database == "" {
			return ":memory:", nil
		}
		return p.Database, nil
	default:
		return "", errors.WithHintf(errors.Newf("no driver for engine %q", p.Engine),
			"supported engines: %v", Engines())
	}
}

// Open connects and pings. The pool is capped at one connection so that
// session state (transactions, temp tables, an in-memory sqlite database)
// survives between statements.
func Open(ctx context.Context, p Params) (Connection, error) {
	dsn, err := p.DSN()
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"engine": p.Engine,
		"dsn":    sanitizeDSN(dsn),
	}).Debug("connecting")

	db, err := sql.Open(driverName[p.Engine], dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqlConn{db: db, engine: p.Engine}, nil
}

type sqlConn struct {
	db     *sql.DB
	engine string
}

var _ Introspector = (*sqlConn)(nil)

// Execute issues exactly one round-trip. Driver errors are returned
// unwrapped so Diagnose sees the native error.
func (c *sqlConn) Execute(ctx context.Context, query string) (LazyResult, error) {
	kind := Classify(query)
	log.WithFields(log.Fields{"kind": kind, "sql": query}).Debug("executing statement")

	if kind == KindQuery {
		rows, err := c.db.QueryContext(ctx, query)
		if err != nil {
			return nil, err
		}
		return &lazyResult{kind: kind, rows: rows}, nil
	}
	res, err := c.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &lazyResult{kind: kind, res: res}, nil
}

func (c *sqlConn) Close() error {
	return c.db.Close()
}

func (c *sqlConn) TableNames(ctx context.Context) ([]string, error) {
	var query string
	switch c.engine {
	case "postgres":
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() ORDER BY table_name"
	case "mysql":
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name"
	case "sqlite":
		query = "SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name"
	default:
		return nil, errors.Newf("unsupported engine: %s", c.engine)
	}
	return c.queryStringColumn(ctx, query)
}

// ColumnNames probes table with a statement that matches no rows and reads
// the column list from the result metadata.
func (c *sqlConn) ColumnNames(ctx context.Context, table string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT * FROM "+quoting.Qualified(c.engine, table)+" WHERE 1 = 2")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return rows.Columns()
}

func (c *sqlConn) queryStringColumn(ctx context.Context, query string, params ...any) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var result []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

type lazyResult struct {
	kind     Kind
	rows     *sql.Rows
	res      sql.Result
	resolved bool
}

func (l *lazyResult) Resolve() (*Executed, error) {
	if l.resolved {
		return nil, errors.AssertionFailedf("result already resolved")
	}
	l.resolved = true

	switch l.kind {
	case KindQuery:
		return &Executed{Kind: KindQuery, Rows: &rowset{rows: l.rows}}, nil
	case KindDML:
		n, err := l.res.RowsAffected()
		if err != nil {
			return nil, errors.Wrap(err, "rows affected")
		}
		return &Executed{Kind: KindDML, Affected: n}, nil
	default:
		return &Executed{Kind: l.kind}, nil
	}
}

type rowset struct {
	rows *sql.Rows
	cols []Column
}

func (r *rowset) Columns() ([]Column, error) {
	if r.cols != nil {
		return r.cols, nil
	}
	cts, err := r.rows.ColumnTypes()
	if err != nil {
		return nil, errors.Wrap(err, "columns")
	}
	cols := make([]Column, len(cts))
	for i, ct := range cts {
		cols[i] = columnOf(ct)
	}
	r.cols = cols
	return cols, nil
}

func (r *rowset) Next() (Row, error) {
	cols, err := r.Columns()
	if err != nil {
		return nil, err
	}
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, errors.Wrap(err, "scan")
	}
	row := make(Row, len(cols))
	for i, v := range vals {
		row[i] = convertValue(cols[i].DatabaseType, v)
	}
	return row, nil
}

func (r *rowset) Close() error {
	return r.rows.Close()
}

func columnOf(ct *sql.ColumnType) Column {
	c := Column{
		Name:         ct.Name(),
		DatabaseType: ct.DatabaseTypeName(),
	}
	c.Nullable, _ = ct.Nullable()
	if p, s, ok := ct.DecimalSize(); ok {
		c.Precision, c.Scale = p, s
	}
	// Unbounded text types report math.MaxInt64.
	if l, ok := ct.Length(); ok && l != math.MaxInt64 {
		c.CharSize = l
	}
	c.DisplaySize = displaySize(c)
	switch familyOf(c.DatabaseType) {
	case familyChar, familyVarChar:
		c.DisplayCharSize = c.CharSize
	}
	return c
}

// sanitizeDSN masks the password of a postgres URL or a mysql DSN.
func sanitizeDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.User != nil {
		if _, hasPass := u.User.Password(); hasPass {
			masked := u.Scheme + "://" + u.User.Username() + ":****@" + u.Host + u.Path
			if u.RawQuery != "" {
				masked += "?" + u.RawQuery
			}
			return masked
		}
		return dsn
	}
	if cfg, err := mysql.ParseDSN(dsn); err == nil && cfg.Passwd != "" {
		cfg.Passwd = "****"
		return cfg.FormatDSN()
	}
	return dsn
}
