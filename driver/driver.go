// Package driver is the database capability used by the interpreter: open
// a connection, execute a statement, and resolve the lazy result into a
// rowset, an affected-row count or an acknowledgement.
package driver

import (
	"context"
)

// Kind is the result shape a statement produces.
type Kind int

const (
	KindUnknown Kind = iota
	// KindQuery statements produce a rowset.
	KindQuery
	// KindDML statements (insert, update, delete, merge) report affected rows.
	KindDML
	// KindDCL statements (grant, revoke, commit, rollback) are acknowledged.
	KindDCL
)

func (k Kind) String() string {
	switch k {
	case KindQuery:
		return "query"
	case KindDML:
		return "dml"
	case KindDCL:
		return "dcl"
	default:
		return "unknown"
	}
}

// Connection is a live database session.
type Connection interface {
	// Execute sends sql to the server. The returned LazyResult must be
	// resolved exactly once.
	Execute(ctx context.Context, sql string) (LazyResult, error)
	Close() error
}

// Introspector is implemented by connections that can list schema objects.
// Completion uses it opportunistically.
type Introspector interface {
	TableNames(ctx context.Context) ([]string, error)
	ColumnNames(ctx context.Context, table string) ([]string, error)
}

// LazyResult is the outcome of a statement whose shape has not been
// inspected yet.
type LazyResult interface {
	Resolve() (*Executed, error)
}

// Executed is a resolved LazyResult. Rows is set for KindQuery, Affected
// for KindDML.
type Executed struct {
	Kind     Kind
	Rows     Rowset
	Affected int64
}

// Rowset is a finite single-pass sequence of rows.
type Rowset interface {
	Columns() ([]Column, error)
	// Next returns io.EOF once the rows are exhausted.
	Next() (Row, error)
	Close() error
}

// Column is driver-reported metadata. Sizes the driver does not report are 0.
type Column struct {
	Name            string
	DatabaseType    string
	Nullable        bool
	Precision       int64
	Scale           int64
	CharSize        int64
	DisplaySize     int64
	DisplayCharSize int64
}

// Row is one fetched row. A nil element is SQL NULL.
type Row []Value

// Connector opens connections.
type Connector interface {
	Connect(ctx context.Context, p Params) (Connection, error)
}

// ConnectFunc adapts a function to Connector.
type ConnectFunc func(ctx context.Context, p Params) (Connection, error)

func (f ConnectFunc) Connect(ctx context.Context, p Params) (Connection, error) {
	return f(ctx, p)
}
