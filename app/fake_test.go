package app

import (
	"context"
	"io"

	"github.com/bawdo/gosqlplus/driver"
	"github.com/cockroachdb/errors"
)

type fakeRows struct {
	cols      []driver.Column
	rows      []driver.Row
	nextCalls int
	closed    bool
}

func (r *fakeRows) Columns() ([]driver.Column, error) { return r.cols, nil }

func (r *fakeRows) Next() (driver.Row, error) {
	r.nextCalls++
	if len(r.rows) == 0 {
		return nil, io.EOF
	}
	row := r.rows[0]
	r.rows = r.rows[1:]
	return row, nil
}

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

type fakeLazy struct {
	res      *driver.Executed
	err      error
	resolved int
}

func (l *fakeLazy) Resolve() (*driver.Executed, error) {
	l.resolved++
	if l.resolved > 1 {
		return nil, errors.New("resolved twice")
	}
	return l.res, l.err
}

// fakeConn answers every statement with the result from respond.
type fakeConn struct {
	respond func(sql string) (driver.LazyResult, error)
	tables  []string
	columns map[string][]string
	execs   []string
	lookups int
	closed  bool
}

func (c *fakeConn) Execute(_ context.Context, sql string) (driver.LazyResult, error) {
	c.execs = append(c.execs, sql)
	if c.respond == nil {
		return &fakeLazy{res: &driver.Executed{Kind: driver.KindUnknown}}, nil
	}
	return c.respond(sql)
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) TableNames(context.Context) ([]string, error) {
	c.lookups++
	return c.tables, nil
}

func (c *fakeConn) ColumnNames(_ context.Context, table string) ([]string, error) {
	cols, ok := c.columns[table]
	if !ok {
		return nil, errors.Newf("no such table: %s", table)
	}
	return cols, nil
}

// lineInput wraps a ReaderInput over a script and records prompts.
type lineInput struct {
	*ReaderInput
	prompts []string
}

func (in *lineInput) Line(prompt string) (string, error) {
	in.prompts = append(in.prompts, prompt)
	return in.ReaderInput.Line(prompt)
}
