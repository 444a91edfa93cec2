package app

import (
	"fmt"
	"io"
	"strconv"

	"github.com/bawdo/gosqlplus/driver"
	"github.com/bawdo/gosqlplus/internal/table"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
)

// Outcome is a resolved result ready for display. Table is nil when the
// result has no tabular part; Footer is "" when nothing follows the table.
type Outcome struct {
	Kind   driver.Kind
	Table  *table.Table
	Footer string
	// Fetched is the number of rows read from the rowset.
	Fetched int
}

var describeHeader = []string{
	"Name", "Type", "Nullable", "Precision", "Scale",
	"CharSize", "DisplaySize", "DisplayCharSize",
}

// Materialize resolves lazy exactly once. For a describe only the column
// metadata is read and no rows are fetched.
func Materialize(lazy driver.LazyResult, describe bool) (*Outcome, error) {
	res, err := lazy.Resolve()
	if err != nil {
		return nil, err
	}

	switch res.Kind {
	case driver.KindQuery:
		return materializeRows(res.Rows, describe)
	case driver.KindDML:
		return &Outcome{
			Kind:   res.Kind,
			Footer: fmt.Sprintf("%s row(s) affected", humanize.Comma(res.Affected)),
		}, nil
	case driver.KindDCL:
		return &Outcome{Kind: res.Kind, Footer: "DCL executed"}, nil
	default:
		return &Outcome{Kind: res.Kind, Footer: "Succeeded"}, nil
	}
}

func materializeRows(rows driver.Rowset, describe bool) (*Outcome, error) {
	if rows == nil {
		return nil, errors.AssertionFailedf("query result without a rowset")
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if describe {
		return &Outcome{Kind: driver.KindQuery, Table: describeTable(cols)}, nil
	}

	t := &table.Table{Header: make([]string, len(cols))}
	for i, c := range cols {
		t.Header[i] = c.Name
	}
	for {
		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) != len(cols) {
			return nil, errors.AssertionFailedf("row has %d values for %d columns", len(row), len(cols))
		}
		cells := make([]table.Cell, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = table.Cell{Null: true}
			} else {
				cells[i] = table.Cell{Text: v.String()}
			}
		}
		t.Rows = append(t.Rows, cells)
	}

	n := len(t.Rows)
	return &Outcome{
		Kind:    driver.KindQuery,
		Table:   t,
		Footer:  fetchedFooter(n),
		Fetched: n,
	}, nil
}

// Render writes the table, through pager when one is given, and then the
// footer.
func Render(w io.Writer, out *Outcome, nullMarker string, pager *table.Pager) error {
	if out.Table != nil {
		out.Table.NullMarker = nullMarker
		text := out.Table.Render()
		var err error
		if pager != nil {
			err = pager.Page(text)
		} else {
			_, err = io.WriteString(w, text)
		}
		if err != nil {
			return err
		}
	}
	if out.Footer == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, out.Footer)
	return err
}

func fetchedFooter(n int) string {
	if n == 1 {
		return "1 row fetched"
	}
	return humanize.Comma(int64(n)) + " rows fetched"
}

func describeTable(cols []driver.Column) *table.Table {
	t := &table.Table{Header: describeHeader}
	for _, c := range cols {
		typ := c.DatabaseType
		if typ == "" {
			typ = "UNKNOWN"
		}
		nullable := "NO"
		if c.Nullable {
			nullable = "YES"
		}
		t.Rows = append(t.Rows, []table.Cell{
			{Text: c.Name},
			{Text: typ},
			{Text: nullable},
			{Text: strconv.FormatInt(c.Precision, 10)},
			{Text: strconv.FormatInt(c.Scale, 10)},
			{Text: strconv.FormatInt(c.CharSize, 10)},
			{Text: strconv.FormatInt(c.DisplaySize, 10)},
			{Text: strconv.FormatInt(c.DisplayCharSize, 10)},
		})
	}
	return t
}
