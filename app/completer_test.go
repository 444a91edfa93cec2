package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func completions(c *Completer, line string) ([]string, int) {
	r := []rune(line)
	out, n := c.Do(r, len(r))
	var got []string
	for _, s := range out {
		got = append(got, string(s))
	}
	return got, n
}

func newTestCompleter(conn *fakeConn) (*Completer, *Context) {
	ctx := NewContext(false, false)
	if conn != nil {
		ctx.SetConnection(conn, "x")
	}
	return NewCompleter(ctx), ctx
}

func TestParseContext(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line   string
		ctx    completionContext
		prefix string
		tables []string
	}{
		{"", contextKeyword, "", nil},
		{"sel", contextKeyword, "sel", nil},
		{"SELECT * FROM ", contextTableName, "", nil},
		{"select * from em", contextTableName, "em", nil},
		{"select * from emp, de", contextTableName, "de", nil},
		{"desc em", contextTableName, "em", nil},
		{"DESC emp;", contextTableName, "emp", nil},
		{"select * from emp where ", contextColumnName, "", []string{"emp"}},
		{"select * from emp, dept WHERE de", contextColumnName, "de", []string{"emp", "dept"}},
		{"insert into ", contextKeyword, "", nil},
		{"select * from somewhere", contextTableName, "somewhere", nil},
		{"select * from nowhere_log, de", contextTableName, "de", nil},
		{"select * from somewhere where x", contextColumnName, "x", []string{"somewhere"}},
		{"select * from emp\twhere\tsal", contextColumnName, "sal", []string{"emp"}},
	}
	for _, tc := range tests {
		ctx, prefix, tables := parseContext(tc.line)
		assert.Equal(t, tc.ctx, ctx, tc.line)
		assert.Equal(t, tc.prefix, prefix, tc.line)
		assert.Equal(t, tc.tables, tables, tc.line)
	}
}

func TestCompleteKeywords(t *testing.T) {
	t.Parallel()
	c, _ := newTestCompleter(nil)
	got, n := completions(c, "se")
	assert.Equal(t, []string{"LECT "}, got)
	assert.Equal(t, 2, n)

	got, _ = completions(c, "d")
	assert.Equal(t, []string{"ELETE ", "ESC ", "ISCONNECT ", "ROP "}, got)
}

func TestCompleteTablesWithoutConnection(t *testing.T) {
	t.Parallel()
	c, _ := newTestCompleter(nil)
	got, _ := completions(c, "select * from ")
	assert.Empty(t, got)
}

func TestCompleteTables(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{tables: []string{"EMP", "DEPT", "emp_history", "bonus"}}
	c, _ := newTestCompleter(conn)

	got, n := completions(c, "select * from em")
	assert.Equal(t, []string{"P ", "p_history "}, got)
	assert.Equal(t, 2, n)

	got, _ = completions(c, "desc ")
	assert.Equal(t, []string{"bonus ", "DEPT ", "EMP ", "emp_history "}, got)
	assert.Equal(t, 1, conn.lookups)
}

func TestCompleteTablesReloadsOnNewConnection(t *testing.T) {
	t.Parallel()
	first := &fakeConn{tables: []string{"a1"}}
	c, ctx := newTestCompleter(first)
	got, _ := completions(c, "desc a")
	assert.Equal(t, []string{"1 "}, got)

	ctx.SetConnection(&fakeConn{tables: []string{"a2"}}, "y")
	got, _ = completions(c, "desc a")
	assert.Equal(t, []string{"2 "}, got)

	ctx.ClearConnection()
	got, _ = completions(c, "desc a")
	assert.Empty(t, got)
	assert.Equal(t, 1, first.lookups)
}

func TestCompleteColumns(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{
		tables: []string{"emp", "dept"},
		columns: map[string][]string{
			"emp":  {"EMPNO", "ENAME", "DEPTNO"},
			"dept": {"DEPTNO", "DNAME"},
		},
	}
	c, _ := newTestCompleter(conn)

	got, n := completions(c, "select * from emp, dept where DE")
	assert.Equal(t, []string{"PTNO "}, got)
	assert.Equal(t, 2, n)

	got, _ = completions(c, "select * from emp where e")
	assert.Equal(t, []string{"MPNO ", "NAME "}, got)

	got, _ = completions(c, "select * from nope where ")
	assert.Empty(t, got)
}

func TestCompleteTablesNamedLikeWhere(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{
		tables:  []string{"somewhere", "summary"},
		columns: map[string][]string{"somewhere": {"ID", "PLACE"}},
	}
	c, _ := newTestCompleter(conn)

	got, n := completions(c, "select * from somewhere")
	assert.Equal(t, []string{" "}, got)
	assert.Equal(t, len("somewhere"), n)

	got, _ = completions(c, "select * from somewhere where p")
	assert.Equal(t, []string{"LACE "}, got)
}

func TestWhereIndex(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 4, whereIndex("emp where x"))
	assert.Equal(t, 4, whereIndex("emp WHERE"))
	assert.Equal(t, -1, whereIndex("somewhere"))
	assert.Equal(t, -1, whereIndex("emp wherever"))
	assert.Equal(t, 0, whereIndex("where"))
}

func TestFilterPrefixCaseInsensitive(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"SELECT"}, filterPrefix([]string{"SELECT", "UPDATE"}, "sel"))
	assert.Len(t, filterPrefix([]string{"b", "a"}, ""), 2)
}

func TestLastToken(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "c", lastToken("a b,c"))
	assert.Equal(t, "", lastToken("a "))
	assert.Equal(t, "abc", lastToken("abc"))
}
