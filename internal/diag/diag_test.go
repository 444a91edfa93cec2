package diag

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/bawdo/gosqlplus/internal/testutil"
	"github.com/cockroachdb/datadriven"
	"github.com/fatih/color"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestFormatDataDriven(t *testing.T) {
	datadriven.RunTest(t, "testdata/format", func(t *testing.T, d *datadriven.TestData) string {
		switch d.Cmd {
		case "format":
			msg, sql, _ := strings.Cut(d.Input, "\n")
			info := &DiagInfo{Message: msg, SQL: sql}
			if d.HasArg("code") {
				d.ScanArgs(t, "code", &info.Code)
			}
			if d.HasArg("state") {
				d.ScanArgs(t, "state", &info.SQLState)
			}
			if d.HasArg("line") {
				d.ScanArgs(t, "line", &info.Line)
			}
			if d.HasArg("col") {
				d.ScanArgs(t, "col", &info.Column)
			}
			return Format(info)
		case "unpack":
			u := Unpack(DiagInfo{Message: d.Input})
			return fmt.Sprintf("line=%d col=%d msg=%q", u.Line, u.Column, u.Message)
		default:
			t.Fatalf("unknown command %q", d.Cmd)
			return ""
		}
	})
}

func TestUnpackKeepsOtherFields(t *testing.T) {
	t.Parallel()
	in := DiagInfo{
		Message:  "PL/SQL compiling errors:\n[2:1] bad\n[4:2] worse",
		SQLState: "65000",
		Code:     1,
		SQL:      "begin\nx;\nend;\n/",
	}
	out := Unpack(in)
	testutil.AssertEqual(t, out.Message, "bad")
	testutil.AssertEqual(t, out.Line, 2)
	testutil.AssertEqual(t, out.Column, 1)
	testutil.AssertEqual(t, out.SQLState, "65000")
	testutil.AssertEqual(t, out.Code, 1)
	testutil.AssertEqual(t, out.SQL, in.SQL)
}

func TestPosition(t *testing.T) {
	t.Parallel()
	sql := "select id,\n  nme\nfrom t"
	cases := []struct {
		offset    int
		line, col int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{8, 1, 8},
		{11, 1, 11},
		{14, 2, 3},
		{18, 3, 1},
		{23, 3, 6},
		{24, 0, 0},
	}
	for _, tc := range cases {
		l, c := Position(sql, tc.offset)
		if l != tc.line || c != tc.col {
			t.Errorf("Position(%d) = (%d, %d), want (%d, %d)", tc.offset, l, c, tc.line, tc.col)
		}
	}
}

func TestPositionCountsRunes(t *testing.T) {
	t.Parallel()
	l, c := Position("select 'é', x", 13)
	testutil.AssertEqual(t, l, 1)
	testutil.AssertEqual(t, c, 13)
}

func TestErrorReturnsMessage(t *testing.T) {
	t.Parallel()
	var err error = &DiagInfo{Message: "boom", Line: 1, Column: 1}
	testutil.AssertEqual(t, err.Error(), "boom")
}
