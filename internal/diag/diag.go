// Package diag renders database diagnostics for the terminal.
package diag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// DiagInfo is a structured error record from a database driver. Line and
// Column are 1-based; (0, 0) means the driver reported no position.
type DiagInfo struct {
	Message  string
	SQLState string
	Code     int
	Line     int
	Column   int
	// SQL is the statement text the position refers to. Empty means unknown.
	SQL string
}

func (d *DiagInfo) Error() string { return d.Message }

// HasPosition reports whether the diagnostic points into the SQL text.
func (d *DiagInfo) HasPosition() bool { return d.Line != 0 || d.Column != 0 }

var (
	errColor     = color.New(color.FgRed)
	headingColor = color.New(color.FgBlue)
)

// Format renders d. Without a position it prints the code line; with a
// position and known SQL it prints the offending source line and a caret
// under the column.
func Format(d *DiagInfo) string {
	if !d.HasPosition() {
		return errColor.Sprintf("YAS-%05d: %s (SQL State: %s)", d.Code, d.Message, d.SQLState)
	}
	src, ok := sourceLine(d.SQL, d.Line)
	if !ok || d.Column < 1 {
		return errColor.Sprint(d.Message)
	}

	heading := fmt.Sprintf("  %d | ", d.Line)
	indent := strings.Repeat(" ", len(heading)+d.Column-1)
	return headingColor.Sprint(heading) + src + "\n" +
		errColor.Sprintf("%s^ %s", indent, d.Message)
}

func sourceLine(sql string, line int) (string, bool) {
	if sql == "" || line < 1 {
		return "", false
	}
	lines := strings.Split(strings.TrimSuffix(sql, "\n"), "\n")
	if line > len(lines) {
		return "", false
	}
	return strings.TrimSuffix(lines[line-1], "\r"), true
}

const plsqlHeader = "PL/SQL compiling errors:"

// Unpack extracts the position embedded in a PL/SQL compile error. The
// message has the shape
//
//	PL/SQL compiling errors:
//	[line:column] message
//
// and is rewritten into the message alone with Line and Column set. Any
// other shape is returned unchanged.
func Unpack(d DiagInfo) DiagInfo {
	lines := strings.Split(d.Message, "\n")
	if len(lines) < 2 || strings.TrimSuffix(lines[0], "\r") != plsqlHeader {
		return d
	}
	pos, msg, ok := strings.Cut(strings.TrimSuffix(lines[1], "\r"), " ")
	if !ok {
		return d
	}
	l, c, ok := strings.Cut(strings.TrimSuffix(strings.TrimPrefix(pos, "["), "]"), ":")
	if !ok {
		return d
	}
	line, err := strconv.Atoi(l)
	if err != nil {
		return d
	}
	col, err := strconv.Atoi(c)
	if err != nil {
		return d
	}
	d.Message, d.Line, d.Column = msg, line, col
	return d
}

// Position converts a 1-based character offset into sql to a 1-based
// (line, column) pair. Offsets outside sql yield (0, 0).
func Position(sql string, offset int) (line, column int) {
	if offset < 1 {
		return 0, 0
	}
	line, column = 1, 0
	n := 0
	for _, r := range sql {
		n++
		if r == '\n' {
			if n == offset {
				return line, column + 1
			}
			line++
			column = 0
			continue
		}
		column++
		if n == offset {
			return line, column
		}
	}
	return 0, 0
}
