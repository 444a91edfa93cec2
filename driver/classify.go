package driver

import (
	"strings"
	"unicode"

	"github.com/xwb1989/sqlparser"
)

// Classify predicts the result shape of sql from its leading keyword.
func Classify(sql string) Kind {
	switch sqlparser.Preview(sql) {
	case sqlparser.StmtSelect, sqlparser.StmtShow:
		return KindQuery
	case sqlparser.StmtInsert, sqlparser.StmtReplace, sqlparser.StmtUpdate, sqlparser.StmtDelete:
		return KindDML
	case sqlparser.StmtCommit, sqlparser.StmtRollback:
		return KindDCL
	case sqlparser.StmtBegin:
		// Opening a transaction reports plain success.
		return KindUnknown
	}

	switch firstWord(sql) {
	case "with", "values", "table", "explain", "pragma", "describe", "desc":
		return KindQuery
	case "merge", "upsert":
		return KindDML
	case "grant", "revoke", "commit", "rollback", "savepoint":
		return KindDCL
	default:
		return KindUnknown
	}
}

func firstWord(sql string) string {
	s := strings.TrimLeftFunc(sqlparser.StripLeadingComments(sql), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) }); end >= 0 {
		s = s[:end]
	}
	return strings.ToLower(s)
}
