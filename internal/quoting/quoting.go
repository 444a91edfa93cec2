// Package quoting quotes identifiers for the statements the client builds
// itself, such as the column probe used by completion.
package quoting

import "strings"

// Ident quotes one identifier in the style of engine: backticks for mysql,
// double quotes elsewhere. An embedded quote character is doubled. Text
// that is already quoted is returned unchanged.
func Ident(engine, s string) string {
	if isQuoted(s) {
		return s
	}
	q := `"`
	if engine == "mysql" {
		q = "`"
	}
	return q + strings.ReplaceAll(s, q, q+q) + q
}

// Qualified quotes every dot-separated part of a schema-qualified name.
func Qualified(engine, name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = Ident(engine, p)
	}
	return strings.Join(parts, ".")
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return first == last && (first == '"' || first == '`')
}
