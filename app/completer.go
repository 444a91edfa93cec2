package app

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bawdo/gosqlplus/driver"
	"github.com/google/btree"
	log "github.com/sirupsen/logrus"
)

const lookupTimeout = 2 * time.Second

var keywords = []string{
	"ALTER", "COMMIT", "CONN", "CREATE", "DELETE", "DESC", "DISCONNECT",
	"DROP", "EXIT", "GRANT", "INSERT", "MERGE", "QUIT", "REVOKE",
	"ROLLBACK", "SELECT", "UPDATE", "WITH",
}

type completionContext int

const (
	contextKeyword completionContext = iota
	contextTableName                 // after "select * from" or "desc"
	contextColumnName                // after "where"
)

// nameEntry orders schema names case-insensitively.
type nameEntry struct {
	key  string
	name string
}

func lessName(a, b nameEntry) bool { return a.key < b.key }

// Completer implements readline's AutoCompleter. Schema names come from the
// session's connection and are cached until the connection changes.
type Completer struct {
	ctx *Context

	mu      sync.Mutex
	gen     uint64
	loaded  bool
	tables  *btree.BTreeG[nameEntry]
	columns map[string][]string
}

func NewCompleter(c *Context) *Completer {
	return &Completer{
		ctx:     c,
		tables:  btree.NewG(8, lessName),
		columns: make(map[string][]string),
	}
}

// Do returns the suffixes completing the token before pos and that
// token's length in runes.
func (c *Completer) Do(line []rune, pos int) (newLine [][]rune, length int) {
	ctx, prefix, tables := parseContext(string(line[:pos]))

	var candidates []string
	switch ctx {
	case contextTableName:
		candidates = c.completeTables(prefix)
	case contextColumnName:
		for _, t := range tables {
			candidates = append(candidates, c.completeColumns(t, prefix)...)
		}
		candidates = dedup(candidates)
	default:
		candidates = filterPrefix(keywords, prefix)
	}

	n := len([]rune(prefix))
	for _, cand := range candidates {
		r := []rune(cand)
		if len(r) < n {
			continue
		}
		newLine = append(newLine, append(r[n:], ' '))
	}
	return newLine, n
}

// parseContext works out what the token being typed names. For column
// completion the tables named in the from list are returned too.
func parseContext(line string) (completionContext, string, []string) {
	trimmed := strings.TrimRight(line, ";")
	if rest, ok := cutPrefixFold(trimmed, "select * from "); ok {
		if i := whereIndex(rest); i >= 0 {
			var tables []string
			for _, t := range strings.Split(rest[:i], ",") {
				if t = strings.TrimSpace(t); t != "" {
					tables = append(tables, t)
				}
			}
			return contextColumnName, lastToken(rest[i+len("where"):]), tables
		}
		return contextTableName, lastToken(rest), nil
	}
	if rest, ok := cutPrefixFold(trimmed, "desc "); ok {
		return contextTableName, lastToken(rest), nil
	}
	return contextKeyword, lastToken(line), nil
}

func (c *Completer) completeTables(prefix string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked()

	lp := strings.ToLower(prefix)
	var out []string
	c.tables.AscendGreaterOrEqual(nameEntry{key: lp}, func(e nameEntry) bool {
		if !strings.HasPrefix(e.key, lp) {
			return false
		}
		out = append(out, e.name)
		return true
	})
	return out
}

func (c *Completer) completeColumns(table, prefix string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked()

	key := strings.ToLower(table)
	cols, ok := c.columns[key]
	if !ok {
		err := c.ctx.WithConnection(func(conn driver.Connection) error {
			intr, ok := conn.(driver.Introspector)
			if !ok {
				return nil
			}
			ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
			defer cancel()
			var err error
			cols, err = intr.ColumnNames(ctx, table)
			return err
		})
		if err != nil {
			log.WithError(err).WithField("table", table).Debug("column lookup failed")
			return nil
		}
		c.columns[key] = cols
	}
	return filterPrefix(cols, prefix)
}

// refreshLocked reloads table names when the session's connection has
// changed since the last load. A failed load is retried on the next call.
func (c *Completer) refreshLocked() {
	gen := c.ctx.Generation()
	if c.loaded && gen == c.gen {
		return
	}
	c.tables.Clear(false)
	c.columns = make(map[string][]string)

	var names []string
	err := c.ctx.WithConnection(func(conn driver.Connection) error {
		intr, ok := conn.(driver.Introspector)
		if !ok {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()
		var err error
		names, err = intr.TableNames(ctx)
		return err
	})
	if err != nil {
		log.WithError(err).Debug("table lookup failed")
		return
	}
	for _, n := range names {
		c.tables.ReplaceOrInsert(nameEntry{key: strings.ToLower(n), name: n})
	}
	c.gen, c.loaded = gen, true
}

// whereIndex returns the offset of the first standalone "where" in s, or -1.
func whereIndex(s string) int {
	const kw = "where"
	for i := 0; i+len(kw) <= len(s); i++ {
		if !strings.EqualFold(s[i:i+len(kw)], kw) {
			continue
		}
		end := i + len(kw)
		if (i == 0 || isWordBreak(s[i-1])) && (end == len(s) || isWordBreak(s[end])) {
			return i
		}
	}
	return -1
}

func isWordBreak(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == ','
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return s[len(prefix):], true
}

// filterPrefix returns items that start with prefix (case-insensitive).
func filterPrefix(items []string, prefix string) []string {
	lowerPrefix := strings.ToLower(prefix)
	var result []string
	for _, item := range items {
		if strings.HasPrefix(strings.ToLower(item), lowerPrefix) {
			result = append(result, item)
		}
	}
	sort.Strings(result)
	return result
}

func dedup(items []string) []string {
	seen := make(map[string]bool, len(items))
	var result []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}

// lastToken returns the last token, treating commas as separators.
func lastToken(s string) string {
	if i := strings.LastIndexAny(s, " \t\n,"); i >= 0 {
		return s[i+1:]
	}
	return s
}
