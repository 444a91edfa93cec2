package command

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// ParseErrorKind classifies a ParseError.
type ParseErrorKind int

const (
	// ParseEmpty means there was nothing to parse. Callers treat it as a no-op.
	ParseEmpty ParseErrorKind = iota
	// ParseIncomplete means more input lines are needed.
	ParseIncomplete
	// ParseMalformed means a meta-command could not be parsed.
	ParseMalformed
)

// ParseError is returned by Parse.
type ParseError struct {
	Kind ParseErrorKind
	// Text is the partial text for ParseIncomplete and the offending command
	// for ParseMalformed.
	Text string
	Err  *ConnParsingError
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ParseEmpty:
		return "no command"
	case ParseIncomplete:
		return fmt.Sprintf("incomplete command: %s", e.Text)
	default:
		return fmt.Sprintf("failed to parse command: %s\nerror: %v", e.Text, e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	if e.Err == nil {
		return nil
	}
	return e.Err
}

const (
	describePrefix = "desc "
	connectPrefix  = "conn "
	shellPrefix    = "!"
	commentPrefix  = "--"
	blockEnd       = "/"
)

// Parse classifies one fully-buffered chunk of input. SQL text is returned
// with its terminators intact.
func Parse(text string) (Command, error) {
	if text == "" {
		return nil, &ParseError{Kind: ParseEmpty}
	}
	if rest, ok := strings.CutPrefix(text, shellPrefix); ok {
		return Shell{Text: rest}, nil
	}
	if cmd, err := parseInternal(text); cmd != nil || err != nil {
		return cmd, err
	}

	lines := splitLines(text)
	last := lines[len(lines)-1]
	single := len(lines) == 1
	if (single && (strings.HasPrefix(last, commentPrefix) || strings.HasSuffix(text, ";"))) ||
		(!single && last == blockEnd) {
		return SQL{Text: text}, nil
	}
	return nil, &ParseError{Kind: ParseIncomplete, Text: text}
}

// asConnParsingError extracts the scanner error from err, wrapping any other
// error as ConnErrInvalid so a malformed command always carries a cause.
func asConnParsingError(err error) *ConnParsingError {
	var cpe *ConnParsingError
	if errors.As(err, &cpe) {
		return cpe
	}
	return &ConnParsingError{Kind: ConnErrInvalid, Err: err}
}

// IsComplete reports whether buf may be submitted. Only an incomplete
// command holds the editor in continuation mode.
func IsComplete(buf string) bool {
	_, err := Parse(buf)
	var pe *ParseError
	return !errors.As(err, &pe) || pe.Kind != ParseIncomplete
}

// Terminate appends the terminator that makes an incomplete text complete:
// ";" for a describe or a single line, a lone "/" line otherwise.
func Terminate(text string) string {
	switch {
	case hasPrefixFold(text, describePrefix), !strings.Contains(text, "\n"):
		return text + ";"
	case strings.HasSuffix(text, "\n"):
		return text + blockEnd
	default:
		return text + "\n" + blockEnd
	}
}

// parseInternal returns (nil, nil) when text is not a meta-command.
func parseInternal(text string) (Command, error) {
	if hasPrefixFold(text, describePrefix) {
		name := text[len(describePrefix):]
		if !strings.HasSuffix(name, ";") {
			return nil, &ParseError{Kind: ParseIncomplete, Text: text}
		}
		name = strings.TrimSpace(strings.TrimRight(name, ";"))
		return Internal{Cmd: Describe{Name: name}}, nil
	}
	if hasPrefixFold(text, connectPrefix) {
		d, err := ParseConnectionString(text[len(connectPrefix):])
		if err != nil {
			return nil, &ParseError{Kind: ParseMalformed, Text: text, Err: asConnParsingError(err)}
		}
		return Internal{Cmd: Connect{Conn: d}}, nil
	}

	word := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(text), ";"))
	switch word {
	case "exit", "quit":
		return Internal{Cmd: Exit{}}, nil
	case "disconn", "disconnect":
		return Internal{Cmd: Disconnect{}}, nil
	}
	return nil, nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// splitLines splits on "\n", dropping one trailing empty line and any "\r"
// before a newline. It always returns at least one element.
func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
