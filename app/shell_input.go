package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/bawdo/gosqlplus/command"
	"github.com/cockroachdb/errors"
	"github.com/ergochat/readline"
	"golang.org/x/term"
)

// ShellConfig configures the interactive line editor.
type ShellConfig struct {
	HistoryFile  string
	HistoryLimit int
}

// lineEditor is the part of *readline.Instance that ShellInput drives.
type lineEditor interface {
	ReadLine() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// ShellInput reads commands from a terminal with line editing, history and
// completion. Lines are accumulated under a continuation prompt until they
// form a complete command.
type ShellInput struct {
	rl  lineEditor
	ctx *Context
}

func NewShellInput(c *Context, cfg ShellConfig) (*ShellInput, error) {
	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:          c.Prompt().Render(),
		HistoryFile:     cfg.HistoryFile,
		HistoryLimit:    cfg.HistoryLimit,
		AutoComplete:    NewCompleter(c),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, errors.Wrap(err, "readline init")
	}
	return &ShellInput{rl: rl, ctx: c}, nil
}

// Close flushes history and restores the terminal.
func (s *ShellInput) Close() error {
	return s.rl.Close()
}

func (s *ShellInput) GetCommand() (command.Command, string, error) {
	prompt := s.ctx.Prompt()
	current := prompt.Render()
	var lines []string
	for {
		s.rl.SetPrompt(current)
		line, err := s.rl.ReadLine()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			return nil, "", ErrCancelled
		case errors.Is(err, io.EOF):
			return nil, "", ErrEOF
		case err != nil:
			return nil, "", errors.Wrap(err, "read line")
		}

		lines = append(lines, line)
		text := strings.Join(lines, "\n")
		if strings.TrimSpace(text) == "" {
			return nil, "", nil
		}
		if !command.IsComplete(text) {
			current = continuationPrompt(prompt)
			continue
		}
		cmd, perr := command.Parse(text)
		if perr != nil {
			return nil, text, perr
		}
		return cmd, text, nil
	}
}

// continuationPrompt is a run of dots as wide as the main prompt.
func continuationPrompt(p Prompt) string {
	width := utf8.RuneCountInString(p.String())
	if width < 2 {
		return "> "
	}
	return strings.Repeat(".", width-1) + " "
}

func (s *ShellInput) Line(prompt string) (string, error) {
	s.rl.SetPrompt(prompt)
	defer s.rl.SetPrompt(s.ctx.Prompt().Render())
	line, err := s.rl.ReadLine()
	switch {
	case errors.Is(err, readline.ErrInterrupt):
		return "", ErrCancelled
	case errors.Is(err, io.EOF):
		return "", ErrEOF
	case err != nil:
		return "", errors.Wrap(err, "read line")
	}
	return strings.TrimSpace(line), nil
}

// Password reads without echo when stdin is a terminal.
func (s *ShellInput) Password(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return s.Line(prompt)
	}
	fmt.Fprint(os.Stdout, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stdout)
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	return string(b), nil
}
