package app

import (
	"bufio"
	"io"
	"strings"

	"github.com/bawdo/gosqlplus/command"
	"github.com/cockroachdb/errors"
)

var (
	// ErrEOF means the input source has no more commands.
	ErrEOF = errors.New("no more commands")
	// ErrCancelled means the user interrupted an interactive prompt.
	ErrCancelled = errors.New("input cancelled")
)

// Input is a source of commands.
type Input interface {
	// GetCommand returns the next complete command with its text. A nil
	// command with a nil error means there was nothing to run. Parse
	// failures are returned as *command.ParseError.
	GetCommand() (command.Command, string, error)
	// Line reads one raw line, for prompts such as a missing username.
	Line(prompt string) (string, error)
}

// PasswordReader is implemented by inputs that can read without echo.
type PasswordReader interface {
	Password(prompt string) (string, error)
}

// ReaderInput reads commands from a script or piped stdin. Lines are
// accumulated until they form a complete command.
type ReaderInput struct {
	r *bufio.Reader
}

func NewReaderInput(r io.Reader) *ReaderInput {
	return &ReaderInput{r: bufio.NewReader(r)}
}

func (in *ReaderInput) GetCommand() (command.Command, string, error) {
	var buf strings.Builder
	for {
		line, err := in.r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, "", errors.Wrap(err, "read command")
		}
		atEOF := err != nil
		if atEOF && line == "" {
			return nil, "", ErrEOF
		}
		buf.WriteString(line)

		text := strings.TrimRight(buf.String(), "\r\n")
		if strings.TrimSpace(text) == "" {
			if atEOF {
				return nil, "", ErrEOF
			}
			return nil, "", nil
		}
		cmd, perr := command.Parse(text)
		var pe *command.ParseError
		switch {
		case perr == nil:
			return cmd, text, nil
		case !errors.As(perr, &pe):
			return nil, text, perr
		case pe.Kind == command.ParseEmpty:
			return nil, "", nil
		case pe.Kind == command.ParseIncomplete:
			if atEOF {
				return nil, "", ErrEOF
			}
		default:
			return nil, text, perr
		}
	}
}

func (in *ReaderInput) Line(string) (string, error) {
	line, err := in.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line == "" {
			return "", ErrEOF
		}
		if !errors.Is(err, io.EOF) {
			return "", errors.Wrap(err, "read line")
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// SingleInput yields one fixed command and then ErrEOF. Text missing its
// terminator is completed rather than rejected.
type SingleInput struct {
	text string
	done bool
}

func NewSingleInput(text string) *SingleInput {
	return &SingleInput{text: text}
}

func (in *SingleInput) GetCommand() (command.Command, string, error) {
	if in.done {
		return nil, "", ErrEOF
	}
	in.done = true

	text := in.text
	cmd, err := command.Parse(text)
	var pe *command.ParseError
	if errors.As(err, &pe) {
		switch pe.Kind {
		case command.ParseEmpty:
			return nil, "", nil
		case command.ParseIncomplete:
			text = command.Terminate(text)
			cmd, err = command.Parse(text)
		}
	}
	if err != nil {
		return nil, text, err
	}
	return cmd, text, nil
}

func (in *SingleInput) Line(string) (string, error) {
	return "", errors.New("single command mode cannot prompt for input")
}
