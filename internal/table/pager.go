package table

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/shlex"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// DefaultPagerCommand chops long lines and passes colour escapes through.
const DefaultPagerCommand = "less -S -R"

// Pager prints text, or pipes it through an external pager when its first
// line is wider than the terminal.
type Pager struct {
	Command string
	Enabled bool
	Out     io.Writer
	// IsTerminal reports whether Out is an interactive terminal.
	IsTerminal func() bool
	// Width returns the terminal width in cells.
	Width func() (int, bool)
}

// NewPager returns a pager writing to f.
func NewPager(f *os.File, command string, enabled bool) *Pager {
	if command == "" {
		command = DefaultPagerCommand
	}
	fd := f.Fd()
	return &Pager{
		Command: command,
		Enabled: enabled,
		Out:     f,
		IsTerminal: func() bool {
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
		Width: func() (int, bool) {
			w, _, err := term.GetSize(int(fd))
			return w, err == nil && w > 0
		},
	}
}

// ShouldPage reports whether text would be sent to the pager.
func (p *Pager) ShouldPage(text string) bool {
	if !p.Enabled || p.IsTerminal == nil || !p.IsTerminal() || p.Width == nil {
		return false
	}
	width, ok := p.Width()
	if !ok {
		return false
	}
	first, _, _ := strings.Cut(text, "\n")
	return tablewriter.DisplayWidth(first) > width
}

// Page writes text to Out, through the pager command when ShouldPage. A
// pager that cannot be started falls back to printing.
func (p *Pager) Page(text string) error {
	if p.ShouldPage(text) {
		err := p.run(text)
		if err == nil {
			return nil
		}
		log.WithError(err).Warn("pager failed, printing directly")
	}
	_, err := fmt.Fprint(p.Out, text)
	return err
}

func (p *Pager) run(text string) error {
	args, err := shlex.Split(p.Command)
	if err != nil {
		return errors.Wrapf(err, "pager command %q", p.Command)
	}
	if len(args) == 0 {
		return errors.New("empty pager command")
	}
	log.WithField("args", args).Debug("starting pager")

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = p.Out
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "start pager")
	}
	// The user quitting the pager early is not an error worth reporting.
	_ = cmd.Wait()
	return nil
}
