package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/bawdo/gosqlplus/command"
	"github.com/bawdo/gosqlplus/driver"
	"github.com/bawdo/gosqlplus/internal/diag"
	"github.com/bawdo/gosqlplus/internal/table"
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
)

// ErrExit is returned by Step when the session should end.
var ErrExit = errors.New("exit")

const (
	defaultHost = "127.0.0.1"
	defaultPort = uint16(1688)
)

// Options configure an App.
type Options struct {
	Engine   string
	Database string
	// Defaults is the startup descriptor. Connect uses all of it; a later
	// connect command only takes its host and port, so credentials are
	// never carried over to a different account.
	Defaults   command.ConnectionDescriptor
	NullMarker string
	Connector  driver.Connector
	// Pager is used when the context has paging enabled. Nil prints directly.
	Pager  *table.Pager
	Out    io.Writer
	ErrOut io.Writer
}

// App executes commands against the session in its Context.
type App struct {
	ctx   *Context
	input Input
	opts  Options
}

func New(c *Context, in Input, opts Options) *App {
	if opts.Connector == nil {
		opts.Connector = driver.ConnectFunc(driver.Open)
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}
	return &App{ctx: c, input: in, opts: opts}
}

// Run reads and executes commands until the input is exhausted or an exit
// command is seen. Per-command failures are printed and the loop goes on.
func (a *App) Run(ctx context.Context) error {
	for {
		cmd, text, err := a.input.GetCommand()
		var pe *command.ParseError
		switch {
		case err == nil:
		case errors.Is(err, ErrEOF), errors.Is(err, ErrCancelled):
			return nil
		case errors.As(err, &pe):
			a.printf("Error command: %v\n", pe)
			continue
		default:
			return err
		}
		if cmd == nil {
			continue
		}

		if err := a.Step(ctx, cmd, text); err != nil {
			if errors.Is(err, ErrExit) || errors.Is(err, ErrEOF) {
				return nil
			}
			return errors.Wrapf(err, "running %T", a.ctx.LastCommand())
		}
	}
}

// Close releases the session's connection, if any.
func (a *App) Close() {
	a.closeConn(a.ctx.ClearConnection())
}

// Step executes one command. It returns ErrExit for an exit command and
// input errors raised while prompting; everything else is reported to Out.
func (a *App) Step(ctx context.Context, cmd command.Command, text string) error {
	a.ctx.SetLastCommand(cmd)
	if a.ctx.NeedEcho() && text != "" {
		a.printf("%s\n", text)
	}

	switch c := cmd.(type) {
	case command.Shell:
		a.runShell(ctx, c.Text)
		return nil
	case command.SQL:
		a.runSQL(ctx, c.Text)
		return nil
	case command.Internal:
		switch ic := c.Cmd.(type) {
		case command.Exit:
			return ErrExit
		case command.Connect:
			return a.connect(ctx, ic.Conn.Or(command.ConnectionDescriptor{
				Host: a.opts.Defaults.Host,
				Port: a.opts.Defaults.Port,
			}))
		case command.Disconnect:
			a.disconnect()
			return nil
		case command.Describe:
			a.describe(ctx, ic.Name)
			return nil
		}
	}
	return errors.AssertionFailedf("unhandled command %T", cmd)
}

// Connect opens the startup connection from d, falling back to Defaults
// for every field d leaves unset.
func (a *App) Connect(ctx context.Context, d command.ConnectionDescriptor) error {
	return a.connect(ctx, d.Or(a.opts.Defaults))
}

func (a *App) connect(ctx context.Context, d command.ConnectionDescriptor) error {
	p := driver.Params{
		Engine:   a.opts.Engine,
		Host:     defaultHost,
		Port:     defaultPort,
		Database: a.opts.Database,
	}
	if d.Host != nil {
		p.Host = *d.Host
	}
	if d.Port != nil {
		p.Port = *d.Port
	}

	// sqlite has no credentials to ask for.
	if p.Engine != "sqlite" {
		var err error
		if p.Username, err = a.credential(d.Username, "Username: ", false); err != nil {
			return a.promptFailed(err)
		}
		if p.Password, err = a.credential(d.Password, "Password: ", true); err != nil {
			return a.promptFailed(err)
		}
	}

	log.WithFields(log.Fields{"engine": p.Engine, "host": p.Host, "port": p.Port}).Debug("connect")
	conn, err := a.opts.Connector.Connect(ctx, p)
	if err != nil {
		a.closeConn(a.ctx.ClearConnection())
		a.printDiag(err, "")
		return nil
	}
	a.closeConn(a.ctx.SetConnection(conn, connLabel(p)))
	a.printf("Connected!\n")
	return nil
}

func (a *App) credential(v *string, prompt string, secret bool) (string, error) {
	if v != nil {
		return *v, nil
	}
	if pr, ok := a.input.(PasswordReader); ok && secret {
		return pr.Password(prompt)
	}
	return a.input.Line(prompt)
}

// promptFailed keeps the session alive after a cancelled prompt; running
// out of input still ends it.
func (a *App) promptFailed(err error) error {
	if errors.Is(err, ErrEOF) {
		return err
	}
	a.printf("Failed to connect: %v\n", err)
	return nil
}

func connLabel(p driver.Params) string {
	if p.Engine == "sqlite" {
		db := p.Database
		if db == "" {
			db = ":memory:"
		}
		return "sqlite:" + db
	}
	return fmt.Sprintf("%s@%s:%d", p.Username, p.Host, p.Port)
}

func (a *App) disconnect() {
	old := a.ctx.ClearConnection()
	if old == nil {
		a.printf("Not connected!\n")
		return
	}
	a.closeConn(old)
	a.printf("Disconnected.\n")
}

func (a *App) closeConn(conn driver.Connection) {
	if conn == nil {
		return
	}
	if err := conn.Close(); err != nil {
		log.WithError(err).Warn("closing connection")
	}
}

func (a *App) describe(ctx context.Context, name string) {
	a.execute(ctx, fmt.Sprintf("select * from %s where 1=2", name), true)
}

func (a *App) runSQL(ctx context.Context, text string) {
	if isLineComment(text) {
		return
	}
	stmt := text
	if strings.HasSuffix(stmt, ";") || strings.HasSuffix(stmt, "/") {
		stmt = stmt[:len(stmt)-1]
	}
	a.execute(ctx, stmt, false)
}

func isLineComment(text string) bool {
	return strings.HasPrefix(text, "--") && !strings.Contains(strings.TrimRight(text, "\r\n"), "\n")
}

// execute makes the one database call of a SQL or describe command.
func (a *App) execute(ctx context.Context, sql string, describe bool) {
	conn := a.ctx.Connection()
	if conn == nil {
		a.printf("Not connected!\n")
		return
	}
	lazy, err := conn.Execute(ctx, sql)
	if err != nil {
		a.printDiag(err, sql)
		return
	}
	out, err := Materialize(lazy, describe)
	if err != nil {
		a.printDiag(err, sql)
		return
	}
	a.render(out)
}

func (a *App) render(out *Outcome) {
	var pager *table.Pager
	if a.ctx.PagerEnabled() {
		pager = a.opts.Pager
	}
	if err := Render(a.opts.Out, out, a.opts.NullMarker, pager); err != nil {
		log.WithError(err).Warn("writing result")
	}
}

func (a *App) runShell(ctx context.Context, text string) {
	log.WithField("command", text).Debug("running shell command")
	cmd := exec.CommandContext(ctx, "sh", "-c", text)
	cmd.Stdin = os.Stdin
	cmd.Stdout = a.opts.Out
	cmd.Stderr = a.opts.ErrOut
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.WithField("status", exitErr.ExitCode()).Debug("shell command exited")
			return
		}
		a.printf("Failed to run shell command: %v\n", err)
	}
}

func (a *App) printDiag(err error, sql string) {
	a.printf("%s\n", diag.Format(driver.Diagnose(err, sql)))
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.opts.Out, format, args...)
}
