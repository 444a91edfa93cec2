// Command gosqlplus is an interactive SQL client in the style of SQL*Plus.
//
// Usage:
//
//	gosqlplus [username[/password]@host[:port]]
//
// Connection fields come from flags, then the positional connection
// string, then GOSQLPLUS_* environment variables, then the config file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/bawdo/gosqlplus/app"
	"github.com/bawdo/gosqlplus/command"
	"github.com/bawdo/gosqlplus/driver"
	"github.com/bawdo/gosqlplus/internal/config"
	"github.com/bawdo/gosqlplus/internal/table"
	"github.com/cockroachdb/errors"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type options struct {
	username string
	password string
	host     string
	port     uint16

	echo       bool
	file       string
	command    string
	noPager    bool
	history    string
	engine     string
	database   string
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd(&options{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "gosqlplus [conn-string]",
		Short:        "Interactive SQL client",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.Flags(), opts, args, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.username, "username", "u", "", "database user")
	f.StringVarP(&opts.password, "password", "p", "", "database password")
	f.StringVarP(&opts.host, "host", "H", "", "server host")
	f.Uint16VarP(&opts.port, "port", "P", 0, "server port")
	f.BoolVarP(&opts.echo, "echo", "e", false, "print each command before running it")
	f.StringVarP(&opts.file, "file", "f", "", "read commands from a script")
	f.StringVarP(&opts.command, "command", "c", "", "run one command and exit")
	f.BoolVar(&opts.noPager, "no-pager", false, "never page wide results")
	f.StringVar(&opts.history, "history", "", "history file")
	f.StringVar(&opts.engine, "engine", "",
		fmt.Sprintf("database engine (%s)", strings.Join(driver.Engines(), ", ")))
	f.StringVar(&opts.database, "database", "", "database name, or file for sqlite")
	f.StringVar(&opts.configPath, "config", "", "config file (default $HOME/.gosqlplus.toml)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	return cmd
}

func run(ctx context.Context, fs *pflag.FlagSet, opts *options, args []string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := setupLogging(opts.logLevel); err != nil {
		return err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if !fs.Changed("log-level") {
		if err := setupLogging(cfg.LogLevel); err != nil {
			return err
		}
	}
	if err := applyFlags(fs, opts, cfg); err != nil {
		return err
	}

	desc, err := resolveDescriptor(fs, opts, args, os.Getenv, cfg)
	if err != nil {
		return err
	}

	pagerEnabled := cfg.Display.PagerEnabled && !opts.noPager
	session := app.NewContext(opts.echo, pagerEnabled)
	in, closeInput, err := chooseInput(opts, session, cfg)
	if err != nil {
		return err
	}
	defer closeInput()

	var pager *table.Pager
	if f, ok := out.(*os.File); ok {
		pager = table.NewPager(f, cfg.Display.Pager, pagerEnabled)
	}
	a := app.New(session, in, app.Options{
		Engine:     cfg.Engine,
		Database:   cfg.Database,
		Defaults:   desc,
		NullMarker: cfg.Display.NullMarker,
		Pager:      pager,
		Out:        out,
	})
	defer a.Close()

	if desc.AnyValid() {
		if err := a.Connect(ctx, desc); err != nil {
			if errors.Is(err, app.ErrEOF) {
				return nil
			}
			return err
		}
	}
	return a.Run(ctx)
}

func setupLogging(level string) error {
	if level == "" {
		level = "warn"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	log.SetLevel(lvl)
	return nil
}

// applyFlags overrides config settings with the flags that were given.
func applyFlags(fs *pflag.FlagSet, opts *options, cfg *config.Config) error {
	if fs.Changed("engine") {
		cfg.Engine = opts.engine
	}
	if !slices.Contains(driver.Engines(), cfg.Engine) {
		return errors.WithHintf(errors.Newf("unknown engine %q", cfg.Engine),
			"supported engines: %s", strings.Join(driver.Engines(), ", "))
	}
	if fs.Changed("database") {
		cfg.Database = opts.database
	}
	if fs.Changed("history") {
		cfg.History.File = opts.history
	}
	return nil
}

// resolveDescriptor merges the connection sources, highest precedence first.
func resolveDescriptor(
	fs *pflag.FlagSet, opts *options, args []string, getenv func(string) string, cfg *config.Config,
) (command.ConnectionDescriptor, error) {
	var d command.ConnectionDescriptor
	if fs.Changed("username") {
		d.Username = &opts.username
	}
	if fs.Changed("password") {
		d.Password = &opts.password
	}
	if fs.Changed("host") {
		d.Host = &opts.host
	}
	if fs.Changed("port") {
		d.Port = &opts.port
	}

	if len(args) == 1 {
		pos, err := command.ParseConnectionString(args[0])
		if err != nil {
			return d, errors.WithHint(errors.Wrap(err, "connection string"),
				"expected username/password@host:port")
		}
		d = d.Or(pos)
	}

	env, err := config.FromEnv(getenv)
	if err != nil {
		return d, err
	}
	return d.Or(env).Or(cfg.Descriptor()), nil
}

// chooseInput picks the command source: -c, then -f, then piped stdin, then
// the interactive editor. The returned func releases it.
func chooseInput(opts *options, session *app.Context, cfg *config.Config) (app.Input, func(), error) {
	switch {
	case opts.command != "":
		return app.NewSingleInput(opts.command), func() {}, nil
	case opts.file != "":
		f, err := os.Open(opts.file)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open script")
		}
		return app.NewReaderInput(f), func() { _ = f.Close() }, nil
	case !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()):
		return app.NewReaderInput(os.Stdin), func() {}, nil
	}

	sh, err := app.NewShellInput(session, app.ShellConfig{
		HistoryFile:  cfg.History.File,
		HistoryLimit: cfg.History.Limit,
	})
	if err != nil {
		return nil, nil, err
	}
	return sh, func() { _ = sh.Close() }, nil
}
