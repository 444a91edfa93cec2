// Package config loads client settings from a TOML file and the
// environment.
package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/bawdo/gosqlplus/command"
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
)

const (
	fileName        = ".gosqlplus.toml"
	historyFileName = ".gosqlplus_history"

	EnvHost     = "GOSQLPLUS_HOST"
	EnvPort     = "GOSQLPLUS_PORT"
	EnvUsername = "GOSQLPLUS_USERNAME"
	EnvPassword = "GOSQLPLUS_PASSWORD"
)

// Config is the on-disk configuration. Zero connection fields are unset.
type Config struct {
	Engine     string     `toml:"engine"`
	Database   string     `toml:"database"`
	LogLevel   string     `toml:"log_level"`
	Connection Connection `toml:"connection"`
	Display    Display    `toml:"display"`
	History    History    `toml:"history"`
}

type Connection struct {
	Host     string `toml:"host"`
	Port     uint16 `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type Display struct {
	Pager        string `toml:"pager"`
	PagerEnabled bool   `toml:"pager_enabled"`
	NullMarker   string `toml:"null_marker"`
}

type History struct {
	File  string `toml:"file"`
	Limit int    `toml:"limit"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Engine:   "postgres",
		LogLevel: "warn",
		Display: Display{
			Pager:        "less -S -R",
			PagerEnabled: true,
			NullMarker:   "<null>",
		},
		History: History{
			File:  defaultHistoryPath(),
			Limit: 1000,
		},
	}
}

// DefaultPath is $HOME/.gosqlplus.toml, or "" when there is no home.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fileName)
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFileName)
}

// Load reads path over the defaults. An empty path means DefaultPath, and
// a missing default file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "config %s", path)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	for _, key := range md.Undecoded() {
		log.WithField("key", key.String()).Warn("unknown config key")
	}
	if cfg.Connection.Password != "" && info.Mode().Perm()&0o077 != 0 {
		log.WithField("path", path).Warn("config file holds a password but is readable by other users")
	}
	return cfg, nil
}

// Descriptor returns the [connection] section as a partial descriptor.
func (c *Config) Descriptor() command.ConnectionDescriptor {
	var d command.ConnectionDescriptor
	if c.Connection.Host != "" {
		d.Host = &c.Connection.Host
	}
	if c.Connection.Port != 0 {
		d.Port = &c.Connection.Port
	}
	if c.Connection.Username != "" {
		d.Username = &c.Connection.Username
	}
	if c.Connection.Password != "" {
		d.Password = &c.Connection.Password
	}
	return d
}

// FromEnv reads the GOSQLPLUS_* variables through getenv.
func FromEnv(getenv func(string) string) (command.ConnectionDescriptor, error) {
	var d command.ConnectionDescriptor
	if v := getenv(EnvHost); v != "" {
		d.Host = &v
	}
	if v := getenv(EnvPort); v != "" {
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return d, errors.Wrapf(err, "%s", EnvPort)
		}
		p := uint16(n)
		d.Port = &p
	}
	if v := getenv(EnvUsername); v != "" {
		d.Username = &v
	}
	if v := getenv(EnvPassword); v != "" {
		d.Password = &v
	}
	return d, nil
}
