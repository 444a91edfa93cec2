package command

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
)

// ConnectionDescriptor is a partial set of connection parameters. Any subset
// may be present; defaults are applied at connect time, never here.
type ConnectionDescriptor struct {
	Host     *string
	Port     *uint16
	Username *string
	Password *string
}

// AnyValid reports whether at least one field is populated.
func (d ConnectionDescriptor) AnyValid() bool {
	return d.Host != nil || d.Port != nil || d.Username != nil || d.Password != nil
}

// Or returns d with every unset field taken from fallback.
func (d ConnectionDescriptor) Or(fallback ConnectionDescriptor) ConnectionDescriptor {
	if d.Host == nil {
		d.Host = fallback.Host
	}
	if d.Port == nil {
		d.Port = fallback.Port
	}
	if d.Username == nil {
		d.Username = fallback.Username
	}
	if d.Password == nil {
		d.Password = fallback.Password
	}
	return d
}

// State is a field of the connection string scanner.
type State int

const (
	StateUsername State = iota
	StatePassword
	StateHost
	StatePort
)

func (s State) String() string {
	switch s {
	case StateUsername:
		return "Username"
	case StatePassword:
		return "Password"
	case StateHost:
		return "Host"
	case StatePort:
		return "Port"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ConnErrorKind classifies a ConnParsingError.
type ConnErrorKind int

const (
	// ConnErrPort means the port segment is not a valid uint16.
	ConnErrPort ConnErrorKind = iota
	// ConnErrExpected means a separator appeared where the scanner state forbids it.
	ConnErrExpected
	// ConnErrInvalid means the scanner did not consume the whole input.
	ConnErrInvalid
)

// ConnParsingError is returned by ParseConnectionString.
type ConnParsingError struct {
	Kind  ConnErrorKind
	State State // set for ConnErrExpected
	Err   error // set for ConnErrPort
}

func (e *ConnParsingError) Error() string {
	switch e.Kind {
	case ConnErrPort:
		return fmt.Sprintf("failed to parse port: %v", e.Err)
	case ConnErrExpected:
		return fmt.Sprintf("desired: %s", e.State)
	default:
		return "invalid format"
	}
}

func (e *ConnParsingError) Unwrap() error { return e.Err }

const (
	sepPassword = '/'
	sepHost     = '@'
	sepPort     = ':'
	// sepEnd never appears in legal input; it closes the last open field.
	sepEnd = '\x01'
)

// ParseConnectionString parses [username][/[password]][@[host][:[port]]].
// Empty segments are left nil.
func ParseConnectionString(conn string) (ConnectionDescriptor, error) {
	var (
		username, password, host, port *string
		state                          = StateUsername
		last                           int
	)

	input := conn + string(rune(sepEnd))
scan:
	for i := 0; i < len(input); i++ {
		ch := input[i]
		switch ch {
		case sepPassword, sepHost, sepPort, sepEnd:
		default:
			continue
		}
		seg := input[last:i]

		switch {
		case ch == sepPassword && state == StateUsername:
			username = &seg
			state = StatePassword
		case ch == sepHost && state == StateUsername:
			username = &seg
			state = StateHost
		case ch == sepHost && state == StatePassword:
			password = &seg
			state = StateHost
		case ch == sepPort:
			host = &seg
			state = StatePort
		case ch == sepEnd:
			switch state {
			case StateUsername:
				username = &seg
			case StatePassword:
				password = &seg
			case StateHost:
				host = &seg
			case StatePort:
				port = &seg
			}
			last = i + 1
			break scan
		default:
			return ConnectionDescriptor{}, &ConnParsingError{Kind: ConnErrExpected, State: state}
		}
		last = i + 1
	}

	if len(conn)+1 != last {
		return ConnectionDescriptor{}, &ConnParsingError{Kind: ConnErrInvalid}
	}

	d := ConnectionDescriptor{
		Host:     nonEmpty(host),
		Username: nonEmpty(username),
		Password: nonEmpty(password),
	}
	if p := nonEmpty(port); p != nil {
		n, err := strconv.ParseUint(*p, 10, 16)
		if err != nil {
			return ConnectionDescriptor{}, &ConnParsingError{
				Kind: ConnErrPort,
				Err:  errors.Wrapf(err, "port %q", *p),
			}
		}
		v := uint16(n)
		d.Port = &v
	}
	return d, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
