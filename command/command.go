// Package command classifies raw input into typed interpreter commands.
//
// Three kinds of command exist:
//   - SQL: text forwarded verbatim to the database
//   - Shell: a "!" escape run by the operating system shell
//   - Internal: meta-commands handled by the client itself (desc, conn, exit, disconnect)
//
// SQL text is never parsed here beyond statement terminators; only the
// meta-syntax (prefixes, terminators, connection strings) is understood.
package command

// Command is one fully-buffered unit of input.
type Command interface {
	// NeedConnection reports whether executing the command requires a live
	// database connection.
	NeedConnection() bool
	isCommand()
}

// SQL is statement text to execute verbatim. Terminators are retained.
type SQL struct {
	Text string
}

// Shell is a command line to hand to the operating system shell.
type Shell struct {
	Text string
}

// Internal wraps a client meta-command.
type Internal struct {
	Cmd InternalCommand
}

func (SQL) NeedConnection() bool        { return true }
func (Shell) NeedConnection() bool      { return false }
func (i Internal) NeedConnection() bool { return i.Cmd.needConnection() }

func (SQL) isCommand()      {}
func (Shell) isCommand()    {}
func (Internal) isCommand() {}

// InternalCommand is one of Describe, Connect, Disconnect or Exit.
type InternalCommand interface {
	needConnection() bool
}

// Describe shows the column metadata of a table or view.
type Describe struct {
	Name string
}

// Connect opens a new connection, replacing the current one.
type Connect struct {
	Conn ConnectionDescriptor
}

// Disconnect closes the current connection.
type Disconnect struct{}

// Exit ends the session.
type Exit struct{}

func (Describe) needConnection() bool   { return true }
func (Connect) needConnection() bool    { return false }
func (Disconnect) needConnection() bool { return false }
func (Exit) needConnection() bool       { return false }
