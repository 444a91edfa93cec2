// Package app is the interpreter: session state, input sources, the
// command dispatcher and result rendering.
package app

import (
	"sync"

	"github.com/bawdo/gosqlplus/command"
	"github.com/bawdo/gosqlplus/driver"
	"github.com/fatih/color"
)

// PromptState is the state of the prompt machine.
type PromptState int

const (
	// PromptReady means no connection is installed.
	PromptReady PromptState = iota
	// PromptConnected means a connection is installed; Label names it.
	PromptConnected
)

const (
	readyLabel = "SQL"
	indicator  = " > "
)

var connectedColor = color.New(color.FgGreen)

// Prompt is the value rendered before each command.
type Prompt struct {
	State PromptState
	Label string
}

// String is the uncoloured prompt text.
func (p Prompt) String() string {
	if p.State == PromptConnected {
		return p.Label + indicator
	}
	return readyLabel + indicator
}

// Render is the prompt as shown on a terminal.
func (p Prompt) Render() string {
	if p.State == PromptConnected {
		return connectedColor.Sprint(p.String())
	}
	return p.String()
}

// Context is the session state shared between the interpreter loop and the
// line editor. The editor only reads it (prompt, completion); the loop is
// the only writer.
type Context struct {
	mu           sync.RWMutex
	conn         driver.Connection
	prompt       Prompt
	lastCommand  command.Command
	needEcho     bool
	pagerEnabled bool
	// generation increments whenever the connection changes.
	generation uint64
}

// NewContext returns a context in the Ready state.
func NewContext(needEcho, pagerEnabled bool) *Context {
	return &Context{needEcho: needEcho, pagerEnabled: pagerEnabled}
}

// Connection returns the current connection, or nil.
func (c *Context) Connection() driver.Connection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

// WithConnection runs fn with the current connection while holding the read
// lock, so the connection cannot be replaced underneath it. fn is not
// called when there is no connection.
func (c *Context) WithConnection(fn func(driver.Connection) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil {
		return nil
	}
	return fn(c.conn)
}

// SetConnection installs conn and moves to Connected. The previous
// connection, if any, is returned for the caller to close.
func (c *Context) SetConnection(conn driver.Connection, label string) driver.Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.conn
	c.conn = conn
	c.prompt = Prompt{State: PromptConnected, Label: label}
	c.generation++
	return old
}

// ClearConnection removes the connection and moves to Ready. The removed
// connection is returned for the caller to close.
func (c *Context) ClearConnection() driver.Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.conn
	c.conn = nil
	c.prompt = Prompt{State: PromptReady}
	if old != nil {
		c.generation++
	}
	return old
}

func (c *Context) Prompt() Prompt {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prompt
}

// Generation identifies the installed connection. Caches keyed on it are
// stale once it changes.
func (c *Context) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

func (c *Context) SetLastCommand(cmd command.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastCommand = cmd
}

func (c *Context) LastCommand() command.Command {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastCommand
}

func (c *Context) NeedEcho() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.needEcho
}

func (c *Context) PagerEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pagerEnabled
}
