package repl

import (
	"sort"
	"strings"
)

// CommandInfo describes one command known to the REPL.
type CommandInfo struct {
	Name  string
	Usage string
	// Local commands are handled by the REPL and never sent.
	Local bool
}

// Commands lists what the server understands plus the REPL's own commands.
var Commands = []CommandInfo{
	{Name: "ping", Usage: "PING"},
	{Name: "echo", Usage: "ECHO message"},
	{Name: "get", Usage: "GET key"},
	{Name: "set", Usage: "SET key value [PX milliseconds | EX seconds]"},
	{Name: "help", Usage: "help [prefix]", Local: true},
	{Name: "history", Usage: "history", Local: true},
	{Name: "exit", Usage: "exit", Local: true},
	{Name: "quit", Usage: "quit", Local: true},
}

// Completer provides command completion for the REPL.
type Completer struct {
	commands map[string]CommandInfo
	names    []string
}

// NewCompleter creates a Completer over Commands.
func NewCompleter() *Completer {
	c := &Completer{commands: make(map[string]CommandInfo, len(Commands))}
	for _, info := range Commands {
		c.commands[info.Name] = info
		c.names = append(c.names, info.Name)
	}
	sort.Strings(c.names)
	return c
}

// Complete returns the command names starting with prefix, sorted.
// Matching ignores case.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var suggestions []string
	for _, name := range c.names {
		if strings.HasPrefix(name, prefix) {
			suggestions = append(suggestions, name)
		}
	}
	return suggestions
}

// Lookup returns the command called name, ignoring case.
func (c *Completer) Lookup(name string) (CommandInfo, bool) {
	info, ok := c.commands[strings.ToLower(name)]
	return info, ok
}
