package redisserver

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// CommandKind identifies a parsed command.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdPing
	CmdEcho
	CmdSet
	CmdGet
)

func (k CommandKind) String() string {
	switch k {
	case CmdPing:
		return "ping"
	case CmdEcho:
		return "echo"
	case CmdSet:
		return "set"
	case CmdGet:
		return "get"
	default:
		return "unknown"
	}
}

// Command is a validated client request.
type Command struct {
	Kind CommandKind

	// Message is the ECHO argument, returned verbatim.
	Message Value

	// Key and Value carry GET/SET arguments.
	Key   string
	Value string

	// TTL applies to SET when HasTTL is true.
	TTL    time.Duration
	HasTTL bool

	// Token is the offending command name for CmdUnknown, and Reason the
	// text of the error reply.
	Token  string
	Reason string

	// Warning reports a SET expiry modifier that was ignored.
	Warning string
}

// Name returns the lower-case command name used in metrics and logs.
func (c Command) Name() string {
	return c.Kind.String()
}

func unknown(token, reason string) Command {
	return Command{Kind: CmdUnknown, Token: token, Reason: reason}
}

func wrongArity(name string) Command {
	return unknown(name, "wrong number of arguments for '"+name+"' command")
}

// ParseCommand maps a decoded request onto a Command. It performs no I/O
// and never fails: anything it cannot interpret becomes CmdUnknown with a
// reason suitable for an error reply.
func ParseCommand(v Value) Command {
	if v.Kind != KindArray {
		return unknown("", "expected array of bulk strings")
	}
	if len(v.Elems) == 0 {
		return unknown("", "no command")
	}
	if !v.Elems[0].IsBulk() {
		return unknown("", "command name must be a bulk string")
	}

	name := strings.ToLower(v.Elems[0].Str)
	args := v.Elems[1:]

	switch name {
	case "ping":
		return Command{Kind: CmdPing}
	case "echo":
		if len(args) < 1 {
			return wrongArity(name)
		}
		return Command{Kind: CmdEcho, Message: args[0]}
	case "get":
		if len(args) < 1 {
			return wrongArity(name)
		}
		if !args[0].IsBulk() {
			return unknown(name, "key must be a bulk string")
		}
		return Command{Kind: CmdGet, Key: args[0].Str}
	case "set":
		return parseSet(name, args)
	default:
		return unknown(name, "unknown command '"+name+"'")
	}
}

func parseSet(name string, args []Value) Command {
	if len(args) < 2 {
		return wrongArity(name)
	}
	if !args[0].IsBulk() {
		return unknown(name, "key must be a bulk string")
	}
	if !args[1].IsBulk() {
		return unknown(name, "value must be a bulk string")
	}

	cmd := Command{Kind: CmdSet, Key: args[0].Str, Value: args[1].Str}
	if len(args) < 3 {
		return cmd
	}

	// Malformed modifiers degrade to "no expiry" and are only logged.
	ttl, warning := parseExpiry(args[2:])
	if warning != "" {
		cmd.Warning = warning
		return cmd
	}
	cmd.TTL = ttl
	cmd.HasTTL = true
	return cmd
}

// parseExpiry interprets "PX <millis>" or "EX <seconds>".
func parseExpiry(mod []Value) (time.Duration, string) {
	if !mod[0].IsBulk() {
		return 0, "expiry modifier is not a bulk string"
	}

	var unit uint64
	switch strings.ToLower(mod[0].Str) {
	case "px":
		unit = 1
	case "ex":
		unit = 1000
	default:
		return 0, "unsupported modifier " + strconv.Quote(mod[0].Str)
	}

	if len(mod) < 2 {
		return 0, "missing duration for " + strings.ToUpper(mod[0].Str)
	}
	if !mod[1].IsBulk() {
		return 0, "duration is not a bulk string"
	}

	n, err := strconv.ParseUint(mod[1].Str, 10, 64)
	if err != nil {
		return 0, "invalid duration " + strconv.Quote(mod[1].Str)
	}
	const maxMillis = uint64(math.MaxInt64 / int64(time.Millisecond))
	if n > maxMillis/unit {
		return 0, "duration out of range " + strconv.Quote(mod[1].Str)
	}
	return time.Duration(n*unit) * time.Millisecond, ""
}
