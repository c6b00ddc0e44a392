package repl

import (
	"errors"
	"strconv"
	"strings"
)

var (
	errUnbalancedQuotes = errors.New("unbalanced quotes")
	errQuoteFollowedBy  = errors.New("closing quote must be followed by a space")
)

// Tokenize splits line into arguments. Double-quoted arguments accept the
// escapes \n \r \t \\ \" and \xHH; single-quoted arguments are literal
// except for \'. A quoted argument may be empty.
func Tokenize(line string) ([]string, error) {
	var (
		args []string
		i    int
	)
	for {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i >= len(line) {
			return args, nil
		}

		var (
			cur    strings.Builder
			err    error
			quoted bool
		)
		switch line[i] {
		case '"':
			i, err = readDoubleQuoted(line, i+1, &cur)
			quoted = true
		case '\'':
			i, err = readSingleQuoted(line, i+1, &cur)
			quoted = true
		default:
			for i < len(line) && !isSpace(line[i]) {
				cur.WriteByte(line[i])
				i++
			}
		}
		if err != nil {
			return nil, err
		}
		if quoted && i < len(line) && !isSpace(line[i]) {
			return nil, errQuoteFollowedBy
		}
		args = append(args, cur.String())
	}
}

// readDoubleQuoted consumes up to and including the closing quote and
// returns the index just past it.
func readDoubleQuoted(line string, i int, cur *strings.Builder) (int, error) {
	for i < len(line) {
		c := line[i]
		switch {
		case c == '"':
			return i + 1, nil
		case c == '\\' && i+3 < len(line) && line[i+1] == 'x' && isHex(line[i+2]) && isHex(line[i+3]):
			b, _ := strconv.ParseUint(line[i+2:i+4], 16, 8)
			cur.WriteByte(byte(b))
			i += 4
		case c == '\\' && i+1 < len(line):
			switch e := line[i+1]; e {
			case 'n':
				cur.WriteByte('\n')
			case 'r':
				cur.WriteByte('\r')
			case 't':
				cur.WriteByte('\t')
			case 'a':
				cur.WriteByte('\a')
			case 'b':
				cur.WriteByte('\b')
			default:
				cur.WriteByte(e)
			}
			i += 2
		default:
			cur.WriteByte(c)
			i++
		}
	}
	return i, errUnbalancedQuotes
}

func readSingleQuoted(line string, i int, cur *strings.Builder) (int, error) {
	for i < len(line) {
		c := line[i]
		switch {
		case c == '\'':
			return i + 1, nil
		case c == '\\' && i+1 < len(line) && line[i+1] == '\'':
			cur.WriteByte('\'')
			i += 2
		default:
			cur.WriteByte(c)
			i++
		}
	}
	return i, errUnbalancedQuotes
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
