package redisserver

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Protocol limits to prevent DoS attacks.
const (
	// MaxArrayLen limits the number of elements in a RESP array.
	MaxArrayLen = 1024

	// MaxBulkLen limits the size of a single bulk string (512KB).
	MaxBulkLen = 512 * 1024

	// MaxInlineLen limits a simple string line (4KB).
	MaxInlineLen = 4 * 1024

	// MaxDepth limits array nesting.
	MaxDepth = 32

	// maxHeaderLen bounds "$<n>" and "*<n>" lines.
	maxHeaderLen = 64
)

var (
	// ErrIncomplete means the buffer holds a valid prefix of a value and
	// more bytes are needed. It is a control signal, not a failure.
	ErrIncomplete = errors.New("resp: incomplete input")

	ErrProtocol      = errors.New("resp: protocol error")
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

// Kind is the RESP type tag of a Value.
type Kind byte

const (
	KindSimpleString Kind = '+'
	KindError        Kind = '-'
	KindBulkString   Kind = '$'
	KindArray        Kind = '*'
)

func (k Kind) String() string {
	switch k {
	case KindSimpleString:
		return "simple-string"
	case KindError:
		return "error"
	case KindBulkString:
		return "bulk-string"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is one RESP protocol value.
type Value struct {
	Kind Kind
	// Str holds the text of simple strings, errors and bulk strings.
	Str string
	// Null marks the null bulk string ($-1).
	Null  bool
	Elems []Value
}

// SimpleString returns a status reply such as +OK.
func SimpleString(s string) Value { return Value{Kind: KindSimpleString, Str: s} }

// ErrorReply returns an error reply such as -ERR unknown command.
func ErrorReply(msg string) Value { return Value{Kind: KindError, Str: msg} }

// BulkString returns a length-prefixed string.
func BulkString(s string) Value { return Value{Kind: KindBulkString, Str: s} }

// NullBulk returns the "no value" sentinel ($-1).
func NullBulk() Value { return Value{Kind: KindBulkString, Null: true} }

// Array returns an array of values.
func Array(elems ...Value) Value { return Value{Kind: KindArray, Elems: elems} }

// IsBulk reports whether v is a non-null bulk string.
func (v Value) IsBulk() bool { return v.Kind == KindBulkString && !v.Null }

// Equal reports whether v and o are the same value. Nil and empty arrays
// compare equal.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind || v.Null != o.Null || v.Str != o.Str || len(v.Elems) != len(o.Elems) {
		return false
	}
	for i := range v.Elems {
		if !v.Elems[i].Equal(o.Elems[i]) {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	switch v.Kind {
	case KindArray:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	case KindBulkString:
		if v.Null {
			return "(nil)"
		}
		return strconv.Quote(v.Str)
	default:
		return string(v.Kind) + v.Str
	}
}

// ============================================================
// Decoding
// ============================================================

// Decode parses one value from the front of buf and returns it with the
// number of bytes consumed. Trailing bytes are left for the next call.
//
// If buf is a proper prefix of a valid value the error is ErrIncomplete;
// retry once more bytes have arrived. Any other error wraps ErrProtocol or
// ErrLimitExceeded and the input cannot be recovered.
func Decode(buf []byte) (Value, int, error) {
	return decode(buf, 0)
}

func decode(buf []byte, depth int) (Value, int, error) {
	if len(buf) == 0 {
		return Value{}, 0, ErrIncomplete
	}

	switch Kind(buf[0]) {
	case KindSimpleString:
		line, n, err := readLine(buf[1:], MaxInlineLen)
		if err != nil {
			return Value{}, 0, err
		}
		return SimpleString(string(line)), 1 + n, nil
	case KindError:
		line, n, err := readLine(buf[1:], MaxInlineLen)
		if err != nil {
			return Value{}, 0, err
		}
		return ErrorReply(string(line)), 1 + n, nil
	case KindBulkString:
		return decodeBulk(buf)
	case KindArray:
		return decodeArray(buf, depth)
	default:
		return Value{}, 0, fmt.Errorf("%w: unexpected type byte %q", ErrProtocol, buf[0])
	}
}

func decodeBulk(buf []byte) (Value, int, error) {
	n, hdr, err := readLength(buf[1:])
	if err != nil {
		return Value{}, 0, err
	}
	if n == -1 {
		return NullBulk(), 1 + hdr, nil
	}
	if n < 0 {
		return Value{}, 0, fmt.Errorf("%w: invalid bulk length %d", ErrProtocol, n)
	}
	if n > MaxBulkLen {
		return Value{}, 0, fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, n, MaxBulkLen)
	}

	start := 1 + hdr
	end := start + n
	// The declared length is authoritative; the payload may contain CR/LF.
	if len(buf) > end && buf[end] != '\r' {
		return Value{}, 0, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
	}
	if len(buf) > end+1 && buf[end+1] != '\n' {
		return Value{}, 0, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
	}
	if len(buf) < end+2 {
		return Value{}, 0, ErrIncomplete
	}
	return BulkString(string(buf[start:end])), end + 2, nil
}

func decodeArray(buf []byte, depth int) (Value, int, error) {
	if depth >= MaxDepth {
		return Value{}, 0, fmt.Errorf("%w: nesting depth exceeds limit %d", ErrLimitExceeded, MaxDepth)
	}

	n, hdr, err := readLength(buf[1:])
	if err != nil {
		return Value{}, 0, err
	}
	if n < 0 {
		return Value{}, 0, fmt.Errorf("%w: invalid array length %d", ErrProtocol, n)
	}
	if n > MaxArrayLen {
		return Value{}, 0, fmt.Errorf("%w: array length %d exceeds limit %d", ErrLimitExceeded, n, MaxArrayLen)
	}

	consumed := 1 + hdr
	elems := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		elem, used, err := decode(buf[consumed:], depth+1)
		if err != nil {
			return Value{}, 0, err
		}
		consumed += used
		elems = append(elems, elem)
	}
	return Value{Kind: KindArray, Elems: elems}, consumed, nil
}

// readLength reads a "<int>\r\n" header and returns the integer and the
// bytes consumed. Only canonical decimals are accepted: no plus sign,
// no leading zeros and no "-0".
func readLength(buf []byte) (int, int, error) {
	line, used, err := readLine(buf, maxHeaderLen)
	if err != nil {
		return 0, 0, err
	}
	if !canonicalInt(line) {
		return 0, 0, fmt.Errorf("%w: invalid length %q", ErrProtocol, line)
	}
	n, err := strconv.Atoi(string(line))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid length %q", ErrProtocol, line)
	}
	return n, used, nil
}

func canonicalInt(b []byte) bool {
	if len(b) == 1 && b[0] == '0' {
		return true
	}
	if len(b) > 0 && b[0] == '-' {
		b = b[1:]
	}
	if len(b) == 0 || b[0] < '1' || b[0] > '9' {
		return false
	}
	for _, c := range b[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// readLine returns the bytes before the first CRLF and the bytes consumed
// including the CRLF.
func readLine(buf []byte, maxLen int) ([]byte, int, error) {
	i := bytes.IndexByte(buf, '\n')
	if i < 0 {
		if len(buf) > maxLen+1 {
			return nil, 0, fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, maxLen)
		}
		if cr := bytes.IndexByte(buf, '\r'); cr >= 0 && cr < len(buf)-1 {
			return nil, 0, fmt.Errorf("%w: CR not followed by LF", ErrProtocol)
		}
		return nil, 0, ErrIncomplete
	}
	if i == 0 || buf[i-1] != '\r' {
		return nil, 0, fmt.Errorf("%w: missing CRLF", ErrProtocol)
	}
	line := buf[:i-1]
	if len(line) > maxLen {
		return nil, 0, fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, maxLen)
	}
	if bytes.IndexByte(line, '\r') >= 0 {
		return nil, 0, fmt.Errorf("%w: CR not followed by LF", ErrProtocol)
	}
	return line, i + 1, nil
}

// ============================================================
// Encoding
// ============================================================

// Encode serializes v. It never fails.
func Encode(v Value) []byte {
	return AppendValue(nil, v)
}

// AppendValue appends the encoding of v to dst.
func AppendValue(dst []byte, v Value) []byte {
	switch v.Kind {
	case KindSimpleString, KindError:
		dst = append(dst, byte(v.Kind))
		dst = append(dst, sanitizeLine(v.Str)...)
		return append(dst, '\r', '\n')
	case KindArray:
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(v.Elems)), 10)
		dst = append(dst, '\r', '\n')
		for _, e := range v.Elems {
			dst = AppendValue(dst, e)
		}
		return dst
	case KindBulkString:
		if v.Null {
			return append(dst, "$-1\r\n"...)
		}
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(v.Str)), 10)
		dst = append(dst, '\r', '\n')
		dst = append(dst, v.Str...)
		return append(dst, '\r', '\n')
	default:
		// The zero Value has no kind; treat it as "no value".
		return append(dst, "$-1\r\n"...)
	}
}

// WriteValue encodes v into w without flushing.
func WriteValue(w *bufio.Writer, v Value) error {
	_, err := w.Write(AppendValue(w.AvailableBuffer(), v))
	return err
}

// sanitizeLine keeps line-framed replies on one line.
func sanitizeLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
