package redisserver

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func cmd(args ...string) Value {
	elems := make([]Value, len(args))
	for i, a := range args {
		elems[i] = BulkString(a)
	}
	return Array(elems...)
}

// ============================================================
// Test: Decode
// ============================================================

func TestDecode_Values(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     Value
		consumed int
	}{
		{
			name:     "PING",
			input:    "*1\r\n$4\r\nPING\r\n",
			want:     cmd("PING"),
			consumed: 14,
		},
		{
			name:     "SET with PX",
			input:    "*5\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n$2\r\npx\r\n$3\r\n100\r\n",
			want:     cmd("SET", "foo", "bar", "px", "100"),
			consumed: 48,
		},
		{
			name:     "empty array",
			input:    "*0\r\n",
			want:     Array(),
			consumed: 4,
		},
		{
			name:     "null bulk",
			input:    "$-1\r\n",
			want:     NullBulk(),
			consumed: 5,
		},
		{
			name:     "empty bulk",
			input:    "$0\r\n\r\n",
			want:     BulkString(""),
			consumed: 6,
		},
		{
			name:     "bulk containing CRLF",
			input:    "$4\r\na\r\nb\r\n",
			want:     BulkString("a\r\nb"),
			consumed: 10,
		},
		{
			name:     "simple string",
			input:    "+OK\r\n",
			want:     SimpleString("OK"),
			consumed: 5,
		},
		{
			name:     "error",
			input:    "-ERR boom\r\n",
			want:     ErrorReply("ERR boom"),
			consumed: 11,
		},
		{
			name:     "nested array",
			input:    "*2\r\n*1\r\n$1\r\na\r\n$1\r\nb\r\n",
			want:     Array(cmd("a"), BulkString("b")),
			consumed: 22,
		},
		{
			name:     "trailing bytes left alone",
			input:    "*1\r\n$4\r\nPING\r\n*1\r\n",
			want:     cmd("PING"),
			consumed: 14,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Decode() = %v, want %v", got, tt.want)
			}
			if n != tt.consumed {
				t.Errorf("Decode() consumed = %d, want %d", n, tt.consumed)
			}
		})
	}
}

func TestDecode_EveryPrefixIsIncomplete(t *testing.T) {
	full := []byte("*3\r\n$3\r\nSET\r\n$5\r\nhello\r\n$5\r\nworld\r\n")
	for i := 0; i < len(full); i++ {
		_, n, err := Decode(full[:i])
		if !errors.Is(err, ErrIncomplete) {
			t.Fatalf("Decode(prefix %d) error = %v, want ErrIncomplete", i, err)
		}
		if n != 0 {
			t.Fatalf("Decode(prefix %d) consumed %d, want 0", i, n)
		}
	}
	if _, n, err := Decode(full); err != nil || n != len(full) {
		t.Fatalf("Decode(full) = (%d, %v), want (%d, nil)", n, err, len(full))
	}
}

func TestDecode_Pipelined(t *testing.T) {
	buf := []byte("*1\r\n$4\r\nPING\r\n*2\r\n$4\r\nECHO\r\n$2\r\nhi\r\n*2\r\n$3\r\nGET\r\n$1\r\nk\r\n")
	var got []Value
	for len(buf) > 0 {
		v, n, err := Decode(buf)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		got = append(got, v)
		buf = buf[n:]
	}

	want := []Value{cmd("PING"), cmd("ECHO", "hi"), cmd("GET", "k")}
	if len(got) != len(want) {
		t.Fatalf("decoded %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("value %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDecode_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown type byte", "PING\r\n"},
		{"integer", ":1\r\n"},
		{"non-numeric length", "$abc\r\n"},
		{"negative array length", "*-1\r\n"},
		{"negative bulk length", "$-2\r\n"},
		{"plus-signed bulk length", "$+3\r\nfoo\r\n"},
		{"plus-signed array length", "*+1\r\n$4\r\nPING\r\n"},
		{"negative zero bulk length", "$-0\r\n\r\n"},
		{"negative zero array length", "*-0\r\n"},
		{"leading zero length", "$03\r\nfoo\r\n"},
		{"empty length", "$\r\n"},
		{"space in length", "$ 3\r\nfoo\r\n"},
		{"LF without CR", "*1\n"},
		{"bare CR in header", "*1\rx\r\n"},
		{"bulk longer than declared", "*1\r\n$4\r\nPINGxx"},
		{"bulk terminator missing LF", "$3\r\nabc\rX"},
		{"bad element", "*2\r\n$1\r\na\r\n:1\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tt.input))
			if !errors.Is(err, ErrProtocol) {
				t.Errorf("Decode(%q) error = %v, want ErrProtocol", tt.input, err)
			}
		})
	}
}

func TestDecode_CanonicalLengths(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{"$0\r\n\r\n", BulkString("")},
		{"$-1\r\n", NullBulk()},
		{"$10\r\n0123456789\r\n", BulkString("0123456789")},
		{"*0\r\n", Value{Kind: KindArray, Elems: []Value{}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, n, err := Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("Decode(%q) error = %v", tt.input, err)
			}
			if n != len(tt.input) || !got.Equal(tt.want) {
				t.Errorf("Decode(%q) = (%v, %d), want (%v, %d)", tt.input, got, n, tt.want, len(tt.input))
			}
		})
	}
}

func TestDecode_Limits(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"array too long", "*1025\r\n"},
		{"bulk too long", "$524289\r\n"},
		{"header without newline", "*" + strings.Repeat("1", 80)},
		{"simple string too long", "+" + strings.Repeat("a", MaxInlineLen+1) + "\r\n"},
		{"nesting too deep", strings.Repeat("*1\r\n", MaxDepth+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tt.input))
			if !errors.Is(err, ErrLimitExceeded) {
				t.Errorf("Decode() error = %v, want ErrLimitExceeded", err)
			}
		})
	}
}

func TestDecode_TruncatedIsIncomplete(t *testing.T) {
	// A request cut off before its final CRLF is not an error until the
	// peer closes the connection.
	_, _, err := Decode([]byte("*1\r\n$4\r\nPING"))
	if !errors.Is(err, ErrIncomplete) {
		t.Errorf("Decode() error = %v, want ErrIncomplete", err)
	}
}

// ============================================================
// Test: Encode
// ============================================================

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"simple string", SimpleString("PONG"), "+PONG\r\n"},
		{"ok", SimpleString("OK"), "+OK\r\n"},
		{"error", ErrorReply("ERR unknown command 'foo'"), "-ERR unknown command 'foo'\r\n"},
		{"error with newline", ErrorReply("ERR a\r\nb"), "-ERR a  b\r\n"},
		{"bulk", BulkString("bar"), "$3\r\nbar\r\n"},
		{"empty bulk", BulkString(""), "$0\r\n\r\n"},
		{"null bulk", NullBulk(), "$-1\r\n"},
		{"zero value", Value{}, "$-1\r\n"},
		{"array", cmd("ECHO", "hey"), "*2\r\n$4\r\nECHO\r\n$3\r\nhey\r\n"},
		{"empty array", Array(), "*0\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(Encode(tt.in)); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeDecode_BinarySafe(t *testing.T) {
	payload := string([]byte{0, '\r', '\n', 0xff, '$', '*'})
	v, n, err := Decode(Encode(BulkString(payload)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if n != len(Encode(BulkString(payload))) || v.Str != payload {
		t.Errorf("round trip = %q (%d bytes), want %q", v.Str, n, payload)
	}
}

func TestWriteValue(t *testing.T) {
	var out bytes.Buffer
	w := bufio.NewWriter(&out)

	if err := WriteValue(w, SimpleString("OK")); err != nil {
		t.Fatalf("WriteValue() error = %v", err)
	}
	if err := WriteValue(w, BulkString("v")); err != nil {
		t.Fatalf("WriteValue() error = %v", err)
	}
	if out.Len() != 0 {
		t.Error("WriteValue flushed before Flush was called")
	}
	_ = w.Flush()

	if got := out.String(); got != "+OK\r\n$1\r\nv\r\n" {
		t.Errorf("output = %q", got)
	}
}

func TestValue_String(t *testing.T) {
	if got := NullBulk().String(); got != "(nil)" {
		t.Errorf("NullBulk().String() = %q", got)
	}
	if got := cmd("GET", "k").String(); got != `["GET" "k"]` {
		t.Errorf("String() = %q", got)
	}
}
