package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RawFormatter prints replies the way redis-cli does.
type RawFormatter struct{}

// Format writes data. Anything that is not a Reply is printed with %v.
func (f *RawFormatter) Format(w io.Writer, data any) error {
	r, ok := data.(Reply)
	if !ok {
		_, err := fmt.Fprintln(w, data)
		return err
	}
	var b strings.Builder
	writeRaw(&b, r, "")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRaw(b *strings.Builder, r Reply, indent string) {
	switch r.Kind {
	case KindNil:
		b.WriteString("(nil)\n")
	case KindStatus:
		fmt.Fprintf(b, "%v\n", r.Value)
	case KindError:
		fmt.Fprintf(b, "(error) %v\n", r.Value)
	case KindInteger:
		fmt.Fprintf(b, "(integer) %v\n", r.Value)
	case KindArray:
		elems, _ := r.Value.([]Reply)
		if len(elems) == 0 {
			b.WriteString("(empty array)\n")
			return
		}
		width := len(strconv.Itoa(len(elems)))
		for i, e := range elems {
			if i > 0 {
				b.WriteString(indent)
			}
			label := fmt.Sprintf("%*d) ", width, i+1)
			b.WriteString(label)
			writeRaw(b, e, indent+strings.Repeat(" ", len(label)))
		}
	default:
		s, _ := r.Value.(string)
		b.WriteString(strconv.Quote(s))
		b.WriteByte('\n')
	}
}
