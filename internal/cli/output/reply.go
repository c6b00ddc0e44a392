package output

import "github.com/tidwall/resp"

// Reply kinds.
const (
	KindStatus  = "status"
	KindError   = "error"
	KindBulk    = "bulk"
	KindInteger = "integer"
	KindArray   = "array"
	KindNil     = "nil"
)

// Reply is a server reply in a shape every formatter understands.
// Value is a string for status, error and bulk, an int for integer,
// []Reply for array and nil for nil.
type Reply struct {
	Kind  string `json:"type" yaml:"type"`
	Value any    `json:"value" yaml:"value"`
}

// FromRESP converts a decoded reply.
func FromRESP(v resp.Value) Reply {
	if v.IsNull() {
		return Reply{Kind: KindNil}
	}
	switch v.Type() {
	case resp.SimpleString:
		return Reply{Kind: KindStatus, Value: v.String()}
	case resp.Error:
		return Reply{Kind: KindError, Value: v.String()}
	case resp.Integer:
		return Reply{Kind: KindInteger, Value: v.Integer()}
	case resp.Array:
		elems := v.Array()
		out := make([]Reply, len(elems))
		for i, e := range elems {
			out[i] = FromRESP(e)
		}
		return Reply{Kind: KindArray, Value: out}
	default:
		return Reply{Kind: KindBulk, Value: v.String()}
	}
}

// IsError reports whether the reply is a server error.
func (r Reply) IsError() bool {
	return r.Kind == KindError
}
