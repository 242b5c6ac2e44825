package lww

import (
	"fmt"
)

// Value is an opaque payload handle with explicit ownership. The accumulator
// never aliases caller-owned memory: it stores only copies obtained through
// Clone and pairs every copy with exactly one Release.
type Value interface {
	// Clone returns an independent copy owned by the caller.
	Clone() (Value, error)

	// Release relinquishes ownership of this copy. Implementations backed by
	// plain Go memory may treat this as a no-op; the accumulator still calls
	// it exactly once per stored copy.
	Release()

	// IsNull reports whether this payload is the NULL payload.
	IsNull() bool
}

// Null is the NULL payload.
type Null struct{}

func (Null) Clone() (Value, error) { return Null{}, nil }
func (Null) Release()              {}
func (Null) IsNull() bool          { return true }

// Bytes is a blob payload. Clone copies the underlying slice so the copy
// stays valid after the source buffer is reused, mirroring the transient
// lifetime of driver-supplied memory.
type Bytes []byte

func (b Bytes) Clone() (Value, error) {
	dup := make(Bytes, len(b))
	copy(dup, b)
	return dup, nil
}
func (Bytes) Release()     {}
func (Bytes) IsNull() bool { return false }

// Text is a string payload.
type Text string

func (t Text) Clone() (Value, error) { return t, nil }
func (Text) Release()                {}
func (Text) IsNull() bool            { return false }

// Int64 is an integer payload.
type Int64 int64

func (i Int64) Clone() (Value, error) { return i, nil }
func (Int64) Release()                {}
func (Int64) IsNull() bool            { return false }

// Float64 is a real-number payload.
type Float64 float64

func (f Float64) Clone() (Value, error) { return f, nil }
func (Float64) Release()                {}
func (Float64) IsNull() bool            { return false }

// FromAny adapts a driver-supplied Go value into a Value. SQLite drivers hand
// function arguments over as nil, int64, float64, string or []byte; anything
// else is rendered as text.
func FromAny(v any) Value {
	switch v := v.(type) {
	case nil:
		return Null{}
	case []byte:
		// Drivers hand a SQL NULL bound to an any parameter over as a nil
		// byte slice; an empty blob arrives as a zero-length non-nil slice.
		if v == nil {
			return Null{}
		}
		return Bytes(v)
	case string:
		return Text(v)
	case int64:
		return Int64(v)
	case float64:
		return Float64(v)
	case bool:
		if v {
			return Int64(1)
		}
		return Int64(0)
	default:
		return Text(fmt.Sprintf("%v", v))
	}
}

// AsAny renders a Value back into the plain Go shape a database driver
// expects as a function result. NULL (or a nil Value) renders as nil.
func AsAny(v Value) any {
	switch v := v.(type) {
	case nil:
		return nil
	case Null:
		return nil
	case Bytes:
		return []byte(v)
	case Text:
		return string(v)
	case Int64:
		return int64(v)
	case Float64:
		return float64(v)
	default:
		if v.IsNull() {
			return nil
		}
		return v
	}
}
