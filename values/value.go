package values

import (
	"fmt"
	"reflect"
	"time"
)

// Value is the payload currency between components. It is either a direct
// value or a reference to a variable owned by the producer; both variants
// carry the same logical type.
type Value struct {
	typ     reflect.Type
	payload any
	ref     bool

	Timestamp          time.Duration
	AutomaticTimestamp bool
	Valid              bool
}

func New[T any](v T) Value {
	return Value{
		typ:                reflect.TypeFor[T](),
		payload:            v,
		AutomaticTimestamp: true,
		Valid:              true,
	}
}

// Ref wraps a pointer. Casting a reference copies the pointed value; storing
// into a reference writes through the pointer.
func Ref[T any](p *T) Value {
	return Value{
		typ:                reflect.TypeFor[T](),
		payload:            p,
		ref:                true,
		AutomaticTimestamp: true,
		Valid:              p != nil,
	}
}

func Void() Value {
	return Value{
		Valid: true,
	}
}

func (v Value) Prototype() Prototype {
	return Prototype{
		typ: v.typ,
	}
}

func (v Value) Type() reflect.Type {
	return v.typ
}

func (v Value) IsRef() bool {
	return v.ref
}

func (v Value) IsVoid() bool {
	return v.typ == nil
}

// Any returns a copy of the payload, dereferencing the reference variant.
func (v Value) Any() any {
	ret, _ := CastTo(v, v.Prototype())
	return ret
}

// Deref converts a reference value into a direct one holding a copy.
func (v Value) Deref() Value {
	if !v.ref {
		return v
	}
	ret := v
	ret.ref = false
	ret.payload, _ = CastTo(v, v.Prototype())
	return ret
}

func (v Value) Invalid() Value {
	v.Valid = false
	return v
}

func (v Value) WithTimestamp(ts time.Duration) Value {
	v.Timestamp = ts
	return v
}

func (v *Value) SetTimestampIfAutomatic(ts time.Duration) {
	if v.AutomaticTimestamp {
		v.Timestamp = ts
	}
}

func (v Value) String() string {
	if v.typ == nil {
		return "void"
	}
	return fmt.Sprintf("%s(%v)", v.typ, v.Any())
}

// Cast returns a copy of the payload if its logical type is T.
func Cast[T any](v Value) (ret T, ok bool) {
	if v.typ != reflect.TypeFor[T]() {
		return
	}
	if v.ref {
		p, _ := v.payload.(*T)
		if p == nil {
			return
		}
		return *p, true
	}
	if v.payload == nil {
		// nil interface payload of an interface type
		return ret, true
	}
	ret, ok = v.payload.(T)
	return
}

// CastTo is the untyped form of Cast.
func CastTo(v Value, proto Prototype) (any, bool) {
	if v.typ == nil || v.typ != proto.typ {
		return nil, false
	}
	if v.ref {
		rv := reflect.ValueOf(v.payload)
		if !rv.IsValid() || rv.IsNil() {
			return nil, false
		}
		return rv.Elem().Interface(), true
	}
	return v.payload, true
}

// Store writes src into the slot dst. The slot must already carry the
// logical type of src.
func Store(dst *Value, src any) bool {
	if dst == nil || dst.typ == nil {
		return false
	}
	sv := reflect.ValueOf(src)
	if !sv.IsValid() {
		if dst.typ.Kind() != reflect.Interface {
			return false
		}
		sv = reflect.Zero(dst.typ)
	} else if sv.Type() != dst.typ {
		if dst.typ.Kind() != reflect.Interface || !sv.Type().Implements(dst.typ) {
			return false
		}
	}
	if dst.ref {
		rv := reflect.ValueOf(dst.payload)
		if !rv.IsValid() || rv.IsNil() {
			return false
		}
		rv.Elem().Set(sv)
	} else {
		dst.payload = sv.Interface()
	}
	dst.Valid = true
	return true
}

// Usable reports whether v has a type and, for references, a target.
func (v Value) Usable() bool {
	if v.typ == nil {
		return false
	}
	if v.ref {
		rv := reflect.ValueOf(v.payload)
		return rv.IsValid() && !rv.IsNil()
	}
	return true
}

// StoreValue is Store with the metadata of src carried over.
func StoreValue(dst *Value, src Value) bool {
	if dst == nil || !dst.Prototype().Compatible(src.Prototype()) {
		return false
	}
	x, ok := CastTo(src, src.Prototype())
	if !ok {
		return false
	}
	if !Store(dst, x) {
		return false
	}
	dst.Timestamp = src.Timestamp
	dst.Valid = src.Valid
	return true
}
