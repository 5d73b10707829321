package values

import "reflect"

// Prototype identifies the logical type of a payload. Commands and
// placeholders are declared against prototypes and every argument or
// result slot is checked against them before use.
type Prototype struct {
	typ reflect.Type
}

func PrototypeOf[T any]() Prototype {
	return Prototype{
		typ: reflect.TypeFor[T](),
	}
}

func PrototypeFor(t reflect.Type) Prototype {
	return Prototype{
		typ: t,
	}
}

func (p Prototype) Type() reflect.Type {
	return p.typ
}

func (p Prototype) IsZero() bool {
	return p.typ == nil
}

func (p Prototype) Name() string {
	if p.typ == nil {
		return "void"
	}
	return p.typ.String()
}

func (p Prototype) String() string {
	return p.Name()
}

// Compatible reports whether values of p can be passed where o is expected.
func (p Prototype) Compatible(o Prototype) bool {
	return p.typ == o.typ
}

// New returns a valid direct value holding the zero value of the prototype.
func (p Prototype) New() Value {
	if p.typ == nil {
		return Void()
	}
	return Value{
		typ:                p.typ,
		payload:            reflect.Zero(p.typ).Interface(),
		AutomaticTimestamp: true,
		Valid:              true,
	}
}
