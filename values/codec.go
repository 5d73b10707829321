package values

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"
)

// Codec marshals values for transport between processes or to storage. The
// format tag lets peers check they agree on the encoding.
type Codec interface {
	Format() string
	Marshal(v Value) ([]byte, error)
	Unmarshal(data []byte, proto Prototype) (Value, error)
}

var (
	ErrVoidValue     = errors.New("void value")
	ErrUnknownFormat = errors.New("unknown codec format")
	ErrTypeMismatch  = errors.New("type mismatch")
)

const (
	FormatJSON = "json"
	FormatGob  = "gob"
)

func CodecFor(format string) (Codec, error) {
	switch format {
	case FormatJSON, "":
		return JSON{}, nil
	case FormatGob:
		return Gob{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

type envelope struct {
	Type               string          `json:"type"`
	Timestamp          time.Duration   `json:"timestamp"`
	AutomaticTimestamp bool            `json:"automatic_timestamp"`
	Valid              bool            `json:"valid"`
	Payload            json.RawMessage `json:"payload"`
}

type JSON struct{}

var _ Codec = JSON{}

func (JSON) Format() string {
	return FormatJSON
}

func (JSON) Marshal(v Value) ([]byte, error) {
	if v.IsVoid() {
		return nil, ErrVoidValue
	}
	payload, err := json.Marshal(v.Any())
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{
		Type:               v.typ.String(),
		Timestamp:          v.Timestamp,
		AutomaticTimestamp: v.AutomaticTimestamp,
		Valid:              v.Valid,
		Payload:            payload,
	})
}

func (JSON) Unmarshal(data []byte, proto Prototype) (ret Value, err error) {
	if proto.IsZero() {
		return ret, ErrVoidValue
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ret, err
	}
	if env.Type != proto.Name() {
		return ret, fmt.Errorf("%w: payload type %s, expecting %s", ErrTypeMismatch, env.Type, proto.Name())
	}
	ptr := reflect.New(proto.typ)
	if err := json.Unmarshal(env.Payload, ptr.Interface()); err != nil {
		return ret, err
	}
	return Value{
		typ:                proto.typ,
		payload:            ptr.Elem().Interface(),
		Timestamp:          env.Timestamp,
		AutomaticTimestamp: env.AutomaticTimestamp,
		Valid:              env.Valid,
	}, nil
}

type gobEnvelope struct {
	Type               string
	Timestamp          time.Duration
	AutomaticTimestamp bool
	Valid              bool
	Payload            []byte
}

type Gob struct{}

var _ Codec = Gob{}

func (Gob) Format() string {
	return FormatGob
}

func (Gob) Marshal(v Value) ([]byte, error) {
	if v.IsVoid() {
		return nil, ErrVoidValue
	}
	payload := new(bytes.Buffer)
	if err := gob.NewEncoder(payload).EncodeValue(reflect.ValueOf(v.Any())); err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	if err := gob.NewEncoder(buf).Encode(gobEnvelope{
		Type:               v.typ.String(),
		Timestamp:          v.Timestamp,
		AutomaticTimestamp: v.AutomaticTimestamp,
		Valid:              v.Valid,
		Payload:            payload.Bytes(),
	}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Gob) Unmarshal(data []byte, proto Prototype) (ret Value, err error) {
	if proto.IsZero() {
		return ret, ErrVoidValue
	}
	var env gobEnvelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return ret, err
	}
	if env.Type != proto.Name() {
		return ret, fmt.Errorf("%w: payload type %s, expecting %s", ErrTypeMismatch, env.Type, proto.Name())
	}
	ptr := reflect.New(proto.typ)
	if err := gob.NewDecoder(bytes.NewReader(env.Payload)).DecodeValue(ptr); err != nil {
		return ret, err
	}
	return Value{
		typ:                proto.typ,
		payload:            ptr.Elem().Interface(),
		Timestamp:          env.Timestamp,
		AutomaticTimestamp: env.AutomaticTimestamp,
		Valid:              env.Valid,
	}, nil
}
