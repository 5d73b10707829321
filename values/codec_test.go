package values

import (
	"errors"
	"testing"
	"time"
)

func TestCodecs(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatGob} {
		t.Run(format, func(t *testing.T) {
			codec, err := CodecFor(format)
			if err != nil {
				t.Fatal(err)
			}
			if codec.Format() != format {
				t.Fatal()
			}
			pos := position{X: 1.5, Y: -2}
			v := Ref(&pos).WithTimestamp(3 * time.Millisecond)
			data, err := codec.Marshal(v)
			if err != nil {
				t.Fatal(err)
			}
			got, err := codec.Unmarshal(data, PrototypeOf[position]())
			if err != nil {
				t.Fatal(err)
			}
			if got.IsRef() {
				t.Fatal()
			}
			p, ok := Cast[position](got)
			if !ok || p != pos {
				t.Fatalf("got %v", got)
			}
			if got.Timestamp != 3*time.Millisecond || !got.Valid {
				t.Fatalf("got %+v", got)
			}
			if _, err := codec.Unmarshal(data, PrototypeOf[int]()); err == nil {
				t.Fatal("should reject prototype mismatch")
			}
			if _, err := codec.Marshal(Void()); !errors.Is(err, ErrVoidValue) {
				t.Fatalf("got %v", err)
			}
		})
	}

	if _, err := CodecFor("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("got %v", err)
	}
}
