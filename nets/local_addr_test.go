package nets

import (
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/mts/configs"
	"github.com/reusee/mts/modes"
)

func testScope(t *testing.T) dscope.Scope {
	return dscope.New(
		modes.ForTest(t),
		new(Module),
	).Fork(
		func() configs.Loader {
			return configs.NewLoader(nil, "")
		},
	)
}

func TestIsLocalAddr(t *testing.T) {
	testScope(t).Call(func(
		isLocalAddr IsLocalAddr,
	) {
		yes, err := isLocalAddr("127.0.0.1:10000")
		if err != nil {
			t.Fatal(err)
		}
		if !yes {
			t.Fatal()
		}
		yes, err = isLocalAddr("192.168.1.1")
		if err != nil {
			t.Fatal(err)
		}
		if !yes {
			t.Fatal()
		}
		yes, err = isLocalAddr("8.8.8.8:53")
		if err != nil {
			t.Fatal(err)
		}
		if yes {
			t.Fatal()
		}
	})
}

func TestIsLocalAddrForms(t *testing.T) {
	testScope(t).Call(func(
		isLocalAddr IsLocalAddr,
	) {
		for addr, expected := range map[string]bool{
			"localhost:7000":     true,
			"[::1]:7000":         true,
			"10.0.0.5":           true,
			"169.254.10.1:80":    true,
			"[2001:4860::1]:443": false,
			"1.1.1.1":            false,
		} {
			yes, err := isLocalAddr(addr)
			if err != nil {
				t.Fatal(err)
			}
			if yes != expected {
				t.Fatalf("%s: got %v", addr, yes)
			}
		}
	})
}
