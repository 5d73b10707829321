package nets

import (
	"testing"

	"github.com/reusee/mts/modes"
)

func TestNoProxyInDevelopment(t *testing.T) {
	t.Setenv("MTS_PROXY", "socks://127.0.0.1:1080")
	testScope(t).Call(func(
		addr ProxyAddr,
		getURL GetProxyURL,
		client HTTPClient,
	) {
		if addr != "" {
			t.Fatalf("got %s", addr)
		}
		u, err := getURL()
		if err != nil {
			t.Fatal(err)
		}
		if u != nil {
			t.Fatal()
		}
		if client == nil {
			t.Fatal()
		}
	})
}

func TestSocksScheme(t *testing.T) {
	testScope(t).Fork(
		func() ProxyAddr {
			return "socks://127.0.0.1:1080"
		},
	).Call(func(
		getURL GetProxyURL,
		getDialer GetProxyDialer,
		mode modes.Mode,
	) {
		if mode != modes.ModeDevelopment {
			t.Fatal()
		}
		u, err := getURL()
		if err != nil {
			t.Fatal(err)
		}
		if u.Scheme != "socks5" {
			t.Fatalf("got %s", u.Scheme)
		}
		dialer, err := getDialer()
		if err != nil {
			t.Fatal(err)
		}
		if dialer == nil {
			t.Fatal()
		}
	})
}

func TestProxyFromEnv(t *testing.T) {
	t.Setenv("MTS_PROXY", "socks://127.0.0.1:1080")
	scope := testScope(t).Fork(
		func() modes.Mode {
			return modes.ModeProduction
		},
	)
	scope.Call(func(
		addr ProxyAddr,
	) {
		if addr != "socks://127.0.0.1:1080" {
			t.Fatalf("got %s", addr)
		}
	})

	t.Setenv("MTS_NO_PROXY", "yes")
	testScope(t).Fork(
		func() modes.Mode {
			return modes.ModeProduction
		},
	).Call(func(
		addr ProxyAddr,
	) {
		if addr != "" {
			t.Fatalf("got %s", addr)
		}
	})
}
