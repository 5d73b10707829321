package remotes

import (
	"fmt"
	"maps"
	"slices"

	"github.com/reusee/dscope"
	"github.com/reusee/mts/configs"
	"github.com/reusee/mts/logs"
	"github.com/reusee/mts/managers"
	"github.com/reusee/mts/nets"
)

type Module struct {
	dscope.Module
	Managers managers.Module
	Nets     nets.Module
}

type ListenAddr string

func (Module) ListenAddr(
	loader configs.Loader,
) ListenAddr {
	return ListenAddr(configs.First[string](loader, "listen"))
}

type MaxConns int

func (Module) MaxConns() MaxConns {
	return 64
}

// Peers maps peer process names to server base URLs.
type Peers map[string]string

func (Module) Peers(
	loader configs.Loader,
) Peers {
	ret := make(Peers)
	for peers, err := range configs.All[map[string]string](loader, "peers") {
		if err != nil {
			panic(err)
		}
		for name, addr := range peers {
			if _, ok := ret[name]; !ok {
				ret[name] = addr
			}
		}
	}
	return ret
}

type GetPeer func(name string) (*Client, error)

func (Module) GetPeer(
	peers Peers,
	httpClient nets.HTTPClient,
) GetPeer {
	return func(name string) (*Client, error) {
		base, ok := peers[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s (known: %v)", ErrUnknownPeer, name, slices.Sorted(maps.Keys(peers)))
		}
		return NewClient(base, httpClient), nil
	}
}

func (Module) Server(
	manager *managers.Manager,
	logger logs.Logger,
	newSpan logs.NewSpan,
) *Server {
	return NewServer(manager, logger, newSpan)
}
