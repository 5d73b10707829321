package nets

import (
	"github.com/reusee/dscope"
	"github.com/reusee/mts/configs"
	"github.com/reusee/mts/logs"
)

// Module provides the dialer and HTTP client used to reach remote peers.
type Module struct {
	dscope.Module
	Configs configs.Module
	Logs    logs.Module
}
