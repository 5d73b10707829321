package remotes

//go:generate mockgen -source=registry.go -destination=registry_mock.go -package=remotes

import (
	"github.com/google/uuid"
	"github.com/reusee/mts/interfaces"
	"github.com/reusee/mts/managers"
)

// Registry is the part of a manager served to peers.
type Registry interface {
	Process() string
	ComponentNames() []string
	GetComponent(name string) (managers.Component, bool)
	Connections() []managers.Connection
	IsRegisteredProvidedInterface(component, provided string) bool
	GetProvidedInterfaceAccessInfo(component, provided string) (interfaces.AccessInfo, error)
	AllocateRemoteResources(clientProcess, consumer, required, component, provided string) (uuid.UUID, error)
	NotifyInterfaceConnectionResult(isProvider, success bool, id uuid.UUID, consumer, required, provider, provided string) error
}

var _ Registry = (*managers.Manager)(nil)
