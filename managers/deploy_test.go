package managers

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/reusee/mts/configs"
	"github.com/stretchr/testify/require"
)

func TestDeploy(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Register("producer", func(m *Manager, name string, config Config) (Component, error) {
		task, _ := newProducer(t, name)
		return task, nil
	}))
	require.NoError(t, m.Register("consumer", func(m *Manager, name string, config Config) (Component, error) {
		task, _ := newConsumer(t, name)
		return task, nil
	}))

	d, err := configs.LoadDeployment(configs.NewLoader([]string{
		filepath.Join("testdata", "pipeline.cue"),
	}, configs.Schema))
	require.NoError(t, err)
	require.NoError(t, m.Deploy(d))

	require.Equal(t, []string{"producer", "c1", "c2"}, m.ComponentNames())
	require.Len(t, m.Connections(), 1)
	require.Len(t, m.PendingConnections(), 1)

	require.NoError(t, m.CreateAll())
	defer m.Shutdown(time.Second)
	require.Len(t, m.Connections(), 2)
	require.Empty(t, m.PendingConnections())
	c2, ok := m.GetComponent("c2")
	require.True(t, ok)
	require.True(t, c2.Required("Robot").IsConnected())
}

func TestDeployUnknownType(t *testing.T) {
	m := newTestManager(t)
	d := &configs.Deployment{
		Components: []configs.ComponentSpec{
			{Name: "x", Type: "nope"},
		},
	}
	require.ErrorIs(t, m.Deploy(d), ErrUnknownType)
}
