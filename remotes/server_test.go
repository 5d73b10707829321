package remotes

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/mts/interfaces"
	"github.com/reusee/mts/logs"
	"github.com/reusee/mts/managers"
	"github.com/reusee/mts/tasks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testSpan(ctx context.Context, parent logs.Span) (context.Context, logs.Span) {
	span := logs.Span("span-" + string(parent))
	return context.WithValue(ctx, logs.SpanKey, span), span
}

type serverTestDeps struct {
	controller *gomock.Controller
	registry   *MockRegistry
	server     *httptest.Server
	client     *Client
}

func setupServerTest(t *testing.T) *serverTestDeps {
	controller := gomock.NewController(t)
	registry := NewMockRegistry(controller)
	server := httptest.NewServer(NewServer(registry, slog.Default(), testSpan))
	t.Cleanup(server.Close)
	return &serverTestDeps{
		controller: controller,
		registry:   registry,
		server:     server,
		client:     NewClient(server.URL, server.Client()),
	}
}

func TestProcessAndComponents(t *testing.T) {
	deps := setupServerTest(t)
	ctx := t.Context()

	deps.registry.EXPECT().Process().Return("alpha")
	process, err := deps.client.Process(ctx)
	require.NoError(t, err)
	require.Equal(t, "alpha", process)

	comp := tasks.NewComponent("robot")
	_, err = comp.AddProvided("Position")
	require.NoError(t, err)
	_, err = comp.AddRequired("Clock")
	require.NoError(t, err)
	deps.registry.EXPECT().ComponentNames().Return([]string{"robot", "gone"})
	deps.registry.EXPECT().GetComponent("robot").Return(comp, true)
	deps.registry.EXPECT().GetComponent("gone").Return(nil, false)
	components, err := deps.client.Components(ctx)
	require.NoError(t, err)
	require.Equal(t, []ComponentInfo{{
		Name:     "robot",
		Provided: []string{"Position"},
		Required: []string{"Clock"},
	}}, components)
}

func TestAccessInfo(t *testing.T) {
	deps := setupServerTest(t)
	ctx := t.Context()

	info := interfaces.AccessInfo{
		Process:   "alpha",
		Component: "robot",
		Interface: "Position",
		Format:    "json",
		Commands: []interfaces.CommandInfo{
			{Name: "Get", Kind: "READ", Result: "float64"},
		},
	}
	deps.registry.EXPECT().GetProvidedInterfaceAccessInfo("robot", "Position").Return(info, nil)
	got, err := deps.client.GetProvidedInterfaceAccessInfo(ctx, "robot", "Position")
	require.NoError(t, err)
	require.Equal(t, info, got)

	deps.registry.EXPECT().GetProvidedInterfaceAccessInfo("robot", "Nope").
		Return(interfaces.AccessInfo{}, interfaces.ErrInterfaceNotFound)
	_, err = deps.client.GetProvidedInterfaceAccessInfo(ctx, "robot", "Nope")
	require.ErrorIs(t, err, ErrNotFound)

	deps.registry.EXPECT().IsRegisteredProvidedInterface("robot", "Position").Return(true)
	ok, err := deps.client.IsRegisteredProvidedInterface(ctx, "robot", "Position")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAllocateAndNotify(t *testing.T) {
	deps := setupServerTest(t)
	ctx := t.Context()
	id := uuid.Must(uuid.NewV7())

	gomock.InOrder(
		deps.registry.EXPECT().AllocateRemoteResources("beta", "ui", "Robot", "robot", "Position").Return(id, nil),
		deps.registry.EXPECT().NotifyInterfaceConnectionResult(true, true, id, "ui", "Robot", "robot", "Position").Return(nil),
		deps.registry.EXPECT().NotifyInterfaceConnectionResult(true, true, id, "ui", "Robot", "robot", "Position").Return(managers.ErrRemoteAlreadyDecided),
		deps.registry.EXPECT().NotifyInterfaceConnectionResult(true, true, id, "ui", "Robot", "robot", "Other").Return(managers.ErrRemoteMismatch),
	)
	got, err := deps.client.AllocateRemoteResources(ctx, AllocateRequest{
		ClientProcess: "beta",
		Consumer:      "ui",
		Required:      "Robot",
		Component:     "robot",
		Provided:      "Position",
	})
	require.NoError(t, err)
	require.Equal(t, id, got)
	require.NoError(t, deps.client.NotifyInterfaceConnectionResult(ctx, true, true, id, "ui", "Robot", "robot", "Position"))
	require.ErrorIs(t, deps.client.NotifyInterfaceConnectionResult(ctx, true, true, id, "ui", "Robot", "robot", "Position"), ErrConflict)
	require.ErrorIs(t, deps.client.NotifyInterfaceConnectionResult(ctx, true, true, id, "ui", "Robot", "robot", "Other"), ErrConflict)

	_, err = deps.client.AllocateRemoteResources(ctx, AllocateRequest{})
	require.ErrorIs(t, err, ErrBadRequest)

	deps.registry.EXPECT().AllocateRemoteResources(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(uuid.Nil, managers.ErrNotInitialized)
	_, err = deps.client.AllocateRemoteResources(ctx, AllocateRequest{
		ClientProcess: "beta",
		Component:     "robot",
		Provided:      "Position",
	})
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestSpanHeader(t *testing.T) {
	deps := setupServerTest(t)
	deps.registry.EXPECT().Process().Return("alpha")
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, deps.server.URL+"/v1/process", nil)
	require.NoError(t, err)
	req.Header.Set(SpanHeader, "parent")
	resp, err := deps.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "span-parent", resp.Header.Get(SpanHeader))
}

func TestServe(t *testing.T) {
	controller := gomock.NewController(t)
	registry := NewMockRegistry(controller)
	registry.EXPECT().Process().Return("alpha").AnyTimes()
	server := NewServer(registry, slog.Default(), testSpan)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ctx, listener, 4)
	}()

	client := NewClient("http://"+listener.Addr().String(), nil)
	process, err := client.Process(t.Context())
	require.NoError(t, err)
	require.Equal(t, "alpha", process)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve not stopped")
	}
}
