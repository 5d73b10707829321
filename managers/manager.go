package managers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/mts/interfaces"
	"github.com/reusee/mts/syncs"
	"github.com/reusee/mts/tasks"
	"github.com/uber-go/tally/v4"
)

// Manager is the registry of components of one process. Writers are
// serialized; readers run concurrently.
type Manager struct {
	process string
	logger  *slog.Logger
	metrics tally.Scope
	closer  io.Closer

	mu          sync.RWMutex
	inited      bool
	components  map[string]Component
	order       []string
	connections []*Connection
	pending     []Connection
	factories   map[string]Factory
	remotes     []*RemoteConnection

	connectionGauge tally.Gauge
}

type Connection struct {
	ID        uuid.UUID `json:"id"`
	Consumer  string    `json:"consumer"`
	Required  string    `json:"required"`
	Provider  string    `json:"provider"`
	Provided  string    `json:"provided"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Connection) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", c.Consumer, c.Required, c.Provider, c.Provided)
}

func New(process string, logger *slog.Logger, metrics tally.Scope, closer io.Closer) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = tally.NoopScope
	}
	return &Manager{
		process:         process,
		logger:          logger.With("process", process),
		metrics:         metrics,
		closer:          closer,
		components:      make(map[string]Component),
		factories:       make(map[string]Factory),
		connectionGauge: metrics.Gauge("connections"),
	}
}

func (m *Manager) Process() string {
	return m.process
}

func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// Metrics is the scope components of this manager should report to.
func (m *Manager) Metrics() tally.Scope {
	return m.metrics
}

func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inited = true
	m.logger.Info("manager initialized")
	return nil
}

// Shutdown kills every task, waits for them up to timeout and drops all
// connections.
func (m *Manager) Shutdown(timeout time.Duration) error {
	m.KillAll()
	var err error
	if !m.WaitForStateAll(tasks.Finished, timeout) {
		err = ErrShutdownTimeout
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, conn := range m.connections {
		if r := m.components[conn.Consumer].Required(conn.Required); r != nil {
			_ = interfaces.Disconnect(r)
		}
	}
	m.connections = nil
	m.pending = nil
	for _, r := range m.remotes {
		if !r.IsProvider {
			continue
		}
		if c, ok := m.components[r.Provider]; ok {
			if p := c.Provided(r.Provided); p != nil {
				p.ReleaseResources(r.CallerID)
			}
		}
	}
	m.remotes = nil
	m.connectionGauge.Update(0)
	m.inited = false
	if m.closer != nil {
		if e := m.closer.Close(); e != nil {
			err = errors.Join(err, e)
		}
		m.closer = nil
	}
	m.logger.Info("manager shutdown")
	return err
}

func (m *Manager) AddComponent(c Component) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inited {
		return ErrNotInitialized
	}
	name := c.Name()
	if _, ok := m.components[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, name)
	}
	m.components[name] = c
	m.order = append(m.order, name)
	if b, ok := c.(binderAdder); ok {
		b.AddBinder(func() error {
			return m.bindPending(name)
		})
	}
	m.logger.Info("component added", "component", name)
	return nil
}

// RemoveComponent removes a passive or finished component and its
// connections.
func (m *Manager) RemoveComponent(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.components[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrComponentNotFound, name)
	}
	if l, ok := c.(Lifecycle); ok {
		if s := l.State(); s != tasks.Constructed && s != tasks.Finished {
			return fmt.Errorf("%w: %s is %s", ErrComponentRunning, name, s)
		}
	}
	if r, ok := c.(releaser); ok {
		if err := r.Release(); err != nil {
			return err
		}
	}
	m.connections = slices.DeleteFunc(m.connections, func(conn *Connection) bool {
		if conn.Consumer != name && conn.Provider != name {
			return false
		}
		if r := m.components[conn.Consumer].Required(conn.Required); r != nil {
			_ = interfaces.Disconnect(r)
		}
		return true
	})
	m.pending = slices.DeleteFunc(m.pending, func(conn Connection) bool {
		return conn.Consumer == name
	})
	delete(m.components, name)
	m.order = slices.DeleteFunc(m.order, func(s string) bool {
		return s == name
	})
	m.connectionGauge.Update(float64(len(m.connections)))
	m.logger.Info("component removed", "component", name)
	return nil
}

func (m *Manager) GetComponent(name string) (Component, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.components[name]
	return c, ok
}

func (m *Manager) ComponentNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.order)
}

func (m *Manager) interfacesOf(consumer, required, provider, provided string) (*interfaces.Required, *interfaces.Provided, error) {
	c, ok := m.components[consumer]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrComponentNotFound, consumer)
	}
	p, ok := m.components[provider]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrComponentNotFound, provider)
	}
	r := c.Required(required)
	if r == nil {
		return nil, nil, fmt.Errorf("%w: required %s of %s", interfaces.ErrInterfaceNotFound, required, consumer)
	}
	pi := p.Provided(provided)
	if pi == nil {
		return nil, nil, fmt.Errorf("%w: provided %s of %s", interfaces.ErrInterfaceNotFound, provided, provider)
	}
	return r, pi, nil
}

// Connect connects a required interface to a provided one.
func (m *Manager) Connect(consumer, required, provider, provided string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectLocked(consumer, required, provider, provided)
}

func (m *Manager) connectLocked(consumer, required, provider, provided string) (uuid.UUID, error) {
	if !m.inited {
		return uuid.Nil, ErrNotInitialized
	}
	r, p, err := m.interfacesOf(consumer, required, provider, provided)
	if err != nil {
		return uuid.Nil, err
	}
	if err := interfaces.Connect(r, p); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		_ = interfaces.Disconnect(r)
		return uuid.Nil, err
	}
	conn := &Connection{
		ID:        id,
		Consumer:  consumer,
		Required:  required,
		Provider:  provider,
		Provided:  provided,
		CreatedAt: time.Now(),
	}
	m.connections = append(m.connections, conn)
	m.connectionGauge.Update(float64(len(m.connections)))
	m.logger.Info("connected",
		"id", id.String(),
		"connection", conn.String(),
	)
	return id, nil
}

func (m *Manager) Disconnect(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.connections, func(c *Connection) bool {
		return c.ID == id
	})
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrConnectionNotFound, id)
	}
	conn := m.connections[i]
	if r := m.components[conn.Consumer].Required(conn.Required); r != nil {
		if err := interfaces.Disconnect(r); err != nil {
			return err
		}
	}
	m.connections = slices.Delete(m.connections, i, i+1)
	m.connectionGauge.Update(float64(len(m.connections)))
	m.logger.Info("disconnected", "id", id.String(), "connection", conn.String())
	return nil
}

func (m *Manager) Connections() []Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ret := make([]Connection, 0, len(m.connections))
	for _, c := range m.connections {
		ret = append(ret, *c)
	}
	return ret
}

// RequestConnection records a connection made when the consumer task is
// created.
func (m *Manager) RequestConnection(consumer, required, provider, provided string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inited {
		return ErrNotInitialized
	}
	m.pending = append(m.pending, Connection{
		Consumer: consumer,
		Required: required,
		Provider: provider,
		Provided: provided,
	})
	return nil
}

func (m *Manager) PendingConnections() []Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.pending)
}

func (m *Manager) bindPending(consumer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rest []Connection
	var err error
	for _, conn := range m.pending {
		if conn.Consumer != consumer || err != nil {
			rest = append(rest, conn)
			continue
		}
		if _, e := m.connectLocked(conn.Consumer, conn.Required, conn.Provider, conn.Provided); e != nil {
			err = fmt.Errorf("connect %s: %w", conn, e)
			rest = append(rest, conn)
		}
	}
	m.pending = rest
	return err
}

func (m *Manager) lifecycles() []Lifecycle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ret []Lifecycle
	for _, name := range m.order {
		if l, ok := m.components[name].(Lifecycle); ok {
			ret = append(ret, l)
		}
	}
	return ret
}

const createParallelism = 4

// CreateAll creates every task. Errors of all tasks are joined.
func (m *Manager) CreateAll() error {
	lifecycles := m.lifecycles()
	sem := syncs.NewSemaphore(createParallelism)
	errs := make([]error, len(lifecycles))
	var wg sync.WaitGroup
	for i, l := range lifecycles {
		if l.State() != tasks.Constructed && l.State() != tasks.Initializing {
			continue
		}
		sem.Acquire()
		wg.Add(1)
		go func() {
			defer func() {
				sem.Release()
				wg.Done()
			}()
			errs[i] = l.Create()
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (m *Manager) StartAll() {
	for _, l := range m.lifecycles() {
		l.Start()
	}
}

func (m *Manager) KillAll() {
	for _, l := range m.lifecycles() {
		l.Kill()
	}
}

func (m *Manager) WaitForStateAll(state tasks.State, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for _, l := range m.lifecycles() {
		if !l.WaitForState(state, time.Until(deadline)) {
			return false
		}
	}
	return true
}
