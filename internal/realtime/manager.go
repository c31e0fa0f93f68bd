package realtime

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// State is the subscription state of a Manager.
type State int32

const (
	StateDisconnected State = iota
	StateConnected
)

func (s State) String() string {
	if s == StateConnected {
		return "connected"
	}
	return "disconnected"
}

// Priority is the manager-wide delivery priority.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Config controls subscription and batching.
type Config struct {
	// Channel is the broadcast channel to subscribe to.
	Channel string
	// Channels names the logical update groups of interest (theme, tokens,
	// effects, all). It is carried for compatibility; dispatch does not filter on it.
	Channels []string
	// Debounce is the quiet period before a batch is flushed. Each new update
	// restarts it.
	Debounce time.Duration
	// Batch enables buffering. When false updates are dispatched on receipt.
	Batch    bool
	Priority Priority
	// ReconnectBackoff is the initial delay before resubscribing after the
	// channel drops or the first subscribe fails. Zero disables reconnects.
	ReconnectBackoff time.Duration
	// MaxReconnectBackoff caps the doubling backoff.
	MaxReconnectBackoff time.Duration
}

// DefaultConfig returns the default manager configuration.
func DefaultConfig() Config {
	return Config{
		Channel:             DefaultChannel,
		Channels:            []string{"all"},
		Debounce:            100 * time.Millisecond,
		Batch:               true,
		Priority:            PriorityNormal,
		MaxReconnectBackoff: 30 * time.Second,
	}
}

// Listener receives dispatched updates one at a time.
type Listener func(Update)

type listenerEntry struct {
	id uint64
	fn Listener
}

// ErrAlreadyStarted is returned by Start on a running manager.
var ErrAlreadyStarted = errors.New("realtime manager already started")

// Manager owns one long-lived channel subscription and fans updates out to
// registered listeners.
type Manager struct {
	cfg       Config
	transport Transport
	logger    *zap.Logger

	state atomic.Int32

	mu        sync.Mutex
	pending   []Update
	timer     *time.Timer
	listeners []listenerEntry
	nextID    uint64

	runMu   sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewManager creates a Manager. Zero-valued config fields take defaults,
// except Batch which is honored as given.
func NewManager(transport Transport, cfg Config, logger *zap.Logger) *Manager {
	def := DefaultConfig()
	if cfg.Channel == "" {
		cfg.Channel = def.Channel
	}
	if len(cfg.Channels) == 0 {
		cfg.Channels = def.Channels
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = def.Debounce
	}
	if cfg.Priority == "" {
		cfg.Priority = def.Priority
	}
	if cfg.MaxReconnectBackoff <= 0 {
		cfg.MaxReconnectBackoff = def.MaxReconnectBackoff
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:       cfg,
		transport: transport,
		logger:    logger,
	}
}

// Config returns the effective configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

// State returns the current subscription state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

func (m *Manager) setState(s State) {
	m.state.Store(int32(s))
	if s == StateConnected {
		connectedGauge.Set(1)
	} else {
		connectedGauge.Set(0)
	}
}

// Start subscribes to the channel. On success the manager is connected and
// pumps updates until Stop or ctx is done. On failure the error is logged and
// returned; the manager stays disconnected unless reconnects are enabled.
func (m *Manager) Start(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.started {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.started = true

	updates, err := m.transport.Subscribe(runCtx, m.cfg.Channel)
	if err != nil {
		m.logger.Error("realtime subscribe failed",
			zap.String("channel", m.cfg.Channel),
			zap.Error(err),
		)
		if m.cfg.ReconnectBackoff <= 0 {
			close(m.done)
			return err
		}
		go m.run(runCtx, nil)
		return err
	}

	m.setState(StateConnected)
	m.logger.Info("realtime channel connected", zap.String("channel", m.cfg.Channel))
	go m.run(runCtx, updates)
	return nil
}

// run pumps updates and, when enabled, resubscribes with exponential backoff.
func (m *Manager) run(ctx context.Context, updates <-chan Update) {
	defer close(m.done)
	backoff := m.cfg.ReconnectBackoff

	for {
		if updates != nil {
			m.pump(ctx, updates)
			m.setState(StateDisconnected)
			if ctx.Err() != nil {
				return
			}
			m.logger.Warn("realtime channel closed", zap.String("channel", m.cfg.Channel))
			backoff = m.cfg.ReconnectBackoff
		}
		if m.cfg.ReconnectBackoff <= 0 {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		var err error
		updates, err = m.transport.Subscribe(ctx, m.cfg.Channel)
		if err != nil {
			m.logger.Warn("realtime resubscribe failed",
				zap.String("channel", m.cfg.Channel),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			updates = nil
			backoff *= 2
			if backoff > m.cfg.MaxReconnectBackoff {
				backoff = m.cfg.MaxReconnectBackoff
			}
			continue
		}
		m.setState(StateConnected)
		m.logger.Info("realtime channel reconnected", zap.String("channel", m.cfg.Channel))
	}
}

func (m *Manager) pump(ctx context.Context, updates <-chan Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			m.HandleUpdate(u)
		}
	}
}

// Stop ends the subscription and flushes anything still buffered.
func (m *Manager) Stop() {
	m.runMu.Lock()
	if !m.started {
		m.runMu.Unlock()
		return
	}
	m.cancel()
	done := m.done
	m.started = false
	m.runMu.Unlock()

	<-done
	m.setState(StateDisconnected)
	m.Flush()
}

// OnUpdate registers a listener and returns a function removing exactly
// that registration.
func (m *Manager) OnUpdate(fn Listener) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners = append(m.listeners, listenerEntry{id: id, fn: fn})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, e := range m.listeners {
			if e.id == id {
				m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// HandleUpdate accepts one update. With batching it is buffered and the
// debounce timer restarted; without, it is dispatched before HandleUpdate returns.
func (m *Manager) HandleUpdate(u Update) {
	updatesReceived.Inc()
	if !m.cfg.Batch {
		m.dispatch(u)
		return
	}

	m.mu.Lock()
	m.pending = append(m.pending, u)
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.cfg.Debounce, m.Flush)
	m.mu.Unlock()
}

// Flush dispatches every buffered update in (timestamp, priority weight) order
// and clears the buffer.
func (m *Manager) Flush() {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	flushes.Inc()
	batchSize.Observe(float64(len(batch)))

	sort.SliceStable(batch, func(i, j int) bool {
		if batch[i].Timestamp != batch[j].Timestamp {
			return batch[i].Timestamp < batch[j].Timestamp
		}
		return m.weight(batch[i]) < m.weight(batch[j])
	})
	for _, u := range batch {
		m.dispatch(u)
	}
}

// Pending returns the number of buffered updates.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// weight ranks an update for ordering within a batch. It reads only the
// manager-wide priority, so every update in a batch shares one weight.
func (m *Manager) weight(_ Update) int {
	switch m.cfg.Priority {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

func (m *Manager) dispatch(u Update) {
	m.mu.Lock()
	listeners := make([]listenerEntry, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, l := range listeners {
		m.safeCall(l.fn, u)
	}
	updatesDispatched.Inc()
}

func (m *Manager) safeCall(fn Listener, u Update) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("realtime listener panicked",
				zap.String("type", string(u.Type)),
				zap.Strings("path", u.Path),
				zap.Any("panic", r),
			)
		}
	}()
	fn(u)
}
