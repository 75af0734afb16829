package sales

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/crudio/crudio/internal/sales/list"
	"github.com/crudio/crudio/internal/state"
)

// Workspace is the per-session state of the UI: one store and the list
// controller subscribed to it.
type Workspace struct {
	Store *state.Store
	List  *list.Controller

	mu       sync.Mutex
	lastSeen time.Time
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return now.Sub(w.lastSeen)
}

// WorkspaceGauge reports the number of live workspaces.
type WorkspaceGauge interface {
	SetWorkspaces(n int)
}

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// NewList builds the list controller for a fresh store.
	NewList func(store *state.Store) *list.Controller
	IdleTTL time.Duration
	Logger  *slog.Logger
	Metrics WorkspaceGauge
	Now     func() time.Time
}

// Registry holds one Workspace per session ID.
type Registry struct {
	newList func(store *state.Store) *list.Controller
	idleTTL time.Duration
	logger  *slog.Logger
	metrics WorkspaceGauge
	now     func() time.Time

	mu    sync.Mutex
	items map[string]*Workspace
}

// NewRegistry constructs an empty registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	idle := cfg.IdleTTL
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	return &Registry{
		newList: cfg.NewList,
		idleTTL: idle,
		logger:  logger,
		metrics: cfg.Metrics,
		now:     now,
		items:   make(map[string]*Workspace),
	}
}

// Get returns the workspace of sessionID, creating it on first use.
func (r *Registry) Get(sessionID string) *Workspace {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.items[sessionID]
	if !ok {
		store := state.NewStore()
		ws = &Workspace{Store: store, List: r.newList(store)}
		r.items[sessionID] = ws
		r.reportLocked()
	}
	ws.touch(now)
	return ws
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Sweep closes workspaces idle for longer than the idle TTL and returns how
// many were evicted.
func (r *Registry) Sweep() int {
	now := r.now()
	r.mu.Lock()
	var evicted []*Workspace
	for id, ws := range r.items {
		if ws.idleSince(now) > r.idleTTL {
			evicted = append(evicted, ws)
			delete(r.items, id)
		}
	}
	if len(evicted) > 0 {
		r.reportLocked()
	}
	r.mu.Unlock()

	for _, ws := range evicted {
		ws.List.Close()
	}
	if len(evicted) > 0 {
		r.logger.Debug("evicted idle workspaces", slog.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Run sweeps every interval until ctx is done, then closes every workspace.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close tears down every workspace.
func (r *Registry) Close() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]*Workspace)
	r.reportLocked()
	r.mu.Unlock()
	for _, ws := range items {
		ws.List.Close()
	}
}

func (r *Registry) reportLocked() {
	if r.metrics != nil {
		r.metrics.SetWorkspaces(len(r.items))
	}
}
