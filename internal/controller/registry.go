package controller

import (
	"context"
	"sync"
	"time"

	"github.com/AnshRaj112/aura-backend/internal/logger"
	"github.com/AnshRaj112/aura-backend/internal/models"
)

const (
	DefaultIdleTTL          = 30 * time.Minute
	registryCleanupInterval = 5 * time.Minute
)

// IdentityFactory returns the identity client for a browser holding the
// given session token (possibly empty).
type IdentityFactory func(token string) models.Identity

// RegistryOptions configures a Registry. Options.Identity is ignored: every
// controller gets its own client from NewIdentity.
type RegistryOptions struct {
	Options
	NewIdentity IdentityFactory
	IdleTTL     time.Duration
}

type clientEntry struct {
	ctrl    *Controller
	lastUse time.Time
}

// Registry keeps one Controller per client id and evicts idle ones.
type Registry struct {
	opts RegistryOptions
	log  *logger.Logger

	mu      sync.Mutex
	clients map[string]*clientEntry
	now     func() time.Time
}

func NewRegistry(opts RegistryOptions) *Registry {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		opts:    opts,
		log:     log,
		clients: make(map[string]*clientEntry),
		now:     time.Now,
	}
}

// Get returns the controller of clientID, creating and starting one bound to
// sessionToken on first sight. created reports whether it is new.
func (r *Registry) Get(ctx context.Context, clientID, sessionToken string) (ctrl *Controller, created bool) {
	r.mu.Lock()
	e, ok := r.clients[clientID]
	if ok {
		e.lastUse = r.now()
		r.mu.Unlock()
		return e.ctrl, false
	}

	opts := r.opts.Options
	opts.Identity = r.opts.NewIdentity(sessionToken)
	ctrl = New(opts)
	// Held until the session check is done so concurrent requests of this
	// client never observe the loading state.
	ctrl.mu.Lock()
	r.clients[clientID] = &clientEntry{ctrl: ctrl, lastUse: r.now()}
	r.mu.Unlock()

	// The session check outlives a cancelled first request: start runs once.
	ctrl.start(context.WithoutCancel(ctx))
	ctrl.mu.Unlock()
	r.log.Debug("client controller created", "client_id", clientID)
	return ctrl, true
}

// Len returns the number of live controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Evict removes controllers unused for longer than the idle TTL and returns
// how many were removed.
func (r *Registry) Evict() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	n := 0
	for id, e := range r.clients {
		if now.Sub(e.lastUse) > r.opts.IdleTTL {
			e.ctrl.Close()
			delete(r.clients, id)
			n++
		}
	}
	return n
}

// Run evicts idle controllers on a ticker until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(registryCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(); n > 0 {
				r.log.Info("evicted idle clients", "count", n)
			}
		}
	}
}
