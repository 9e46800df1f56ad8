package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/rentalmanager/internal/logger"
	"github.com/localnerve/rentalmanager/internal/services"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry keeps one gateway per client id
type Registry struct {
	auth        services.Authenticator
	store       Store
	idleTimeout time.Duration
	now         func() time.Time
	active      prometheus.Gauge

	mu       sync.Mutex
	gateways map[string]*Gateway
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithRegistryClock replaces time.Now for the registry and the gateways it creates
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates an empty registry. Gateways idle longer than idleTimeout are closed by Reap.
func NewRegistry(auth services.Authenticator, store Store, idleTimeout time.Duration, opts ...RegistryOption) *Registry {
	r := &Registry{
		auth:        auth,
		store:       store,
		idleTimeout: idleTimeout,
		now:         time.Now,
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rentalmanager",
			Name:      "active_gateways",
			Help:      "Number of client gateways currently held in memory.",
		}),
		gateways: make(map[string]*Gateway),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Collector exposes the active gateway gauge for registration
func (r *Registry) Collector() prometheus.Collector {
	return r.active
}

// Get returns the gateway of a client, marking it active
func (r *Registry) Get(clientID string) (*Gateway, bool) {
	r.mu.Lock()
	g, ok := r.gateways[clientID]
	r.mu.Unlock()
	if ok {
		g.Touch()
	}
	return g, ok
}

// Acquire returns the gateway of clientID, creating it when missing. A new gateway resumes
// the session of token before it is returned. An empty clientID gets a fresh id.
func (r *Registry) Acquire(ctx context.Context, clientID, token string) *Gateway {
	if clientID != "" {
		if g, ok := r.Get(clientID); ok {
			return g
		}
	} else {
		clientID = uuid.NewString()
	}

	g := New(clientID, r.auth, r.store, WithClock(r.now), WithLogger(logger.Default().WithField("component", "gateway")))
	if err := g.Resume(ctx, token); err != nil && token != "" {
		logger.FromContext(ctx).WithError(err).WithField("client", clientID).Debug("starting unauthenticated")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.gateways[clientID]; ok {
		// lost a race with a concurrent request of the same client
		g.Close()
		existing.Touch()
		return existing
	}
	r.gateways[clientID] = g
	r.active.Set(float64(len(r.gateways)))
	return g
}

// Remove closes and forgets the gateway of a client
func (r *Registry) Remove(clientID string) {
	r.mu.Lock()
	g, ok := r.gateways[clientID]
	delete(r.gateways, clientID)
	r.active.Set(float64(len(r.gateways)))
	r.mu.Unlock()
	if ok {
		g.Close()
	}
}

// Reap closes gateways idle longer than the idle timeout and returns how many it closed
func (r *Registry) Reap() int {
	cutoff := r.now().Add(-r.idleTimeout)

	r.mu.Lock()
	var idle []*Gateway
	for id, g := range r.gateways {
		if g.LastSeen().Before(cutoff) {
			idle = append(idle, g)
			delete(r.gateways, id)
		}
	}
	r.active.Set(float64(len(r.gateways)))
	r.mu.Unlock()

	for _, g := range idle {
		g.Close()
	}
	return len(idle)
}

// Len returns the number of live gateways
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.gateways)
}

// Close closes every gateway
func (r *Registry) Close() {
	r.mu.Lock()
	gateways := r.gateways
	r.gateways = make(map[string]*Gateway)
	r.active.Set(0)
	r.mu.Unlock()

	for _, g := range gateways {
		g.Close()
	}
}
