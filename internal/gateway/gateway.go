// gateway.go
//
// Rental manager: landlord back office with live collection snapshots
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of rentalmanager.
// rentalmanager is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// rentalmanager is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with rentalmanager.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package gateway holds the per-client session and the live collections of the signed in user.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/localnerve/rentalmanager/internal/logger"
	"github.com/localnerve/rentalmanager/internal/models"
	"github.com/localnerve/rentalmanager/internal/records"
	"github.com/localnerve/rentalmanager/internal/services"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotAuthenticated is returned by data operations without a signed in user
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrMissingCredentials is returned when email or password is empty
	ErrMissingCredentials = errors.New(MessageMissingFields)
	// ErrAuthFailed wraps every sign in or sign up rejection
	ErrAuthFailed = errors.New("authentication failed")
	// ErrSessionBusy is returned when a sign in is attempted while loading or signed in
	ErrSessionBusy = errors.New("session is loading or already authenticated")
	// ErrClosed is returned by a closed gateway
	ErrClosed = errors.New("gateway closed")
)

// Store is the record store a gateway reads and writes
type Store interface {
	Create(ctx context.Context, userID string, collection models.Collection, record services.Identifiable) (string, uint64, error)
	Delete(ctx context.Context, userID string, collection models.Collection, recordID string) (uint64, error)
	Watch(ctx context.Context, userID string, collection models.Collection, fn services.WatchFunc) (func(), error)
	GetProfile(ctx context.Context, userID string) (models.UserProfile, error)
	SaveProfile(ctx context.Context, userID string, profile models.UserProfile) (models.UserProfile, error)
}

// Option configures a Gateway
type Option func(*Gateway)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// WithLogger sets the base log entry
func WithLogger(entry *logrus.Entry) Option {
	return func(g *Gateway) {
		g.base = entry
	}
}

// Gateway mediates one client's session and data access. Session and collections are
// observables; tenants, properties and payments stream from sign in, occupancies from the
// first observer on. Observer callbacks run with the gateway locked and must not call
// gateway operations.
type Gateway struct {
	id    string
	auth  services.Authenticator
	store Store
	base  *logrus.Entry
	now   func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	identity   *services.Identity
	feeds      map[models.Collection]func()
	generation uint64
	closed     bool
	lastSeen   time.Time
	log        *logrus.Entry

	session     *Observable[SessionState]
	tenants     *Observable[Snapshot[models.Tenant]]
	properties  *Observable[Snapshot[models.Property]]
	payments    *Observable[Snapshot[models.Payment]]
	occupancies *Observable[Snapshot[models.Occupancy]]
}

// New creates an unauthenticated gateway
func New(id string, auth services.Authenticator, store Store, opts ...Option) *Gateway {
	g := &Gateway{
		id:          id,
		auth:        auth,
		store:       store,
		base:        logger.Default(),
		now:         time.Now,
		feeds:       make(map[models.Collection]func()),
		session:     NewObservable(SessionState{Status: Unauthenticated}),
		tenants:     NewObservable(emptySnapshot[models.Tenant](models.Tenants)),
		properties:  NewObservable(emptySnapshot[models.Property](models.Properties)),
		payments:    NewObservable(emptySnapshot[models.Payment](models.Payments)),
		occupancies: NewObservable(emptySnapshot[models.Occupancy](models.Occupancies)),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.base = g.base.WithField("client", id)
	g.log = g.base
	g.ctx, g.cancel = context.WithCancel(logger.ContextWithEntry(context.Background(), g.base))
	g.lastSeen = g.now()
	return g
}

func emptySnapshot[T any](collection models.Collection) Snapshot[T] {
	return Snapshot[T]{Collection: collection, Items: []T{}}
}

// ID returns the client id the gateway was created for
func (g *Gateway) ID() string {
	return g.id
}

// Now returns the gateway clock's current time
func (g *Gateway) Now() time.Time {
	return g.now()
}

// Touch records client activity
func (g *Gateway) Touch() {
	g.mu.Lock()
	g.lastSeen = g.now()
	g.mu.Unlock()
}

// LastSeen returns the time of the last client activity
func (g *Gateway) LastSeen() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastSeen
}

// Session returns the session observable
func (g *Gateway) Session() *Observable[SessionState] {
	return g.session
}

// Tenants returns the tenants observable
func (g *Gateway) Tenants() *Observable[Snapshot[models.Tenant]] {
	return g.tenants
}

// Properties returns the properties observable
func (g *Gateway) Properties() *Observable[Snapshot[models.Property]] {
	return g.properties
}

// Payments returns the payments observable
func (g *Gateway) Payments() *Observable[Snapshot[models.Payment]] {
	return g.payments
}

// Occupancies returns the occupancies observable. Reading it does not start the feed; use
// ObserveOccupancies or StartOccupancies.
func (g *Gateway) Occupancies() *Observable[Snapshot[models.Occupancy]] {
	return g.occupancies
}

// ObserveOccupancies starts the occupancy feed if needed and subscribes fn
func (g *Gateway) ObserveOccupancies(fn func(Snapshot[models.Occupancy])) *Subscription {
	sub := g.occupancies.Subscribe(fn)
	g.StartOccupancies()
	return sub
}

// StartOccupancies starts the occupancy feed when signed in
func (g *Gateway) StartOccupancies() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.identity != nil && !g.closed {
		g.startFeedLocked(models.Occupancies)
	}
}

// Observe subscribes fn to a collection by name, starting its feed if needed
func (g *Gateway) Observe(collection models.Collection, fn func(any)) (*Subscription, error) {
	switch collection {
	case models.Tenants:
		return g.tenants.Subscribe(func(s Snapshot[models.Tenant]) { fn(s) }), nil
	case models.Properties:
		return g.properties.Subscribe(func(s Snapshot[models.Property]) { fn(s) }), nil
	case models.Payments:
		return g.payments.Subscribe(func(s Snapshot[models.Payment]) { fn(s) }), nil
	case models.Occupancies:
		return g.ObserveOccupancies(func(s Snapshot[models.Occupancy]) { fn(s) }), nil
	}
	return nil, fmt.Errorf("unknown collection: %q", collection)
}

// Authenticate signs in with email and password
func (g *Gateway) Authenticate(ctx context.Context, email, password string) error {
	return g.signIn(ctx, email, password, g.auth.SignIn, MessageAuthFailed)
}

// Register creates an account and signs it in
func (g *Gateway) Register(ctx context.Context, email, password string) error {
	return g.signIn(ctx, email, password, g.auth.SignUp, MessageRegisterFailed)
}

type signInFunc func(ctx context.Context, email, password string) (*services.Identity, error)

func (g *Gateway) signIn(ctx context.Context, email, password string, call signInFunc, fallback string) error {
	email = strings.TrimSpace(email)

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrClosed
	}
	if status := g.session.Value().Status; status == Loading || status == Authenticated {
		g.mu.Unlock()
		return ErrSessionBusy
	}
	if email == "" || password == "" {
		g.session.Publish(SessionState{Status: Failed, Message: MessageMissingFields})
		g.mu.Unlock()
		return ErrMissingCredentials
	}
	g.generation++
	gen := g.generation
	g.session.Publish(SessionState{Status: Loading})
	g.mu.Unlock()

	identity, err := call(ctx, email, password)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || gen != g.generation {
		// signed out or closed while the request was in flight
		return ErrClosed
	}
	if err != nil || identity == nil {
		message := fallback
		if err != nil && strings.TrimSpace(err.Error()) != "" {
			message = err.Error()
		}
		g.log.WithError(err).Warn("sign in failed")
		g.session.Publish(SessionState{Status: Failed, Message: message})
		return fmt.Errorf("%w: %s", ErrAuthFailed, message)
	}

	g.authenticatedLocked(identity)
	return nil
}

// Resume restores a session from a token issued earlier. On return the session is either
// Authenticated, or Unauthenticated with empty collections.
func (g *Gateway) Resume(ctx context.Context, token string) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrClosed
	}
	if status := g.session.Value().Status; status == Loading || status == Authenticated {
		g.mu.Unlock()
		return ErrSessionBusy
	}
	g.generation++
	gen := g.generation
	g.mu.Unlock()

	var identity *services.Identity
	var err error
	if token != "" {
		identity, err = g.auth.Resume(ctx, token)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || gen != g.generation {
		return ErrClosed
	}
	if token == "" || err != nil || identity == nil {
		if err != nil {
			g.log.WithError(err).Debug("session not resumed")
		}
		g.signedOutLocked()
		return err
	}
	g.authenticatedLocked(identity)
	return nil
}

// SignOut stops every feed, empties the collections and returns to Unauthenticated
func (g *Gateway) SignOut() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generation++
	g.signedOutLocked()
}

// Token returns the token of the signed in user
func (g *Gateway) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.identity == nil {
		return ""
	}
	return g.identity.Token
}

// Close detaches every feed. A closed gateway keeps its last values.
func (g *Gateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	g.generation++
	g.stopFeedsLocked()
	g.cancel()
}

func (g *Gateway) authenticatedLocked(identity *services.Identity) {
	g.identity = identity
	g.log = g.base.WithField("user", identity.UserID)
	g.session.Publish(SessionState{Status: Authenticated, UserID: identity.UserID, Email: identity.Email})

	g.startFeedLocked(models.Tenants)
	g.startFeedLocked(models.Properties)
	g.startFeedLocked(models.Payments)
	if g.occupancies.HasSubscribers() {
		g.startFeedLocked(models.Occupancies)
	}
}

func (g *Gateway) signedOutLocked() {
	g.stopFeedsLocked()
	g.identity = nil
	g.log = g.base
	g.tenants.Publish(emptySnapshot[models.Tenant](models.Tenants))
	g.properties.Publish(emptySnapshot[models.Property](models.Properties))
	g.payments.Publish(emptySnapshot[models.Payment](models.Payments))
	g.occupancies.Publish(emptySnapshot[models.Occupancy](models.Occupancies))
	g.session.Publish(SessionState{Status: Unauthenticated})
}

func (g *Gateway) startFeedLocked(collection models.Collection) {
	if _, ok := g.feeds[collection]; ok {
		return
	}
	gen := g.generation
	userID := g.identity.UserID
	stop, err := g.store.Watch(g.ctx, userID, collection, func(s services.Snapshot, err error) {
		g.onSnapshot(gen, collection, s, err)
	})
	if err != nil {
		g.log.WithError(err).WithField("collection", collection).Warn("could not start feed")
		return
	}
	g.feeds[collection] = stop
}

func (g *Gateway) stopFeedsLocked() {
	for collection, stop := range g.feeds {
		stop()
		delete(g.feeds, collection)
	}
}

func (g *Gateway) onSnapshot(gen uint64, collection models.Collection, s services.Snapshot, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || gen != g.generation {
		return
	}
	if err != nil {
		g.log.WithError(err).WithField("collection", collection).Warn("feed read failed")
		return
	}

	log := g.log.WithField("collection", collection)
	switch collection {
	case models.Tenants:
		publishRows[models.Tenant](g.tenants, s, log)
	case models.Properties:
		publishRows[models.Property](g.properties, s, log)
	case models.Payments:
		publishRows[models.Payment](g.payments, s, log)
	case models.Occupancies:
		publishRows[models.Occupancy](g.occupancies, s, log)
	}
}

func publishRows[T any, PT records.Identified[T]](o *Observable[Snapshot[T]], s services.Snapshot, log *logrus.Entry) {
	o.Publish(Snapshot[T]{
		Collection: s.Collection,
		Version:    s.Version,
		Items:      records.DecodeAll[T, PT](s.Rows, log),
	})
}

func (g *Gateway) user() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return "", ErrClosed
	}
	if g.identity == nil || g.session.Value().Status != Authenticated {
		return "", ErrNotAuthenticated
	}
	return g.identity.UserID, nil
}

func (g *Gateway) warn(err error, op string) error {
	if err != nil {
		g.mu.Lock()
		log := g.log
		g.mu.Unlock()
		log.WithError(err).WithField("op", op).Warn("operation failed")
	}
	return err
}

func (g *Gateway) create(ctx context.Context, collection models.Collection, record services.Identifiable) error {
	userID, err := g.user()
	if err != nil {
		return err
	}
	_, _, err = g.store.Create(ctx, userID, collection, record)
	return g.warn(err, "add "+string(collection))
}

func (g *Gateway) remove(ctx context.Context, collection models.Collection, id string) error {
	userID, err := g.user()
	if err != nil {
		return err
	}
	_, err = g.store.Delete(ctx, userID, collection, id)
	return g.warn(err, "delete "+string(collection))
}

// AddTenant stores a new tenant and returns it with its identifier
func (g *Gateway) AddTenant(ctx context.Context, tenant models.Tenant) (models.Tenant, error) {
	err := g.create(ctx, models.Tenants, &tenant)
	return tenant, err
}

// DeleteTenant removes a tenant
func (g *Gateway) DeleteTenant(ctx context.Context, id string) error {
	return g.remove(ctx, models.Tenants, id)
}

// AddProperty stores a new property owned by the signed in user
func (g *Gateway) AddProperty(ctx context.Context, property models.Property) (models.Property, error) {
	userID, err := g.user()
	if err != nil {
		return property, err
	}
	property.UserID = userID
	err = g.create(ctx, models.Properties, &property)
	return property, err
}

// DeleteProperty removes a property
func (g *Gateway) DeleteProperty(ctx context.Context, id string) error {
	return g.remove(ctx, models.Properties, id)
}

// AddPayment records a payment. Payments cannot be deleted.
func (g *Gateway) AddPayment(ctx context.Context, payment models.Payment) (models.Payment, error) {
	err := g.create(ctx, models.Payments, &payment)
	return payment, err
}

// AddOccupancy assigns a tenant to a property
func (g *Gateway) AddOccupancy(ctx context.Context, occupancy models.Occupancy) (models.Occupancy, error) {
	err := g.create(ctx, models.Occupancies, &occupancy)
	return occupancy, err
}

// DeleteOccupancy removes an occupancy
func (g *Gateway) DeleteOccupancy(ctx context.Context, id string) error {
	return g.remove(ctx, models.Occupancies, id)
}

// GetProfile reads the user's profile
func (g *Gateway) GetProfile(ctx context.Context) (models.UserProfile, error) {
	userID, err := g.user()
	if err != nil {
		return models.UserProfile{}, err
	}
	profile, err := g.store.GetProfile(ctx, userID)
	return profile, g.warn(err, "get profile")
}

// SaveProfile upserts the user's profile
func (g *Gateway) SaveProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error) {
	userID, err := g.user()
	if err != nil {
		return models.UserProfile{}, err
	}
	saved, err := g.store.SaveProfile(ctx, userID, profile)
	return saved, g.warn(err, "save profile")
}
