// Package session holds the client-process authentication state: who is
// logged in, as what role, and whether the boot-time credential restore is
// still in flight. It is the single authority the access policy and navigation
// chrome derive from.
package session

import (
	"errors"
	"sync"

	"synaphack/platform/internal/auth"
	"synaphack/platform/internal/notify"
)

var (
	// ErrSessionActive rejects login/register while an identity is present.
	// Role is fixed per session, so switching accounts requires a logout first.
	ErrSessionActive = errors.New("a session is already active")
)

// Identity is the authenticated principal. Absent when unauthenticated.
type Identity struct {
	ID    string
	Name  string
	Email string
	Role  auth.Role
}

// Snapshot is an immutable view of the store's state. Loading is true until
// the one-shot boot restore resolves; consumers must render a loading
// affordance rather than flashing logged-out content.
type Snapshot struct {
	Identity *Identity
	Loading  bool
}

func (s Snapshot) Authenticated() bool {
	return !s.Loading && s.Identity != nil
}

// Profile is the registration input. Role defaults to participant when empty.
type Profile struct {
	Email    string
	Name     string
	Password string
	Role     string
}

// Authenticator is the external auth backend collaborator.
type Authenticator interface {
	Login(email, password string) (Identity, error)
	Register(profile Profile) (Identity, error)
	// Restore resolves the persisted credential, if any. Called once at boot.
	Restore() (Identity, bool, error)
}

// Store is the process-wide session singleton. Construct one per process (or
// per test); never shared through package state. Every transition notifies
// subscribers synchronously, in registration order, before the mutating call
// returns, so navigation decisions never run against stale session data.
type Store struct {
	authn Authenticator
	bus   *notify.Bus

	mu      sync.Mutex
	ident   *Identity
	loading bool
	closed  bool
	nextSub int
	subs    []subscription
}

type subscription struct {
	key int
	fn  func(Snapshot)
}

func NewStore(authn Authenticator, bus *notify.Bus) *Store {
	return &Store{
		authn:   authn,
		bus:     bus,
		loading: true,
	}
}

// Current is a synchronous, non-blocking read.
func (s *Store) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers a listener for state transitions. The listener is NOT
// invoked with the current state; it only observes changes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	s.nextSub++
	key := s.nextSub
	s.subs = append(s.subs, subscription{key: key, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		for i, sub := range s.subs {
			if sub.key == key {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}
}

// Restore resolves the boot-time credential restore. If the store was closed
// while the restore was in flight, the resolution is a no-op.
func (s *Store) Restore() {
	ident, ok, err := s.authn.Restore()

	s.mu.Lock()
	if s.closed || !s.loading {
		s.mu.Unlock()
		return
	}
	s.loading = false
	if ok && err == nil {
		s.ident = &ident
	}
	snap, listeners := s.transitionLocked()
	s.mu.Unlock()

	emit(listeners, snap)
}

func (s *Store) Login(email, password string) error {
	s.mu.Lock()
	if s.ident != nil {
		s.mu.Unlock()
		return ErrSessionActive
	}
	s.mu.Unlock()

	ident, err := s.authn.Login(email, password)
	if err != nil {
		s.publishError("Login failed", loginFailureMessage(err))
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.ident = &ident
	s.loading = false
	snap, listeners := s.transitionLocked()
	s.mu.Unlock()

	emit(listeners, snap)
	s.publishSuccess("Welcome back", "Logged in as "+ident.Name)
	return nil
}

func (s *Store) Register(profile Profile) error {
	s.mu.Lock()
	if s.ident != nil {
		s.mu.Unlock()
		return ErrSessionActive
	}
	s.mu.Unlock()

	ident, err := s.authn.Register(profile)
	if err != nil {
		s.publishError("Registration failed", registerFailureMessage(err))
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.ident = &ident
	s.loading = false
	snap, listeners := s.transitionLocked()
	s.mu.Unlock()

	emit(listeners, snap)
	s.publishSuccess("Account created", "Registered as "+ident.Name)
	return nil
}

// Logout clears the identity. Always succeeds; calling it while already
// logged out changes nothing and notifies no one.
func (s *Store) Logout() {
	s.mu.Lock()
	if s.ident == nil {
		s.mu.Unlock()
		return
	}
	s.ident = nil
	snap, listeners := s.transitionLocked()
	s.mu.Unlock()

	emit(listeners, snap)
}

// Close detaches the store; a restore resolving afterwards is discarded.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.subs = nil
	s.mu.Unlock()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{Loading: s.loading}
	if s.ident != nil {
		ident := *s.ident
		snap.Identity = &ident
	}
	return snap
}

func (s *Store) transitionLocked() (Snapshot, []func(Snapshot)) {
	listeners := make([]func(Snapshot), 0, len(s.subs))
	for _, sub := range s.subs {
		listeners = append(listeners, sub.fn)
	}
	return s.snapshotLocked(), listeners
}

// emit runs outside the store mutex so a listener may call back into the
// store (or publish a notification) without deadlocking.
func emit(listeners []func(Snapshot), snap Snapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}

func (s *Store) publishSuccess(title, message string) {
	if s.bus != nil {
		s.bus.Publish(title, message, notify.KindSuccess)
	}
}

func (s *Store) publishError(title, message string) {
	if s.bus != nil {
		s.bus.Publish(title, message, notify.KindError)
	}
}

func loginFailureMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"
	default:
		return "Could not reach the sign-in service"
	}
}

func registerFailureMessage(err error) string {
	var vErr *auth.ValidationError
	switch {
	case errors.As(err, &vErr):
		return vErr.Error()
	case errors.Is(err, auth.ErrEmailTaken):
		return "That email is already registered"
	case errors.Is(err, auth.ErrWeakPassword):
		return "Password does not meet the policy"
	default:
		return "Could not reach the sign-up service"
	}
}
