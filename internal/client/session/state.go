// Package session holds the reactive authentication state consumed by the
// UI layer. The state is never mutated directly: every change goes through
// Store.Dispatch with one of the defined Action variants, so the set of legal
// transitions is closed.
package session

import (
	"sync"

	"github.com/nutrilog/nutrilog/internal/client/models"
)

// State is the single source of truth for the UI: which user is signed in,
// with which tokens, and whether a facade operation is in flight.
type State struct {
	User          *models.Profile
	Tokens        *models.Credentials
	Authenticated bool
	Loading       bool
}

// Action is a sealed tagged variant; the reducer in Store.Dispatch is the
// only place actions are interpreted.
type Action interface {
	isAction()
}

// SetLoading sets the loading flag, leaving other fields untouched.
type SetLoading struct{ Loading bool }

// SetUser replaces the user profile.
type SetUser struct{ User *models.Profile }

// SetTokens replaces the credential pair.
type SetTokens struct{ Tokens *models.Credentials }

// SetAuthenticated replaces the authenticated flag.
type SetAuthenticated struct{ Authenticated bool }

// ResetAuth returns the state to the logged-out default.
type ResetAuth struct{}

// Initialize replaces the entire state wholesale. Used once, at cold start.
type Initialize struct{ State State }

func (SetLoading) isAction()       {}
func (SetUser) isAction()          {}
func (SetTokens) isAction()        {}
func (SetAuthenticated) isAction() {}
func (ResetAuth) isAction()        {}
func (Initialize) isAction()       {}

// Initial is the state before the cold-start bootstrap has run.
func Initial() State {
	return State{Loading: true}
}

// LoggedOut is the state after ResetAuth.
func LoggedOut() State {
	return State{}
}

// Store serializes dispatches and fans the resulting snapshots out to
// subscribers.
type Store struct {
	mu    sync.Mutex
	state State
	subs  []chan State
}

func NewStore() *Store {
	return &Store{state: Initial()}
}

// State returns a snapshot of the current state. The snapshot is a value
// copy; User and Tokens pointers are shared and must be treated as
// read-only by consumers.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies an action. Actions are reduced strictly in the order
// Dispatch is called, and snapshots reach subscribers in that same order:
// the fan-out happens under the store lock, so a concurrent dispatch cannot
// overwrite a newer snapshot with an older one. The sends never block
// (capacity-1 channels, drained before resending), so holding the lock here
// cannot deadlock.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = reduce(s.state, action)
	state := s.state

	for _, ch := range s.subs {
		// Conflated delivery: a lagging subscriber sees the latest state,
		// never a stale one.
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}

// Subscribe returns a channel that receives state snapshots after each
// dispatch. Delivery is conflated to the most recent state, which is all a
// renderer needs; intermediate states may be skipped while the consumer
// lags.
func (s *Store) Subscribe() <-chan State {
	ch := make(chan State, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func reduce(state State, action Action) State {
	switch a := action.(type) {
	case SetLoading:
		state.Loading = a.Loading
	case SetUser:
		state.User = a.User
	case SetTokens:
		state.Tokens = a.Tokens
	case SetAuthenticated:
		state.Authenticated = a.Authenticated
	case ResetAuth:
		state = LoggedOut()
	case Initialize:
		state = a.State
	}
	return state
}
