package gateway

import (
	"errors"
	"sync"
)

var (
	ErrNotAuthenticated     = errors.New("authentication required")
	ErrAlreadyConnected     = errors.New("user already connected")
	ErrAlreadyAuthenticated = errors.New("connection already authenticated")
	ErrNotInRoom            = errors.New("not in the specified game room")
)

// Registry is the single source of truth for which connection belongs to
// which user and which game it is listening to. All three maps mutate under
// one mutex so no handler ever observes a partial update.
type Registry struct {
	mu    sync.Mutex
	users map[string]uint   // connection id -> user id
	conns map[uint]string   // user id -> connection id
	games map[string]uint   // connection id -> subscribed game id
}

func NewRegistry() *Registry {
	return &Registry{
		users: make(map[string]uint),
		conns: make(map[uint]string),
		games: make(map[string]uint),
	}
}

// Bind registers the connection as the user's live connection. A user holds
// at most one connection system-wide, and a connection binds at most one user
// for its lifetime; rebinding would orphan the first user's reverse mapping
// and lock them out until restart.
func (r *Registry) Bind(connID string, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if bound, ok := r.users[connID]; ok && bound != userID {
		return ErrAlreadyAuthenticated
	}
	if existing, ok := r.conns[userID]; ok && existing != connID {
		return ErrAlreadyConnected
	}

	r.users[connID] = userID
	r.conns[userID] = connID
	return nil
}

// Unbind drops every mapping for the connection. Idempotent.
func (r *Registry) Unbind(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if userID, ok := r.users[connID]; ok {
		delete(r.conns, userID)
	}
	delete(r.users, connID)
	delete(r.games, connID)
}

// Resolve returns the user bound to the connection.
func (r *Registry) Resolve(connID string) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.users[connID]
	if !ok {
		return 0, ErrNotAuthenticated
	}
	return userID, nil
}

// Subscribe records the game the connection listens to, replacing any prior
// subscription. A connection follows at most one game at a time.
func (r *Registry) Subscribe(connID string, gameID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[connID] = gameID
}

// Unsubscribe clears the connection's game subscription.
func (r *Registry) Unsubscribe(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, connID)
}

// GameOf returns the game the connection is subscribed to.
func (r *Registry) GameOf(connID string) (uint, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	gameID, ok := r.games[connID]
	return gameID, ok
}

// ConnOfUser returns the live connection id for the user.
func (r *Registry) ConnOfUser(userID uint) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	connID, ok := r.conns[userID]
	return connID, ok
}
