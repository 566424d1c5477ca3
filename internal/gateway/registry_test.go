package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_BindResolve(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve("conn-a")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	require.NoError(t, r.Bind("conn-a", 7))

	userID, err := r.Resolve("conn-a")
	require.NoError(t, err)
	assert.EqualValues(t, 7, userID)

	connID, ok := r.ConnOfUser(7)
	require.True(t, ok)
	assert.Equal(t, "conn-a", connID)
}

func TestRegistry_SecondConnectionRejected(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Bind("conn-a", 7))

	err := r.Bind("conn-b", 7)
	assert.ErrorIs(t, err, ErrAlreadyConnected)

	// The original binding is untouched.
	connID, ok := r.ConnOfUser(7)
	require.True(t, ok)
	assert.Equal(t, "conn-a", connID)

	// Re-binding the same connection is a no-op, not a conflict.
	assert.NoError(t, r.Bind("conn-a", 7))
}

func TestRegistry_RebindToDifferentUserRejected(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Bind("conn-1", 1))

	err := r.Bind("conn-1", 2)
	assert.ErrorIs(t, err, ErrAlreadyAuthenticated)

	// User 1 keeps their binding and user 2 never acquires a stale one.
	connID, ok := r.ConnOfUser(1)
	require.True(t, ok)
	assert.Equal(t, "conn-1", connID)
	_, ok = r.ConnOfUser(2)
	assert.False(t, ok)

	// After the connection goes away, user 1 can reconnect elsewhere.
	r.Unbind("conn-1")
	assert.NoError(t, r.Bind("conn-2", 1))
	assert.NoError(t, r.Bind("conn-3", 2))
}

func TestRegistry_SubscribeReplacesPrior(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Bind("conn-a", 7))

	_, ok := r.GameOf("conn-a")
	assert.False(t, ok)

	r.Subscribe("conn-a", 1)
	gameID, ok := r.GameOf("conn-a")
	require.True(t, ok)
	assert.EqualValues(t, 1, gameID)

	r.Subscribe("conn-a", 2)
	gameID, ok = r.GameOf("conn-a")
	require.True(t, ok)
	assert.EqualValues(t, 2, gameID, "a connection follows one game at a time")

	r.Unsubscribe("conn-a")
	_, ok = r.GameOf("conn-a")
	assert.False(t, ok)
}

func TestRegistry_UnbindIdempotent(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Bind("conn-a", 7))
	r.Subscribe("conn-a", 3)

	r.Unbind("conn-a")

	_, err := r.Resolve("conn-a")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, ok := r.ConnOfUser(7)
	assert.False(t, ok)
	_, ok = r.GameOf("conn-a")
	assert.False(t, ok)

	// Frees the slot for a reconnect.
	assert.NoError(t, r.Bind("conn-b", 7))

	r.Unbind("conn-a")
	r.Unbind("never-bound")
}
