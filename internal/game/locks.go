package game

import "sync"

// gameLocks hands out one mutex per game id. Every compound read-modify-write
// on a game runs under its mutex, so no two concurrent mutations on the same
// game observe a stale intermediate state. Games are independent units of
// concurrency; there is no cross-game locking.
type gameLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newGameLocks() *gameLocks {
	return &gameLocks{locks: make(map[uint]*sync.Mutex)}
}

func (g *gameLocks) get(gameID uint) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()

	l, ok := g.locks[gameID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[gameID] = l
	}
	return l
}

func (g *gameLocks) release(gameID uint) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.locks, gameID)
}
