package hub

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Client is the delivery channel for one connection. The gateway owns the
// channel's lifecycle; the hub only ever sends on it.
type Client chan []byte

// Hub manages the fan-out groups: which clients listen to which game.
type Hub struct {
	games map[uint]map[Client]bool
	mu    sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		games: make(map[uint]map[Client]bool),
	}
}

// Subscribe adds a client to a game's fan-out group.
func (h *Hub) Subscribe(gameID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.games[gameID]; !ok {
		h.games[gameID] = make(map[Client]bool)
	}
	h.games[gameID][client] = true
}

// Unsubscribe removes a client from a game's group. The client channel is
// left open; closing it is the gateway's job.
func (h *Hub) Unsubscribe(gameID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.games[gameID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.games, gameID)
		}
	}
}

// Broadcast sends an event to every client subscribed to the game. Callers
// serialize broadcasts per game, so events land in every client's queue in
// the order they were produced.
func (h *Hub) Broadcast(gameID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.games[gameID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("event", event.Event).Msg("hub: marshal failed")
		return
	}

	for client := range clients {
		// Non-blocking send so a slow client cannot stall the whole game.
		select {
		case client <- messageBytes:
		default:
		}
	}
}
