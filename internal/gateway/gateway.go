package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"mafianight/backend/internal/game"
	"mafianight/backend/internal/hub"
	"mafianight/backend/internal/models"
	"mafianight/backend/pkg/jwt"
)

var (
	ErrInvalidMessage     = errors.New("invalid message")
	ErrInvalidToken       = errors.New("authentication failed")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrMessageRequired    = errors.New("message is required")
	ErrPayloadRequired    = errors.New("signal payload is required")
	ErrTargetNotConnected = errors.New("target user not connected")
	ErrTargetNotInRoom    = errors.New("target user not in same game room")
	ErrRateLimited        = errors.New("signaling rate limit exceeded")
)

// Gateway is the real-time message dispatcher. It authenticates connections,
// routes inbound events to the game service, and fans the service's
// notifications back out to subscribers. It implements game.Notifier.
type Gateway struct {
	db       *gorm.DB
	svc      *game.Service
	registry *Registry
	hub      *hub.Hub
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*Client
}

func New(db *gorm.DB, svc *game.Service) *Gateway {
	return &Gateway{
		db:       db,
		svc:      svc,
		registry: NewRegistry(),
		hub:      hub.NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect cross-origin; auth happens in-band.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*Client),
	}
}

// Broadcast implements game.Notifier.
func (g *Gateway) Broadcast(gameID uint, event string, payload interface{}) {
	g.hub.Broadcast(gameID, hub.Event{Event: event, Data: payload})
}

// Unicast implements game.Notifier. Events for users without a live
// connection are dropped.
func (g *Gateway) Unicast(userID uint, event string, payload interface{}) {
	connID, ok := g.registry.ConnOfUser(userID)
	if !ok {
		return
	}
	g.mu.Lock()
	client, ok := g.clients[connID]
	g.mu.Unlock()
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(hub.Event{Event: event, Data: payload})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("gateway: marshal failed")
		return
	}
	client.enqueue(messageBytes)
}

// HandleWS upgrades the HTTP request and runs the connection's read loop
// until the client goes away.
func (g *Gateway) HandleWS(c *gin.Context) {
	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("gateway: upgrade failed")
		return
	}

	client := newClient(conn)
	g.mu.Lock()
	g.clients[client.id] = client
	g.mu.Unlock()

	go client.writePump()
	g.readLoop(client)
}

func (g *Gateway) readLoop(client *Client) {
	defer g.disconnect(client)

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg InboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			g.respond(client, fail("error", ErrInvalidMessage))
			continue
		}

		resp, terminate := g.dispatch(client, msg)
		g.respond(client, resp)
		if terminate {
			return
		}
	}
}

func (g *Gateway) respond(client *Client, resp Response) {
	messageBytes, err := json.Marshal(resp)
	if err != nil {
		log.Error().Err(err).Str("event", resp.Event).Msg("gateway: marshal failed")
		return
	}
	client.enqueue(messageBytes)
}

// disconnect is the best-effort cleanup for a dropped connection: leave the
// game on the user's behalf, tell the room, and drop every mapping. Failures
// are logged, not retried.
func (g *Gateway) disconnect(client *Client) {
	if gameID, ok := g.registry.GameOf(client.id); ok {
		g.hub.Unsubscribe(gameID, client.send)

		if userID, err := g.registry.Resolve(client.id); err == nil {
			if err := g.svc.LeaveGame(gameID, userID); err != nil {
				log.Debug().Err(err).Uint("game_id", gameID).Uint("user_id", userID).
					Msg("gateway: disconnect cleanup")
				// The player row stays (running game); still tell the room
				// the connection is gone.
				g.Broadcast(gameID, game.EventPlayerLeft, game.PlayerLeftPayload{UserID: userID})
			}
		}
	}

	g.registry.Unbind(client.id)

	g.mu.Lock()
	delete(g.clients, client.id)
	g.mu.Unlock()
	client.closeSend()
}

// dispatch routes one inbound event. The second return value forces the
// connection closed after the response is sent; only a failed authenticate
// sets it.
func (g *Gateway) dispatch(client *Client, msg InboundMessage) (Response, bool) {
	switch msg.Event {
	case EventAuthenticate:
		return g.handleAuthenticate(client, msg)
	case EventJoinRoom:
		return g.handleJoinRoom(client, msg), false
	case EventLeaveRoom:
		return g.handleLeaveRoom(client, msg), false
	case EventToggleReady:
		return g.handleToggleReady(client, msg), false
	case EventStartGame:
		return g.handleStartGame(client, msg), false
	case EventSendMessage:
		return g.handleSendMessage(client, msg), false
	case EventVote:
		return g.handleVote(client, msg), false
	case EventEliminate:
		return g.handleEliminate(client, msg), false
	case EventNextPhase:
		return g.handleNextPhase(client, msg), false
	case EventWebRTCOffer, EventWebRTCAnswer, EventWebRTCCandidate:
		return g.handleSignal(client, msg), false
	default:
		return fail(msg.Event, ErrInvalidMessage), false
	}
}

func (g *Gateway) requireMembership(client *Client, gameID uint) error {
	subscribed, ok := g.registry.GameOf(client.id)
	if !ok || subscribed != gameID {
		return ErrNotInRoom
	}
	return nil
}

func (g *Gateway) handleAuthenticate(client *Client, msg InboundMessage) (Response, bool) {
	var data AuthenticateData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.Token == "" {
		return fail(msg.Event, ErrInvalidToken), true
	}

	userID, err := jwt.ParseToken(data.Token)
	if err != nil {
		log.Warn().Err(err).Str("conn_id", client.id).Msg("gateway: authentication failed")
		return fail(msg.Event, ErrInvalidToken), true
	}

	var user models.User
	if err := g.db.First(&user, userID).Error; err != nil {
		return fail(msg.Event, ErrInvalidToken), true
	}
	if !user.IsActive {
		return fail(msg.Event, ErrAccountDeactivated), true
	}

	if err := g.registry.Bind(client.id, user.ID); err != nil {
		log.Warn().Uint("user_id", user.ID).Msg("gateway: duplicate connection attempt")
		return fail(msg.Event, err), true
	}

	return ok(msg.Event, UserSummary{
		ID:       user.ID,
		Username: user.Username,
		Level:    user.Level,
		XP:       user.XP,
	}), false
}

func (g *Gateway) handleJoinRoom(client *Client, msg InboundMessage) Response {
	userID, err := g.registry.Resolve(client.id)
	if err != nil {
		return fail(msg.Event, err)
	}

	var data RoomData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return fail(msg.Event, ErrInvalidMessage)
	}

	gm, err := g.svc.GetGame(data.GameID)
	if err != nil {
		return fail(msg.Event, err)
	}

	// A connection follows one game at a time.
	if prev, ok := g.registry.GameOf(client.id); ok && prev != data.GameID {
		g.hub.Unsubscribe(prev, client.send)
	}
	g.registry.Subscribe(client.id, data.GameID)
	g.hub.Subscribe(data.GameID, client.send)

	view := game.NewGameView(gm)
	g.Broadcast(data.GameID, game.EventPlayerJoined, game.PlayerJoinedPayload{
		Game:   view,
		UserID: userID,
	})

	return ok(msg.Event, view)
}

func (g *Gateway) handleLeaveRoom(client *Client, msg InboundMessage) Response {
	userID, err := g.registry.Resolve(client.id)
	if err != nil {
		return fail(msg.Event, err)
	}

	var data RoomData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return fail(msg.Event, ErrInvalidMessage)
	}
	if err := g.requireMembership(client, data.GameID); err != nil {
		return fail(msg.Event, err)
	}

	if err := g.svc.LeaveGame(data.GameID, userID); err != nil {
		return fail(msg.Event, err)
	}

	g.hub.Unsubscribe(data.GameID, client.send)
	g.registry.Unsubscribe(client.id)

	return ok(msg.Event, nil)
}

func (g *Gateway) handleToggleReady(client *Client, msg InboundMessage) Response {
	userID, err := g.registry.Resolve(client.id)
	if err != nil {
		return fail(msg.Event, err)
	}

	var data RoomData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return fail(msg.Event, ErrInvalidMessage)
	}
	if err := g.requireMembership(client, data.GameID); err != nil {
		return fail(msg.Event, err)
	}

	isReady, err := g.svc.ToggleReady(data.GameID, userID)
	if err != nil {
		return fail(msg.Event, err)
	}

	return ok(msg.Event, gin.H{"isReady": isReady})
}

func (g *Gateway) handleStartGame(client *Client, msg InboundMessage) Response {
	userID, err := g.registry.Resolve(client.id)
	if err != nil {
		return fail(msg.Event, err)
	}

	var data RoomData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return fail(msg.Event, ErrInvalidMessage)
	}

	gm, err := g.svc.StartGame(data.GameID, userID)
	if err != nil {
		return fail(msg.Event, err)
	}

	return ok(msg.Event, game.NewGameView(gm))
}

func (g *Gateway) handleSendMessage(client *Client, msg InboundMessage) Response {
	userID, err := g.registry.Resolve(client.id)
	if err != nil {
		return fail(msg.Event, err)
	}

	var data SendMessageData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return fail(msg.Event, ErrInvalidMessage)
	}
	if err := g.requireMembership(client, data.GameID); err != nil {
		return fail(msg.Event, err)
	}

	message := SanitizeMessage(data.Message)
	if message == "" {
		return fail(msg.Event, ErrMessageRequired)
	}

	// Chat is a pure pass-through; nothing is persisted.
	g.Broadcast(data.GameID, EventNewMessage, ChatMessage{
		UserID:    userID,
		Username:  SanitizeUsername(data.Username),
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	return ok(msg.Event, nil)
}

func (g *Gateway) handleVote(client *Client, msg InboundMessage) Response {
	userID, err := g.registry.Resolve(client.id)
	if err != nil {
		return fail(msg.Event, err)
	}

	var data VoteData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return fail(msg.Event, ErrInvalidMessage)
	}

	target, err := g.svc.Vote(data.GameID, userID, data.TargetPlayerID)
	if err != nil {
		return fail(msg.Event, err)
	}

	return ok(msg.Event, gin.H{"targetId": target.ID, "votes": target.VotesReceived})
}

func (g *Gateway) handleEliminate(client *Client, msg InboundMessage) Response {
	userID, err := g.registry.Resolve(client.id)
	if err != nil {
		return fail(msg.Event, err)
	}

	var data EliminateData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return fail(msg.Event, ErrInvalidMessage)
	}

	winner, gm, err := g.svc.Eliminate(data.GameID, userID, data.PlayerID)
	if err != nil {
		return fail(msg.Event, err)
	}

	return ok(msg.Event, gin.H{"winner": winner, "game": game.NewGameView(gm)})
}

func (g *Gateway) handleNextPhase(client *Client, msg InboundMessage) Response {
	userID, err := g.registry.Resolve(client.id)
	if err != nil {
		return fail(msg.Event, err)
	}

	var data RoomData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return fail(msg.Event, ErrInvalidMessage)
	}

	gm, err := g.svc.AdvancePhase(data.GameID, userID)
	if err != nil {
		return fail(msg.Event, err)
	}

	return ok(msg.Event, gin.H{"phase": gm.Phase, "dayNumber": gm.DayNumber})
}

// handleSignal relays a webrtc offer/answer/candidate to one target
// connection in the same game. The payload is never inspected.
func (g *Gateway) handleSignal(client *Client, msg InboundMessage) Response {
	userID, err := g.registry.Resolve(client.id)
	if err != nil {
		return fail(msg.Event, err)
	}

	var data SignalData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return fail(msg.Event, ErrInvalidMessage)
	}
	if err := g.requireMembership(client, data.GameID); err != nil {
		return fail(msg.Event, err)
	}

	payload := SignalPayload{FromUserID: userID}
	minInterval := offerInterval
	switch msg.Event {
	case EventWebRTCOffer:
		payload.Offer = data.Offer
	case EventWebRTCAnswer:
		payload.Answer = data.Answer
	case EventWebRTCCandidate:
		payload.Candidate = data.Candidate
		minInterval = candidateInterval
	}
	if len(payload.Offer) == 0 && len(payload.Answer) == 0 && len(payload.Candidate) == 0 {
		return fail(msg.Event, ErrPayloadRequired)
	}

	targetConnID, connected := g.registry.ConnOfUser(data.TargetUserID)
	if !connected {
		return fail(msg.Event, ErrTargetNotConnected)
	}
	if targetGame, subscribed := g.registry.GameOf(targetConnID); !subscribed || targetGame != data.GameID {
		return fail(msg.Event, ErrTargetNotInRoom)
	}

	if !client.allowSignal(minInterval) {
		return fail(msg.Event, ErrRateLimited)
	}

	g.Unicast(data.TargetUserID, msg.Event, payload)
	return ok(msg.Event, nil)
}
