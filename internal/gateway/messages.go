package gateway

import "encoding/json"

// Inbound event names.
const (
	EventAuthenticate    = "authenticate"
	EventJoinRoom        = "joinRoom"
	EventLeaveRoom       = "leaveRoom"
	EventToggleReady     = "toggleReady"
	EventStartGame       = "startGame"
	EventSendMessage     = "sendMessage"
	EventVote            = "vote"
	EventEliminate       = "eliminatePlayer"
	EventNextPhase       = "nextPhase"
	EventWebRTCOffer     = "webrtc-offer"
	EventWebRTCAnswer    = "webrtc-answer"
	EventWebRTCCandidate = "webrtc-ice-candidate"

	EventNewMessage = "newMessage"
)

// InboundMessage is the envelope for every client event.
type InboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Response is the per-request reply written back to the sending connection.
// Failures never propagate as anything but this shape.
type Response struct {
	Event   string      `json:"event"`
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func ok(event string, data interface{}) Response {
	return Response{Event: event, Success: true, Data: data}
}

func fail(event string, err error) Response {
	return Response{Event: event, Success: false, Error: err.Error()}
}

type AuthenticateData struct {
	Token string `json:"token"`
}

type RoomData struct {
	GameID uint `json:"gameId"`
}

type SendMessageData struct {
	GameID   uint   `json:"gameId"`
	Message  string `json:"message"`
	Username string `json:"username"`
}

type VoteData struct {
	GameID         uint `json:"gameId"`
	TargetPlayerID uint `json:"targetPlayerId"`
}

type EliminateData struct {
	GameID   uint `json:"gameId"`
	PlayerID uint `json:"playerId"`
}

// SignalData carries a webrtc relay. The payload is an opaque blob: the
// server authorizes and forwards it, never interprets it.
type SignalData struct {
	GameID       uint            `json:"gameId"`
	TargetUserID uint            `json:"targetUserId"`
	Offer        json.RawMessage `json:"offer,omitempty"`
	Answer       json.RawMessage `json:"answer,omitempty"`
	Candidate    json.RawMessage `json:"candidate,omitempty"`
}

// UserSummary is returned to a connection on successful authentication.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Level    int    `json:"level"`
	XP       int    `json:"xp"`
}

// ChatMessage is the broadcast shape of a sanitized chat message.
type ChatMessage struct {
	UserID    uint   `json:"userId"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// SignalPayload is the relayed webrtc payload, tagged with the sender.
type SignalPayload struct {
	Offer      json.RawMessage `json:"offer,omitempty"`
	Answer     json.RawMessage `json:"answer,omitempty"`
	Candidate  json.RawMessage `json:"candidate,omitempty"`
	FromUserID uint            `json:"fromUserId"`
}
