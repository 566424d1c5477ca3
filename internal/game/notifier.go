package game

import "mafianight/backend/internal/models"

// Event names pushed to connected clients.
const (
	EventPlayerJoined       = "playerJoined"
	EventPlayerLeft         = "playerLeft"
	EventPlayerReadyChanged = "playerReadyChanged"
	EventGameStarted        = "gameStarted"
	EventRoleAssigned       = "roleAssigned"
	EventVoteReceived       = "voteReceived"
	EventPlayerEliminated   = "playerEliminated"
	EventGameEnded          = "gameEnded"
	EventPhaseChanged       = "phaseChanged"
)

// Notifier delivers real-time events to connected clients. The service calls
// it while still holding the per-game lock, so events for one game reach the
// fan-out in the same order the mutations were committed.
type Notifier interface {
	// Broadcast sends an event to every connection subscribed to the game.
	Broadcast(gameID uint, event string, payload interface{})
	// Unicast sends an event to the single connection bound to the user, if
	// any. Role reveals use this path only; roles are never broadcast.
	Unicast(userID uint, event string, payload interface{})
}

// NopNotifier drops all events. Used when no gateway is attached.
type NopNotifier struct{}

func (NopNotifier) Broadcast(uint, string, interface{}) {}
func (NopNotifier) Unicast(uint, string, interface{})   {}

type PlayerJoinedPayload struct {
	Game   *GameView `json:"game"`
	UserID uint      `json:"userId"`
}

type PlayerLeftPayload struct {
	UserID uint `json:"userId"`
}

type ReadyChangedPayload struct {
	UserID  uint `json:"userId"`
	IsReady bool `json:"isReady"`
}

type GameStartedPayload struct {
	Game *GameView `json:"game"`
}

type RoleAssignedPayload struct {
	Role models.Role `json:"role"`
}

type VoteReceivedPayload struct {
	VoterID  uint `json:"voterId"`
	TargetID uint `json:"targetId"`
	Votes    int  `json:"votes"`
}

type PlayerEliminatedPayload struct {
	PlayerID uint `json:"playerId"`
}

type GameEndedPayload struct {
	Winner models.Winner `json:"winner"`
	Game   *GameView     `json:"game"`
}

type PhaseChangedPayload struct {
	Phase     models.GamePhase `json:"phase"`
	DayNumber int              `json:"dayNumber"`
}
