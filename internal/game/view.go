package game

import "mafianight/backend/internal/models"

// PlayerView is the public projection of a game player. Roles are deliberately
// absent: a player's role is revealed only to its owner, over a unicast.
type PlayerView struct {
	ID            uint   `json:"id"`
	UserID        uint   `json:"user_id"`
	Username      string `json:"username"`
	IsAlive       bool   `json:"is_alive"`
	IsReady       bool   `json:"is_ready"`
	VotesReceived int    `json:"votes_received"`
}

// GameView is the public projection of a game, shared by the HTTP responses
// and the websocket broadcasts.
type GameView struct {
	ID             uint              `json:"id"`
	RoomName       string            `json:"room_name"`
	MaxPlayers     int               `json:"max_players"`
	CurrentPlayers int               `json:"current_players"`
	GameMode       models.GameMode   `json:"game_mode"`
	Status         models.GameStatus `json:"status"`
	Phase          models.GamePhase  `json:"phase"`
	DayNumber      int               `json:"day_number"`
	Winner         models.Winner     `json:"winner,omitempty"`
	CreatedBy      uint              `json:"created_by"`
	Players        []PlayerView      `json:"players"`
}

// NewGameView builds the public projection from a game with preloaded players.
func NewGameView(g *models.Game) *GameView {
	players := make([]PlayerView, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, PlayerView{
			ID:            p.ID,
			UserID:        p.UserID,
			Username:      p.User.Username,
			IsAlive:       p.IsAlive,
			IsReady:       p.IsReady,
			VotesReceived: p.VotesReceived,
		})
	}

	return &GameView{
		ID:             g.ID,
		RoomName:       g.RoomName,
		MaxPlayers:     g.MaxPlayers,
		CurrentPlayers: g.CurrentPlayers,
		GameMode:       g.GameMode,
		Status:         g.Status,
		Phase:          g.Phase,
		DayNumber:      g.DayNumber,
		Winner:         g.Winner,
		CreatedBy:      g.CreatedBy,
		Players:        players,
	}
}
