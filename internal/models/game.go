package models

import "gorm.io/gorm"

type GameStatus string

const (
	StatusWaiting    GameStatus = "waiting"
	StatusInProgress GameStatus = "in_progress"
	StatusFinished   GameStatus = "finished"
)

type GameMode string

const (
	ModeSimple   GameMode = "simple"
	ModeComplete GameMode = "complete"
	ModeCustom   GameMode = "custom"
)

type GamePhase string

const (
	PhaseLobby  GamePhase = "lobby"
	PhaseDay    GamePhase = "day"
	PhaseNight  GamePhase = "night"
	PhaseVoting GamePhase = "voting"
	PhaseResult GamePhase = "result"
)

type Winner string

const (
	WinnerNone    Winner = ""
	WinnerMafia   Winner = "mafia"
	WinnerCitizen Winner = "citizen"
)

// RoleCounts describes a custom role distribution for a game.
type RoleCounts struct {
	Mafia     int `json:"mafia"`
	Detective int `json:"detective"`
	Doctor    int `json:"doctor"`
	Sniper    int `json:"sniper"`
	Citizen   int `json:"citizen"`
}

// Total returns the number of role tokens the distribution produces.
func (rc RoleCounts) Total() int {
	return rc.Mafia + rc.Detective + rc.Doctor + rc.Sniper + rc.Citizen
}

// Game represents one session of the game (a room).
// CurrentPlayers is denormalized and must always equal the number of
// GamePlayer rows for the game.
type Game struct {
	gorm.Model
	RoomName       string      `gorm:"size:255;not null"`
	MaxPlayers     int         `gorm:"not null"`
	CurrentPlayers int         `gorm:"not null;default:0"`
	GameMode       GameMode    `gorm:"size:20;not null;default:'simple'"`
	Status         GameStatus  `gorm:"size:20;not null;default:'waiting';index"`
	Phase          GamePhase   `gorm:"size:20;not null;default:'lobby'"`
	CustomRoles    *RoleCounts `gorm:"serializer:json"`
	DayNumber      int         `gorm:"not null;default:1"`
	Winner         Winner      `gorm:"size:20"`
	CreatedBy      uint        `gorm:"not null;index"`

	Creator User         `gorm:"foreignKey:CreatedBy"`
	Players []GamePlayer `gorm:"foreignKey:GameID"`
}
