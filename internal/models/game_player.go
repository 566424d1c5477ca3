package models

import "gorm.io/gorm"

// Role is a player's secret faction assignment. The set is closed; both role
// assignment and win evaluation switch over it exhaustively.
type Role string

const (
	RoleMafia     Role = "mafia"
	RoleCitizen   Role = "citizen"
	RoleDetective Role = "detective"
	RoleDoctor    Role = "doctor"
	RoleSniper    Role = "sniper"
)

// GamePlayer is a user's membership row within one game. A user may hold at
// most one row per game.
type GamePlayer struct {
	gorm.Model
	GameID uint `gorm:"not null;uniqueIndex:idx_game_user"`
	UserID uint `gorm:"not null;uniqueIndex:idx_game_user"`

	Role          Role `gorm:"size:20"` // unset until the game starts
	IsAlive       bool `gorm:"not null;default:true"`
	VotesReceived int  `gorm:"not null;default:0"`
	IsReady       bool `gorm:"not null;default:false"`
	HasVoted      bool `gorm:"not null;default:false"`

	Game Game `gorm:"foreignKey:GameID"`
	User User `gorm:"foreignKey:UserID"`
}
