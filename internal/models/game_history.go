package models

import "gorm.io/gorm"

// GameHistory is the write-once record of one player's outcome in one
// finished game.
type GameHistory struct {
	gorm.Model
	UserID          uint `gorm:"not null;index"`
	GameID          uint `gorm:"not null;index"`
	Role            Role `gorm:"size:20;not null"`
	Won             bool `gorm:"not null"`
	XPEarned        int  `gorm:"not null"`
	DurationMinutes int  `gorm:"not null"`

	User User `gorm:"foreignKey:UserID"`
}
