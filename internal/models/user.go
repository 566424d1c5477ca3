package models

import "gorm.io/gorm"

// User represents a registered player account with its aggregate stats.
type User struct {
	gorm.Model
	Username     string `gorm:"size:50;unique;not null;index"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`

	Level      int  `gorm:"not null;default:1"`
	XP         int  `gorm:"not null;default:0"`
	TotalGames int  `gorm:"not null;default:0"`
	Wins       int  `gorm:"not null;default:0"`
	Losses     int  `gorm:"not null;default:0"`
	IsActive   bool `gorm:"not null;default:true"`

	Players []GamePlayer  `gorm:"foreignKey:UserID"`
	History []GameHistory `gorm:"foreignKey:UserID"`
}
