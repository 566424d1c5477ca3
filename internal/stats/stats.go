package stats

import (
	"errors"

	"mafianight/backend/internal/models"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// Service maintains per-user aggregate statistics. It is invoked once per
// player when a game concludes, inside the caller's transaction.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// ApplyResult records one finished game for the user: game and win/loss
// counters, earned xp, and a level recompute. Levels only ever go up.
func (s *Service) ApplyResult(tx *gorm.DB, userID uint, won bool, xpEarned int) error {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	user.TotalGames++
	user.XP += xpEarned
	if won {
		user.Wins++
	} else {
		user.Losses++
	}

	if newLevel := user.XP/1000 + 1; newLevel > user.Level {
		user.Level = newLevel
	}

	return tx.Model(&user).Updates(map[string]interface{}{
		"total_games": user.TotalGames,
		"xp":          user.XP,
		"wins":        user.Wins,
		"losses":      user.Losses,
		"level":       user.Level,
	}).Error
}
