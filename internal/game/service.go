package game

import (
	"errors"
	"time"

	"mafianight/backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StatsUpdater is the collaborator that owns aggregate user statistics. It is
// invoked once per player when a game concludes, inside the finalization
// transaction.
type StatsUpdater interface {
	ApplyResult(tx *gorm.DB, userID uint, won bool, xpEarned int) error
}

// Service coordinates all game mutations. Every compound read-modify-write
// runs under the game's mutex and a database transaction, and notifications
// are emitted before the mutex is released so subscribers observe events in
// commit order.
type Service struct {
	db       *gorm.DB
	stats    StatsUpdater
	notifier Notifier
	locks    *gameLocks
}

// NewService creates a game service. A nil notifier drops all events.
func NewService(db *gorm.DB, stats StatsUpdater, notifier Notifier) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{
		db:       db,
		stats:    stats,
		notifier: notifier,
		locks:    newGameLocks(),
	}
}

// SetNotifier attaches the real-time notifier. Called once during wiring,
// before any traffic, to break the service/gateway construction cycle.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) withGameLock(gameID uint, fn func() error) error {
	l := s.locks.get(gameID)
	l.Lock()
	defer l.Unlock()
	return fn()
}

// CreateGameInput carries the parameters for a new game room.
type CreateGameInput struct {
	RoomName    string
	MaxPlayers  int
	GameMode    models.GameMode
	CustomRoles *models.RoleCounts
}

// CreateGame creates a waiting game room. The creator is not enrolled as a
// player; they run the game and may join like anyone else.
func (s *Service) CreateGame(creatorID uint, in CreateGameInput) (*models.Game, error) {
	if in.MaxPlayers < 4 || in.MaxPlayers > 20 {
		return nil, ErrInvalidCapacity
	}
	if in.GameMode == models.ModeCustom && in.CustomRoles == nil {
		return nil, ErrCustomRolesNeeded
	}

	g := models.Game{
		RoomName:    in.RoomName,
		MaxPlayers:  in.MaxPlayers,
		GameMode:    in.GameMode,
		CustomRoles: in.CustomRoles,
		Status:      models.StatusWaiting,
		Phase:       models.PhaseLobby,
		DayNumber:   1,
		CreatedBy:   creatorID,
	}
	if err := s.db.Create(&g).Error; err != nil {
		return nil, err
	}

	return &g, nil
}

// GetGame loads a game with its players, ordered by join time.
func (s *Service) GetGame(gameID uint) (*models.Game, error) {
	return s.getGame(s.db, gameID)
}

func (s *Service) getGame(db *gorm.DB, gameID uint) (*models.Game, error) {
	var g models.Game
	err := db.
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("game_players.id") }).
		Preload("Players.User").
		First(&g, gameID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListWaitingGames returns joinable rooms, newest first.
func (s *Service) ListWaitingGames() ([]models.Game, error) {
	var games []models.Game
	err := s.db.
		Where("status = ?", models.StatusWaiting).
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("game_players.id") }).
		Preload("Players.User").
		Order("created_at DESC").
		Find(&games).Error
	return games, err
}

// JoinGame adds the user to a waiting game and keeps the denormalized player
// count in step with the player rows.
func (s *Service) JoinGame(gameID, userID uint) (*models.Game, error) {
	var joined *models.Game

	err := s.withGameLock(gameID, func() error {
		g, err := s.getGame(s.db, gameID)
		if err != nil {
			return err
		}
		if g.Status != models.StatusWaiting {
			return ErrGameStarted
		}
		if g.CurrentPlayers >= g.MaxPlayers {
			return ErrGameFull
		}

		var existing models.GamePlayer
		if err := s.db.Where("game_id = ? AND user_id = ?", gameID, userID).First(&existing).Error; err == nil {
			return ErrAlreadyJoined
		}

		tx := s.db.Begin()
		if err := tx.Create(&models.GamePlayer{GameID: gameID, UserID: userID}).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Model(&models.Game{}).Where("id = ?", gameID).
			Update("current_players", gorm.Expr("current_players + 1")).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit().Error; err != nil {
			return err
		}

		joined, err = s.getGame(s.db, gameID)
		if err != nil {
			return err
		}

		s.notifier.Broadcast(gameID, EventPlayerJoined, PlayerJoinedPayload{
			Game:   NewGameView(joined),
			UserID: userID,
		})
		return nil
	})

	return joined, err
}

// LeaveGame removes the user from a waiting game. The last player to leave
// deletes the room. Leaving a running game is rejected; disconnects from a
// running game only drop the connection, the player row stays.
func (s *Service) LeaveGame(gameID, userID uint) error {
	return s.withGameLock(gameID, func() error {
		g, err := s.getGame(s.db, gameID)
		if err != nil {
			return err
		}
		if g.Status != models.StatusWaiting {
			return ErrGameInProgress
		}

		var player models.GamePlayer
		if err := s.db.Where("game_id = ? AND user_id = ?", gameID, userID).First(&player).Error; err != nil {
			return ErrPlayerNotFound
		}

		tx := s.db.Begin()
		if err := tx.Unscoped().Delete(&player).Error; err != nil {
			tx.Rollback()
			return err
		}

		remaining := g.CurrentPlayers - 1
		if remaining <= 0 {
			if err := tx.Unscoped().Delete(&models.Game{}, gameID).Error; err != nil {
				tx.Rollback()
				return err
			}
		} else {
			if err := tx.Model(&models.Game{}).Where("id = ?", gameID).
				Update("current_players", remaining).Error; err != nil {
				tx.Rollback()
				return err
			}
		}
		if err := tx.Commit().Error; err != nil {
			return err
		}

		if remaining <= 0 {
			s.locks.release(gameID)
		}

		s.notifier.Broadcast(gameID, EventPlayerLeft, PlayerLeftPayload{UserID: userID})
		return nil
	})
}

// ToggleReady flips the user's ready flag and returns the new value.
func (s *Service) ToggleReady(gameID, userID uint) (bool, error) {
	var isReady bool

	err := s.withGameLock(gameID, func() error {
		var player models.GamePlayer
		if err := s.db.Where("game_id = ? AND user_id = ?", gameID, userID).First(&player).Error; err != nil {
			return ErrPlayerNotFound
		}

		player.IsReady = !player.IsReady
		if err := s.db.Model(&player).Update("is_ready", player.IsReady).Error; err != nil {
			return err
		}
		isReady = player.IsReady

		s.notifier.Broadcast(gameID, EventPlayerReadyChanged, ReadyChangedPayload{
			UserID:  userID,
			IsReady: isReady,
		})
		return nil
	})

	return isReady, err
}

// StartGame assigns roles and moves the game from the lobby into the first
// night. Only the creator may start, everyone must be ready, and at least 4
// players are required.
func (s *Service) StartGame(gameID, actorID uint) (*models.Game, error) {
	var started *models.Game

	err := s.withGameLock(gameID, func() error {
		g, err := s.getGame(s.db, gameID)
		if err != nil {
			return err
		}
		if g.CreatedBy != actorID {
			return ErrNotCreator
		}
		if g.Status != models.StatusWaiting {
			return ErrGameStarted
		}
		if len(g.Players) < 4 {
			return ErrNotEnoughPlayers
		}
		for _, p := range g.Players {
			if !p.IsReady {
				return ErrPlayersNotReady
			}
		}

		roles, err := AssignRoles(len(g.Players), g.GameMode, g.CustomRoles)
		if err != nil {
			return err
		}

		tx := s.db.Begin()
		for i := range g.Players {
			if err := tx.Model(&g.Players[i]).Update("role", roles[i]).Error; err != nil {
				tx.Rollback()
				return err
			}
			g.Players[i].Role = roles[i]
		}
		if err := tx.Model(g).Updates(map[string]interface{}{
			"status":     models.StatusInProgress,
			"phase":      models.PhaseNight,
			"day_number": 1,
		}).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit().Error; err != nil {
			return err
		}

		g.Status = models.StatusInProgress
		g.Phase = models.PhaseNight
		g.DayNumber = 1
		started = g

		s.notifier.Broadcast(gameID, EventGameStarted, GameStartedPayload{Game: NewGameView(g)})
		for _, p := range g.Players {
			s.notifier.Unicast(p.UserID, EventRoleAssigned, RoleAssignedPayload{Role: p.Role})
		}
		return nil
	})

	return started, err
}

// Vote records one vote from an alive voter against an alive target during
// the voting phase. At most one vote per voter per round; the updated target
// tally is returned for broadcast.
func (s *Service) Vote(gameID, voterUserID, targetPlayerID uint) (*models.GamePlayer, error) {
	var target models.GamePlayer

	err := s.withGameLock(gameID, func() error {
		tx := s.db.Begin()

		var g models.Game
		if err := tx.First(&g, gameID).Error; err != nil {
			tx.Rollback()
			return ErrGameNotFound
		}
		if g.Phase != models.PhaseVoting {
			tx.Rollback()
			return ErrNotVotingPhase
		}

		if err := tx.Where("id = ? AND game_id = ?", targetPlayerID, gameID).First(&target).Error; err != nil {
			tx.Rollback()
			return ErrTargetNotFound
		}

		var voter models.GamePlayer
		if err := tx.Where("game_id = ? AND user_id = ?", gameID, voterUserID).First(&voter).Error; err != nil {
			tx.Rollback()
			return ErrPlayerNotFound
		}
		if !voter.IsAlive {
			tx.Rollback()
			return ErrVoterDead
		}
		if !target.IsAlive {
			tx.Rollback()
			return ErrTargetDead
		}
		if voter.HasVoted {
			tx.Rollback()
			return ErrAlreadyVoted
		}

		target.VotesReceived++
		if err := tx.Model(&target).Update("votes_received", target.VotesReceived).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Model(&voter).Update("has_voted", true).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit().Error; err != nil {
			return err
		}

		s.notifier.Broadcast(gameID, EventVoteReceived, VoteReceivedPayload{
			VoterID:  voterUserID,
			TargetID: target.ID,
			Votes:    target.VotesReceived,
		})
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &target, nil
}

// Eliminate marks the target player dead and evaluates the win condition.
// Only the creator may eliminate; the vote tally is advisory and is not
// mechanically tied to this action. A produced winner finalizes the game.
func (s *Service) Eliminate(gameID, actorID, targetPlayerID uint) (models.Winner, *models.Game, error) {
	var (
		winner models.Winner
		result *models.Game
	)

	err := s.withGameLock(gameID, func() error {
		g, err := s.getGame(s.db, gameID)
		if err != nil {
			return err
		}
		if g.CreatedBy != actorID {
			return ErrNotCreator
		}
		if g.Status == models.StatusFinished {
			return ErrGameFinished
		}
		if g.Status != models.StatusInProgress {
			return ErrGameNotStarted
		}

		var target *models.GamePlayer
		for i := range g.Players {
			if g.Players[i].ID == targetPlayerID {
				target = &g.Players[i]
				break
			}
		}
		if target == nil {
			return ErrTargetNotFound
		}
		if !target.IsAlive {
			return ErrTargetDead
		}

		tx := s.db.Begin()
		if err := tx.Model(target).Update("is_alive", false).Error; err != nil {
			tx.Rollback()
			return err
		}
		target.IsAlive = false

		winner = EvaluateWin(g.Players)
		if winner != models.WinnerNone {
			if err := s.finalize(tx, g, winner); err != nil {
				tx.Rollback()
				log.Error().Err(err).Uint("game_id", gameID).Msg("game finalization failed")
				return err
			}
		}
		if err := tx.Commit().Error; err != nil {
			return err
		}

		result = g

		s.notifier.Broadcast(gameID, EventPlayerEliminated, PlayerEliminatedPayload{PlayerID: targetPlayerID})
		if winner != models.WinnerNone {
			s.notifier.Broadcast(gameID, EventGameEnded, GameEndedPayload{
				Winner: winner,
				Game:   NewGameView(g),
			})
		}
		return nil
	})

	return winner, result, err
}

// finalize runs the one-time end-of-game accounting inside tx: the game is
// closed, one history row is written per player, and the stats collaborator
// updates each user's aggregates. Re-entry is impossible afterwards because
// the status check in Eliminate short-circuits on finished games.
func (s *Service) finalize(tx *gorm.DB, g *models.Game, winner models.Winner) error {
	if err := tx.Model(g).Updates(map[string]interface{}{
		"winner": winner,
		"status": models.StatusFinished,
		"phase":  models.PhaseResult,
	}).Error; err != nil {
		return err
	}
	g.Winner = winner
	g.Status = models.StatusFinished
	g.Phase = models.PhaseResult

	duration := int(time.Since(g.CreatedAt).Minutes())
	mafiaWon := winner == models.WinnerMafia

	for _, p := range g.Players {
		won := (p.Role == models.RoleMafia) == mafiaWon
		xp := 50
		if won {
			xp = 100
		}

		history := models.GameHistory{
			UserID:          p.UserID,
			GameID:          g.ID,
			Role:            p.Role,
			Won:             won,
			XPEarned:        xp,
			DurationMinutes: duration,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		if err := s.stats.ApplyResult(tx, p.UserID, won, xp); err != nil {
			return err
		}
	}

	return nil
}

// AdvancePhase moves the game one step through the night/day/voting cycle.
// Closing a voting round resets every player's votes and advances the day
// counter atomically, so an in-flight vote can never interleave with the
// reset.
func (s *Service) AdvancePhase(gameID, actorID uint) (*models.Game, error) {
	var advanced *models.Game

	err := s.withGameLock(gameID, func() error {
		var g models.Game
		if err := s.db.First(&g, gameID).Error; err != nil {
			return ErrGameNotFound
		}
		if g.CreatedBy != actorID {
			return ErrNotCreator
		}
		if g.Status == models.StatusFinished {
			return ErrGameFinished
		}
		if g.Status != models.StatusInProgress {
			return ErrGameNotStarted
		}

		next, closesRound, err := NextPhase(g.Phase)
		if err != nil {
			return err
		}

		tx := s.db.Begin()
		updates := map[string]interface{}{"phase": next}
		if closesRound {
			if err := tx.Model(&models.GamePlayer{}).Where("game_id = ?", gameID).
				Updates(map[string]interface{}{"votes_received": 0, "has_voted": false}).Error; err != nil {
				tx.Rollback()
				return err
			}
			updates["day_number"] = g.DayNumber + 1
		}
		if err := tx.Model(&g).Updates(updates).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit().Error; err != nil {
			return err
		}

		g.Phase = next
		if closesRound {
			g.DayNumber++
		}
		advanced = &g

		s.notifier.Broadcast(gameID, EventPhaseChanged, PhaseChangedPayload{
			Phase:     g.Phase,
			DayNumber: g.DayNumber,
		})
		return nil
	})

	return advanced, err
}

// PlayerRole returns the user's secret role in the game. Read-only; the
// gateway delivers it to the owning connection only.
func (s *Service) PlayerRole(gameID, userID uint) (models.Role, error) {
	var player models.GamePlayer
	if err := s.db.Where("game_id = ? AND user_id = ?", gameID, userID).First(&player).Error; err != nil {
		return "", ErrPlayerNotFound
	}
	return player.Role, nil
}
