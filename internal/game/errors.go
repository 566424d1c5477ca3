package game

import "errors"

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found in this game")
	ErrTargetNotFound = errors.New("target player not found")

	ErrNotCreator = errors.New("only the game creator may do this")

	ErrGameStarted    = errors.New("game has already started")
	ErrGameNotStarted = errors.New("game has not started")
	ErrGameInProgress = errors.New("game is in progress")
	ErrGameFinished   = errors.New("game is already finished")
	ErrGameFull       = errors.New("game is full")
	ErrAlreadyJoined  = errors.New("already joined this game")

	ErrNotEnoughPlayers = errors.New("need at least 4 players to start")
	ErrPlayersNotReady  = errors.New("all players must be ready")

	ErrNotVotingPhase = errors.New("not in voting phase")
	ErrAlreadyVoted   = errors.New("player has already voted")
	ErrVoterDead      = errors.New("dead players cannot vote")
	ErrTargetDead     = errors.New("cannot target a dead player")

	ErrInvalidRoleConfig = errors.New("role counts do not match player count")
	ErrInvalidCapacity   = errors.New("max players must be between 4 and 20")
	ErrCustomRolesNeeded = errors.New("custom mode requires a role distribution")
)
