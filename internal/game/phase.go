package game

import "mafianight/backend/internal/models"

// NextPhase returns the phase that follows p in the night -> day -> voting
// cycle. closesRound is true on the voting -> night transition, which ends a
// voting round: the day counter advances and all votes are reset.
//
// The lobby -> night transition is owned by StartGame, and result is entered
// only when a win condition fires, so neither appears here.
func NextPhase(p models.GamePhase) (next models.GamePhase, closesRound bool, err error) {
	switch p {
	case models.PhaseNight:
		return models.PhaseDay, false, nil
	case models.PhaseDay:
		return models.PhaseVoting, false, nil
	case models.PhaseVoting:
		return models.PhaseNight, true, nil
	default:
		return p, false, ErrGameFinished
	}
}
