package game

import "mafianight/backend/internal/models"

// EvaluateWin decides the game outcome from the alive role distribution.
// Mafia wins at parity, not only majority: once the alive mafia count reaches
// the alive non-mafia count the citizens can no longer outvote them.
func EvaluateWin(players []models.GamePlayer) models.Winner {
	var aliveMafia, aliveOthers int
	for _, p := range players {
		if !p.IsAlive {
			continue
		}
		if p.Role == models.RoleMafia {
			aliveMafia++
		} else {
			aliveOthers++
		}
	}

	if aliveMafia == 0 {
		return models.WinnerCitizen
	}
	if aliveMafia >= aliveOthers {
		return models.WinnerMafia
	}
	return models.WinnerNone
}
