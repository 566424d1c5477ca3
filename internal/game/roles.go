package game

import (
	"math/rand/v2"

	"mafianight/backend/internal/models"
)

// roleCounts computes the role distribution for n players in the given mode.
// For custom mode the caller-supplied counts are used as-is; they must sum to
// exactly n.
func roleCounts(n int, mode models.GameMode, custom *models.RoleCounts) (models.RoleCounts, error) {
	var counts models.RoleCounts

	switch mode {
	case models.ModeSimple:
		// 1 mafia per 4 players, 1 detective, rest citizens.
		counts.Mafia = n / 4
		counts.Detective = 1
		counts.Citizen = n - counts.Mafia - counts.Detective
	case models.ModeComplete:
		// 1 mafia per 3 players, detective and doctor, sniper in large games.
		counts.Mafia = n / 3
		counts.Detective = 1
		counts.Doctor = 1
		if n > 8 {
			counts.Sniper = 1
		}
		counts.Citizen = n - counts.Mafia - counts.Detective - counts.Doctor - counts.Sniper
	case models.ModeCustom:
		if custom == nil {
			return counts, ErrCustomRolesNeeded
		}
		counts = *custom
	}

	if counts.Total() != n {
		return counts, ErrInvalidRoleConfig
	}

	return counts, nil
}

// AssignRoles produces a uniformly shuffled role per player slot. The result
// is indexed by player position; every slot receives exactly one role.
func AssignRoles(n int, mode models.GameMode, custom *models.RoleCounts) ([]models.Role, error) {
	counts, err := roleCounts(n, mode, custom)
	if err != nil {
		return nil, err
	}

	roles := make([]models.Role, 0, n)
	for i := 0; i < counts.Mafia; i++ {
		roles = append(roles, models.RoleMafia)
	}
	for i := 0; i < counts.Detective; i++ {
		roles = append(roles, models.RoleDetective)
	}
	for i := 0; i < counts.Doctor; i++ {
		roles = append(roles, models.RoleDoctor)
	}
	for i := 0; i < counts.Sniper; i++ {
		roles = append(roles, models.RoleSniper)
	}
	for i := 0; i < counts.Citizen; i++ {
		roles = append(roles, models.RoleCitizen)
	}

	// Fisher-Yates shuffle. The global source is randomly seeded per process,
	// so role sequences cannot be predicted across games.
	for i := len(roles) - 1; i > 0; i-- {
		j := rand.IntN(i + 1)
		roles[i], roles[j] = roles[j], roles[i]
	}

	return roles, nil
}
