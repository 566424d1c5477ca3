package game

import (
	"testing"

	"mafianight/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRoles(roles []models.Role) map[models.Role]int {
	counts := make(map[models.Role]int)
	for _, r := range roles {
		counts[r]++
	}
	return counts
}

func TestAssignRoles_SimpleMode(t *testing.T) {
	for n := 4; n <= 20; n++ {
		roles, err := AssignRoles(n, models.ModeSimple, nil)
		require.NoError(t, err, "n=%d", n)
		require.Len(t, roles, n, "every slot gets exactly one role")

		counts := countRoles(roles)
		assert.Equal(t, n/4, counts[models.RoleMafia], "n=%d mafia", n)
		assert.Equal(t, 1, counts[models.RoleDetective], "n=%d detective", n)
		assert.Equal(t, n-n/4-1, counts[models.RoleCitizen], "n=%d citizen", n)
		assert.Zero(t, counts[models.RoleDoctor])
		assert.Zero(t, counts[models.RoleSniper])
	}
}

func TestAssignRoles_CompleteMode(t *testing.T) {
	for n := 4; n <= 20; n++ {
		roles, err := AssignRoles(n, models.ModeComplete, nil)
		require.NoError(t, err, "n=%d", n)
		require.Len(t, roles, n)

		counts := countRoles(roles)
		assert.Equal(t, n/3, counts[models.RoleMafia], "n=%d mafia", n)
		assert.Equal(t, 1, counts[models.RoleDetective], "n=%d detective", n)
		assert.Equal(t, 1, counts[models.RoleDoctor], "n=%d doctor", n)

		wantSnipers := 0
		if n > 8 {
			wantSnipers = 1
		}
		assert.Equal(t, wantSnipers, counts[models.RoleSniper], "n=%d sniper", n)
	}
}

func TestAssignRoles_CustomMode(t *testing.T) {
	custom := &models.RoleCounts{Mafia: 2, Detective: 1, Doctor: 1, Citizen: 2}

	roles, err := AssignRoles(6, models.ModeCustom, custom)
	require.NoError(t, err)

	counts := countRoles(roles)
	assert.Equal(t, 2, counts[models.RoleMafia])
	assert.Equal(t, 1, counts[models.RoleDetective])
	assert.Equal(t, 1, counts[models.RoleDoctor])
	assert.Equal(t, 2, counts[models.RoleCitizen])
}

func TestAssignRoles_CustomModeMismatch(t *testing.T) {
	custom := &models.RoleCounts{Mafia: 2, Citizen: 2}

	_, err := AssignRoles(6, models.ModeCustom, custom)
	assert.ErrorIs(t, err, ErrInvalidRoleConfig)
}

func TestAssignRoles_CustomModeMissingConfig(t *testing.T) {
	_, err := AssignRoles(6, models.ModeCustom, nil)
	assert.ErrorIs(t, err, ErrCustomRolesNeeded)
}

func TestAssignRoles_ShuffleCoversAllPositions(t *testing.T) {
	// With 12 players in simple mode there are 3 mafia. Over enough runs a
	// uniform shuffle must place a mafia token in every position at least
	// once; a biased or static assignment would leave gaps.
	const n = 12
	seenMafiaAt := make(map[int]bool)

	for run := 0; run < 200; run++ {
		roles, err := AssignRoles(n, models.ModeSimple, nil)
		require.NoError(t, err)
		for i, r := range roles {
			if r == models.RoleMafia {
				seenMafiaAt[i] = true
			}
		}
	}

	assert.Len(t, seenMafiaAt, n, "mafia should appear in every slot across runs")
}
