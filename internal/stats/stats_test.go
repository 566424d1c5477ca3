package stats

import (
	"fmt"
	"testing"

	"mafianight/backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, user models.User) models.User {
	t.Helper()
	require.NoError(t, db.Create(&user).Error)
	return user
}

func reload(t *testing.T, db *gorm.DB, id uint) models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	return user
}

func TestApplyResult_Win(t *testing.T) {
	db := openTestDB(t)
	svc := NewService()
	user := seedUser(t, db, models.User{Username: "a", Email: "a@x", PasswordHash: "x", Level: 1})

	require.NoError(t, svc.ApplyResult(db, user.ID, true, 100))

	got := reload(t, db, user.ID)
	assert.Equal(t, 1, got.TotalGames)
	assert.Equal(t, 1, got.Wins)
	assert.Zero(t, got.Losses)
	assert.Equal(t, 100, got.XP)
	assert.Equal(t, 1, got.Level)
}

func TestApplyResult_Loss(t *testing.T) {
	db := openTestDB(t)
	svc := NewService()
	user := seedUser(t, db, models.User{Username: "a", Email: "a@x", PasswordHash: "x", Level: 1})

	require.NoError(t, svc.ApplyResult(db, user.ID, false, 50))

	got := reload(t, db, user.ID)
	assert.Equal(t, 1, got.TotalGames)
	assert.Zero(t, got.Wins)
	assert.Equal(t, 1, got.Losses)
	assert.Equal(t, 50, got.XP)
}

func TestApplyResult_LevelUp(t *testing.T) {
	db := openTestDB(t)
	svc := NewService()
	user := seedUser(t, db, models.User{Username: "a", Email: "a@x", PasswordHash: "x", Level: 1, XP: 950})

	require.NoError(t, svc.ApplyResult(db, user.ID, true, 100))

	got := reload(t, db, user.ID)
	assert.Equal(t, 1050, got.XP)
	assert.Equal(t, 2, got.Level, "1050 xp crosses the 1000 threshold")
}

func TestApplyResult_LevelNeverDrops(t *testing.T) {
	db := openTestDB(t)
	svc := NewService()
	// Level manually above what the xp would compute.
	user := seedUser(t, db, models.User{Username: "a", Email: "a@x", PasswordHash: "x", Level: 5, XP: 100})

	require.NoError(t, svc.ApplyResult(db, user.ID, false, 50))

	got := reload(t, db, user.ID)
	assert.Equal(t, 5, got.Level)
}

func TestApplyResult_UnknownUser(t *testing.T) {
	db := openTestDB(t)
	svc := NewService()

	err := svc.ApplyResult(db, 999, true, 100)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
