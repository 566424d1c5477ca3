package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"mafianight/backend/internal/database"
	"mafianight/backend/internal/models"
	"mafianight/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"nightowl"`
	Email    string `json:"email" binding:"required,email" example:"owl@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"password123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Login    string `json:"login" binding:"required" example:"nightowl"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// ProfileResponse is the authenticated user's own profile with aggregates.
type ProfileResponse struct {
	ID         uint   `json:"id" example:"1"`
	Username   string `json:"username" example:"nightowl"`
	Email      string `json:"email" example:"owl@example.com"`
	Level      int    `json:"level"`
	XP         int    `json:"xp"`
	TotalGames int    `json:"total_games"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
}

// LeaderboardEntry is one ranked row of the xp leaderboard.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Level      int    `json:"level"`
	XP         int    `json:"xp"`
	TotalGames int    `json:"total_games"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	WinRate    string `json:"win_rate"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// endregion

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingUser models.User
	if err := database.DB.Where("username = ? OR email = ?", input.Username, input.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Level:        1,
		IsActive:     true,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with username/email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Router       /auth/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("username = ? OR email = ?", input.Login, input.Login).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetMe godoc
// @Summary      Get current user's profile
// @Description  Retrieves the profile and aggregate stats for the authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ProfileResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func GetMe(c *gin.Context) {
	userID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.First(&user, userID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Level:      user.Level,
		XP:         user.XP,
		TotalGames: user.TotalGames,
		Wins:       user.Wins,
		Losses:     user.Losses,
	})
}

// GetLeaderboard godoc
// @Summary      Get the xp leaderboard
// @Description  Gets a paginated list of users ranked by experience points.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page  query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(50)
// @Success      200 {object} PaginatedResponse[LeaderboardEntry]
// @Router       /users/leaderboard [get]
func GetLeaderboard(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	query := database.DB.Model(&models.User{}).Order("xp DESC")
	paginated, err := Paginate[models.User](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve leaderboard"})
		return
	}

	entries := make([]LeaderboardEntry, 0, len(paginated.Data))
	for i, user := range paginated.Data {
		winRate := "0.0"
		if user.TotalGames > 0 {
			winRate = fmt.Sprintf("%.1f", float64(user.Wins)/float64(user.TotalGames)*100)
		}
		entries = append(entries, LeaderboardEntry{
			Rank:       (page-1)*limit + i + 1,
			ID:         user.ID,
			Username:   user.Username,
			Level:      user.Level,
			XP:         user.XP,
			TotalGames: user.TotalGames,
			Wins:       user.Wins,
			Losses:     user.Losses,
			WinRate:    winRate,
		})
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(entries, paginated.Meta.TotalItems, page, limit))
}
