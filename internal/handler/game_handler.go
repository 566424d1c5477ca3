package handler

import (
	"errors"
	"net/http"
	"strconv"

	"mafianight/backend/internal/game"
	"mafianight/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// Games is the game coordinator used by the HTTP surface. Set during wiring.
var Games *game.Service

// region --- DTOs ---

// CreateGameInput defines the structure for creating a game room.
type CreateGameInput struct {
	RoomName    string             `json:"room_name" binding:"required,max=255" example:"friday night"`
	MaxPlayers  int                `json:"max_players" binding:"required,min=4,max=20" example:"8"`
	GameMode    models.GameMode    `json:"game_mode" binding:"required,oneof=simple complete custom"`
	CustomRoles *models.RoleCounts `json:"custom_roles,omitempty"`
}

// endregion

// statusForGameError maps coordinator errors onto HTTP status codes.
func statusForGameError(err error) int {
	switch {
	case errors.Is(err, game.ErrGameNotFound),
		errors.Is(err, game.ErrPlayerNotFound),
		errors.Is(err, game.ErrTargetNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNotCreator):
		return http.StatusForbidden
	case errors.Is(err, game.ErrGameFull),
		errors.Is(err, game.ErrAlreadyJoined):
		return http.StatusConflict
	case errors.Is(err, game.ErrGameStarted),
		errors.Is(err, game.ErrGameNotStarted),
		errors.Is(err, game.ErrGameInProgress),
		errors.Is(err, game.ErrGameFinished),
		errors.Is(err, game.ErrNotEnoughPlayers),
		errors.Is(err, game.ErrPlayersNotReady),
		errors.Is(err, game.ErrNotVotingPhase),
		errors.Is(err, game.ErrAlreadyVoted),
		errors.Is(err, game.ErrVoterDead),
		errors.Is(err, game.ErrTargetDead),
		errors.Is(err, game.ErrInvalidRoleConfig),
		errors.Is(err, game.ErrInvalidCapacity),
		errors.Is(err, game.ErrCustomRolesNeeded):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithGameError(c *gin.Context, err error) {
	status := statusForGameError(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// CreateGame godoc
// @Summary      Create a game room
// @Description  Creates a new waiting game room. The creator runs the game and is not auto-joined as a player.
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CreateGameInput true "Game Info"
// @Success      201  {object}  game.GameView
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /games [post]
func CreateGame(c *gin.Context) {
	userID, _ := c.Get("userID")

	var input CreateGameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := Games.CreateGame(userID.(uint), game.CreateGameInput{
		RoomName:    input.RoomName,
		MaxPlayers:  input.MaxPlayers,
		GameMode:    input.GameMode,
		CustomRoles: input.CustomRoles,
	})
	if err != nil {
		abortWithGameError(c, err)
		return
	}

	c.JSON(http.StatusCreated, game.NewGameView(created))
}

// GetGames godoc
// @Summary      List joinable games
// @Description  Gets the waiting game rooms, newest first.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} game.GameView
// @Router       /games [get]
func GetGames(c *gin.Context) {
	games, err := Games.ListWaitingGames()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve games"})
		return
	}

	views := make([]*game.GameView, 0, len(games))
	for i := range games {
		views = append(views, game.NewGameView(&games[i]))
	}

	c.JSON(http.StatusOK, views)
}

// GetGameByID godoc
// @Summary      Get a game by ID
// @Description  Gets full public details for a single game. Player roles are never included.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} game.GameView
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [get]
func GetGameByID(c *gin.Context) {
	gameID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}

	gm, err := Games.GetGame(uint(gameID))
	if err != nil {
		abortWithGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, game.NewGameView(gm))
}

// JoinGame godoc
// @Summary      Join a game
// @Description  Joins a waiting game if it has a free seat and the user is not already in it.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} game.GameView
// @Failure      404 {object} ErrorResponse "Game not found"
// @Failure      409 {object} ErrorResponse "Game full or already joined"
// @Router       /games/{id}/join [post]
func JoinGame(c *gin.Context) {
	userID, _ := c.Get("userID")
	gameID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}

	gm, err := Games.JoinGame(uint(gameID), userID.(uint))
	if err != nil {
		abortWithGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, game.NewGameView(gm))
}

// LeaveGame godoc
// @Summary      Leave a game
// @Description  Leaves a waiting game. The last player out deletes the room.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]string "{"message": "Left game successfully"}"
// @Failure      400 {object} ErrorResponse "Game already running"
// @Failure      404 {object} ErrorResponse "Game or player not found"
// @Router       /games/{id}/leave [delete]
func LeaveGame(c *gin.Context) {
	userID, _ := c.Get("userID")
	gameID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}

	if err := Games.LeaveGame(uint(gameID), userID.(uint)); err != nil {
		abortWithGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left game successfully"})
}
