package main

import (
	"fmt"
	"log"
	"net/http"

	"mafianight/backend/internal/auth"
	"mafianight/backend/internal/config"
	"mafianight/backend/internal/database"
	"mafianight/backend/internal/game"
	"mafianight/backend/internal/gateway"
	"mafianight/backend/internal/handler"
	"mafianight/backend/internal/stats"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Mafia Night API
// @version         1.0
// @description     This is the API for the Mafia Night game server.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	// Wire the game coordinator and the real-time gateway
	gameService := game.NewService(database.DB, stats.NewService(), nil)
	gw := gateway.New(database.DB, gameService)
	gameService.SetNotifier(gw)
	handler.Games = gameService

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.AppConfig.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Real-time gateway endpoint; clients authenticate in-band
	router.GET("/ws", gw.HandleWS)

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.GET("/leaderboard", handler.GetLeaderboard)
		}

		// Game routes (protected)
		gameRoutes := apiV1.Group("/games")
		gameRoutes.Use(auth.AuthMiddleware())
		{
			gameRoutes.POST("", handler.CreateGame)
			gameRoutes.GET("", handler.GetGames)
			gameRoutes.GET("/:id", handler.GetGameByID)
			gameRoutes.POST("/:id/join", handler.JoinGame)
			gameRoutes.DELETE("/:id/leave", handler.LeaveGame)
		}
	}

	addr := ":" + config.AppConfig.Port
	fmt.Printf("Server is running on %s\n", addr)
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(addr))
}
