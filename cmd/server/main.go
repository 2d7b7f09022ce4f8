package main

import (
	"log"
	"os"

	"redvine/internal/db"
	"redvine/internal/handlers"
	"redvine/internal/middleware"
	"redvine/internal/services"
	"redvine/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	// Initialize Database
	conn, err := db.Open(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("redvine_session", store))

	// Middleware
	r.Use(middleware.LoadUser(conn))

	// Services
	userService := services.NewUserService(conn)
	postService := services.NewPostService(conn)
	voteService := services.NewVoteService(conn)
	feedService := services.NewFeedService(conn)
	mailService := services.NewMailService()
	resetTokenCache := utils.NewCache()

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, mailService, resetTokenCache)
	postHandler := handlers.NewPostHandler(postService, voteService)
	voteHandler := handlers.NewVoteHandler(voteService)
	feedHandler := handlers.NewFeedHandler(feedService)

	// Public Routes
	r.POST("/signup", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)
	r.GET("/me", authHandler.Me)
	r.POST("/forgot-password", authHandler.ForgotPassword)
	r.POST("/change-password/:token", authHandler.ChangePassword)

	r.GET("/posts", feedHandler.List)
	r.GET("/posts/:id", postHandler.Detail)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/posts", postHandler.Create)
		authorized.PUT("/posts/:id", postHandler.Update)
		authorized.DELETE("/posts/:id", postHandler.Delete)
		authorized.POST("/posts/:id/vote", voteHandler.Vote)
		authorized.DELETE("/me", authHandler.DeleteAccount)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("RedVine server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
