package main

import (
	"log"
	"net/http"
	"os"

	"journal-api/config"
	"journal-api/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.InitJWT()

	logFile, logWriter := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}
	gin.DefaultWriter = logWriter
	gin.DefaultErrorWriter = logWriter

	db := config.InitDB()
	if err := config.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	mailer := config.NewMailerFromEnv()
	if !mailer.Configured() {
		log.Println("SMTP not configured, notification emails will only be logged")
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	routes.SetupRoutes(router, routes.NewHandlers(db, mailer))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
