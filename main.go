package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"quiz-backend/conn"
	"quiz-backend/generator"
	"quiz-backend/grading"
	"quiz-backend/migrations"
	"quiz-backend/openai"
	"quiz-backend/quizapi"
	"quiz-backend/results"
	"quiz-backend/session"
)

func main() {
	_ = godotenv.Load()

	r := gin.Default()
	r.Use(quizapi.CORS(), quizapi.RequestLogger())

	ai := openai.NewClient()
	store := session.NewMemoryStore()

	h := quizapi.NewHandler(generator.New(ai), store)
	h.SetCodeValidator(grading.NewValidator(ai))

	// Quiz history is optional; sessions themselves always stay in memory.
	if conn.Configured() {
		db, err := conn.NewMySQL()
		if err != nil {
			log.Printf("[main] mysql unavailable, history disabled: %v", err)
		} else if err := migrations.Migrate(db); err != nil {
			log.Printf("[main] migration failed, history disabled: %v", err)
		} else {
			h.SetHistory(results.NewRepository(db))
			log.Printf("[main] quiz history enabled")
		}
	}

	h.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
