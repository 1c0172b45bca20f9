package main

import (
	"log"
	"os"
	"time"

	"titanax/internal/database"
)

// Clears expired reset and verification tokens. Intended to run on a cron.
func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	now := time.Now()

	res1 := db.Exec(`UPDATE users SET reset_password_token = NULL, reset_password_expires = NULL WHERE reset_password_expires < ?`, now)
	if res1.Error != nil {
		log.Fatalf("cleanup reset tokens failed: %v", res1.Error)
	}

	res2 := db.Exec(`UPDATE users SET email_verification_token = NULL, verification_expires = NULL WHERE verification_expires < ? AND email_verified = ?`, now, false)
	if res2.Error != nil {
		log.Fatalf("cleanup verification tokens failed: %v", res2.Error)
	}

	log.Printf("auth cleanup completed: reset_tokens=%d verification_tokens=%d", res1.RowsAffected, res2.RowsAffected)
}
