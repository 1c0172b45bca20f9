package main

import (
	"log"
	"os"

	"titanax/internal/database"
	"titanax/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// Seeds a local database with verified demo accounts.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "titanax.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM users")

	seedUsers := []struct {
		name     string
		email    string
		role     string
		password string
	}{
		{"Admin", "admin@titanax.dev", "admin", "admin12345"},
		{"Ada Lovelace", "ada@titanax.dev", "Engineer", "Password123"},
		{"Grace Hopper", "grace@titanax.dev", "Engineer", "Password123"},
	}

	for _, su := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal("hash failed:", err)
		}
		user := domain.User{
			Name:          su.name,
			Email:         su.email,
			Role:          su.role,
			PasswordHash:  string(hash),
			EmailVerified: true,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("seed %s failed: %v", su.email, err)
		}
		log.Printf("Created: %s / %s", su.email, su.password)
	}
}
