// Command adduser provisions a merchant login.
package main

import (
	"context"
	"flag"
	"log"

	"stockroom/m/internal/auth"
	"stockroom/m/internal/config"
	"stockroom/m/internal/database"
)

func main() {
	username := flag.String("username", "", "login name")
	password := flag.String("password", "", "plaintext password, stored as a bcrypt hash")
	flag.Parse()

	if *username == "" || *password == "" {
		flag.Usage()
		log.Fatal("both -username and -password are required")
	}

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	user, err := auth.CreateUser(context.Background(), db, *username, *password)
	if err != nil {
		log.Fatalf("failed to create user %s: %v", *username, err)
	}
	log.Printf("created user %s (id %d)", user.Username, user.ID)
}
