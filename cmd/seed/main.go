// Command main seeds the configured storage backend with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"dayboard/internal/auth"
	"dayboard/internal/config"
	"dayboard/internal/seed"
	"dayboard/internal/server"
)

func main() {
	numUsers := flag.Int("users", 5, "Number of users to create")
	perUser := flag.Int("records", 10, "Events/tasks/notes per user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := server.OpenStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage backend: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	s := seed.NewSeeder(store, auth.NewCredentials(cfg.JWTSecret))

	users, err := s.Users(ctx, *numUsers)
	if err != nil {
		log.Fatalf("Seeding users failed: %v", err)
	}
	if err := s.Content(ctx, users, *perUser); err != nil {
		log.Fatalf("Seeding content failed: %v", err)
	}

	log.Printf("Seeded %d users with %d records each (password: %s)", len(users), *perUser, seed.DemoPassword)
}
