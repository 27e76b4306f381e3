// Command admintoken prints a signed token for the admin HTTP API.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/fadedpez/trackbattle/internal/api"
	"github.com/fadedpez/trackbattle/internal/config"
)

func main() {
	subject := flag.String("subject", "ops", "Who the token is issued to; recorded as the acting admin")
	ttl := flag.Duration("ttl", 24*time.Hour, "How long the token is valid")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if cfg.AdminJWTSecret == "" {
		log.Fatal("ADMIN_JWT_SECRET is not set")
	}

	token, err := api.NewAuthenticator(cfg.AdminJWTSecret).GenerateToken(*subject, api.RoleAdmin, *ttl)
	if err != nil {
		log.Fatalf("Error signing token: %v", err)
	}
	fmt.Println(token)
}
