package main

import (
	"log"

	"climindex/internal/config"
	"climindex/internal/container"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	c, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}

	if err := c.APIServer().Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Server failed:", err)
	}
}
