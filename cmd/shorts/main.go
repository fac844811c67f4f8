package main

import (
	"log"

	"github.com/joho/godotenv"
)

func main() {
	// .env is local-dev convenience; CI injects real env vars.
	_ = godotenv.Load()
	log.SetFlags(0)

	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
