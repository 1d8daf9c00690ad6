package main

import (
	"log"

	"github.com/gitdex/gitdex/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ gitdex failed to start: %v", err)
	}
}
