// @title ChatSphere API
// @version 0.1
// @description REST backend for group and direct messaging.

// @host localhost:8080
// @BasePath /
// @query.collection.format multi
// @schemes http

package main

import (
	"log"

	_ "chatsphere/backend/docs"
	"chatsphere/backend/internal/app"
	"chatsphere/backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	app.Run(cfg)
}
