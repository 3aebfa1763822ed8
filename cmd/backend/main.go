package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/socialclone/internal/backend"
	"github.com/dmitrijs2005/socialclone/internal/backend/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := backend.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
