package main

import (
	"context"
	"log"

	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/app"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := a.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
