package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/noxus/internal/logging"
	"github.com/dmitrijs2005/noxus/internal/server"
	"github.com/dmitrijs2005/noxus/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)

	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
