package main

import (
	"context"
	"log"

	"resighting-export/internal/bootstrap"
	"resighting-export/internal/shared/config"
	"resighting-export/internal/shared/server"
	"resighting-export/internal/shared/storage/db"
	"resighting-export/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Setup(cfg.LogLevel)
	ctx := context.Background()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	if app.DB != nil {
		defer app.DB.Close()
		if err := db.RunMigrations(ctx, app.DB); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	addr := server.Addr(cfg.Port)
	telemetry.Info("server.start", map[string]any{"addr": addr, "env": cfg.Env, "table": cfg.DynamoTable})

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
