// Package bootstrap wires configuration into the exporter and its HTTP
// surface.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resighting-export/internal/export"
	"resighting-export/internal/gateway"
	"resighting-export/internal/render"
	"resighting-export/internal/runs"
	"resighting-export/internal/schema"
	"resighting-export/internal/services/health"
	"resighting-export/internal/shared/config"
	"resighting-export/internal/shared/server"
	"resighting-export/internal/shared/storage/db"
	"resighting-export/internal/shared/storage/object"
	localstore "resighting-export/internal/shared/storage/object/local"
	s3store "resighting-export/internal/shared/storage/object/s3"
	"resighting-export/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config      config.Config
	Router      *gin.Engine
	DB          *sql.DB
	Store       object.ObjectStore
	Exporter    *export.Service
	RunsRepo    runs.Repo
	RunsService *runs.Service
	RunsHandler *runs.Handler
	Health      *health.Service
}

// BuildExporter assembles the export pipeline alone. The command line tool
// needs nothing else.
func BuildExporter(ctx context.Context, cfg config.Config) (*export.Service, error) {
	gw, err := gateway.NewDynamo(ctx, gateway.DynamoConfig{
		Region:             cfg.AWSRegion,
		Endpoint:           cfg.DynamoEndpoint,
		Table:              cfg.DynamoTable,
		TimestampAttribute: cfg.TimestampAttribute,
		Timeout:            cfg.FetchTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb gateway: %w", err)
	}
	return newExporter(cfg, gw)
}

func newExporter(cfg config.Config, gw gateway.Gateway) (*export.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	s, err := schema.Select(cfg.SchemaVersion, cfg.SchemaFile)
	if err != nil {
		return nil, err
	}
	telemetry.Info("bootstrap.schema", map[string]any{
		"version": s.Version(),
		"fields":  s.Len(),
		"file":    cfg.SchemaFile,
	})
	return &export.Service{
		Gateway:      gw,
		Schema:       s,
		Renderer:     render.New(loc),
		Location:     loc,
		KeyAttribute: cfg.RecordKeyAttribute,
	}, nil
}

// Build prepares every dependency and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	exporter, err := BuildExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return build(ctx, cfg, exporter)
}

func build(ctx context.Context, cfg config.Config, exporter *export.Service) (*App, error) {
	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var repo runs.Repo
	if sqlDB != nil {
		repo = &runs.PGRepo{DB: sqlDB}
	} else {
		repo = runs.NewMemoryRepo()
	}

	svc := &runs.Service{
		Exporter:      exporter,
		Store:         store,
		Repo:          repo,
		WorkDir:       cfg.ExportDir,
		SchemaVersion: exporter.Schema.Version(),
	}
	handler := runs.NewHandler(svc)

	healthSvc := health.NewService(0)
	if sqlDB != nil {
		healthSvc.Register("db", sqlDB.PingContext)
	}

	app := &App{
		Config:      cfg,
		DB:          sqlDB,
		Store:       store,
		Exporter:    exporter,
		RunsRepo:    repo,
		RunsService: svc,
		RunsHandler: handler,
		Health:      healthSvc,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:      cfg,
		RunsHandler: handler,
		Health:      healthSvc,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Info("bootstrap.db_skipped", map[string]any{"reason": "DATABASE_URL empty; run history kept in memory"})
		return nil, nil
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db_fallback", map[string]any{"error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
