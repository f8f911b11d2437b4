package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/straye-as/agency-pipeline/internal/config"
	"github.com/straye-as/agency-pipeline/internal/logger"
	"github.com/straye-as/agency-pipeline/migrations"
	"go.uber.org/zap"
)

const usage = "usage: migrate [up|down|status|version|create <name>]"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Migration error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf(usage)
	}
	command := args[0]

	// create only writes a file and needs no database
	if command == "create" {
		if len(args) < 2 {
			return fmt.Errorf("create requires a migration name")
		}
		return goose.Create(nil, "./migrations", args[1], "sql")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations target postgres; sqlite databases are created with AutoMigrate")
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		for _, res := range results {
			logResult(log, res)
		}
		if err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		log.Info("migrations applied", zap.Int("count", len(results)))

	case "down":
		res, err := provider.Down(ctx)
		if res != nil {
			logResult(log, res)
		}
		if err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}

	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}
		for _, st := range statuses {
			fields := []zap.Field{
				zap.Int64("version", st.Source.Version),
				zap.String("state", string(st.State)),
			}
			if !st.AppliedAt.IsZero() {
				fields = append(fields, zap.Time("applied_at", st.AppliedAt))
			}
			log.Info(st.Source.Path, fields...)
		}

	case "version":
		version, err := provider.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		log.Info("database version", zap.Int64("version", version))

	default:
		return fmt.Errorf("unknown command %q; %s", command, usage)
	}

	return nil
}

func logResult(log *zap.Logger, res *goose.MigrationResult) {
	fields := []zap.Field{
		zap.Int64("version", res.Source.Version),
		zap.String("direction", res.Direction),
		zap.Duration("duration", res.Duration),
	}
	if res.Error != nil {
		log.Error(res.Source.Path, append(fields, zap.Error(res.Error))...)
		return
	}
	log.Info(res.Source.Path, fields...)
}
