package main

import (
	"context"
	"time"

	mongoMigration "probook/internal/migrations/mongo"
	postgresMigration "probook/internal/migrations/postgres"
	"probook/pkg/config"
)

const JobName = "probook-migrate"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting migration job", "reservation_store", cfg.ReservationStore)
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		cfg.Log.Fatal("Mongo migration failed", "error", err)
	}

	if cfg.ReservationStore == config.StorePostgres {
		cfg.SetPostgres()
		if err := postgresMigration.RunMigration(ctx, cfg.Client.Postgres, cfg.Log); err != nil {
			cfg.Log.Fatal("Postgres migration failed", "error", err)
		}
	}

	cfg.Log.Info("Migration completed successfully")
}
