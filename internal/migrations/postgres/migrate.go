package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgtx "probook/pkg/db/postgres"
	"probook/pkg/logger"
)

// Statements are idempotent and applied in order. The exclusion constraint
// keeps two active reservations of one professional from overlapping even
// if a writer skips the advisory lock.
var Statements = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id              TEXT PRIMARY KEY,
		professional_id TEXT NOT NULL,
		client_id       TEXT NOT NULL,
		service_id      TEXT,
		start_at        TIMESTAMPTZ NOT NULL,
		end_at          TIMESTAMPTZ NOT NULL,
		status          TEXT NOT NULL CHECK (status IN ('PENDING', 'CONFIRMED', 'COMPLETED', 'CANCELLED', 'REJECTED')),
		source          TEXT NOT NULL DEFAULT 'client' CHECK (source IN ('client', 'manual')),
		total_price     BIGINT NOT NULL CHECK (total_price > 0),
		currency        TEXT NOT NULL DEFAULT 'ILS',
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL,
		CHECK (start_at < end_at)
	)`,

	`ALTER TABLE reservations ADD COLUMN IF NOT EXISTS source TEXT NOT NULL DEFAULT 'client'`,

	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'reservations_no_overlap') THEN
			ALTER TABLE reservations ADD CONSTRAINT reservations_no_overlap
				EXCLUDE USING gist (
					professional_id WITH =,
					tstzrange(start_at, end_at, '[)') WITH &&
				) WHERE (status IN ('PENDING', 'CONFIRMED'));
		END IF;
	END $$`,

	`CREATE INDEX IF NOT EXISTS reservations_professional_start_idx ON reservations (professional_id, start_at)`,
	`CREATE INDEX IF NOT EXISTS reservations_client_start_idx ON reservations (client_id, start_at)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
	log.Info("Running Postgres migrations", "statements", len(Statements))

	tm := pgtx.NewTransactionManager(pool)
	err := tm.ExecuteTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for i, stmt := range Statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("postgres migration failed: %w", err)
	}

	log.Info("All Postgres migrations applied successfully")
	return nil
}
