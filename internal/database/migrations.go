package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunMigrations creates the service's own metadata tables. Tables generated
// from normalized documents are created on demand by the sink, not here.
func RunMigrations(pool *pgxpool.Pool) error {
	ctx := context.Background()

	migrations := []string{
		createLoadRunsTable,
	}

	for i, migration := range migrations {
		log.Printf("Running migration %d/%d", i+1, len(migrations))
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Println("All migrations completed successfully")
	return nil
}

const createLoadRunsTable = `
CREATE TABLE IF NOT EXISTS load_runs (
  id UUID PRIMARY KEY,
  root_table TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'running',
  table_count INT,
  row_count INT,
  error TEXT,
  started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  finished_at TIMESTAMPTZ
);
`
