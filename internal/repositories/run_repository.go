package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"jsonnorm/internal/models"
)

type RunRepository struct {
	pool *pgxpool.Pool
}

func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

func (r *RunRepository) Create(run *models.LoadRun) error {
	ctx := context.Background()

	run.Prepare()

	query := `
		INSERT INTO load_runs (id, root_table, status, started_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.RootTable,
		run.Status,
		run.StartedAt,
	)

	return err
}

func (r *RunRepository) Finish(run *models.LoadRun) error {
	ctx := context.Background()

	query := `
		UPDATE load_runs
		SET status = $2, table_count = $3, row_count = $4, error = $5, finished_at = $6
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Status,
		run.TableCount,
		run.RowCount,
		run.Error,
		run.FinishedAt,
	)

	return err
}

func (r *RunRepository) List(limit int) ([]models.LoadRun, error) {
	ctx := context.Background()

	if limit <= 0 {
		limit = 100 // Default limit
	}

	query := `
		SELECT id, root_table, status, table_count, row_count, error, started_at, finished_at
		FROM load_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.LoadRun
	for rows.Next() {
		var run models.LoadRun
		err := rows.Scan(
			&run.ID,
			&run.RootTable,
			&run.Status,
			&run.TableCount,
			&run.RowCount,
			&run.Error,
			&run.StartedAt,
			&run.FinishedAt,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
