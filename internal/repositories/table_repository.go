package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jsonnorm/internal/models"
)

// maxInsertAttempts bounds the widen-and-retry loop per row. Matches the
// escalation depth of the varchar size steps.
const maxInsertAttempts = 3

// isTypeMismatch reports whether a SQLSTATE code is one the widen-and-retry
// loop treats as recoverable. Anything else aborts the table.
func isTypeMismatch(code string) bool {
	switch code {
	case "22001", // string data right truncation
		"22003", // numeric value out of range
		"22007", // invalid datetime format
		"22008", // datetime field overflow
		"22P02", // invalid text representation
		"42804": // datatype mismatch
		return true
	}
	return false
}

// TableRepository is the relational sink: it creates tables for normalized
// entities and inserts their rows, mapping the normalizer's surrogate keys
// to the identity values PostgreSQL assigns.
type TableRepository struct {
	pool *pgxpool.Pool
}

func NewTableRepository(pool *pgxpool.Pool) *TableRepository {
	return &TableRepository{
		pool: pool,
	}
}

func (r *TableRepository) EnsureSchema(ctx context.Context, schema string) error {
	query := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{schema}.Sanitize())
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", schema, err)
	}
	return nil
}

func (r *TableRepository) CreateTable(ctx context.Context, schema string, t *models.Table) error {
	if _, err := r.pool.Exec(ctx, BuildCreateTable(schema, t)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", t.Name, err)
	}
	return nil
}

func (r *TableRepository) DropTable(ctx context.Context, schema, table string) error {
	// Use quoted identifiers to prevent SQL injection
	query := fmt.Sprintf("DROP TABLE IF EXISTS \"%s\".\"%s\" CASCADE", schema, table)
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	return nil
}

// InsertRows inserts a table's rows in order and returns the map from the
// normalizer's surrogate keys to the identity values the store assigned.
// parentIDs is the same map for the parent table; FK values are remapped
// through it before insert, since the store generates identities
// independently of the normalizer's keys.
//
// A type-mismatch error widens the offending column and retries the row;
// the repair is local to this table, never the whole run.
func (r *TableRepository) InsertRows(ctx context.Context, schema string, t *models.Table, parentIDs map[int]int) (map[int]int, error) {
	query, cols := BuildInsert(schema, t)

	ids := make(map[int]int, len(t.Rows))
	for _, row := range t.Rows {
		coreID, ok := row[models.KeyColumn].(int)
		if !ok {
			return nil, fmt.Errorf("table %s: row is missing its surrogate key", t.Name)
		}

		args, err := r.bindArgs(t, cols, row, parentIDs)
		if err != nil {
			return nil, err
		}

		var dbID int
		for attempt := 1; ; attempt++ {
			err = r.pool.QueryRow(ctx, query, args...).Scan(&dbID)
			if err == nil {
				break
			}
			if attempt >= maxInsertAttempts {
				return nil, fmt.Errorf("failed to insert into %s: %w", t.Name, err)
			}
			col, ok := r.widenTarget(t, cols, args, err)
			if !ok {
				return nil, fmt.Errorf("failed to insert into %s: %w", t.Name, err)
			}
			if err := r.widenColumn(ctx, schema, t, col); err != nil {
				return nil, err
			}
		}
		ids[coreID] = dbID
	}
	return ids, nil
}

func (r *TableRepository) bindArgs(t *models.Table, cols []string, row models.Row, parentIDs map[int]int) ([]any, error) {
	args := make([]any, len(cols))
	for i, col := range cols {
		v := row[col]
		if t.ForeignKey != nil && col == t.ForeignKey.Column {
			fk, ok := v.(int)
			if !ok {
				return nil, fmt.Errorf("table %s: row has no FK value in %s", t.Name, col)
			}
			dbID, ok := parentIDs[fk]
			if !ok {
				return nil, fmt.Errorf("table %s: no identity mapped for parent key %d", t.Name, fk)
			}
			v = dbID
		}
		args[i] = v
	}
	return args, nil
}

// widenTarget picks the column to widen after a type-mismatch error. The
// store names the column when it can; for truncation errors it does not, so
// the bounded-text column holding the longest value in the failing row is
// chosen instead.
func (r *TableRepository) widenTarget(t *models.Table, cols []string, args []any, err error) (*models.Column, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || !isTypeMismatch(pgErr.Code) {
		return nil, false
	}
	if pgErr.ColumnName != "" {
		if c := t.Column(pgErr.ColumnName); c != nil && !c.Identity {
			return c, true
		}
	}

	var target *models.Column
	longest := -1
	for i, name := range cols {
		c := t.Column(name)
		if c == nil || c.Type == models.TypeText {
			continue
		}
		s, ok := args[i].(string)
		if !ok {
			continue
		}
		if len(s) > longest {
			longest = len(s)
			target = c
		}
	}
	return target, target != nil
}

func (r *TableRepository) widenColumn(ctx context.Context, schema string, t *models.Table, c *models.Column) error {
	before := c.Type
	c.WidenOnce()
	log.Printf("Widening column %s.%s from %s to %s", t.Name, c.Name, before, c.Type)

	if _, err := r.pool.Exec(ctx, BuildAlterColumnType(schema, t.Name, *c)); err != nil {
		return fmt.Errorf("failed to widen column %s.%s: %w", t.Name, c.Name, err)
	}
	return nil
}
