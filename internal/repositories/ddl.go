package repositories

import (
	"fmt"
	"strings"

	"jsonnorm/internal/models"
)

// PostgresType maps an inferred column type to the PostgreSQL type used when
// creating or widening the column.
func PostgresType(c models.Column) string {
	switch c.Type {
	case models.TypeBoolean:
		return "BOOLEAN"
	case models.TypeInteger:
		return "INTEGER"
	case models.TypeBigInt:
		return "BIGINT"
	case models.TypeFloat:
		return "DOUBLE PRECISION"
	case models.TypeDateTime:
		return "TIMESTAMPTZ"
	case models.TypeVarChar:
		length := c.Length
		if length <= 0 {
			length = 255
		}
		return fmt.Sprintf("VARCHAR(%d)", length)
	default:
		return "TEXT"
	}
}

// BuildCreateTable renders the CREATE TABLE statement for a normalized
// table. All identifiers come out of the normalizer already sanitized, and
// are quoted anyway to prevent SQL injection.
func BuildCreateTable(schema string, t *models.Table) string {
	columns := make([]string, 0, len(t.Columns)+1)
	for _, col := range t.Columns {
		switch {
		case col.Identity:
			columns = append(columns, fmt.Sprintf("  \"%s\" INT GENERATED ALWAYS AS IDENTITY PRIMARY KEY", col.Name))
		case col.Name == models.InsertedColumn:
			columns = append(columns, fmt.Sprintf("  \"%s\" TIMESTAMPTZ DEFAULT now()", col.Name))
		case col.Name == models.IsCurrentColumn && t.IsRoot:
			columns = append(columns, fmt.Sprintf("  \"%s\" BOOLEAN DEFAULT TRUE", col.Name))
		default:
			columnDef := fmt.Sprintf("  \"%s\" %s", col.Name, PostgresType(col))
			if !col.Nullable {
				columnDef += " NOT NULL"
			}
			columns = append(columns, columnDef)
		}
	}

	if t.ForeignKey != nil {
		columns = append(columns, fmt.Sprintf("  FOREIGN KEY (\"%s\") REFERENCES \"%s\".\"%s\"(\"%s\")",
			t.ForeignKey.Column,
			schema,
			t.ForeignKey.RefTable,
			t.ForeignKey.RefColumn,
		))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS \"%s\".\"%s\" (\n%s\n)",
		schema, t.Name, strings.Join(columns, ",\n"))
}

// InsertableColumns returns the columns bound on insert, in table order. The
// identity key is generated by the store and the Inserted timestamp is
// populated by its column default, so both are skipped.
func InsertableColumns(t *models.Table) []string {
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c.Identity || c.Name == models.InsertedColumn {
			continue
		}
		cols = append(cols, c.Name)
	}
	return cols
}

// BuildInsert renders a parameterized single-row INSERT returning the
// store-assigned identity value.
func BuildInsert(schema string, t *models.Table) (string, []string) {
	cols := InsertableColumns(t)
	if len(cols) == 0 {
		return fmt.Sprintf("INSERT INTO \"%s\".\"%s\" DEFAULT VALUES RETURNING \"%s\"",
			schema, t.Name, models.KeyColumn), nil
	}

	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("\"%s\"", c)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO \"%s\".\"%s\" (%s) VALUES (%s) RETURNING \"%s\"",
		schema, t.Name,
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
		models.KeyColumn,
	)
	return query, cols
}

// BuildAlterColumnType renders the ALTER used by the widen-and-retry loop.
func BuildAlterColumnType(schema, table string, c models.Column) string {
	pgType := PostgresType(c)
	return fmt.Sprintf("ALTER TABLE \"%s\".\"%s\" ALTER COLUMN \"%s\" TYPE %s USING \"%s\"::%s",
		schema, table, c.Name, pgType, c.Name, pgType)
}
