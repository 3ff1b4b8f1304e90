package normalizer

import (
	"jsonnorm/internal/models"
)

// TableBuilder converts the analyzer's raw entity graph into the final set
// of typed, keyed, dependency-ordered tables. The steps depend on each
// other: keys before FKs, FKs before the redundant-column pass.
type TableBuilder struct {
	entities []*Entity
}

func NewTableBuilder(entities []*Entity) *TableBuilder {
	return &TableBuilder{entities: entities}
}

// Build runs key assignment, FK resolution, type inference, the
// redundant-column pass, temporal metadata and dependency ordering.
// Entities that collected no rows (empty arrays) produce no table.
func (b *TableBuilder) Build() (*models.Dataset, error) {
	if len(b.entities) == 0 {
		return nil, &StructuralAmbiguityError{Path: "$", Detail: "no entities discovered"}
	}

	// Step 1: strictly increasing surrogate keys per entity, in discovery
	// order, starting at 1.
	idMaps := make(map[string]map[int]int, len(b.entities))
	for _, e := range b.entities {
		m := make(map[int]int, len(e.Rows))
		for i, r := range e.Rows {
			m[r.temp] = i + 1
		}
		idMaps[e.Name] = m
	}

	ds := &models.Dataset{
		Root:   b.entities[0].Name,
		Tables: make(map[string]*models.Table),
	}
	for _, e := range b.entities {
		if len(e.Rows) == 0 {
			continue
		}
		t, err := b.buildTable(e, idMaps)
		if err != nil {
			return nil, err
		}
		ds.Tables[t.Name] = t
		if e.Parent != nil {
			ds.Relationships = append(ds.Relationships, models.Relationship{
				Child:    e.Name,
				Parent:   e.Parent.Name,
				Kind:     e.Rel,
				FKColumn: e.FKColumn,
			})
		}
	}

	// Step 6: topological order with parents preceding children, so the
	// sink can insert a parent and have its keys available before any row
	// references them. Stable: children are visited in discovery order.
	ds.Order = b.dependencyOrder(ds.Tables)
	return ds, nil
}

func (b *TableBuilder) buildTable(e *Entity, idMaps map[string]map[int]int) (*models.Table, error) {
	isRoot := e.Parent == nil

	// Step 3: one profile per column, fed every observed value.
	profiles := make(map[string]*ColumnTypeProfile, len(e.Columns))
	for _, col := range e.Columns {
		profiles[col] = &ColumnTypeProfile{}
	}
	for _, r := range e.Rows {
		for _, col := range e.Columns {
			if err := profiles[col].Observe(r.values[col]); err != nil {
				return nil, &TypeInferenceError{Entity: e.Name, Column: col, Detail: err.Error()}
			}
		}
	}

	types := make(map[string]models.ColumnType, len(e.Columns))
	lengths := make(map[string]int, len(e.Columns))
	for _, col := range e.Columns {
		types[col], lengths[col] = profiles[col].Resolve()
	}

	// Step 2: resolve each row's FK to the surrogate key of the exact
	// parent row that produced it, then convert values to their final
	// representation.
	rows := make([]models.Row, 0, len(e.Rows))
	for _, r := range e.Rows {
		row := models.Row{models.KeyColumn: idMaps[e.Name][r.temp]}
		for _, col := range e.Columns {
			v, err := convertScalar(r.values[col], types[col])
			if err != nil {
				return nil, &TypeInferenceError{Entity: e.Name, Column: col, Detail: err.Error()}
			}
			row[col] = v
		}
		if !isRoot {
			row[e.FKColumn] = idMaps[e.Parent.Name][r.parentTemp]
		}
		// Step 5: temporal metadata. Inserted is populated by the sink at
		// load time; IsCurrent supports slowly-changing-dimension tracking
		// of the root across repeated loads.
		if isRoot {
			row[models.IsCurrentColumn] = true
		}
		row[models.InsertedColumn] = nil
		rows = append(rows, row)
	}

	// Step 4: drop columns that duplicate the FK value in every row, a
	// byproduct of degenerate one-to-one collapses. Columns observed in the
	// source are kept even when all-null, so the schema stays stable when
	// later documents carry values for them.
	kept := make([]string, 0, len(e.Columns))
	for _, col := range e.Columns {
		if !isRoot && b.duplicatesFK(col, e.FKColumn, rows) {
			for _, row := range rows {
				delete(row, col)
			}
			continue
		}
		kept = append(kept, col)
	}

	columns := make([]models.Column, 0, len(kept)+4)
	columns = append(columns, models.Column{
		Name: models.KeyColumn, Type: models.TypeInteger, Primary: true, Identity: true,
	})
	for _, col := range kept {
		columns = append(columns, models.Column{
			Name: col, Type: types[col], Length: lengths[col], Nullable: true,
		})
	}
	t := &models.Table{Name: e.Name, Columns: columns, Rows: rows, IsRoot: isRoot}
	if !isRoot {
		t.Columns = append(t.Columns, models.Column{Name: e.FKColumn, Type: models.TypeInteger})
		t.ForeignKey = &models.ForeignKey{
			Column:    e.FKColumn,
			RefTable:  e.Parent.Name,
			RefColumn: models.KeyColumn,
		}
	}
	if isRoot {
		t.Columns = append(t.Columns, models.Column{Name: models.IsCurrentColumn, Type: models.TypeBoolean})
	}
	t.Columns = append(t.Columns, models.Column{Name: models.InsertedColumn, Type: models.TypeDateTime, Nullable: true})
	return t, nil
}

// duplicatesFK reports whether a column carries the FK value in every row.
func (b *TableBuilder) duplicatesFK(col, fkCol string, rows []models.Row) bool {
	if len(rows) == 0 {
		return false
	}
	for _, row := range rows {
		n, ok := row[col].(int64)
		if !ok {
			return false
		}
		fk, ok := row[fkCol].(int)
		if !ok || n != int64(fk) {
			return false
		}
	}
	return true
}

func (b *TableBuilder) dependencyOrder(tables map[string]*models.Table) []string {
	children := make(map[string][]string, len(b.entities))
	for _, e := range b.entities {
		if e.Parent != nil {
			children[e.Parent.Name] = append(children[e.Parent.Name], e.Name)
		}
	}

	order := make([]string, 0, len(tables))
	var visit func(name string)
	visit = func(name string) {
		if _, ok := tables[name]; ok {
			order = append(order, name)
		}
		for _, child := range children[name] {
			visit(child)
		}
	}
	visit(b.entities[0].Name)
	return order
}
