package normalizer

import (
	"fmt"

	"jsonnorm/internal/models"
)

// itemEntitySuffix names the child entity holding the elements of a nested
// array-of-arrays level.
const itemEntitySuffix = "item"

// valueColumn is the single data column of an entity built from an array of
// scalars.
const valueColumn = "Value"

// Entity is a discovered table under construction: raw rows, ordered
// columns, and its position in the hierarchy. Surrogate keys are temporary
// here; the TableBuilder assigns the final ones.
type Entity struct {
	Name     string // sanitized, length-capped table name
	Path     string // full composed path, kept for collision detection
	Parent   *Entity
	Rel      string // models.OneToOne or models.OneToMany, "" for root
	FKColumn string // "" for root

	Columns  []string
	colIndex map[string]int
	colFrom  map[string]string // final column name -> raw source field

	Rows     []*rawRow
	nextTemp int
}

// rawRow is one untyped row: scalar values plus the temp key assigned on
// discovery and the temp key of the exact parent row that produced it.
type rawRow struct {
	temp       int
	parentTemp int
	values     map[string]any
}

func (e *Entity) newRow(parentTemp int) *rawRow {
	r := &rawRow{temp: e.nextTemp, parentTemp: parentTemp, values: make(map[string]any)}
	e.nextTemp++
	return r
}

func (e *Entity) addColumn(name string) {
	if _, ok := e.colIndex[name]; !ok {
		e.colIndex[name] = len(e.Columns)
		e.Columns = append(e.Columns, name)
	}
}

// StructureAnalyzer walks a decoded JSON value depth-first, discovering
// entities and the hierarchy between them. All state is owned by the run
// that created the analyzer; nothing is shared between runs.
type StructureAnalyzer struct {
	root     *Entity
	entities []*Entity // discovery order, root first
	byName   map[string]*Entity
}

// NewStructureAnalyzer prepares an analyzer for one document. The root name
// is sanitized like any other identifier and must not collide with a
// reserved column name.
func NewStructureAnalyzer(rootName string) (*StructureAnalyzer, error) {
	name := capIdentifier(SanitizeIdentifier(rootName))
	if isReservedKeyName(name) || isSynthesizedColumn(name, "") {
		return nil, &NamingConflictError{Name: name, Path: "$"}
	}

	a := &StructureAnalyzer{byName: make(map[string]*Entity)}
	a.root = a.register(name, name, nil, "")
	return a, nil
}

// Root returns the root entity.
func (a *StructureAnalyzer) Root() *Entity { return a.root }

// Entities returns all discovered entities in discovery order. Parents
// always precede their children.
func (a *StructureAnalyzer) Entities() []*Entity { return a.entities }

// Analyze walks the document. The root value must be an object or an array;
// a bare scalar has no relational interpretation.
func (a *StructureAnalyzer) Analyze(doc *Value) error {
	switch doc.Kind {
	case KindObject:
		row := a.root.newRow(0)
		if err := a.processObject(a.root, row, doc, "$"); err != nil {
			return err
		}
		a.root.Rows = append(a.root.Rows, row)
		return nil
	case KindArray:
		return a.processArray(a.root, 0, doc, "$")
	default:
		return &StructuralAmbiguityError{Path: "$", Detail: fmt.Sprintf("root value must be an object or array, got %s", doc.Kind)}
	}
}

func (a *StructureAnalyzer) register(name, path string, parent *Entity, rel string) *Entity {
	e := &Entity{
		Name:     name,
		Path:     path,
		Parent:   parent,
		Rel:      rel,
		colIndex: make(map[string]int),
		colFrom:  make(map[string]string),
		nextTemp: 1,
	}
	if parent != nil {
		e.FKColumn = capIdentifier(parent.Name + "_" + models.KeyColumn)
	}
	a.byName[name] = e
	a.entities = append(a.entities, e)
	return e
}

// childEntity returns the entity for a structural position under parent,
// creating it on first sight. Two occurrences of the same field name at the
// same nesting path share one entity; a truncated name colliding with a
// different path is a fatal naming conflict, and the same path switching
// between object and array shapes is a fatal ambiguity.
func (a *StructureAnalyzer) childEntity(parent *Entity, field, rel, path string) (*Entity, error) {
	composed := parent.Path + "_" + SanitizeIdentifier(field)
	name := capIdentifier(composed)

	if e, ok := a.byName[name]; ok {
		if e.Path != composed {
			return nil, &NamingConflictError{Name: name, Path: path}
		}
		if e.Rel != rel {
			return nil, &StructuralAmbiguityError{Path: path, Detail: fmt.Sprintf("field appears as both %s and %s", e.Rel, rel)}
		}
		return e, nil
	}
	return a.register(name, composed, parent, rel), nil
}

// columnName sanitizes a source field name into a column of e. A field
// literally named after the surrogate key is rejected; a field colliding
// with a column the builder will synthesize is renamed with a _field suffix.
// Two distinct source fields landing on the same final column is a fatal
// conflict: merging them would silently mix unrelated data.
func (a *StructureAnalyzer) columnName(e *Entity, field, path string) (string, error) {
	name := SanitizeIdentifier(field)
	if isReservedKeyName(name) {
		return "", &ReservedFieldConflictError{Field: field, Path: path}
	}
	if isSynthesizedColumn(name, e.FKColumn) {
		name += "_field"
	}
	name = capIdentifier(name)

	if from, ok := e.colFrom[name]; ok && from != field {
		return "", &NamingConflictError{Name: name, Path: path}
	}
	e.colFrom[name] = field
	return name, nil
}

func (a *StructureAnalyzer) processObject(e *Entity, row *rawRow, obj *Value, path string) error {
	for _, f := range obj.Fields {
		fpath := path + "." + f.Name
		switch f.Value.Kind {
		case KindObject:
			child, err := a.childEntity(e, f.Name, models.OneToOne, fpath)
			if err != nil {
				return err
			}
			crow := child.newRow(row.temp)
			if err := a.processObject(child, crow, f.Value, fpath); err != nil {
				return err
			}
			child.Rows = append(child.Rows, crow)
		case KindArray:
			child, err := a.childEntity(e, f.Name, models.OneToMany, fpath)
			if err != nil {
				return err
			}
			if err := a.processArray(child, row.temp, f.Value, fpath); err != nil {
				return err
			}
		default:
			col, err := a.columnName(e, f.Name, fpath)
			if err != nil {
				return err
			}
			e.addColumn(col)
			row.values[col] = f.Value.Scalar()
		}
	}
	return nil
}

// processArray appends one row of e per array element. Elements must agree
// on shape: all objects, all arrays, or all scalars (null counts as a
// scalar). An array of arrays recurses, with e acting as the wrapper entity
// and an _item child holding the inner elements.
func (a *StructureAnalyzer) processArray(e *Entity, parentTemp int, arr *Value, path string) error {
	var objects, arrays, scalars int
	for _, el := range arr.Elems {
		switch el.Kind {
		case KindObject:
			objects++
		case KindArray:
			arrays++
		default:
			scalars++
		}
	}
	kinds := 0
	for _, n := range []int{objects, arrays, scalars} {
		if n > 0 {
			kinds++
		}
	}
	if kinds > 1 {
		return &StructuralAmbiguityError{Path: path, Detail: "array mixes scalar, object or array elements"}
	}

	switch {
	case objects > 0:
		for i, el := range arr.Elems {
			row := e.newRow(parentTemp)
			if err := a.processObject(e, row, el, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
			e.Rows = append(e.Rows, row)
		}
	case arrays > 0:
		inner, err := a.childEntity(e, itemEntitySuffix, models.OneToMany, path)
		if err != nil {
			return err
		}
		for i, el := range arr.Elems {
			row := e.newRow(parentTemp)
			e.Rows = append(e.Rows, row)
			if err := a.processArray(inner, row.temp, el, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case scalars > 0:
		e.addColumn(valueColumn)
		for _, el := range arr.Elems {
			row := e.newRow(parentTemp)
			row.values[valueColumn] = el.Scalar()
			e.Rows = append(e.Rows, row)
		}
	}
	return nil
}
