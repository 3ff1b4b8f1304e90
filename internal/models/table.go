package models

// Reserved column names synthesized by the normalizer. Input fields must not
// occupy these names; the analyzer rejects or renames them before any table
// is produced.
const (
	KeyColumn       = "ID"
	InsertedColumn  = "Inserted"
	IsCurrentColumn = "IsCurrent"
)

// Relationship kinds between a parent entity and a child entity.
const (
	OneToOne  = "one-to-one"
	OneToMany = "one-to-many"
)

// ColumnType is an inferred column type. The declaration order is the
// widening order: a column holding values of mixed types is widened to the
// first type able to represent all of them, falling through to text.
type ColumnType int

const (
	TypeBoolean ColumnType = iota
	TypeInteger
	TypeBigInt
	TypeFloat
	TypeDateTime
	TypeVarChar
	TypeText
)

func (t ColumnType) String() string {
	switch t {
	case TypeBoolean:
		return "boolean"
	case TypeInteger:
		return "integer"
	case TypeBigInt:
		return "bigint"
	case TypeFloat:
		return "float"
	case TypeDateTime:
		return "datetime"
	case TypeVarChar:
		return "varchar"
	case TypeText:
		return "text"
	default:
		return "unknown"
	}
}

// Widen returns the next type along the repair ladder, used when the target
// store rejects a value for the current type. Repair always escalates toward
// text: a failed datetime or float becomes varchar, a failed varchar becomes
// text.
func (t ColumnType) Widen() ColumnType {
	switch t {
	case TypeBoolean:
		return TypeInteger
	case TypeInteger:
		return TypeBigInt
	case TypeBigInt:
		return TypeFloat
	case TypeFloat, TypeDateTime:
		return TypeVarChar
	default:
		return TypeText
	}
}

type Column struct {
	Name     string     `json:"name"`
	Type     ColumnType `json:"type"`
	Length   int        `json:"length,omitempty"`
	Nullable bool       `json:"nullable"`
	Primary  bool       `json:"primary,omitempty"`
	Identity bool       `json:"identity,omitempty"`
}

// WidenOnce escalates the column one step for the sink's repair loop.
// Bounded text grows through the size steps before giving up and becoming
// unbounded text; every other type follows the Widen ladder.
func (c *Column) WidenOnce() {
	if c.Type == TypeVarChar {
		switch {
		case c.Length < 500:
			c.Length = 500
		case c.Length < 1000:
			c.Length = 1000
		default:
			c.Type = TypeText
			c.Length = 0
		}
		return
	}
	c.Type = c.Type.Widen()
	if c.Type == TypeVarChar && c.Length == 0 {
		c.Length = 255
	}
}

type ForeignKey struct {
	Column    string `json:"column"`
	RefTable  string `json:"ref_table"`
	RefColumn string `json:"ref_column"`
}

// Row maps final column names to scalar values. Values are nil, bool, int64,
// float64, time.Time or string depending on the inferred column type. The
// Inserted column is always nil here; the sink populates it at write time.
type Row map[string]any

type Table struct {
	Name       string      `json:"name"`
	Columns    []Column    `json:"columns"`
	Rows       []Row       `json:"rows"`
	IsRoot     bool        `json:"is_root"`
	ForeignKey *ForeignKey `json:"foreign_key,omitempty"`
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

type Relationship struct {
	Child    string `json:"child"`
	Parent   string `json:"parent"`
	Kind     string `json:"kind"`
	FKColumn string `json:"fk_column"`
}

// Dataset is the finished output of one normalization run: typed, keyed
// tables plus the entity hierarchy and a dependency order with parents
// preceding children, matching insertion-time FK availability.
type Dataset struct {
	Root          string            `json:"root"`
	Order         []string          `json:"order"`
	Tables        map[string]*Table `json:"tables"`
	Relationships []Relationship    `json:"relationships"`
}

// RowCount returns the total number of rows across all tables.
func (d *Dataset) RowCount() int {
	n := 0
	for _, t := range d.Tables {
		n += len(t.Rows)
	}
	return n
}
