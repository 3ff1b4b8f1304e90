package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonnorm/internal/models"
)

func TestNormalizeObjectWithArray(t *testing.T) {
	doc := []byte(`{"name": "Acme", "employees": [{"name": "Ann"}, {"name": "Bob"}]}`)

	ds, err := Normalize(doc, "Company")
	require.NoError(t, err)

	assert.Equal(t, "Company", ds.Root)
	assert.Equal(t, []string{"Company", "Company_employees"}, ds.Order)

	company := ds.Tables["Company"]
	require.NotNil(t, company)
	assert.True(t, company.IsRoot)
	require.Len(t, company.Rows, 1)
	assert.Equal(t, 1, company.Rows[0][models.KeyColumn])
	assert.Equal(t, "Acme", company.Rows[0]["name"])
	assert.Equal(t, true, company.Rows[0][models.IsCurrentColumn])
	assert.Nil(t, company.Rows[0][models.InsertedColumn])
	require.NotNil(t, company.Column(models.IsCurrentColumn))
	require.NotNil(t, company.Column(models.InsertedColumn))

	employees := ds.Tables["Company_employees"]
	require.NotNil(t, employees)
	assert.False(t, employees.IsRoot)
	require.Len(t, employees.Rows, 2)
	require.NotNil(t, employees.ForeignKey)
	assert.Equal(t, "Company_ID", employees.ForeignKey.Column)
	assert.Equal(t, "Company", employees.ForeignKey.RefTable)
	assert.Equal(t, models.KeyColumn, employees.ForeignKey.RefColumn)
	for i, row := range employees.Rows {
		assert.Equal(t, i+1, row[models.KeyColumn])
		assert.Equal(t, 1, row["Company_ID"])
	}
	assert.Equal(t, "Ann", employees.Rows[0]["name"])
	assert.Equal(t, "Bob", employees.Rows[1]["name"])
	assert.Nil(t, employees.Column(models.IsCurrentColumn))

	require.Len(t, ds.Relationships, 1)
	assert.Equal(t, models.OneToMany, ds.Relationships[0].Kind)
	assert.Equal(t, "Company", ds.Relationships[0].Parent)
	assert.Equal(t, "Company_employees", ds.Relationships[0].Child)
}

func TestNormalizeIsDeterministic(t *testing.T) {
	doc := []byte(`{"name": "Acme", "tags": ["a", "b"], "owner": {"name": "Ann", "pets": [{"kind": "cat"}]}}`)

	first, err := Normalize(doc, "Company")
	require.NoError(t, err)
	second, err := Normalize(doc, "Company")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNormalizeRootArray(t *testing.T) {
	doc := []byte(`[{"sku": "a"}, {"sku": "b"}, {"sku": "c"}]`)

	ds, err := Normalize(doc, "Product")
	require.NoError(t, err)

	products := ds.Tables["Product"]
	require.NotNil(t, products)
	require.Len(t, products.Rows, 3)
	for i, row := range products.Rows {
		assert.Equal(t, i+1, row[models.KeyColumn])
	}
}

func TestNormalizeNestedObjectIsOneToOne(t *testing.T) {
	doc := []byte(`{"name": "Ann", "address": {"city": "Oslo"}}`)

	ds, err := Normalize(doc, "Person")
	require.NoError(t, err)

	require.Len(t, ds.Relationships, 1)
	assert.Equal(t, models.OneToOne, ds.Relationships[0].Kind)

	address := ds.Tables["Person_address"]
	require.NotNil(t, address)
	require.Len(t, address.Rows, 1)
	assert.Equal(t, "Oslo", address.Rows[0]["city"])
	assert.Equal(t, 1, address.Rows[0]["Person_ID"])
}

func TestNormalizeScalarArrayUsesValueColumn(t *testing.T) {
	doc := []byte(`{"tags": ["red", "green", "blue"]}`)

	ds, err := Normalize(doc, "Item")
	require.NoError(t, err)

	tags := ds.Tables["Item_tags"]
	require.NotNil(t, tags)
	require.Len(t, tags.Rows, 3)
	assert.Equal(t, "red", tags.Rows[0]["Value"])
	assert.Equal(t, "blue", tags.Rows[2]["Value"])
	for i, row := range tags.Rows {
		assert.Equal(t, i+1, row[models.KeyColumn])
		assert.Equal(t, 1, row["Item_ID"])
	}
}

func TestNormalizeArrayOfArrays(t *testing.T) {
	doc := []byte(`{"grid": [[1, 2], [3]]}`)

	ds, err := Normalize(doc, "Board")
	require.NoError(t, err)
	assert.Equal(t, []string{"Board", "Board_grid", "Board_grid_item"}, ds.Order)

	wrapper := ds.Tables["Board_grid"]
	require.NotNil(t, wrapper)
	require.Len(t, wrapper.Rows, 2)

	items := ds.Tables["Board_grid_item"]
	require.NotNil(t, items)
	require.Len(t, items.Rows, 3)
	assert.Equal(t, int64(1), items.Rows[0]["Value"])
	assert.Equal(t, 1, items.Rows[0]["Board_grid_ID"])
	assert.Equal(t, 1, items.Rows[1]["Board_grid_ID"])
	assert.Equal(t, 2, items.Rows[2]["Board_grid_ID"])
}

func TestNormalizeSharedSubtreeDeduplicates(t *testing.T) {
	doc := []byte(`{"emps": [{"addr": {"city": "x"}}, {"addr": {"city": "y"}}]}`)

	ds, err := Normalize(doc, "Co")
	require.NoError(t, err)

	addr := ds.Tables["Co_emps_addr"]
	require.NotNil(t, addr)
	require.Len(t, addr.Rows, 2)
	assert.Equal(t, 1, addr.Rows[0]["Co_emps_ID"])
	assert.Equal(t, 2, addr.Rows[1]["Co_emps_ID"])
}

func TestNormalizeTypeWidening(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantType models.ColumnType
		wantVals []any
	}{
		{
			name:     "integers stay integer",
			doc:      `{"xs": [1, 2, 3]}`,
			wantType: models.TypeInteger,
			wantVals: []any{int64(1), int64(2), int64(3)},
		},
		{
			name:     "integer and float widen to float",
			doc:      `{"xs": [1, 2.5]}`,
			wantType: models.TypeFloat,
			wantVals: []any{float64(1), float64(2.5)},
		},
		{
			name:     "number and string widen to text",
			doc:      `{"xs": [1, 2, "x"]}`,
			wantType: models.TypeVarChar,
			wantVals: []any{"1", "2", "x"},
		},
		{
			name:     "boolean and integer widen to integer",
			doc:      `{"xs": [true, 2]}`,
			wantType: models.TypeInteger,
			wantVals: []any{int64(1), int64(2)},
		},
		{
			name:     "large integers widen to bigint",
			doc:      `{"xs": [1, 3000000000]}`,
			wantType: models.TypeBigInt,
			wantVals: []any{int64(1), int64(3000000000)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Normalize([]byte(tt.doc), "Root")
			require.NoError(t, err)

			table := ds.Tables["Root_xs"]
			require.NotNil(t, table)
			col := table.Column("Value")
			require.NotNil(t, col)
			assert.Equal(t, tt.wantType, col.Type)
			require.Len(t, table.Rows, len(tt.wantVals))
			for i, want := range tt.wantVals {
				assert.Equal(t, want, table.Rows[i]["Value"])
			}
		})
	}
}

func TestNormalizeDateTimeDetection(t *testing.T) {
	doc := []byte(`{"ts": "2024-01-02 03:04:05", "day": "2024-01-02", "note": "not a date"}`)

	ds, err := Normalize(doc, "Event")
	require.NoError(t, err)

	event := ds.Tables["Event"]
	require.NotNil(t, event)
	assert.Equal(t, models.TypeDateTime, event.Column("ts").Type)
	assert.Equal(t, models.TypeDateTime, event.Column("day").Type)
	assert.Equal(t, models.TypeVarChar, event.Column("note").Type)

	ts, ok := event.Rows[0]["ts"].(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2024, ts.Year())
}

func TestNormalizeAllNullColumnIsKept(t *testing.T) {
	doc := []byte(`{"a": null}`)

	ds, err := Normalize(doc, "Thing")
	require.NoError(t, err)

	thing := ds.Tables["Thing"]
	require.NotNil(t, thing)
	col := thing.Column("a")
	require.NotNil(t, col)
	assert.Equal(t, models.TypeVarChar, col.Type)
	assert.Equal(t, 255, col.Length)
	assert.True(t, col.Nullable)
	assert.Nil(t, thing.Rows[0]["a"])
}

func TestNormalizeDropsColumnDuplicatingForeignKey(t *testing.T) {
	doc := []byte(`{"items": [{"ref": 1, "v": "a"}, {"ref": 1, "v": "b"}]}`)

	ds, err := Normalize(doc, "Orders")
	require.NoError(t, err)

	items := ds.Tables["Orders_items"]
	require.NotNil(t, items)
	assert.Nil(t, items.Column("ref"))
	require.NotNil(t, items.Column("v"))
	for _, row := range items.Rows {
		_, hasRef := row["ref"]
		assert.False(t, hasRef)
		assert.Equal(t, 1, row["Orders_ID"])
	}
}

func TestNormalizeEmptyArrayProducesNoTable(t *testing.T) {
	doc := []byte(`{"name": "x", "xs": []}`)

	ds, err := Normalize(doc, "Root")
	require.NoError(t, err)

	assert.Equal(t, []string{"Root"}, ds.Order)
	assert.NotContains(t, ds.Tables, "Root_xs")
}

func TestNormalizeRejectsReservedFieldName(t *testing.T) {
	for _, doc := range []string{`{"ID": 5}`, `{"id": 5}`, `{"Id": 5}`} {
		_, err := Normalize([]byte(doc), "Root")
		var reserved *ReservedFieldConflictError
		require.ErrorAs(t, err, &reserved, "doc %s", doc)
	}
}

func TestNormalizeRejectsReservedRootName(t *testing.T) {
	_, err := Normalize([]byte(`{"a": 1}`), "id")
	var conflict *NamingConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestNormalizeRenamesSynthesizedCollisions(t *testing.T) {
	doc := []byte(`{"Inserted": "x", "emps": [{"Co_ID": 3}]}`)

	ds, err := Normalize(doc, "Co")
	require.NoError(t, err)

	root := ds.Tables["Co"]
	require.NotNil(t, root.Column("Inserted_field"))
	assert.Equal(t, "x", root.Rows[0]["Inserted_field"])

	emps := ds.Tables["Co_emps"]
	require.NotNil(t, emps.Column("Co_ID_field"))
	assert.Equal(t, int64(3), emps.Rows[0]["Co_ID_field"])
	assert.Equal(t, 1, emps.Rows[0]["Co_ID"])
}

func TestNormalizeRejectsColumnCollision(t *testing.T) {
	doc := []byte(`{"a b": 1, "a_b": 2}`)

	_, err := Normalize(doc, "Root")
	var conflict *NamingConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestNormalizeRejectsMixedArray(t *testing.T) {
	for _, doc := range []string{
		`{"xs": [1, {"a": 2}]}`,
		`{"xs": [[1], "b"]}`,
		`{"xs": [{"a": 1}, [2]]}`,
	} {
		_, err := Normalize([]byte(doc), "Root")
		var ambiguous *StructuralAmbiguityError
		require.ErrorAs(t, err, &ambiguous, "doc %s", doc)
	}
}

func TestNormalizeRejectsScalarRoot(t *testing.T) {
	_, err := Normalize([]byte(`42`), "Root")
	var ambiguous *StructuralAmbiguityError
	require.ErrorAs(t, err, &ambiguous)
}

func TestNormalizeRejectsMalformedDocument(t *testing.T) {
	for _, doc := range []string{`{`, `{"a": 1} trailing`, ``} {
		_, err := Normalize([]byte(doc), "Root")
		require.ErrorIs(t, err, ErrInvalidDocument, "doc %s", doc)
	}
}
