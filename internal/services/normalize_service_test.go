package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonnorm/internal/normalizer"
)

func TestNormalizeServiceProducesDiagram(t *testing.T) {
	svc := NewNormalizeService()

	result, err := svc.Normalize(&NormalizeRequest{
		RootName: "Company",
		Document: json.RawMessage(`{"name": "Acme", "employees": [{"name": "Ann"}], "hq": {"city": "Oslo"}}`),
	})
	require.NoError(t, err)
	require.NotNil(t, result.Dataset)

	assert.Contains(t, result.Diagram, "erDiagram")
	assert.Contains(t, result.Diagram, `COMPANY ||--o{ COMPANY_EMPLOYEES : "Company_ID"`)
	assert.Contains(t, result.Diagram, `COMPANY ||--|| COMPANY_HQ : "Company_ID"`)
	assert.Contains(t, result.Diagram, "COMPANY {")
	assert.Contains(t, result.Diagram, "integer ID PK")
	assert.Contains(t, result.Diagram, "integer Company_ID FK")
}

func TestNormalizeServicePropagatesErrors(t *testing.T) {
	svc := NewNormalizeService()

	_, err := svc.Normalize(&NormalizeRequest{
		RootName: "Company",
		Document: json.RawMessage(`{"ID": 1}`),
	})
	var reserved *normalizer.ReservedFieldConflictError
	require.ErrorAs(t, err, &reserved)
}

func TestGenerateHierarchyDiagramTableOrder(t *testing.T) {
	ds, err := normalizer.Normalize([]byte(`{"a": {"b": [1, 2]}}`), "Root")
	require.NoError(t, err)

	diagram := GenerateHierarchyDiagram(ds)
	assert.Contains(t, diagram, "ROOT {")
	assert.Contains(t, diagram, "ROOT_A {")
	assert.Contains(t, diagram, "ROOT_A_B {")
	assert.Contains(t, diagram, `ROOT_A ||--o{ ROOT_A_B : "Root_a_ID"`)
}
