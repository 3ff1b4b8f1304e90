package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"jsonnorm/internal/models"
	"jsonnorm/internal/normalizer"
)

type NormalizeService struct{}

func NewNormalizeService() *NormalizeService {
	return &NormalizeService{}
}

type NormalizeRequest struct {
	RootName string          `json:"root_name" binding:"required"`
	Document json.RawMessage `json:"document" binding:"required"`
}

type NormalizeResult struct {
	Dataset *models.Dataset `json:"dataset"`
	Diagram string          `json:"diagram"`
}

// Normalize converts one document into typed, keyed, dependency-ordered
// tables and renders an ER diagram of the discovered hierarchy.
func (s *NormalizeService) Normalize(req *NormalizeRequest) (*NormalizeResult, error) {
	dataset, err := normalizer.Normalize(req.Document, req.RootName)
	if err != nil {
		return nil, err
	}

	return &NormalizeResult{
		Dataset: dataset,
		Diagram: GenerateHierarchyDiagram(dataset),
	}, nil
}

// GenerateHierarchyDiagram renders a Mermaid ER diagram of the entity
// hierarchy: relationship lines first, then table definitions with PK/FK
// annotations.
func GenerateHierarchyDiagram(dataset *models.Dataset) string {
	var sb strings.Builder

	sb.WriteString("erDiagram\n")

	for _, rel := range dataset.Relationships {
		relType := "||--o{" // one-to-many
		if rel.Kind == models.OneToOne {
			relType = "||--||"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s : \"%s\"\n",
			strings.ToUpper(rel.Parent),
			relType,
			strings.ToUpper(rel.Child),
			rel.FKColumn))
	}
	if len(dataset.Relationships) > 0 {
		sb.WriteString("\n")
	}

	for _, name := range dataset.Order {
		table := dataset.Tables[name]
		sb.WriteString(fmt.Sprintf("    %s {\n", strings.ToUpper(table.Name)))

		for _, col := range table.Columns {
			annotations := ""
			if col.Primary {
				annotations = " PK"
			}
			if table.ForeignKey != nil && col.Name == table.ForeignKey.Column {
				annotations += " FK"
			}
			sb.WriteString(fmt.Sprintf("        %s %s%s\n", col.Type, col.Name, annotations))
		}

		sb.WriteString("    }\n")
	}

	return sb.String()
}
