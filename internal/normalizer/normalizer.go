// Package normalizer converts arbitrary nested JSON documents into
// normalized relational tables: it discovers entities and the hierarchy
// between them, assigns surrogate keys, resolves foreign keys, infers column
// types and emits tables in dependency order. The output is deterministic:
// the same document and root name always produce identical table names,
// column order, row order and key values.
package normalizer

import (
	"jsonnorm/internal/models"
)

// Normalize analyzes and builds one JSON document under the given root
// entity name.
func Normalize(doc []byte, rootName string) (*models.Dataset, error) {
	v, err := Decode(doc)
	if err != nil {
		return nil, err
	}
	return NormalizeValue(v, rootName)
}

// NormalizeValue is Normalize for an already decoded value.
func NormalizeValue(v *Value, rootName string) (*models.Dataset, error) {
	analyzer, err := NewStructureAnalyzer(rootName)
	if err != nil {
		return nil, err
	}
	if err := analyzer.Analyze(v); err != nil {
		return nil, err
	}
	return NewTableBuilder(analyzer.Entities()).Build()
}
