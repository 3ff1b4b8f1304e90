package normalizer

import (
	"fmt"
	"hash/fnv"
	"strings"

	"jsonnorm/internal/models"
)

// maxIdentifierLen is the PostgreSQL identifier limit. Longer composed names
// are truncated and hash-suffixed so no two entities ever share a name.
const maxIdentifierLen = 63

// SanitizeIdentifier strips characters illegal in relational identifiers,
// substituting underscores, and prefixes names that start with a digit.
func SanitizeIdentifier(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if s == "" {
		s = "_"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	return s
}

// capIdentifier enforces the identifier length limit. Truncated names get an
// 8-hex-digit FNV-1a hash of the full name appended, so two deep paths that
// truncate to the same prefix still come out distinct, and deterministically
// so across runs.
func capIdentifier(name string) string {
	if len(name) <= maxIdentifierLen {
		return name
	}
	h := fnv.New32a()
	h.Write([]byte(name))
	suffix := fmt.Sprintf("_%08x", h.Sum32())
	return name[:maxIdentifierLen-len(suffix)] + suffix
}

// isReservedKeyName reports whether a sanitized field name is the reserved
// surrogate-key column, in any case.
func isReservedKeyName(name string) bool {
	return strings.EqualFold(name, models.KeyColumn)
}

// isSynthesizedColumn reports whether a name collides with a column the
// builder will synthesize for the given entity: the FK column to its parent
// or one of the temporal metadata columns.
func isSynthesizedColumn(name, fkColumn string) bool {
	if fkColumn != "" && strings.EqualFold(name, fkColumn) {
		return true
	}
	return strings.EqualFold(name, models.InsertedColumn) || strings.EqualFold(name, models.IsCurrentColumn)
}
