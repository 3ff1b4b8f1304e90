package normalizer

import "fmt"

// All four error kinds abort the run that raised them. A half-built entity
// graph cannot be used to safely wire foreign keys, so there is no partial
// recovery; each error carries the offending document path so the caller can
// fix the input upstream.

// NamingConflictError reports a sanitized or truncated name colliding with
// another entity or column after disambiguation is exhausted.
type NamingConflictError struct {
	Name string
	Path string
}

func (e *NamingConflictError) Error() string {
	return fmt.Sprintf("naming conflict: %q at %s collides with an existing identifier", e.Name, e.Path)
}

// ReservedFieldConflictError reports an input field that is literally the
// reserved surrogate-key name.
type ReservedFieldConflictError struct {
	Field string
	Path  string
}

func (e *ReservedFieldConflictError) Error() string {
	return fmt.Sprintf("field %q at %s is reserved for the generated surrogate key", e.Field, e.Path)
}

// StructuralAmbiguityError reports a JSON value mixing shapes in a way the
// traversal rules cannot resolve deterministically.
type StructuralAmbiguityError struct {
	Path   string
	Detail string
}

func (e *StructuralAmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous structure at %s: %s", e.Path, e.Detail)
}

// TypeInferenceError reports a column whose observed values cannot be
// reconciled into any supported type.
type TypeInferenceError struct {
	Entity string
	Column string
	Detail string
}

func (e *TypeInferenceError) Error() string {
	return fmt.Sprintf("cannot infer a type for %s.%s: %s", e.Entity, e.Column, e.Detail)
}
