package normalizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind tags the shape of a decoded JSON value. Traversal dispatches on the
// tag, never on ad hoc type assertions against interface values.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

// Value is a decoded JSON value. Object fields keep document order, which a
// map[string]any decode would destroy, and numbers stay as json.Number so the
// integer/float distinction survives until type inference.
type Value struct {
	Kind   Kind
	Bool   bool
	Number json.Number
	Str    string
	Fields []Field
	Elems  []*Value
}

// Field is one ordered key/value pair of a JSON object.
type Field struct {
	Name  string
	Value *Value
}

// IsScalar reports whether the value is a scalar; null counts as a scalar.
func (v *Value) IsScalar() bool {
	switch v.Kind {
	case KindNull, KindBool, KindNumber, KindString:
		return true
	}
	return false
}

// Scalar returns the Go representation of a scalar value: nil, bool,
// json.Number or string. Calling it on an object or array is a programming
// error and returns nil.
func (v *Value) Scalar() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Number
	case KindString:
		return v.Str
	}
	return nil
}

// ErrInvalidDocument marks parse failures, as opposed to structural errors
// raised by the traversal rules.
var ErrInvalidDocument = errors.New("invalid JSON document")

// Decode parses a JSON document into a Value tree.
func Decode(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	v, err := decodeValue(dec, tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after top-level value", ErrInvalidDocument)
	}
	return v, nil
}

func decodeValue(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t.String())
	case bool:
		return &Value{Kind: KindBool, Bool: t}, nil
	case json.Number:
		return &Value{Kind: KindNumber, Number: t}, nil
	case string:
		return &Value{Kind: KindString, Str: t}, nil
	case nil:
		return &Value{Kind: KindNull}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func decodeObject(dec *json.Decoder) (*Value, error) {
	v := &Value{Kind: KindObject}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		child, err := decodeValue(dec, valTok)
		if err != nil {
			return nil, err
		}
		v.Fields = append(v.Fields, Field{Name: key, Value: child})
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, err
	}
	return v, nil
}

func decodeArray(dec *json.Decoder) (*Value, error) {
	v := &Value{Kind: KindArray}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		elem, err := decodeValue(dec, tok)
		if err != nil {
			return nil, err
		}
		v.Elems = append(v.Elems, elem)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return nil, err
	}
	return v, nil
}
