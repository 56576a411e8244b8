package embedded

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pfrederiksen/subsidy-scrape/internal/document"
)

// Kind is the JSON type a field must decode as.
type Kind int

const (
	KindString Kind = iota
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Field is one required member of every record.
type Field struct {
	Name string
	Kind Kind
}

// Record holds a decoded object's field values, formatted as text in the
// order of the Extractor's Fields.
type Record []string

// Extractor locates and decodes one embedded variable.
type Extractor struct {
	Variable string
	Fields   []Field
}

// trailingComma is the only malformation repaired.
const trailingComma = ", ]"

// Marker returns the assignment text searched for in script bodies.
func (x Extractor) Marker() string {
	return "var " + x.Variable + " = "
}

// Literal returns the raw JSON text assigned to the variable.
func (x Extractor) Literal(doc *document.Document) (string, error) {
	marker := x.Marker()
	for script := range doc.Find("script") {
		body, err := script.InnerHTML()
		if err != nil {
			return "", fmt.Errorf("reading script: %w", err)
		}
		start := strings.Index(body, marker)
		if start < 0 {
			continue
		}
		start += len(marker)
		end := strings.IndexByte(body[start:], ';')
		if end < 0 {
			return "", fmt.Errorf("%s: %w", x.Variable, ErrTerminatorNotFound)
		}
		return body[start : start+end], nil
	}
	return "", fmt.Errorf("%s: %w", x.Variable, ErrVariableNotFound)
}

// Repair removes a trailing comma before an array close.
func Repair(literal string) string {
	return strings.ReplaceAll(literal, trailingComma, "]")
}

// Extract returns one Record per object in the embedded array.
func (x Extractor) Extract(doc *document.Document) ([]Record, error) {
	literal, err := x.Literal(doc)
	if err != nil {
		return nil, err
	}
	return x.Decode(literal)
}

// Decode repairs and decodes a literal.
func (x Extractor) Decode(literal string) ([]Record, error) {
	var objects []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(Repair(literal)), &objects); err != nil {
		return nil, &DecodeError{Variable: x.Variable, Err: err}
	}
	if objects == nil {
		return nil, &DecodeError{Variable: x.Variable, Err: errors.New("value is not an array")}
	}

	records := make([]Record, 0, len(objects))
	for i, obj := range objects {
		if obj == nil {
			return nil, &DecodeError{Variable: x.Variable, Err: fmt.Errorf("element %d is not an object", i)}
		}
		rec := make(Record, len(x.Fields))
		for j, f := range x.Fields {
			raw, ok := obj[f.Name]
			if !ok {
				return nil, &FieldError{Variable: x.Variable, Index: i, Field: f.Name, Missing: true}
			}
			v, err := decodeField(raw, f.Kind)
			if err != nil {
				return nil, &FieldError{Variable: x.Variable, Index: i, Field: f.Name, Err: err}
			}
			rec[j] = v
		}
		records = append(records, rec)
	}
	return records, nil
}

var errNull = errors.New("null value")

func decodeField(raw json.RawMessage, kind Kind) (string, error) {
	if string(raw) == "null" {
		return "", fmt.Errorf("want %s: %w", kind, errNull)
	}
	switch kind {
	case KindString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("want %s: %w", kind, err)
		}
		return s, nil
	case KindNumber:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return "", fmt.Errorf("want %s: %w", kind, err)
		}
		return FormatNumber(f), nil
	default:
		return "", fmt.Errorf("unsupported kind %s", kind)
	}
}

// FormatNumber renders f with the fewest digits that round-trip.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
