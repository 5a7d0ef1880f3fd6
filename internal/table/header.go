// =============================================================================
// Catalogue XML to XLSX Converter - Header Map
// =============================================================================
//
// A HeaderMap is the ordered mapping from a field identifier (the key used by
// converters to address a cell) to a column index and a column label (the text
// written into the header row).
//
// Most tables use a fixed list of FieldSpecs. The term table computes its list
// at run time from the hierarchy and attribute tables. In both cases column
// indices are assigned in insertion order starting at 0, so a HeaderMap is
// always contiguous.
//
// =============================================================================

package table

import "fmt"

// Field is a column declaration before indices are assigned.
type Field struct {
	// ID is the field identifier converters write to.
	ID string `yaml:"field"`

	// Label is the header text. Defaults to ID when empty.
	Label string `yaml:"label"`
}

// F is shorthand for a Field whose label equals its identifier.
func F(id string) Field {
	return Field{ID: id, Label: id}
}

// FieldSpec is a field bound to its column.
type FieldSpec struct {
	ID    string
	Index int
	Label string
}

// HeaderMap maps field identifiers to columns.
type HeaderMap struct {
	specs []FieldSpec
	byID  map[string]int
}

// NewHeaderMap builds a HeaderMap from fields in column order.
// It fails on empty or duplicated identifiers.
func NewHeaderMap(fields ...Field) (*HeaderMap, error) {
	h := &HeaderMap{byID: make(map[string]int, len(fields))}
	for _, f := range fields {
		if !h.Add(f) {
			if f.ID == "" {
				return nil, fmt.Errorf("empty field identifier at column %d", len(h.specs))
			}
			return nil, fmt.Errorf("duplicate field identifier %q", f.ID)
		}
	}
	return h, nil
}

// MustHeaderMap is NewHeaderMap that panics on error. Meant for static lists.
func MustHeaderMap(fields ...Field) *HeaderMap {
	h, err := NewHeaderMap(fields...)
	if err != nil {
		panic(err)
	}
	return h
}

// Add appends a field at the next column index. It returns false, and leaves
// the map unchanged, when the identifier is empty or already present.
func (h *HeaderMap) Add(f Field) bool {
	if h.byID == nil {
		h.byID = make(map[string]int)
	}
	if f.ID == "" {
		return false
	}
	if _, exists := h.byID[f.ID]; exists {
		return false
	}
	label := f.Label
	if label == "" {
		label = f.ID
	}
	spec := FieldSpec{ID: f.ID, Index: len(h.specs), Label: label}
	h.byID[f.ID] = spec.Index
	h.specs = append(h.specs, spec)
	return true
}

// Lookup returns the column index of a field identifier.
func (h *HeaderMap) Lookup(id string) (int, bool) {
	if h == nil {
		return -1, false
	}
	i, ok := h.byID[id]
	return i, ok
}

// Spec returns the FieldSpec of a field identifier.
func (h *HeaderMap) Spec(id string) (FieldSpec, bool) {
	i, ok := h.Lookup(id)
	if !ok {
		return FieldSpec{}, false
	}
	return h.specs[i], true
}

// Len is the number of columns.
func (h *HeaderMap) Len() int {
	if h == nil {
		return 0
	}
	return len(h.specs)
}

// Specs returns a copy of the FieldSpecs in column order.
func (h *HeaderMap) Specs() []FieldSpec {
	if h == nil {
		return nil
	}
	out := make([]FieldSpec, len(h.specs))
	copy(out, h.specs)
	return out
}

// Labels returns the header row: column labels in column order.
func (h *HeaderMap) Labels() []string {
	if h == nil {
		return nil
	}
	labels := make([]string, len(h.specs))
	for i, s := range h.specs {
		labels[i] = s.Label
	}
	return labels
}

// IndexOfLabel returns the first column whose label matches exactly, or -1.
func (h *HeaderMap) IndexOfLabel(label string) int {
	if h == nil {
		return -1
	}
	for _, s := range h.specs {
		if s.Label == label {
			return s.Index
		}
	}
	return -1
}
