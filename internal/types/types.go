// =============================================================================
// Catalogue XML to XLSX Converter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - stream     (produces events, applies writes)
//   - converter  (consumes events, produces writes)
//   - table      (stores the written values)
//
// =============================================================================

package types

// =============================================================================
// PARSE EVENTS
// =============================================================================

// EventKind tells whether an element is opening or closing.
type EventKind int

const (
	// Open is emitted when a start tag is read.
	Open EventKind = iota

	// Close is emitted when the matching end tag is read.
	Close
)

// String returns a readable name for the event kind.
func (k EventKind) String() string {
	if k == Open {
		return "open"
	}
	return "close"
}

// Event is a single element open or close observed by the parse engine.
type Event struct {
	// Kind is Open or Close.
	Kind EventKind

	// Tag is the local name of the element (namespace prefix stripped).
	Tag string

	// Attrs holds the element attributes keyed by local name.
	// Only set on Open events.
	Attrs map[string]string

	// Text is the character data of the element, all fragments concatenated.
	// Only set on Close events.
	Text string

	// InRoot reports whether the event happened inside a root element span
	// (the root open and close themselves included).
	InRoot bool
}

// Attr returns the named attribute or "" when it is missing.
func (e Event) Attr(name string) string {
	if e.Attrs == nil {
		return ""
	}
	return e.Attrs[name]
}

// OpenEvent builds an Open event. Mostly useful in tests and when a converter
// replays synthetic events (e.g. the master hierarchy row).
func OpenEvent(tag string, attrs map[string]string) Event {
	return Event{Kind: Open, Tag: tag, Attrs: attrs, InRoot: true}
}

// CloseEvent builds a Close event carrying the element text.
func CloseEvent(tag, text string) Event {
	return Event{Kind: Close, Tag: tag, Text: text, InRoot: true}
}

// =============================================================================
// CELL WRITES
// =============================================================================

// ValueKind is the kind of a cell value.
type ValueKind int

const (
	// Text is a plain string cell.
	Text ValueKind = iota

	// Date is a calendar date cell, displayed as yyyy/MM/dd.
	Date
)

// Write is one cell write produced by a converter transition.
// Field is the field identifier; the active HeaderMap resolves it to a column.
// A write whose field is not in the HeaderMap is dropped.
type Write struct {
	Field string
	Kind  ValueKind

	// Value is the text for Text writes, or the canonical yyyy/MM/dd form
	// for Date writes. An empty Value leaves the cell empty.
	Value string
}

// TextWrite builds a plain text write.
func TextWrite(field, value string) Write {
	return Write{Field: field, Kind: Text, Value: value}
}

// DateWrite builds a date write. value must already be canonical (yyyy/MM/dd)
// or empty.
func DateWrite(field, value string) Write {
	return Write{Field: field, Kind: Date, Value: value}
}
