package transform

import "strings"

// Delimiter joins the fragments of a grouped cell.
//
// Fragments must not contain it themselves: nothing is escaped, so such a
// value becomes indistinguishable from two fragments. Use HasDelimiter to
// detect the case.
const Delimiter = "$"

// Group accumulates repeated string fragments for a single cell.
//
// A Group may carry a subject key: the destination field when it is only
// known from data inside the grouping session (e.g. the code of an implicit
// attribute).
type Group struct {
	fragments []string
	subject   string
	hasSubj   bool
}

// NewGroup starts an empty grouping session.
func NewGroup() *Group {
	return &Group{}
}

// Add appends a fragment.
func (g *Group) Add(value string) {
	g.fragments = append(g.fragments, value)
}

// SetSubject records the destination key. Only the first call is kept.
func (g *Group) SetSubject(key string) {
	if g.hasSubj {
		return
	}
	g.subject = key
	g.hasSubj = true
}

// Subject returns the destination key, if one was set.
func (g *Group) Subject() (string, bool) {
	return g.subject, g.hasSubj
}

// Len is the number of fragments.
func (g *Group) Len() int {
	return len(g.fragments)
}

// String joins the fragments with Delimiter. Zero fragments yield "".
func (g *Group) String() string {
	if g == nil {
		return ""
	}
	return strings.Join(g.fragments, Delimiter)
}

// HasDelimiter reports whether any fragment contains Delimiter.
func (g *Group) HasDelimiter() bool {
	for _, f := range g.fragments {
		if strings.Contains(f, Delimiter) {
			return true
		}
	}
	return false
}
