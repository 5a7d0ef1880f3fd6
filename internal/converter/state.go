// =============================================================================
// Catalogue XML to XLSX Converter - Table State Machines
// =============================================================================
//
// Every table is filled by a state machine: a State value plus a transition
//
//     Step(state, event) -> (state, writes)
//
// State is a tagged union over the five table kinds. Only the member matching
// Kind is meaningful. A transition never touches a table: it returns the cell
// writes the event produces and the parse engine applies them to the active
// row.
//
// OWNERSHIP:
//   Step takes ownership of the state it receives. Scratch accumulators are
//   shared between the old and the new value, so the old value must not be
//   stepped again.
//
// COMMON ELEMENTS:
//   Catalogue, hierarchy, attribute and term share the handling of dates and
//   status (see extended):
//     - validFrom, validTo, lastUpdate, versionDate are coerced to dates
//     - status writes status and deprecated ("1" when DEPRECATED)
//   Any other element closes into the column of the same name, if present.
//
// =============================================================================

package converter

import (
	"fmt"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/transform"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/types"
)

// StatusDeprecated is the status value flagged in the deprecated column.
const StatusDeprecated = "DEPRECATED"

// =============================================================================
// KINDS
// =============================================================================

// Kind selects the state machine of a table.
type Kind int

const (
	KindCatalogue Kind = iota
	KindHierarchy
	KindAttribute
	KindTerm
	KindNotes
)

// String returns the default table name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCatalogue:
		return SheetCatalogue
	case KindHierarchy:
		return SheetHierarchy
	case KindAttribute:
		return SheetAttribute
	case KindTerm:
		return SheetTerm
	case KindNotes:
		return SheetNotes
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ObservesOutsideRoot reports whether the kind needs the events of elements
// enclosing its root. Release notes read the operation name and date from the
// <operationsDetail> wrapping each <operationInfo> row.
func (k Kind) ObservesOutsideRoot() bool {
	return k == KindNotes
}

// KindOf maps a table name to its kind.
func KindOf(name string) (Kind, bool) {
	switch name {
	case SheetCatalogue:
		return KindCatalogue, true
	case SheetHierarchy:
		return KindHierarchy, true
	case SheetAttribute:
		return KindAttribute, true
	case SheetTerm:
		return KindTerm, true
	case SheetNotes:
		return KindNotes, true
	default:
		return 0, false
	}
}

// =============================================================================
// STATE
// =============================================================================

// State is the scratch state of one table conversion.
type State struct {
	Kind Kind

	Catalogue CatalogueState
	Hierarchy HierarchyState
	Term      TermState
	Notes     NotesState
}

// CatalogueState tracks the catalogue groups session and the release notes
// sub-structure.
type CatalogueState struct {
	// Groups is non-nil inside <catalogueGroups>.
	Groups *transform.Group

	// InNotes is true inside <releaseNotes>, where <version> describes a
	// note and not the catalogue.
	InNotes bool

	// NoteVersion is the internalVersion attribute of the open note <version>.
	NoteVersion string
}

// HierarchyState tracks the hierarchy groups session.
type HierarchyState struct {
	Groups *transform.Group
}

// TermState tracks hierarchy assignments and implicit attributes.
type TermState struct {
	// MasterCode is the code of the master hierarchy. Its assignments go to
	// the columns prefixed with MasterPrefix. Empty disables the substitution.
	MasterCode   string
	MasterPrefix string

	InAssignment bool
	Assignment   transform.Assignment

	// Implicit is non-nil inside <implicitAttribute>.
	Implicit *transform.Group
}

// NotesState holds the operation currently open.
type NotesState struct {
	Name    string
	Date    string
	GroupID int
}

// NewState returns the initial state of a kind.
func NewState(kind Kind) State {
	return State{Kind: kind}
}

// NewTermState returns the initial term state for a master hierarchy code.
func NewTermState(masterCode, prefix string) State {
	if prefix == "" {
		prefix = MasterPrefix
	}
	return State{Kind: KindTerm, Term: TermState{MasterCode: masterCode, MasterPrefix: prefix}}
}

// Step is the transition function of every kind.
func Step(s State, ev types.Event) (State, []types.Write) {
	var writes []types.Write
	switch s.Kind {
	case KindCatalogue:
		s.Catalogue, writes = stepCatalogue(s.Catalogue, ev)
	case KindHierarchy:
		s.Hierarchy, writes = stepHierarchy(s.Hierarchy, ev)
	case KindAttribute:
		writes = stepAttribute(ev)
	case KindTerm:
		s.Term, writes = stepTerm(s.Term, ev)
	case KindNotes:
		s.Notes, writes = stepNotes(s.Notes, ev)
	}
	return s, writes
}

// =============================================================================
// SHARED HANDLING
// =============================================================================

// extended handles the date and status elements common to catalogue,
// hierarchy, attribute and term. ok is false for any other element.
func extended(ev types.Event) (writes []types.Write, ok bool) {
	if ev.Kind != types.Close {
		return nil, false
	}
	switch ev.Tag {
	case TagValidFrom, TagValidTo, TagLastUpdate, TagVersionDate:
		return []types.Write{types.DateWrite(ev.Tag, transform.CoerceDate(ev.Text))}, true
	case TagStatus:
		return []types.Write{
			types.TextWrite(TagDeprecated, transform.EqualsFlag(ev.Text, StatusDeprecated)),
			types.TextWrite(TagStatus, ev.Text),
		}, true
	}
	return nil, false
}

// plain writes the element text into the column of the same name.
func plain(ev types.Event) []types.Write {
	if ev.Kind != types.Close {
		return nil
	}
	return []types.Write{types.TextWrite(ev.Tag, ev.Text)}
}

// groupStep runs a grouping session opened by container and collecting the
// text of item children. On container close the joined values are written to
// the container field. ok is false when the event is neither.
func groupStep(g *transform.Group, ev types.Event, container, item string) (_ *transform.Group, writes []types.Write, ok bool) {
	switch {
	case ev.Kind == types.Open && ev.Tag == container:
		return transform.NewGroup(), nil, true

	case ev.Kind == types.Close && ev.Tag == item:
		if g != nil {
			g.Add(ev.Text)
		}
		return g, nil, true

	case ev.Kind == types.Close && ev.Tag == container:
		if g == nil {
			return nil, nil, true
		}
		return nil, []types.Write{types.TextWrite(container, g.String())}, true
	}
	return g, nil, false
}

// =============================================================================
// CATALOGUE
// =============================================================================

func stepCatalogue(s CatalogueState, ev types.Event) (CatalogueState, []types.Write) {
	var (
		writes []types.Write
		ok     bool
	)
	if s.Groups, writes, ok = groupStep(s.Groups, ev, TagCatalogueGroups, TagCatalogueGroup); ok {
		return s, writes
	}

	if ev.Kind == types.Open {
		switch ev.Tag {
		case TagReleaseNotes:
			s.InNotes = true
		case TagVersion:
			if s.InNotes {
				s.NoteVersion = ev.Attr(AttrInternalVersion)
			}
		}
		return s, nil
	}

	if writes, ok := extended(ev); ok {
		return s, writes
	}

	switch ev.Tag {
	case TagReleaseNotes:
		s.InNotes = false
		return s, nil
	case TagVersion:
		if !s.InNotes {
			return s, plain(ev)
		}
		version := s.NoteVersion
		if version == "" {
			version = ev.Text
		}
		s.NoteVersion = ""
		return s, []types.Write{types.TextWrite(TagNoteVersion, version)}
	}
	return s, plain(ev)
}

// =============================================================================
// HIERARCHY
// =============================================================================

func stepHierarchy(s HierarchyState, ev types.Event) (HierarchyState, []types.Write) {
	var (
		writes []types.Write
		ok     bool
	)
	if s.Groups, writes, ok = groupStep(s.Groups, ev, TagHierarchyGroups, TagHierarchyGroup); ok {
		return s, writes
	}
	if writes, ok := extended(ev); ok {
		return s, writes
	}
	return s, plain(ev)
}

// =============================================================================
// ATTRIBUTE
// =============================================================================

func stepAttribute(ev types.Event) []types.Write {
	if writes, ok := extended(ev); ok {
		return writes
	}
	return plain(ev)
}

// =============================================================================
// TERM
// =============================================================================

func stepTerm(s TermState, ev types.Event) (TermState, []types.Write) {
	if ev.Kind == types.Open {
		switch ev.Tag {
		case TagAssignment:
			s.InAssignment = true
			s.Assignment.Reset()
		case TagImplicitAttr:
			s.Implicit = transform.NewGroup()
		}
		return s, nil
	}

	if writes, ok := extended(ev); ok {
		return s, writes
	}

	switch ev.Tag {
	case TagAssignment:
		if !s.InAssignment {
			return s, nil
		}
		writes := assignmentWrites(s.Assignment, s.MasterCode, s.MasterPrefix)
		s.InAssignment = false
		s.Assignment.Reset()
		return s, writes

	case TagAssHierarchy:
		if s.InAssignment {
			s.Assignment.HierarchyCode = ev.Text
		}
		return s, nil

	case TagAssParentCode:
		if s.InAssignment {
			s.Assignment.ParentCode = ev.Text
		}
		return s, nil

	case TagAssOrder:
		if s.InAssignment {
			s.Assignment.Order = ev.Text
		}
		return s, nil

	case TagAssReportable:
		if s.InAssignment {
			s.Assignment.Reportable = transform.NumericBoolean(ev.Text)
		}
		return s, nil

	case TagImplicitAttr:
		g := s.Implicit
		s.Implicit = nil
		if g == nil {
			return s, nil
		}
		key, ok := g.Subject()
		if !ok {
			return s, nil
		}
		return s, []types.Write{types.TextWrite(key, g.String())}

	case TagImplicitCode:
		if s.Implicit != nil {
			s.Implicit.SetSubject(ev.Text)
		}
		return s, nil

	case TagImplicitValue:
		if s.Implicit != nil {
			s.Implicit.Add(ev.Text)
		}
		return s, nil
	}

	return s, plain(ev)
}

// assignmentWrites flushes a hierarchy assignment into its four columns.
func assignmentWrites(a transform.Assignment, masterCode, prefix string) []types.Write {
	code := transform.ColumnCode(a.HierarchyCode, masterCode, prefix)
	flag, parentCode, order, reportable := transform.AssignmentColumns(code)
	return []types.Write{
		types.TextWrite(flag, a.Flag()),
		types.TextWrite(parentCode, a.ParentCode),
		types.TextWrite(order, a.Order),
		types.TextWrite(reportable, a.Reportable),
	}
}

// =============================================================================
// RELEASE NOTES
// =============================================================================

// stepNotes emits one row per <operationInfo>. The operation name and date
// come from the enclosing <operationsDetail>; every closed detail starts a
// new group id.
func stepNotes(s NotesState, ev types.Event) (NotesState, []types.Write) {
	switch {
	case ev.Kind == types.Open && ev.Tag == TagOperationDetail:
		s.Name = ev.Attr(TagOperationName)
		s.Date = transform.CoerceDate(ev.Attr(TagOperationDate))
		return s, nil

	case ev.Kind == types.Close && ev.Tag == TagOperationInfo:
		return s, []types.Write{
			types.TextWrite(TagOperationName, s.Name),
			types.DateWrite(TagOperationDate, s.Date),
			types.TextWrite(TagOperationInfo, ev.Text),
			types.TextWrite(FieldOperationGrp, fmt.Sprint(s.GroupID)),
		}

	case ev.Kind == types.Close && ev.Tag == TagOperationDetail:
		s.Name = ""
		s.Date = ""
		s.GroupID++
		return s, nil
	}
	return s, nil
}
