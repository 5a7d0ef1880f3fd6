// =============================================================================
// Catalogue XML to XLSX Converter - Master Hierarchy
// =============================================================================
//
// The master hierarchy is not in the source document. Its row is derived from
// the catalogue row and is always the first data row of the hierarchy table.
//
// =============================================================================

package converter

import (
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/table"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/types"
)

// Fixed values of the master hierarchy row.
const (
	MasterApplicability = "both"
	MasterOrder         = "0"
)

// masterCopied are the catalogue fields copied verbatim into the master
// hierarchy row.
var masterCopied = []string{
	TagCode, TagName, TagLabel, TagScopeNote, TagVersion, TagLastUpdate, TagValidFrom, TagStatus,
}

// MasterEvents replays the first catalogue row as hierarchy elements. The
// catalogue groups become the hierarchy groups unchanged. Applicability and
// order are fixed. Fields absent from the catalogue (or an empty catalogue)
// produce no event.
func MasterEvents(catalogue *table.View) []types.Event {
	var events []types.Event
	for _, field := range masterCopied {
		if value, ok := catalogue.First(field); ok {
			events = append(events, types.CloseEvent(field, value))
		}
	}
	if groups, ok := catalogue.First(TagCatalogueGroups); ok {
		events = append(events,
			types.OpenEvent(TagHierarchyGroups, nil),
			types.CloseEvent(TagHierarchyGroup, groups),
			types.CloseEvent(TagHierarchyGroups, ""),
		)
	}
	return append(events,
		types.CloseEvent(TagApplicability, MasterApplicability),
		types.CloseEvent(TagHierarchyOrder, MasterOrder),
	)
}

// AddMasterHierarchy appends the master row to a hierarchy table that has no
// rows yet, running MasterEvents through the hierarchy state machine.
func AddMasterHierarchy(t *table.Table, catalogue *table.View) *table.Row {
	row := t.NewRow()
	state := NewState(KindHierarchy)
	for _, ev := range MasterEvents(catalogue) {
		var writes []types.Write
		state, writes = Step(state, ev)
		t.Apply(row, writes...)
	}
	t.Commit(row)
	return row
}
