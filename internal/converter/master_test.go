package converter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/table"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/types"
)

func TestAddMasterHierarchy(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name      string
		catalogue []types.Write
		expected  map[string]string
	}{{
		name: "copied from the catalogue",
		catalogue: []types.Write{
			types.TextWrite(TagCode, "MTX"),
			types.TextWrite(TagName, "Matrix"),
			types.TextWrite(TagLabel, "FoodEx2"),
			types.TextWrite(TagScopeNote, "scope"),
			types.TextWrite(TagVersion, "12.0"),
			types.DateWrite(TagLastUpdate, "2020/03/04"),
			types.DateWrite(TagValidFrom, "2017/06/08"),
			types.DateWrite(TagValidTo, "2030/01/01"),
			types.TextWrite(TagStatus, "DEPRECATED"),
			types.TextWrite(TagCatalogueGroups, "g1$g2"),
			types.TextWrite(TagNoteDescription, "not copied"),
		},
		expected: map[string]string{
			TagCode:            "MTX",
			TagName:            "Matrix",
			TagLabel:           "FoodEx2",
			TagScopeNote:       "scope",
			TagVersion:         "12.0",
			TagLastUpdate:      "2020/03/04",
			TagValidFrom:       "2017/06/08",
			TagStatus:          "DEPRECATED",
			TagDeprecated:      "1",
			TagHierarchyGroups: "g1$g2",
			TagApplicability:   MasterApplicability,
			TagHierarchyOrder:  MasterOrder,
		},
	}, {
		name: "published catalogue without groups",
		catalogue: []types.Write{
			types.TextWrite(TagCode, "ACTION"),
			types.TextWrite(TagStatus, "PUBLISHED MINOR"),
		},
		expected: map[string]string{
			TagCode:           "ACTION",
			TagStatus:         "PUBLISHED MINOR",
			TagDeprecated:     "0",
			TagApplicability:  MasterApplicability,
			TagHierarchyOrder: MasterOrder,
		},
	}}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			catalogue := table.New(SheetCatalogue, table.MustHeaderMap(DefaultCatalogueFields()...))
			catalogue.Apply(catalogue.AppendRow(), tc.catalogue...)

			hierarchy := table.New(SheetHierarchy, table.MustHeaderMap(DefaultHierarchyFields()...))
			AddMasterHierarchy(hierarchy, catalogue.Freeze())

			if hierarchy.Len() != 1 {
				t.Fatalf("expected the master row only, got %d row(s)", hierarchy.Len())
			}
			if diff := cmp.Diff(tc.expected, record(hierarchy.Header(), hierarchy.Row(0).Cells())); diff != "" {
				t.Errorf("master row differs from expected:\n%s", diff)
			}
		})
	}
}

func TestAddMasterHierarchyEmptyCatalogue(t *testing.T) {
	t.Parallel()
	catalogue := table.New(SheetCatalogue, table.MustHeaderMap(DefaultCatalogueFields()...)).Freeze()
	hierarchy := table.New(SheetHierarchy, table.MustHeaderMap(DefaultHierarchyFields()...))
	AddMasterHierarchy(hierarchy, catalogue)

	expected := map[string]string{
		TagApplicability:  MasterApplicability,
		TagHierarchyOrder: MasterOrder,
	}
	if diff := cmp.Diff(expected, record(hierarchy.Header(), hierarchy.Row(0).Cells())); diff != "" {
		t.Errorf("master row differs from expected:\n%s", diff)
	}
}

func TestMasterEventsCatalogueWithoutGroupsColumn(t *testing.T) {
	t.Parallel()
	catalogue := table.New(SheetCatalogue, table.MustHeaderMap(table.F(TagCode)))
	catalogue.Apply(catalogue.AppendRow(), types.TextWrite(TagCode, "MTX"))

	expected := []types.Event{
		types.CloseEvent(TagCode, "MTX"),
		types.CloseEvent(TagApplicability, MasterApplicability),
		types.CloseEvent(TagHierarchyOrder, MasterOrder),
	}
	if diff := cmp.Diff(expected, MasterEvents(catalogue.Freeze())); diff != "" {
		t.Errorf("events differ from expected:\n%s", diff)
	}
}
