package converter

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/table"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/types"
)

// attributeRow is one attribute definition: code, name, type, catalogue code.
type attributeRow [4]string

func attributeView(rows ...attributeRow) *table.View {
	t := table.New(SheetAttribute, table.MustHeaderMap(DefaultAttributeFields()...))
	for _, r := range rows {
		t.Apply(t.AppendRow(),
			types.TextWrite(TagCode, r[0]),
			types.TextWrite(TagName, r[1]),
			types.TextWrite(TagAttrType, r[2]),
			types.TextWrite(TagAttrCatCode, r[3]),
		)
	}
	return t.Freeze()
}

func hierarchyView(codes ...string) *table.View {
	t := table.New(SheetHierarchy, table.MustHeaderMap(DefaultHierarchyFields()...))
	for _, code := range codes {
		t.Apply(t.AppendRow(), types.TextWrite(TagCode, code))
	}
	return t.Freeze()
}

func TestTermAttributes(t *testing.T) {
	t.Parallel()
	attributes := attributeView(
		attributeRow{"detailLevel", "Detail level", "xs:string", ""},
		attributeRow{"F99", "Foreign facet", AttrTypeCatalogue, "OTHER.H9"},
		attributeRow{"F01", "Local facet", AttrTypeCatalogue, "MTX.report"},
		attributeRow{"F02", "No hierarchy", AttrTypeCatalogue, "nodot"},
		attributeRow{"", "No code", "xs:string", ""},
	)

	testCases := []struct {
		name        string
		hierarchies *table.View
		expected    []TermAttribute
	}{{
		name:        "foreign hierarchy is kept",
		hierarchies: hierarchyView("MTX", "report"),
		expected: []TermAttribute{
			{Code: "detailLevel", Name: "Detail level"},
			{Code: "F99", Name: "Foreign facet"},
		},
	}, {
		name:        "hierarchy of this catalogue is left out",
		hierarchies: hierarchyView("MTX", "report", "H9"),
		expected: []TermAttribute{
			{Code: "detailLevel", Name: "Detail level"},
		},
	}, {
		name:        "no hierarchies",
		hierarchies: hierarchyView(),
		expected: []TermAttribute{
			{Code: "detailLevel", Name: "Detail level"},
			{Code: "F99", Name: "Foreign facet"},
			{Code: "F01", Name: "Local facet"},
		},
	}}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := TermAttributes(attributes, tc.hierarchies)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("attributes differ from expected:\n%s", diff)
			}
		})
	}
}

func TestTermAttributesInconsistent(t *testing.T) {
	t.Parallel()
	// A configuration without the name column leaves the names empty.
	tbl := table.New(SheetAttribute, table.MustHeaderMap(table.F(TagCode), table.F(TagAttrType)))
	tbl.Apply(tbl.AppendRow(), types.TextWrite(TagCode, "A1"), types.TextWrite(TagAttrType, "xs:string"))
	attributes := tbl.Freeze()

	if _, err := TermAttributes(attributes, hierarchyView("MTX")); !errors.Is(err, ErrCrossTable) {
		t.Fatalf("expected ErrCrossTable, got %v", err)
	}

	empty := table.New(SheetAttribute, table.MustHeaderMap(table.F(TagCode))).Freeze()
	if got, err := TermAttributes(empty, hierarchyView("MTX")); err != nil || len(got) != 0 {
		t.Errorf("an empty table is consistent, got %v, %v", got, err)
	}
}

func TestDeriveTermHeader(t *testing.T) {
	t.Parallel()
	intrinsic := []table.Field{table.F(TagTermCode), table.F(TagTermExtName)}

	testCases := []struct {
		name         string
		attributes   *table.View
		hierarchies  *table.View
		masterCode   string
		expectedIDs  []string
		expectedWarn bool
	}{{
		name: "attributes then hierarchies",
		attributes: attributeView(
			attributeRow{"detailLevel", "Detail level", "xs:string", ""},
			attributeRow{"F01", "Local facet", AttrTypeCatalogue, "MTX.report"},
		),
		hierarchies: hierarchyView("MTX", "report"),
		masterCode:  "MTX",
		expectedIDs: []string{
			TagTermCode, TagTermExtName,
			"detailLevel",
			"masterFlag", "masterParentCode", "masterOrder", "masterReportable",
			"reportFlag", "reportParentCode", "reportOrder", "reportReportable",
		},
	}, {
		name:        "master row without a code",
		attributes:  attributeView(),
		hierarchies: hierarchyView("", "report"),
		expectedIDs: []string{
			TagTermCode, TagTermExtName,
			"reportFlag", "reportParentCode", "reportOrder", "reportReportable",
		},
	}, {
		name: "duplicate keys keep the first column",
		attributes: attributeView(
			attributeRow{TagTermCode, "Clashes with an intrinsic column", "xs:string", ""},
		),
		hierarchies: hierarchyView("MTX", "report", "report"),
		masterCode:  "MTX",
		expectedIDs: []string{
			TagTermCode, TagTermExtName,
			"masterFlag", "masterParentCode", "masterOrder", "masterReportable",
			"reportFlag", "reportParentCode", "reportOrder", "reportReportable",
		},
		expectedWarn: true,
	}}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			log, hook := test.NewNullLogger()
			header, err := DeriveTermHeader(intrinsic, tc.attributes, tc.hierarchies, tc.masterCode, "", log)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var ids []string
			for _, s := range header.Specs() {
				ids = append(ids, s.ID)
			}
			if diff := cmp.Diff(tc.expectedIDs, ids); diff != "" {
				t.Errorf("term columns differ from expected:\n%s", diff)
			}
			if tc.expectedWarn {
				entry := hook.LastEntry()
				if entry == nil || entry.Level != logrus.WarnLevel {
					t.Errorf("expected a warning, got %+v", entry)
				}
			}
		})
	}
}

func TestDeriveTermHeaderLabels(t *testing.T) {
	t.Parallel()
	log, _ := test.NewNullLogger()
	attributes := attributeView(attributeRow{"detailLevel", "Detail level", "xs:string", ""})
	header, err := DeriveTermHeader([]table.Field{table.F(TagTermCode)}, attributes, hierarchyView("MTX"), "MTX", "main", log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{TagTermCode, "Detail level", "mainFlag", "mainParentCode", "mainOrder", "mainReportable"}
	if diff := cmp.Diff(expected, header.Labels()); diff != "" {
		t.Errorf("labels differ from expected:\n%s", diff)
	}
}

func TestDeriveTermHeaderInconsistent(t *testing.T) {
	t.Parallel()
	log, hook := test.NewNullLogger()
	tbl := table.New(SheetAttribute, table.MustHeaderMap(table.F(TagCode), table.F(TagAttrType)))
	tbl.Apply(tbl.AppendRow(), types.TextWrite(TagCode, "A1"), types.TextWrite(TagAttrType, "xs:string"))

	header, err := DeriveTermHeader([]table.Field{table.F(TagTermCode)}, tbl.Freeze(), hierarchyView("MTX"), "MTX", "", log)
	if !errors.Is(err, ErrCrossTable) {
		t.Fatalf("expected ErrCrossTable, got %v", err)
	}
	if header == nil {
		t.Fatal("expected the hierarchy columns to be derived anyway")
	}
	expected := []string{TagTermCode, "masterFlag", "masterParentCode", "masterOrder", "masterReportable"}
	if diff := cmp.Diff(expected, header.Labels()); diff != "" {
		t.Errorf("labels differ from expected:\n%s", diff)
	}

	var logged bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			logged = true
		}
	}
	if !logged {
		t.Error("expected the inconsistency to be logged as an error")
	}
}

func TestDeriveTermHeaderBadIntrinsic(t *testing.T) {
	t.Parallel()
	log, _ := test.NewNullLogger()
	_, err := DeriveTermHeader([]table.Field{table.F(TagTermCode), table.F(TagTermCode)}, attributeView(), hierarchyView(), "", "", log)
	if err == nil {
		t.Error("expected duplicated intrinsic columns to fail")
	}
}
