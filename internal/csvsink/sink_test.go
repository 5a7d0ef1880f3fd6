package csvsink

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/sink"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/table"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/types"
)

func view(name string, fields []table.Field, rows ...[]types.Write) *table.View {
	t := table.New(name, table.MustHeaderMap(fields...))
	for _, writes := range rows {
		t.Apply(t.AppendRow(), writes...)
	}
	return t.Freeze()
}

func TestExport(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	d, err := New(fs, "/out/tables", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hierarchy := view("hierarchy",
		[]table.Field{table.F("code"), {ID: "name", Label: "Name, long"}, table.F("validFrom"), table.F("hierarchyGroups")},
		[]types.Write{types.TextWrite("code", "MTX"), types.DateWrite("validFrom", "2020/01/01"), types.TextWrite("hierarchyGroups", "a$b")},
		[]types.Write{types.TextWrite("code", "report"), types.TextWrite("name", `Reporting "R"`)},
		nil,
	)
	notes := view("releaseNotes", []table.Field{table.F("operationInfo")})

	for _, v := range []*table.View{hierarchy, notes} {
		if _, err := sink.Export(d, v); err != nil {
			t.Fatalf("export %s: %v", v.Name(), err)
		}
	}
	if err := d.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	testCases := []struct {
		path     string
		expected string
	}{{
		path: "/out/tables/hierarchy.csv",
		expected: "code,\"Name, long\",validFrom,hierarchyGroups\n" +
			"MTX,,2020/01/01,a$b\n" +
			"report,\"Reporting \"\"R\"\"\",,\n" +
			",,,\n",
	}, {
		path:     "/out/tables/releaseNotes.csv",
		expected: "operationInfo\n",
	}}
	for _, tc := range testCases {
		data, err := afero.ReadFile(fs, tc.path)
		if err != nil {
			t.Fatalf("read %s: %v", tc.path, err)
		}
		if diff := cmp.Diff(tc.expected, string(data)); diff != "" {
			t.Errorf("%s differs from expected:\n%s", tc.path, diff)
		}
	}
}

func TestDelimiter(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	d, err := New(fs, "out", ';')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := view("term", []table.Field{table.F("termCode"), table.F("masterFlag")},
		[]types.Write{types.TextWrite("termCode", "A0001"), types.TextWrite("masterFlag", "1")})
	if _, err := sink.Export(d, v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.Save(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := afero.ReadFile(fs, d.Path("term"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("termCode;masterFlag\nA0001;1\n", string(data)); diff != "" {
		t.Errorf("term.csv differs from expected:\n%s", diff)
	}
}

func TestWriteOrder(t *testing.T) {
	t.Parallel()
	d, err := New(afero.NewMemMapFs(), "/out", ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := d.AppendRow(0); err == nil {
		t.Error("expected AppendRow before CreateTable to fail")
	}

	first, err := d.CreateTable("catalogue")
	if err != nil {
		t.Fatal(err)
	}
	header, err := d.AppendRow(first)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.AppendRow(first); err != nil {
		t.Fatal(err)
	}
	if err := d.WriteCell(header, 0, table.Cell{Value: "late"}); err == nil {
		t.Error("expected a write to a flushed row to fail")
	}

	if _, err := d.CreateTable("hierarchy"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AppendRow(first); err == nil {
		t.Error("expected a closed table to reject rows")
	}
}
