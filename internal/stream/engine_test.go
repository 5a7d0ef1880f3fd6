package stream

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/table"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/types"
)

// echo writes the text of every closed element into the column of the same
// name.
func echo(ev types.Event) []types.Write {
	if ev.Kind != types.Close {
		return nil
	}
	return []types.Write{types.TextWrite(ev.Tag, ev.Text)}
}

func rows(t *table.Table) [][]string {
	out := make([][]string, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		out = append(out, t.Row(i).Text())
	}
	return out
}

func TestRun(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name          string
		input         string
		root          string
		expected      [][]string
		expectedStats Stats
	}{{
		name:     "one row per root occurrence",
		input:    `<doc><row><a>x</a><b>y</b></row><row><a>z</a></row></doc>`,
		root:     "row",
		expected: [][]string{{"x", "y"}, {"z", ""}},
		// two root closes are dispatched without a matching column
		expectedStats: Stats{Rows: 2, Events: 10, Skipped: 2},
	}, {
		name:          "events outside the root are ignored",
		input:         `<doc><a>outside</a><row><a>in</a></row><b>after</b></doc>`,
		root:          "row",
		expected:      [][]string{{"in", ""}},
		expectedStats: Stats{Rows: 1, Events: 4, Skipped: 1},
	}, {
		name:          "document element as root",
		input:         `<message><a>1</a><nested><b>2</b></nested></message>`,
		root:          "message",
		expected:      [][]string{{"1", "2"}},
		expectedStats: Stats{Rows: 1, Events: 8, Skipped: 2},
	}, {
		name:          "text fragments and entities are concatenated",
		input:         `<doc><row><a>one &amp; two<![CDATA[ three]]></a></row></doc>`,
		root:          "row",
		expected:      [][]string{{"one & two three", ""}},
		expectedStats: Stats{Rows: 1, Events: 4, Skipped: 1},
	}, {
		name:          "only the own text of an element",
		input:         `<doc><row><a> x <b>y</b> z </a></row></doc>`,
		root:          "row",
		expected:      [][]string{{"x  z", "y"}},
		expectedStats: Stats{Rows: 1, Events: 6, Skipped: 1},
	}, {
		name:          "namespace prefixes are stripped",
		input:         `<doc xmlns:c="urn:c"><c:row><c:a>x</c:a></c:row></doc>`,
		root:          "row",
		expected:      [][]string{{"x", ""}},
		expectedStats: Stats{Rows: 1, Events: 4, Skipped: 1},
	}, {
		name:          "no root element",
		input:         `<doc><a>x</a></doc>`,
		root:          "row",
		expected:      [][]string{},
		expectedStats: Stats{},
	}, {
		name:  "empty root elements still make rows",
		input: `<doc><row/><row></row></doc>`,
		root:  "row",
		expected: [][]string{
			{"", ""},
			{"", ""},
		},
		expectedStats: Stats{Rows: 2, Events: 4, Skipped: 2},
	}}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			log, _ := test.NewNullLogger()
			tbl := table.New("t", table.MustHeaderMap(table.F("a"), table.F("b")))

			stats, err := New(Options{Root: tc.root}, log).Run(strings.NewReader(tc.input), tbl, echo)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.expected, rows(tbl)); diff != "" {
				t.Errorf("rows differ from expected:\n%s", diff)
			}
			if diff := cmp.Diff(tc.expectedStats, stats); diff != "" {
				t.Errorf("stats differ from expected:\n%s", diff)
			}
		})
	}
}

func TestRunAttributes(t *testing.T) {
	t.Parallel()
	log, _ := test.NewNullLogger()
	tbl := table.New("t", table.MustHeaderMap(table.F("id")))
	handle := func(ev types.Event) []types.Write {
		if ev.Kind == types.Open && ev.Tag == "row" {
			return []types.Write{types.TextWrite("id", ev.Attr("id"))}
		}
		return nil
	}

	input := `<doc xmlns:x="urn:x"><row x:id="1"/><row id="2"/><row/></doc>`
	if _, err := New(Options{Root: "row"}, log).Run(strings.NewReader(input), tbl, handle); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([][]string{{"1"}, {"2"}, {""}}, rows(tbl)); diff != "" {
		t.Errorf("rows differ from expected:\n%s", diff)
	}
}

func TestRunObserveOutsideRoot(t *testing.T) {
	t.Parallel()
	log, _ := test.NewNullLogger()
	tbl := table.New("t", table.MustHeaderMap(table.F("group"), table.F("info")))

	var outside []string
	group := ""
	handle := func(ev types.Event) []types.Write {
		if !ev.InRoot {
			outside = append(outside, ev.Kind.String()+" "+ev.Tag)
		}
		switch {
		case ev.Kind == types.Open && ev.Tag == "detail":
			group = ev.Attr("name")
		case ev.Kind == types.Close && ev.Tag == "info":
			return []types.Write{types.TextWrite("group", group), types.TextWrite("info", ev.Text)}
		}
		return nil
	}

	input := `<list><detail name="d1"><info>a</info><info>b</info></detail><detail name="d2"><info>c</info></detail></list>`
	if _, err := New(Options{Root: "info", ObserveOutsideRoot: true}, log).Run(strings.NewReader(input), tbl, handle); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := [][]string{{"d1", "a"}, {"d1", "b"}, {"d2", "c"}}
	if diff := cmp.Diff(expected, rows(tbl)); diff != "" {
		t.Errorf("rows differ from expected:\n%s", diff)
	}
	expectedOutside := []string{"open list", "open detail", "close detail", "open detail", "close detail", "close list"}
	if diff := cmp.Diff(expectedOutside, outside); diff != "" {
		t.Errorf("outside events differ from expected:\n%s", diff)
	}
}

func TestRunFailureRollsBack(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name  string
		input string
	}{
		{name: "truncated", input: `<doc><row><a>x</a></row><row><a>y`},
		{name: "mismatched tags", input: `<doc><row><a>x</b></row></doc>`},
		{name: "unquoted attribute", input: `<doc><row><a x=1>v</a></row></doc>`},
		{name: "undefined entity", input: `<doc><row><a>&nope;</a></row></doc>`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			log, hook := test.NewNullLogger()
			tbl := table.New("hierarchy", table.MustHeaderMap(table.F("a"), table.F("b")))
			tbl.Apply(tbl.AppendRow(), types.TextWrite("a", "master"))

			stats, err := New(Options{Root: "row"}, log).Run(strings.NewReader(tc.input), tbl, echo)
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
			if stats.Rows != 0 {
				t.Errorf("expected no committed rows in the stats, got %d", stats.Rows)
			}
			if diff := cmp.Diff([][]string{{"master", ""}}, rows(tbl)); diff != "" {
				t.Errorf("table not rolled back:\n%s", diff)
			}
			entry := hook.LastEntry()
			if entry == nil || entry.Level != logrus.ErrorLevel {
				t.Errorf("expected the failure to be logged as an error, got %+v", entry)
			}
		})
	}
}

func TestRunProgress(t *testing.T) {
	t.Parallel()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.InfoLevel)
	tbl := table.New("t", table.MustHeaderMap(table.F("a")))

	input := "<doc>" + strings.Repeat("<row><a>x</a></row>", 5) + "</doc>"
	if _, err := New(Options{Root: "row", ProgressEvery: 2}, log).Run(strings.NewReader(input), tbl, echo); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var progress int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.InfoLevel {
			progress++
		}
	}
	if progress != 2 {
		t.Errorf("expected 2 progress lines for 5 rows every 2, got %d", progress)
	}
}

func TestRunTracesSkippedWrites(t *testing.T) {
	t.Parallel()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.TraceLevel)
	tbl := table.New("t", table.MustHeaderMap(table.F("a")))

	stats, err := New(Options{Root: "row"}, log).Run(strings.NewReader(`<doc><row><a>x</a><b>y</b></row></doc>`), tbl, echo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// <b> and the root itself have no column.
	if stats.Skipped != 2 {
		t.Errorf("expected 2 skipped writes, got %d", stats.Skipped)
	}

	var traced []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.TraceLevel {
			if e.Data["root"] != "row" {
				t.Errorf("expected the root field on trace entries, got %v", e.Data)
			}
			traced = append(traced, e.Message)
		}
	}
	expected := []string{"1 write(s) outside the header of t", "1 write(s) outside the header of t"}
	if diff := cmp.Diff(expected, traced); diff != "" {
		t.Errorf("trace entries differ from expected:\n%s", diff)
	}
}
