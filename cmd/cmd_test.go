package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/config"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/converter"
)

func TestPrintReport(t *testing.T) {
	result := &converter.Result{
		RunID:  "run-1",
		Output: "out.xlsx",
		Format: config.FormatXLSX,
		Tables: []converter.TableResult{
			{Name: "catalogue", Rows: 1, Columns: 20},
			{Name: "term", Columns: 10, Err: fmt.Errorf("%w: term: unexpected EOF", converter.ErrParseFailure)},
		},
		Duration: 1234567 * time.Microsecond,
	}

	var out bytes.Buffer
	printReport(&out, result)

	expected := []string{
		"=== Catalogue conversion run-1 ===",
		"  catalogue             1 row(s)    20 column(s)  ok",
		"  term                  0 row(s)    10 column(s)  " + result.Tables[1].Err.Error(),
		"Output:       out.xlsx (xlsx)",
		"Time elapsed: 1.235s",
	}
	if diff := cmp.Diff(expected, strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")); diff != "" {
		t.Errorf("report differs from expected:\n%s", diff)
	}
}

func TestSetupLogging(t *testing.T) {
	testCases := []struct {
		level             string
		format            string
		expectedLevel     logrus.Level
		expectedFormatter logrus.Formatter
	}{
		{level: "debug", format: "json", expectedLevel: logrus.DebugLevel, expectedFormatter: &logrus.JSONFormatter{}},
		{level: "warn", format: "text", expectedLevel: logrus.WarnLevel, expectedFormatter: &logrus.TextFormatter{FullTimestamp: true}},
	}
	for _, tc := range testCases {
		l := logrus.New()
		cfg := config.Default()
		cfg.LogLevel = tc.level
		cfg.LogFormat = tc.format
		setupLogging(l, cfg)

		if l.GetLevel() != tc.expectedLevel {
			t.Errorf("%s: expected level %s, got %s", tc.level, tc.expectedLevel, l.GetLevel())
		}
		if fmt.Sprintf("%T", l.Formatter) != fmt.Sprintf("%T", tc.expectedFormatter) {
			t.Errorf("%s: expected formatter %T, got %T", tc.format, tc.expectedFormatter, l.Formatter)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)
	versionCmd.Run(versionCmd, nil)

	if !strings.HasPrefix(out.String(), "Catalogue XML to XLSX Converter\nVersion:    dev\n") {
		t.Errorf("unexpected version output %q", out.String())
	}
}
