// =============================================================================
// Catalogue XML to XLSX Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration
// (config.yaml). Every option has a default, so the converter also runs
// without any configuration file.
//
// CONFIGURATION SECTIONS:
//   1. Logging: level and format
//   2. Output: workbook or CSV directory, work directory, run summary
//   3. Processing: concurrency, progress logging, master hierarchy prefix
//   4. Tables: one block per output table (sheet name, root element,
//      subtree filter rules, optional column overrides)
//
// EXAMPLE:
//   log_level: debug
//   output_format: xlsx
//   max_concurrency: 1
//   tables:
//     term:
//       columns:
//         - { field: termCode, label: "Term code" }
//         - { field: termExtendedName, label: "Extended name" }
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/table"
)

// DefaultPath is where the CLI looks for a configuration file.
const DefaultPath = "config.yaml"

// Output formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Table names, in workbook order.
const (
	TableCatalogue = "catalogue"
	TableHierarchy = "hierarchy"
	TableAttribute = "attribute"
	TableTerm      = "term"
	TableNotes     = "releaseNotes"
)

// TableNames lists every configurable table.
var TableNames = []string{TableCatalogue, TableHierarchy, TableAttribute, TableTerm, TableNotes}

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "trace", "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputFormat is "xlsx" (one workbook, one sheet per table) or "csv"
	// (one directory, one file per table). When empty it is inferred from
	// the output path: a path ending in .xlsx is a workbook, anything else
	// a CSV directory.
	OutputFormat string `yaml:"output_format"`

	// WorkDir receives run summaries and, with KeepFiltered, the filtered
	// per-table XML streams. Each run gets its own uuid-named subdirectory.
	// Default: "./work"
	WorkDir string `yaml:"work_dir"`

	// KeepFiltered dumps every filtered per-table stream into the run work
	// directory. Useful to debug filter rules.
	// Default: false
	KeepFiltered bool `yaml:"keep_filtered"`

	// WriteSummary writes a summary.log into the run work directory.
	// Default: false
	WriteSummary bool `yaml:"write_summary"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of independent tables built at the
	// same time. Set to 1 for strictly sequential processing.
	// Default: 3
	MaxConcurrency int `yaml:"max_concurrency"`

	// ProgressEvery logs a progress line every N rows. Negative disables it.
	// Default: 500
	ProgressEvery int `yaml:"progress_every"`

	// MasterPrefix replaces the master hierarchy code in term column names.
	// Default: "master"
	MasterPrefix string `yaml:"master_prefix"`

	// =========================================================================
	// TABLE SETTINGS
	// =========================================================================

	// Tables configures each output table, keyed by table name.
	Tables map[string]*TableConfig `yaml:"tables"`
}

// =============================================================================
// TABLE CONFIGURATION STRUCTURE
// =============================================================================

// TableConfig configures one output table.
type TableConfig struct {
	// Sheet is the name of the output sheet (or CSV file stem).
	// Default: the table name.
	Sheet string `yaml:"sheet"`

	// Root is the element whose occurrences become rows.
	Root string `yaml:"root"`

	// Include keeps only the subtrees rooted at these elements.
	// Exclude drops the subtrees rooted at these elements.
	// At most one of them may be set.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`

	// Columns overrides the default column list (order and labels).
	// For the term table only the intrinsic columns can be overridden.
	Columns []table.Field `yaml:"columns"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	cfg := &MainConfig{}
	applyDefaults(cfg)
	return cfg
}

// Load loads the main configuration file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//   - optional: When true a missing file is not an error and defaults are
//     returned instead.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string, optional bool) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses, completes and validates a configuration document.
func Parse(data []byte) (*MainConfig, error) {
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *MainConfig) {
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.WorkDir == "" {
		config.WorkDir = "./work"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 3
	}
	if config.ProgressEvery == 0 {
		config.ProgressEvery = 500
	}
	if config.MasterPrefix == "" {
		config.MasterPrefix = "master"
	}

	if config.Tables == nil {
		config.Tables = make(map[string]*TableConfig, len(TableNames))
	}
	for _, name := range TableNames {
		tc := config.Tables[name]
		if tc == nil {
			tc = &TableConfig{}
			config.Tables[name] = tc
		}
		applyTableDefaults(name, tc)
	}
}

// applyTableDefaults fills a table block. The default filter rules select
// the part of the full catalogue document each table reads.
func applyTableDefaults(name string, tc *TableConfig) {
	if tc.Sheet == "" {
		tc.Sheet = name
	}

	var root string
	var include, exclude []string
	switch name {
	case TableCatalogue:
		root = "message"
		exclude = []string{"hierarchy", "attribute", "term"}
	case TableHierarchy:
		root = "hierarchy"
		include = []string{"hierarchy"}
	case TableAttribute:
		root = "attribute"
		include = []string{"attribute"}
	case TableTerm:
		root = "term"
		include = []string{"term"}
	case TableNotes:
		root = "operationInfo"
		include = []string{"operationsDetail"}
	}

	if tc.Root == "" {
		tc.Root = root
	}
	if len(tc.Include) == 0 && len(tc.Exclude) == 0 {
		tc.Include = include
		tc.Exclude = exclude
	}
}

// Validate checks option values.
func (c *MainConfig) Validate() error {
	var errs []error

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format: unknown format %q", c.LogFormat))
	}
	switch c.OutputFormat {
	case "", FormatXLSX, FormatCSV:
	default:
		errs = append(errs, fmt.Errorf("output_format: unknown format %q", c.OutputFormat))
	}
	if c.MaxConcurrency < 1 {
		errs = append(errs, fmt.Errorf("max_concurrency: must be at least 1, got %d", c.MaxConcurrency))
	}

	sheets := make(map[string]string, len(c.Tables))
	for name, tc := range c.Tables {
		if !knownTable(name) {
			errs = append(errs, fmt.Errorf("tables: unknown table %q", name))
			continue
		}
		if other, dup := sheets[tc.Sheet]; dup {
			errs = append(errs, fmt.Errorf("tables.%s: sheet %q already used by %s", name, tc.Sheet, other))
		}
		sheets[tc.Sheet] = name

		if tc.Root == "" {
			errs = append(errs, fmt.Errorf("tables.%s: root must be set", name))
		}
		if len(tc.Include) > 0 && len(tc.Exclude) > 0 {
			errs = append(errs, fmt.Errorf("tables.%s: include and exclude are mutually exclusive", name))
		}
		if len(tc.Columns) > 0 {
			if _, err := table.NewHeaderMap(tc.Columns...); err != nil {
				errs = append(errs, fmt.Errorf("tables.%s.columns: %w", name, err))
			}
		}
	}

	return errors.Join(errs...)
}

// Table returns the block of a table. Unknown names get an empty block.
func (c *MainConfig) Table(name string) *TableConfig {
	if tc, ok := c.Tables[name]; ok && tc != nil {
		return tc
	}
	tc := &TableConfig{}
	applyTableDefaults(name, tc)
	return tc
}

// Format resolves the output format for an output path.
func (c *MainConfig) Format(outputPath string) string {
	if c.OutputFormat != "" {
		return c.OutputFormat
	}
	if strings.EqualFold(filepath.Ext(outputPath), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

func knownTable(name string) bool {
	for _, n := range TableNames {
		if n == name {
			return true
		}
	}
	return false
}
