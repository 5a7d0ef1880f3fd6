// =============================================================================
// Catalogue XML to XLSX Converter - Conversion Orchestrator
// =============================================================================
//
// This module orchestrates a whole conversion run, from the catalogue XML to
// the persisted tables.
//
// CONVERSION PIPELINE:
//   1. Check the input catalogue
//   2. Build the independent tables concurrently:
//        catalogue -> hierarchy   (the master hierarchy copies the catalogue)
//        attribute
//        releaseNotes
//   3. Build the term table (its columns come from hierarchy and attribute)
//   4. Export every table to the sink, in sheet order
//   5. Save the sink
//   6. Write the run summary (optional)
//
// Each table reads its own filtered view of the input (see xmlfilter) and is
// frozen once built: later stages only ever see finished tables.
//
// ERRORS:
//   - A table that cannot be parsed keeps the rows it had before streaming
//     (none, or the master row for hierarchy). The run continues.
//   - Inconsistent attribute columns leave the term table without attribute
//     columns. The run continues.
//   - A sink failure aborts the run with ErrOutput.
//
// CONCURRENCY:
//   max_concurrency bounds the number of tables built at the same time;
//   1 builds them one after the other. The sink is only used after every
//   table is built, from a single goroutine.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/config"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/csvsink"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/sink"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/table"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/xlsx"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of a conversion run.
type Result struct {
	// RunID identifies the run in logs and in the work directory.
	RunID string

	// Input and Output are the paths given to Convert.
	Input  string
	Output string

	// Format is the output format actually used ("xlsx" or "csv").
	Format string

	// Tables holds one entry per table, in sheet order.
	Tables []TableResult

	// SummaryPath is the run summary file, when one was written.
	SummaryPath string

	// Duration is the wall time of the run.
	Duration time.Duration
}

// TableResult describes one built table.
type TableResult struct {
	Kind    Kind
	Name    string
	Rows    int
	Columns int

	// Err is a non-fatal error (ErrParseFailure, ErrCrossTable).
	Err error
}

// Table returns the result of a table kind.
func (r *Result) Table(kind Kind) (TableResult, bool) {
	for _, t := range r.Tables {
		if t.Kind == kind {
			return t, true
		}
	}
	return TableResult{}, false
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// SinkFactory opens the sink of a run.
type SinkFactory func(format, output string) (sink.Sink, error)

// Converter runs conversions with one configuration.
type Converter struct {
	cfg     *config.MainConfig
	files   *utils.FileManager
	log     logrus.FieldLogger
	newSink SinkFactory
}

// Option customises a Converter.
type Option func(*Converter)

// WithFileManager replaces the file manager (and so the filesystem).
func WithFileManager(fm *utils.FileManager) Option {
	return func(c *Converter) { c.files = fm }
}

// WithSinkFactory replaces the sink selection.
func WithSinkFactory(f SinkFactory) Option {
	return func(c *Converter) { c.newSink = f }
}

// New creates a Converter.
//
// PARAMETERS:
//   - cfg: The application configuration. nil means defaults.
//   - log: The logger. nil means the logrus standard logger.
func New(cfg *config.MainConfig, log logrus.FieldLogger, opts ...Option) *Converter {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Converter{cfg: cfg, log: log}
	for _, opt := range opts {
		opt(c)
	}
	if c.files == nil {
		c.files = utils.NewFileManager(nil, cfg.WorkDir)
	}
	if c.newSink == nil {
		c.newSink = c.defaultSink
	}
	return c
}

func (c *Converter) defaultSink(format, output string) (sink.Sink, error) {
	switch format {
	case config.FormatXLSX:
		if err := c.files.EnsureParentDir(output); err != nil {
			return nil, err
		}
		return xlsx.Create(output)
	case config.FormatCSV:
		return csvsink.New(c.files.Fs, output, ',')
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Convert converts the catalogue at input into output.
//
// RETURNS:
//   - The run result, also when the run failed (it then holds the tables
//     built so far).
//   - An error if the input is missing, the run was cancelled, or the sink
//     failed (wrapping ErrOutput).
func (c *Converter) Convert(ctx context.Context, input, output string) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:  utils.NewRunID(),
		Input:  input,
		Output: output,
		Format: c.cfg.Format(output),
	}
	log := c.log.WithField("run", result.RunID)

	// =========================================================================
	// STEP 1: CHECK INPUT
	// =========================================================================

	if err := c.files.CheckInput(input); err != nil {
		return result, err
	}
	log.Infof("Converting %s to %s (%s)", input, output, result.Format)

	// =========================================================================
	// STEP 2 AND 3: BUILD TABLES
	// =========================================================================

	r := &run{Converter: c, id: result.RunID, input: input, log: log}
	views, results, err := r.buildAll(ctx)
	result.Tables = results
	if err != nil {
		result.Duration = time.Since(start)
		return result, err
	}

	// =========================================================================
	// STEP 4 AND 5: EXPORT AND SAVE
	// =========================================================================

	if err := c.export(result.Format, output, views, log); err != nil {
		result.Duration = time.Since(start)
		return result, err
	}

	result.Duration = time.Since(start)
	log.Infof("Conversion completed in %s", result.Duration)

	// =========================================================================
	// STEP 6: SUMMARY
	// =========================================================================

	if c.cfg.WriteSummary {
		path, err := c.files.WriteSummaryLog(summaryOf(result, start))
		if err != nil {
			log.WithError(err).Warn("Cannot write the run summary")
		} else {
			result.SummaryPath = path
			log.Debugf("Summary written to %s", path)
		}
	}
	return result, nil
}

// buildAll builds the five tables in dependency order.
func (r *run) buildAll(ctx context.Context) ([]*table.View, []TableResult, error) {
	var (
		views   [5]*table.View
		results [5]TableResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.MaxConcurrency, 1))

	g.Go(func() error {
		var err error
		views[KindCatalogue], results[KindCatalogue], err = r.buildStatic(gctx, KindCatalogue, nil)
		if err != nil {
			return err
		}
		catalogue := views[KindCatalogue]
		views[KindHierarchy], results[KindHierarchy], err = r.buildStatic(gctx, KindHierarchy, func(t *table.Table) {
			AddMasterHierarchy(t, catalogue)
		})
		return err
	})
	g.Go(func() error {
		var err error
		views[KindAttribute], results[KindAttribute], err = r.buildStatic(gctx, KindAttribute, nil)
		return err
	})
	g.Go(func() error {
		var err error
		views[KindNotes], results[KindNotes], err = r.buildStatic(gctx, KindNotes, nil)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, collect(results[:]), err
	}

	var err error
	views[KindTerm], results[KindTerm], err = r.buildTerm(ctx, views[KindCatalogue], views[KindHierarchy], views[KindAttribute])
	if err != nil {
		return nil, collect(results[:]), err
	}

	return ordered(views[:]), collect(results[:]), nil
}

// export writes the tables to a new sink and saves it.
func (c *Converter) export(format, output string, views []*table.View, log logrus.FieldLogger) error {
	s, err := c.newSink(format, output)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutput, err)
	}

	for _, v := range views {
		rows, err := sink.Export(s, v)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrOutput, err)
		}
		log.WithField("table", v.Name()).Debugf("Exported %d row(s)", rows)
	}

	log.Info("Writing the output...")
	if err := s.Save(); err != nil {
		return fmt.Errorf("%w: %v", ErrOutput, err)
	}
	return nil
}

// ordered returns the views in sheet order (the Kind order).
func ordered(views []*table.View) []*table.View {
	out := make([]*table.View, 0, len(views))
	for _, v := range views {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

func collect(results []TableResult) []TableResult {
	out := make([]TableResult, 0, len(results))
	for _, r := range results {
		if r.Name != "" {
			out = append(out, r)
		}
	}
	return out
}

func summaryOf(result *Result, start time.Time) utils.RunSummary {
	summary := utils.RunSummary{
		RunID:     result.RunID,
		Input:     result.Input,
		Output:    result.Output,
		Format:    result.Format,
		StartTime: start,
		EndTime:   start.Add(result.Duration),
	}
	for _, t := range result.Tables {
		ts := utils.TableSummary{Name: t.Name, Rows: t.Rows, Columns: t.Columns}
		if t.Err != nil {
			ts.Error = t.Err.Error()
		}
		summary.Tables = append(summary.Tables, ts)
	}
	return summary
}

// IsFatal reports whether an error returned by Convert aborted the output.
func IsFatal(err error) bool {
	return errors.Is(err, ErrOutput)
}
