// =============================================================================
// Catalogue XML to XLSX Converter - Table Builds
// =============================================================================
//
// One build per table:
//   1. Prepare the table (master row, computed term header)
//   2. Filter the input catalogue down to the table's subtrees
//   3. Stream the filtered document through the table's state machine
//   4. Freeze the table for the dependent builds and the export
//
// A parse failure leaves the table as it was after step 1.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/stream"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/table"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/transform"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/types"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/xmlfilter"
)

// run carries the per-run context of a Converter.
type run struct {
	*Converter
	id    string
	input string
	log   logrus.FieldLogger
}

// buildStatic builds a table whose columns are known in advance. prepare,
// when set, runs on the empty table before streaming.
func (r *run) buildStatic(ctx context.Context, kind Kind, prepare func(*table.Table)) (*table.View, TableResult, error) {
	tc := r.cfg.Table(kind.String())
	log := r.log.WithField("table", tc.Sheet)

	fields := tc.Columns
	if len(fields) == 0 {
		fields = DefaultFields(kind.String())
	}
	header, err := table.NewHeaderMap(fields...)
	if err != nil {
		return nil, TableResult{Kind: kind, Name: tc.Sheet}, err
	}
	return r.build(ctx, kind, table.New(tc.Sheet, header), NewState(kind), prepare, log)
}

// buildTerm derives the term columns from the finished tables and builds
// the term table.
func (r *run) buildTerm(ctx context.Context, catalogue, hierarchy, attribute *table.View) (*table.View, TableResult, error) {
	tc := r.cfg.Table(KindTerm.String())
	log := r.log.WithField("table", tc.Sheet)

	intrinsic := tc.Columns
	if len(intrinsic) == 0 {
		intrinsic = DefaultTermFields()
	}

	// An empty catalogue has no master hierarchy to substitute.
	masterCode, _ := catalogue.First(TagCode)

	header, derr := DeriveTermHeader(intrinsic, attribute, hierarchy, masterCode, r.cfg.MasterPrefix, log)
	if header == nil {
		return nil, TableResult{Kind: KindTerm, Name: tc.Sheet}, derr
	}

	view, res, err := r.build(ctx, KindTerm, table.New(tc.Sheet, header), NewTermState(masterCode, r.cfg.MasterPrefix), nil, log)
	if res.Err == nil {
		res.Err = derr
	}
	return view, res, err
}

// build streams the filtered input into t and freezes it. The returned error
// is only set when the run must stop (cancellation); conversion problems are
// reported in TableResult.Err.
func (r *run) build(ctx context.Context, kind Kind, t *table.Table, state State, prepare func(*table.Table), log logrus.FieldLogger) (*table.View, TableResult, error) {
	res := TableResult{Kind: kind, Name: t.Name(), Columns: t.Header().Len()}
	if err := ctx.Err(); err != nil {
		return nil, res, err
	}

	if prepare != nil {
		prepare(t)
	}

	tc := r.cfg.Table(kind.String())
	log.Infof("Converting %s (root <%s>)", t.Name(), tc.Root)

	if err := r.parse(kind, t, state, log); err != nil {
		res.Err = err
	}

	view := t.Freeze()
	res.Rows = view.Len()
	log.Infof("%s: %d row(s)", t.Name(), res.Rows)
	return view, res, nil
}

// parse opens the input, filters it and runs the parse engine.
func (r *run) parse(kind Kind, t *table.Table, state State, log logrus.FieldLogger) error {
	tc := r.cfg.Table(kind.String())

	in, err := r.files.OpenInput(r.input)
	if err != nil {
		log.WithError(err).Error("Cannot open the input")
		return errors.Join(ErrParseFailure, err)
	}
	defer in.Close()

	filtered := xmlfilter.Reader(in, xmlfilter.Rules{Include: tc.Include, Exclude: tc.Exclude})
	defer filtered.Close()

	var src io.Reader = filtered
	if r.cfg.KeepFiltered {
		dump, err := r.files.CreateDump(r.id, t.Name())
		if err != nil {
			log.WithError(err).Warn("Cannot dump the filtered stream")
		} else {
			defer dump.Close()
			src = io.TeeReader(filtered, dump)
		}
	}

	engine := stream.New(stream.Options{
		Root:               tc.Root,
		ObserveOutsideRoot: kind.ObservesOutsideRoot(),
		ProgressEvery:      r.cfg.ProgressEvery,
	}, log)

	_, err = engine.Run(src, t, handler(state, log))
	return err
}

// handler threads a state through the engine events. Dates that cannot be
// parsed become empty cells and are logged.
func handler(state State, log logrus.FieldLogger) stream.Handler {
	return func(ev types.Event) []types.Write {
		var writes []types.Write
		kind := state.Kind
		state, writes = Step(state, ev)
		if raw, ok := unparsableDate(kind, ev, writes); ok {
			log.WithField("element", ev.Tag).Warnf("Unparsable date %q left empty", raw)
		}
		return writes
	}
}

// unparsableDate returns the raw value of a date the event failed to coerce.
// Element dates come from the text of the closing date element, operation
// dates from the attribute of the opening <operationsDetail>.
func unparsableDate(kind Kind, ev types.Event, writes []types.Write) (string, bool) {
	switch {
	case ev.Kind == types.Close && ev.Text != "":
		for _, w := range writes {
			if w.Kind == types.Date && w.Field == ev.Tag && w.Value == "" {
				return ev.Text, true
			}
		}
	case kind == KindNotes && ev.Kind == types.Open && ev.Tag == TagOperationDetail:
		raw := ev.Attr(TagOperationDate)
		if raw != "" && transform.CoerceDate(raw) == "" {
			return raw, true
		}
	}
	return "", false
}
