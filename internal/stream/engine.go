// =============================================================================
// Catalogue XML to XLSX Converter - Streaming Parse Engine
// =============================================================================
//
// The engine drives a single pass over an XML stream and turns it into rows
// of one table.
//
// PROCESSING MODEL:
//   - Every start tag becomes an Open event carrying the element attributes.
//   - Every end tag becomes a Close event carrying the element text: all the
//     character data fragments read directly inside the element, concatenated
//     (the decoder may split text in several pieces) and trimmed.
//   - Each time the configured root element opens, a new row is allocated and
//     becomes the active row until the matching root close, where it is
//     committed to the table.
//   - Events are handed to a Handler which returns cell writes. Writes are
//     applied to the active row; with no active row they are dropped.
//
// SCOPE:
//   By default events outside any root span are ignored. A table whose state
//   lives in elements enclosing the root (release notes: operationsDetail
//   encloses operationInfo) sets ObserveOutsideRoot to receive them.
//
// FAILURES:
//   A malformed or unreadable stream is not fatal. The table is rolled back to
//   the rows it had before Run, the failure is logged, and an error wrapping
//   ErrParse is returned so the caller can carry on with other tables.
//
// =============================================================================

package stream

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/table"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/types"
)

// ErrParse marks a malformed or unreadable input stream.
var ErrParse = errors.New("parse failure")

// DefaultProgressEvery is how many committed rows separate two progress logs.
const DefaultProgressEvery = 500

// Handler receives the events of a stream and returns the cell writes they
// produce.
type Handler func(ev types.Event) []types.Write

// Options configures an Engine.
type Options struct {
	// Root is the element whose occurrences demarcate rows.
	Root string

	// ObserveOutsideRoot forwards events outside root spans to the handler.
	ObserveOutsideRoot bool

	// ProgressEvery logs a progress line every N committed rows.
	// Zero means DefaultProgressEvery, negative disables progress logs.
	ProgressEvery int
}

// Stats reports the outcome of a Run.
type Stats struct {
	// Rows is the number of rows committed by this run.
	Rows int

	// Events is the number of open and close events dispatched.
	Events int

	// Skipped is the number of writes dropped because their field is not in
	// the table header, or because no row was active.
	Skipped int
}

// Engine streams XML into a table.
type Engine struct {
	opts Options
	log  *logrus.Entry
}

// New creates an Engine.
func New(opts Options, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.ProgressEvery == 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	return &Engine{opts: opts, log: log.WithField("root", opts.Root)}
}

// frame is one open element on the stack.
type frame struct {
	tag  string
	text strings.Builder
}

// Run consumes r once and appends the rows it describes to t.
func (e *Engine) Run(r io.Reader, t *table.Table, handle Handler) (Stats, error) {
	var stats Stats
	mark := t.Len()

	decoder := xml.NewDecoder(r)
	decoder.Strict = true
	decoder.CharsetReader = charset.NewReaderLabel

	var (
		stack     []*frame
		active    *table.Row
		rootDepth = -1
	)

	dispatch := func(ev types.Event) {
		if !ev.InRoot && !e.opts.ObserveOutsideRoot {
			return
		}
		stats.Events++
		writes := handle(ev)
		if len(writes) == 0 {
			return
		}
		if active == nil {
			stats.Skipped += len(writes)
			return
		}
		if n := t.Apply(active, writes...); n > 0 {
			stats.Skipped += n
			e.log.Tracef("%d write(s) outside the header of %s", n, t.Name())
		}
	}

	fail := func(err error) (Stats, error) {
		t.Truncate(mark)
		e.log.WithError(err).Errorf("cannot convert %s, table left with %d data row(s)", t.Name(), mark)
		return Stats{Events: stats.Events}, fmt.Errorf("%w: %s: %v", ErrParse, t.Name(), err)
	}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fail(err)
		}

		switch tok := token.(type) {
		case xml.StartElement:
			tag := tok.Name.Local
			stack = append(stack, &frame{tag: tag})

			if tag == e.opts.Root && rootDepth < 0 {
				rootDepth = len(stack)
				active = t.NewRow()
			}

			dispatch(types.Event{
				Kind:   types.Open,
				Tag:    tag,
				Attrs:  attributes(tok.Attr),
				InRoot: rootDepth > 0,
			})

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(bytes.TrimRight(tok, "\x00"))
			}

		case xml.EndElement:
			if len(stack) == 0 {
				return fail(fmt.Errorf("unexpected end element %s", tok.Name.Local))
			}
			top := stack[len(stack)-1]
			closingRoot := rootDepth == len(stack)

			dispatch(types.Event{
				Kind:   types.Close,
				Tag:    top.tag,
				Text:   strings.TrimSpace(top.text.String()),
				InRoot: rootDepth > 0,
			})
			stack = stack[:len(stack)-1]

			if closingRoot {
				t.Commit(active)
				active = nil
				rootDepth = -1
				stats.Rows++
				e.progress(t, stats.Rows)
			}
		}
	}

	if len(stack) > 0 {
		return fail(fmt.Errorf("unexpected end of stream inside <%s>", stack[len(stack)-1].tag))
	}

	e.log.Debugf("%s: %d row(s), %d event(s), %d write(s) skipped", t.Name(), stats.Rows, stats.Events, stats.Skipped)
	return stats, nil
}

func (e *Engine) progress(t *table.Table, rows int) {
	if e.opts.ProgressEvery > 0 && rows%e.opts.ProgressEvery == 0 {
		e.log.Infof("processed %d %s", rows, e.opts.Root)
	}
}

// attributes flattens start element attributes by local name.
func attributes(attrs []xml.Attr) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[a.Name.Local] = a.Value
	}
	return out
}
