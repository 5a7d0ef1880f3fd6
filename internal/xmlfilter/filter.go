// =============================================================================
// Catalogue XML to XLSX Converter - XML Subtree Filter
// =============================================================================
//
// This module splits the full catalogue document into the smaller stream each
// table reads. It re-encodes the document token by token, keeping or dropping
// whole subtrees by element name.
//
// MODES:
//   Include  Only the outermost subtrees rooted at one of the names are kept,
//            wrapped in a single <filtered> element:
//
//              <message>                        <filtered>
//                <hierarchies>                    <hierarchy>...</hierarchy>
//                  <hierarchy>...</hierarchy> ->  <hierarchy>...</hierarchy>
//                  <hierarchy>...</hierarchy>   </filtered>
//                </hierarchies>
//                ...
//
//   Exclude  The document is kept as is, minus the subtrees rooted at one of
//            the names.
//
//   Neither  The document is copied unchanged.
//
// NAMES:
//   Rules match the local element name. Namespace prefixes are written back
//   literally, so the output can be parsed again with the same bindings.
//   Comments, processing instructions and directives are not copied; the
//   output is always UTF-8.
//
// =============================================================================

package xmlfilter

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// DefaultWrapper is the element enclosing the subtrees kept in include mode.
const DefaultWrapper = "filtered"

// Rules selects the subtrees of a document.
type Rules struct {
	// Include keeps only the subtrees rooted at these elements.
	Include []string

	// Exclude drops the subtrees rooted at these elements.
	Exclude []string

	// Wrapper is the include-mode root element. Default: DefaultWrapper.
	Wrapper string
}

// Validate checks that at most one mode is selected.
func (r Rules) Validate() error {
	if len(r.Include) > 0 && len(r.Exclude) > 0 {
		return errors.New("include and exclude rules are mutually exclusive")
	}
	return nil
}

// Stats reports what a filter run kept and dropped.
type Stats struct {
	// Kept is the number of subtrees selected in include mode.
	Kept int

	// Dropped is the number of subtrees removed in exclude mode.
	Dropped int
}

// Filter copies the selected parts of the document read from r to w.
func Filter(r io.Reader, w io.Writer, rules Rules) (Stats, error) {
	var stats Stats
	if err := rules.Validate(); err != nil {
		return stats, err
	}

	include := set(rules.Include)
	exclude := set(rules.Exclude)
	wrapper := rules.Wrapper
	if wrapper == "" {
		wrapper = DefaultWrapper
	}

	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	encoder := xml.NewEncoder(w)

	if include != nil {
		if err := encoder.EncodeToken(xml.StartElement{Name: xml.Name{Local: wrapper}}); err != nil {
			return stats, err
		}
	}

	// open holds the raw names of the open elements (RawToken checks neither
	// nesting nor truncation). keepFrom/dropFrom hold the depth at which the
	// current kept or dropped subtree started, -1 when none.
	var open []xml.Name
	keepFrom, dropFrom := -1, -1

	for {
		token, err := decoder.RawToken()
		if err == io.EOF {
			if len(open) > 0 {
				return stats, fmt.Errorf("unexpected end of document inside <%s>", open[len(open)-1].Local)
			}
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read token: %w", err)
		}

		var out xml.Token
		switch tok := token.(type) {
		case xml.StartElement:
			open = append(open, tok.Name)
			depth := len(open)
			switch {
			case dropFrom > 0:
			case include != nil:
				if keepFrom < 0 && include[tok.Name.Local] {
					keepFrom = depth
					stats.Kept++
				}
				if keepFrom > 0 {
					out = literalStart(tok)
				}
			case exclude != nil && exclude[tok.Name.Local]:
				dropFrom = depth
				stats.Dropped++
			default:
				out = literalStart(tok)
			}

		case xml.EndElement:
			depth := len(open)
			if depth == 0 || open[depth-1] != tok.Name {
				return stats, fmt.Errorf("unexpected end element </%s>", tok.Name.Local)
			}
			if visible(include != nil, keepFrom, dropFrom) {
				out = xml.EndElement{Name: literalName(tok.Name)}
			}
			if depth == keepFrom {
				keepFrom = -1
			}
			if depth == dropFrom {
				dropFrom = -1
			}
			open = open[:depth-1]

		case xml.CharData:
			if visible(include != nil, keepFrom, dropFrom) {
				out = tok.Copy()
			}
		}

		if out != nil {
			if err := encoder.EncodeToken(out); err != nil {
				return stats, fmt.Errorf("write token: %w", err)
			}
		}
	}

	if include != nil {
		if err := encoder.EncodeToken(xml.EndElement{Name: xml.Name{Local: wrapper}}); err != nil {
			return stats, err
		}
	}
	if err := encoder.Flush(); err != nil {
		return stats, err
	}
	return stats, nil
}

// Reader runs Filter in a goroutine and returns the filtered stream. A filter
// error surfaces as a read error on the returned reader. Close stops the
// goroutine early.
func Reader(r io.Reader, rules Rules) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		_, err := Filter(r, pw, rules)
		pw.CloseWithError(err)
	}()
	return pr
}

func visible(including bool, keepFrom, dropFrom int) bool {
	if including {
		return keepFrom > 0
	}
	return dropFrom < 0
}

func set(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// literalName folds a raw prefixed name into its local part so the encoder
// writes it back verbatim instead of inventing a namespace declaration.
func literalName(n xml.Name) xml.Name {
	if n.Space == "" {
		return n
	}
	return xml.Name{Local: n.Space + ":" + n.Local}
}

func literalStart(start xml.StartElement) xml.StartElement {
	out := xml.StartElement{Name: literalName(start.Name)}
	if len(start.Attr) > 0 {
		out.Attr = make([]xml.Attr, len(start.Attr))
		for i, a := range start.Attr {
			out.Attr[i] = xml.Attr{Name: literalName(a.Name), Value: a.Value}
		}
	}
	return out
}
