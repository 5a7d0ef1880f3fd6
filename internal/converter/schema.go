// =============================================================================
// Catalogue XML to XLSX Converter - Term Schema Derivation
// =============================================================================
//
// The term table has no fixed header. Its columns are computed from the
// finished attribute and hierarchy tables before the term stream is parsed.
//
// TERM COLUMNS, IN ORDER:
//   1. The intrinsic term fields
//   2. One column per attribute that is not of type "catalogue", or that
//      references a hierarchy of another catalogue
//   3. <code>Flag, <code>ParentCode, <code>Order, <code>Reportable for every
//      hierarchy code ("master" stands for the master hierarchy)
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/stream"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/table"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/transform"
)

// Sentinel errors. Only ErrOutput aborts a run.
var (
	// ErrParseFailure marks a table whose input could not be streamed.
	ErrParseFailure = stream.ErrParse

	// ErrCrossTable marks parallel columns of a finished table with
	// different lengths.
	ErrCrossTable = errors.New("cross-table inconsistency")

	// ErrOutput marks a sink that cannot create or persist a table.
	ErrOutput = errors.New("output failure")
)

// TermAttribute is an attribute that becomes a term column.
type TermAttribute struct {
	Code string
	Name string
}

// TermAttributes selects the attributes that get a term column: every
// attribute that is not of type "catalogue", plus the catalogue attributes
// whose referenced hierarchy (second dot-separated segment of the catalogue
// code) is not a hierarchy of this catalogue. Attributes without a code are
// ignored.
//
// It fails with ErrCrossTable when the attribute code, name and type columns
// (and the catalogue code column, when present) differ in length.
func TermAttributes(attributes, hierarchies *table.View) ([]TermAttribute, error) {
	codes := attributes.FieldColumn(TagCode)
	names := attributes.FieldColumn(TagName)
	kinds := attributes.FieldColumn(TagAttrType)
	catCodes := attributes.FieldColumn(TagAttrCatCode)

	if len(codes) != len(names) || len(names) != len(kinds) {
		return nil, fmt.Errorf("%w: %s has %d code(s), %d name(s), %d type(s)",
			ErrCrossTable, attributes.Name(), len(codes), len(names), len(kinds))
	}
	if catCodes != nil && len(catCodes) != len(codes) {
		return nil, fmt.Errorf("%w: %s has %d code(s) and %d catalogue code(s)",
			ErrCrossTable, attributes.Name(), len(codes), len(catCodes))
	}

	local := make(map[string]struct{})
	for _, code := range hierarchies.FieldColumn(TagCode) {
		local[code] = struct{}{}
	}

	var out []TermAttribute
	for i := range codes {
		if codes[i] == "" {
			continue
		}
		if kinds[i] == AttrTypeCatalogue {
			if catCodes == nil {
				continue
			}
			segments := strings.Split(catCodes[i], ".")
			if len(segments) < 2 {
				continue
			}
			if _, isLocal := local[segments[1]]; isLocal {
				continue
			}
		}
		out = append(out, TermAttribute{Code: codes[i], Name: names[i]})
	}
	return out, nil
}

// DeriveTermHeader computes the term columns: the intrinsic fields, one
// column per selected attribute, then four columns per hierarchy.
//
// A cross-table inconsistency is logged and leaves out the attribute
// columns; the hierarchy columns are still added. Duplicate keys keep the
// first column and are logged.
func DeriveTermHeader(intrinsic []table.Field, attributes, hierarchies *table.View, masterCode, prefix string, log logrus.FieldLogger) (*table.HeaderMap, error) {
	header, err := table.NewHeaderMap(intrinsic...)
	if err != nil {
		return nil, fmt.Errorf("term intrinsic columns: %w", err)
	}

	add := func(f table.Field) {
		if !header.Add(f) {
			log.WithField("column", f.ID).Warn("duplicate term column, keeping the first one")
		}
	}

	attrs, err := TermAttributes(attributes, hierarchies)
	if err != nil {
		log.WithError(err).Error("cannot derive the attribute columns of the term table")
	}
	for _, a := range attrs {
		add(table.Field{ID: a.Code, Label: a.Name})
	}

	if prefix == "" {
		prefix = MasterPrefix
	}
	for _, code := range hierarchies.FieldColumn(TagCode) {
		// The master row of an empty catalogue has no code.
		if code == "" {
			continue
		}
		flag, parentCode, order, reportable := transform.AssignmentColumns(transform.ColumnCode(code, masterCode, prefix))
		for _, id := range []string{flag, parentCode, order, reportable} {
			add(table.F(id))
		}
	}

	log.Debugf("term table has %d column(s): %d attribute(s), %d hierarchy column(s)",
		header.Len(), len(attrs), 4*len(hierarchies.FieldColumn(TagCode)))
	return header, err
}
