// =============================================================================
// Catalogue XML to XLSX Converter - Element Names and Default Columns
// =============================================================================
//
// Element names of the catalogue XML schema and the default column lists of
// the static tables.
//
// FIELD IDENTIFIERS:
//   A field identifier is the element name whose text fills the column
//   (e.g. <scopeNote> fills "scopeNote"). Grouped fields use the name of
//   their container element (<catalogueGroups> fills "catalogueGroups").
//   Derived fields (deprecated, noteInternalVersion, the operation columns)
//   have identifiers of their own.
//
// CUSTOMIZATION:
//   The lists below are defaults. Column labels and order can be changed per
//   table in config.yaml (tables.<name>.columns) without touching the code.
//
// =============================================================================

package converter

import "github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/table"

// =============================================================================
// TABLE NAMES AND ROOTS
// =============================================================================

// Table (sheet) names in workbook order.
const (
	SheetCatalogue = "catalogue"
	SheetHierarchy = "hierarchy"
	SheetAttribute = "attribute"
	SheetTerm      = "term"
	SheetNotes     = "releaseNotes"
)

// SheetOrder is the order tables appear in the output.
var SheetOrder = []string{SheetCatalogue, SheetHierarchy, SheetAttribute, SheetTerm, SheetNotes}

// Root elements: one occurrence is one output row.
const (
	RootCatalogue = "message"
	RootHierarchy = "hierarchy"
	RootAttribute = "attribute"
	RootTerm      = "term"
	RootNotes     = "operationInfo"
)

// MasterPrefix replaces the master hierarchy code in term column keys
// (masterFlag, masterParentCode, ...).
const MasterPrefix = "master"

// =============================================================================
// ELEMENT NAMES
// =============================================================================

// Common elements.
const (
	TagCode        = "code"
	TagName        = "name"
	TagLabel       = "label"
	TagScopeNote   = "scopeNote"
	TagVersion     = "version"
	TagLastUpdate  = "lastUpdate"
	TagValidFrom   = "validFrom"
	TagValidTo     = "validTo"
	TagVersionDate = "versionDate"
	TagStatus      = "status"
	TagDeprecated  = "deprecated"
)

// Catalogue elements.
const (
	TagCodeMask          = "termCodeMask"
	TagCodeLength        = "termCodeLength"
	TagMinCode           = "termMinCode"
	TagAcceptNonStandard = "acceptNonStandardCodes"
	TagGenerateMissing   = "generateMissingCodes"
	TagCatalogueGroups   = "catalogueGroups"
	TagCatalogueGroup    = "catalogueGroup"

	TagReleaseNotes        = "releaseNotes"
	TagNoteDescription     = "noteDescription"
	TagNoteDate            = "noteDate"
	TagNoteVersion         = "noteInternalVersion"
	TagInternalVersionNote = "internalVersionNote"

	// AttrInternalVersion is read from <version> inside <releaseNotes>.
	AttrInternalVersion = "internalVersion"
)

// Hierarchy elements.
const (
	TagApplicability   = "hierarchyApplicability"
	TagHierarchyOrder  = "hierarchyOrder"
	TagHierarchyGroups = "hierarchyGroups"
	TagHierarchyGroup  = "hierarchyGroup"
)

// Attribute elements.
const (
	TagAttrReportable = "attributeReportable"
	TagAttrVisible    = "attributeVisible"
	TagAttrSearchable = "attributeSearchable"
	TagAttrOrder      = "attributeOrder"
	TagAttrType       = "attributeType"
	TagAttrMaxLength  = "attributeMaxLength"
	TagAttrPrecision  = "attributePrecision"
	TagAttrScale      = "attributeScale"
	TagAttrCatCode    = "attributeCatalogueCode"
	TagAttrRepeatable = "attributeSingleOrRepeatable"
	TagAttrInherit    = "attributeInheritance"
	TagAttrUnique     = "attributeUniqueness"
	TagAttrAlias      = "attributeTermCodeAlias"

	// AttrTypeCatalogue marks an attribute whose values are terms of a
	// catalogue (a facet). attributeCatalogueCode is then "<catalogue>.<hierarchy>".
	AttrTypeCatalogue = "catalogue"
)

// Term elements.
const (
	TagTermCode      = "termCode"
	TagTermExtName   = "termExtendedName"
	TagTermShortName = "termShortName"
	TagTermScopeNote = "termScopeNote"

	TagAssignment    = "hierarchyAssignment"
	TagAssHierarchy  = "hierarchyCode"
	TagAssParentCode = "parentCode"
	TagAssOrder      = "order"
	TagAssReportable = "reportable"

	TagImplicitAttr  = "implicitAttribute"
	TagImplicitCode  = "attributeCode"
	TagImplicitValue = "attributeValue"
)

// Release notes elements and columns.
const (
	TagOperationDetail = "operationsDetail"
	TagOperationInfo   = "operationInfo"
	TagOperationName   = "operationName"
	TagOperationDate   = "operationDate"
	FieldOperationGrp  = "operationGroupId"
)

// =============================================================================
// DEFAULT COLUMNS
// =============================================================================

func fields(ids ...string) []table.Field {
	out := make([]table.Field, len(ids))
	for i, id := range ids {
		out[i] = table.F(id)
	}
	return out
}

// DefaultCatalogueFields is the catalogue sheet layout.
func DefaultCatalogueFields() []table.Field {
	return fields(
		TagCode, TagName, TagLabel, TagScopeNote,
		TagCodeMask, TagCodeLength, TagMinCode, TagAcceptNonStandard, TagGenerateMissing,
		TagVersion, TagCatalogueGroups,
		TagLastUpdate, TagValidFrom, TagValidTo, TagStatus, TagDeprecated,
		TagNoteDescription, TagNoteDate, TagNoteVersion, TagInternalVersionNote,
	)
}

// DefaultHierarchyFields is the hierarchy sheet layout.
func DefaultHierarchyFields() []table.Field {
	return fields(
		TagCode, TagName, TagLabel, TagScopeNote,
		TagApplicability, TagHierarchyOrder,
		TagVersion, TagLastUpdate, TagValidFrom, TagValidTo, TagStatus, TagDeprecated,
		TagHierarchyGroups,
	)
}

// DefaultAttributeFields is the attribute sheet layout.
func DefaultAttributeFields() []table.Field {
	return fields(
		TagCode, TagName, TagLabel, TagScopeNote,
		TagAttrReportable, TagAttrVisible, TagAttrSearchable, TagAttrOrder,
		TagAttrType, TagAttrMaxLength, TagAttrPrecision, TagAttrScale,
		TagAttrCatCode, TagAttrRepeatable, TagAttrInherit, TagAttrUnique, TagAttrAlias,
		TagVersion, TagLastUpdate, TagValidFrom, TagValidTo, TagStatus, TagDeprecated,
	)
}

// DefaultTermFields are the intrinsic term columns. Attribute and hierarchy
// columns are appended at run time (see DeriveTermHeader).
func DefaultTermFields() []table.Field {
	return fields(
		TagTermCode, TagTermExtName, TagTermShortName, TagTermScopeNote,
		TagDeprecated, TagVersion, TagLastUpdate, TagValidFrom, TagValidTo, TagStatus,
	)
}

// DefaultNotesFields is the release notes sheet layout.
func DefaultNotesFields() []table.Field {
	return fields(TagOperationName, TagOperationDate, TagOperationInfo, FieldOperationGrp)
}

// DefaultFields returns the default layout of a table (the intrinsic columns
// only for term), nil for unknown names.
func DefaultFields(sheet string) []table.Field {
	switch sheet {
	case SheetCatalogue:
		return DefaultCatalogueFields()
	case SheetHierarchy:
		return DefaultHierarchyFields()
	case SheetAttribute:
		return DefaultAttributeFields()
	case SheetTerm:
		return DefaultTermFields()
	case SheetNotes:
		return DefaultNotesFields()
	default:
		return nil
	}
}

// DefaultRoot returns the root element of a table.
func DefaultRoot(sheet string) string {
	switch sheet {
	case SheetCatalogue:
		return RootCatalogue
	case SheetHierarchy:
		return RootHierarchy
	case SheetAttribute:
		return RootAttribute
	case SheetTerm:
		return RootTerm
	case SheetNotes:
		return RootNotes
	default:
		return ""
	}
}
