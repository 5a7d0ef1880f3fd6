package transform

// Column suffixes of the four term columns produced per hierarchy.
const (
	SuffixFlag       = "Flag"
	SuffixParentCode = "ParentCode"
	SuffixOrder      = "Order"
	SuffixReportable = "Reportable"
)

// Assignment is the scratch record of one <hierarchyAssignment>: the placement
// of a term in one hierarchy.
type Assignment struct {
	HierarchyCode string
	ParentCode    string
	Order         string

	// Reportable is stored as numeric text, "1" or "0".
	Reportable string
}

// Reset clears the record between assignments.
func (a *Assignment) Reset() {
	*a = Assignment{}
}

// Flag is always "1": the assignment exists.
func (a Assignment) Flag() string {
	return "1"
}

// AssignmentColumns returns the four column keys of a hierarchy:
// <code>Flag, <code>ParentCode, <code>Order, <code>Reportable.
func AssignmentColumns(code string) (flag, parentCode, order, reportable string) {
	return code + SuffixFlag, code + SuffixParentCode, code + SuffixOrder, code + SuffixReportable
}

// ColumnCode returns the column prefix for a hierarchy code: prefix (usually
// "master") when code is the master hierarchy code, else the code itself.
// An empty masterCode never matches.
func ColumnCode(code, masterCode, prefix string) string {
	if masterCode != "" && code == masterCode {
		return prefix
	}
	return code
}
