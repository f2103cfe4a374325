// Package inspection implements the inspection-item table engine: locating
// the table across the pages of a report, parsing its rows into the
// item/clause/requirement hierarchy, merging cross-page continuations, and
// validating the printed per-clause conclusions against the recorded results.
package inspection

// Conclusion values as printed in the 单项结论 column.
const (
	ConclusionPass = "符合"
	ConclusionFail = "不符合"
	ConclusionNA   = "/"
)

// ExpectedHeaders is the column set of an inspection-item table, in layout
// order. 备注 is frequently cut off by the extractor and is not required for
// detection.
var ExpectedHeaders = []string{"序号", "检验项目", "标准条款", "标准要求", "检验结果", "单项结论", "备注"}

// RequiredHeaders is the subset a candidate table must score against.
var RequiredHeaders = ExpectedHeaders[:6]

// BlankResultSentinels are the 检验结果 values treated as "not recorded".
// A clause whose results are all sentinels is expected to conclude "/".
var BlankResultSentinels = []string{"", "/", "—", "——", "－", "-"}

// ContinuationMarkers are the lead tokens that flag a row or page as the
// continuation of a table begun on an earlier page.
var ContinuationMarkers = []string{"续表", "续上表", "续前表", "续"}

// Status of an inspection item after validation.
const (
	StatusPass    = "pass"
	StatusWarning = "warning"
	StatusFail    = "fail"
)

// RawTable is one table as delivered by the upstream page extractor: header
// cells plus data rows of cell strings. Rows may have fewer or more cells
// than the header when the extractor splits merged cells.
type RawTable struct {
	PageNumber int        `json:"page_number"`
	TableIndex int        `json:"table_index"`
	Headers    []string   `json:"headers"`
	Rows       [][]string `json:"rows"`
}

// LabelValue is one photo/label association already resolved by the
// upstream OCR step: the caption, the subject it names, and the structured
// field values read off the label.
type LabelValue struct {
	PageNumber  int               `json:"page_number"`
	Caption     string            `json:"caption"`
	SubjectName string            `json:"subject_name"`
	Fields      map[string]string `json:"fields"`
}

// PageRecord is one physical page of the report as produced by the external
// extraction step. The engine consumes it read-only.
type PageRecord struct {
	PageNumber int          `json:"page_number"`
	Header     string       `json:"header,omitempty"`
	Text       string       `json:"text,omitempty"`
	PageMarker string       `json:"page_marker,omitempty"`
	Tables     []RawTable   `json:"tables,omitempty"`
	Labels     []LabelValue `json:"labels,omitempty"`
}

// RequirementCheck is one 标准要求 line inside a clause. Leaf node, never
// mutated after parsing.
type RequirementCheck struct {
	RequirementText  string `json:"requirement_text"`
	InspectionResult string `json:"inspection_result"`
	Remark           string `json:"remark"`
}

// ClauseCheck is one 标准条款 with its requirements and printed conclusion.
// ExpectedConclusion and IsConclusionCorrect are filled exactly once by
// ValidateConclusions.
type ClauseCheck struct {
	ClauseNumber        string             `json:"clause_number"`
	Requirements        []RequirementCheck `json:"requirements"`
	Conclusion          string             `json:"conclusion"`
	ExpectedConclusion  string             `json:"expected_conclusion"`
	IsConclusionCorrect bool               `json:"is_conclusion_correct"`
}

// InspectionItemCheck is one numbered inspection item. Items are created on
// first appearance and appended to by the continuation merger.
type InspectionItemCheck struct {
	ItemNumber string        `json:"item_number"`
	ItemName   string        `json:"item_name"`
	Continued  bool          `json:"continued,omitempty"`
	Clauses    []ClauseCheck `json:"clauses"`
	Issues     []string      `json:"issues"`
	Status     string        `json:"status"`

	// FirstPage is the physical page the item first appeared on. Used for
	// error attribution only.
	FirstPage int `json:"first_page,omitempty"`
}

// InspectionItemCheckResult is the document-level summary for the
// inspection-item table. Immutable once returned.
type InspectionItemCheckResult struct {
	HasTable               bool                  `json:"has_table"`
	TotalItems             int                   `json:"total_items"`
	TotalClauses           int                   `json:"total_clauses"`
	CorrectConclusions     int                   `json:"correct_conclusions"`
	IncorrectConclusions   int                   `json:"incorrect_conclusions"`
	ItemChecks             []InspectionItemCheck `json:"item_checks"`
	CrossPageContinuations int                   `json:"cross_page_continuations"`
	Errors                 []ErrorItem           `json:"errors"`
}
