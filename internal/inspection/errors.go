package inspection

import "fmt"

// Severity levels for findings. The presentation layer groups by these
// values verbatim.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Stable finding codes. The presentation and export layers consume these as
// opaque strings; never rename one.
const (
	CodeConclusionShouldBeNA   = "CONCLUSION_MISMATCH_001"
	CodeConclusionShouldBePass = "CONCLUSION_MISMATCH_002"
	CodeConclusionShouldBeFail = "CONCLUSION_MISMATCH_003"
	CodeConclusionNotFail      = "CONCLUSION_MISMATCH_004"

	CodeContinuationUnmatched = "CONTINUATION_MARK_ERROR_001"
	CodeContinuationAmbiguous = "CONTINUATION_MARK_ERROR_002"

	CodeSerialGap       = "SERIAL_NUMBER_ERROR_001"
	CodeSerialDuplicate = "SERIAL_NUMBER_ERROR_002"

	CodeEmptyResult     = "EMPTY_FIELD_RESULT"
	CodeEmptyConclusion = "EMPTY_FIELD_CONCLUSION"
	CodeEmptyRemark     = "EMPTY_FIELD_REMARK"

	CodeTableNotFound = "TABLE_NOT_FOUND"
	CodeContinuity    = "CONTINUITY_ERROR_001"

	CodeFieldMismatch      = "THIRD_PAGE_FIELD_ERROR_001"
	CodeDateFormatMismatch = "DATE_FORMAT_ERROR_001"
)

// ErrorItem is a single finding. Findings accumulate in append-only lists
// and are never edited after insertion.
type ErrorItem struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Severity     string `json:"severity"`
	PageNumber   int    `json:"page_number,omitempty"`
	ItemNumber   string `json:"item_number,omitempty"`
	ClauseNumber string `json:"clause_number,omitempty"`
}

func newClauseError(code, severity string, item *InspectionItemCheck, clause *ClauseCheck, format string, args ...any) ErrorItem {
	return ErrorItem{
		Code:         code,
		Message:      fmt.Sprintf(format, args...),
		Severity:     severity,
		PageNumber:   item.FirstPage,
		ItemNumber:   item.ItemNumber,
		ClauseNumber: clause.ClauseNumber,
	}
}
