// Package report orchestrates the verification pipeline over the
// pre-extracted pages of one inspection report and assembles the final
// envelope handed to callers.
package report

import (
	"time"

	"github.com/lulf87/pdf-report-checker-sub000/internal/fieldcompare"
	"github.com/lulf87/pdf-report-checker-sub000/internal/inspection"
	"github.com/lulf87/pdf-report-checker-sub000/internal/pagenum"
)

// DocumentState tracks how far the pipeline advanced for a document. A
// failure at any stage degrades to a partial result; it never aborts.
type DocumentState string

const (
	StateUnscanned     DocumentState = "UNSCANNED"
	StateTableNotFound DocumentState = "TABLE_NOT_FOUND"
	StateTableFound    DocumentState = "TABLE_FOUND"
	StateParsed        DocumentState = "PARSED"
	StateMerged        DocumentState = "MERGED"
	StateValidated     DocumentState = "VALIDATED"
	StateAggregated    DocumentState = "AGGREGATED"
)

// RequestEnvelope is the verification request: the document identity plus
// the ordered pages produced by the external extraction step.
type RequestEnvelope struct {
	DocumentID string                  `json:"document_id"`
	Filename   string                  `json:"filename,omitempty"`
	Pages      []inspection.PageRecord `json:"pages"`
}

// Metadata records the run itself.
type Metadata struct {
	StagesExecuted []string  `json:"stages_executed"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}

// VerificationResult is the document-level outcome: the inspection-table
// result, the page-numbering check, the field reconciliation, and a
// rendered Markdown report. JSON round-trips losslessly.
type VerificationResult struct {
	DocumentID       string                              `json:"document_id"`
	Filename         string                              `json:"filename,omitempty"`
	State            DocumentState                       `json:"state"`
	Inspection       inspection.InspectionItemCheckResult `json:"inspection"`
	PageNumbers      pagenum.PageNumberCheck             `json:"page_numbers"`
	FieldComparisons []fieldcompare.FieldComparison      `json:"field_comparisons"`
	ReportMarkdown   string                              `json:"report_markdown"`
	Metadata         Metadata                            `json:"metadata"`
}

// ErrorCount tallies findings by severity.
func (r VerificationResult) ErrorCount(severity string) int {
	n := 0
	for _, e := range r.Inspection.Errors {
		if e.Severity == severity {
			n++
		}
	}
	return n
}
