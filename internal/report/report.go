package report

import (
	"fmt"
	"strings"

	"github.com/lulf87/pdf-report-checker-sub000/internal/inspection"
)

// BuildMarkdown renders the verification result as a human-readable
// Markdown report. The HTTP layer serves it as HTML; spreadsheet export is
// a downstream concern.
func BuildMarkdown(res VerificationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Inspection Report Verification\n\n")
	fmt.Fprintf(&b, "- Document: %s\n", res.DocumentID)
	if res.Filename != "" {
		fmt.Fprintf(&b, "- File: %s\n", res.Filename)
	}
	fmt.Fprintf(&b, "- State: `%s`\n\n", res.State)

	fmt.Fprintf(&b, "## Summary\n\n")
	if !res.Inspection.HasTable {
		fmt.Fprintf(&b, "No inspection-item table was found in this document.\n\n")
	} else {
		fmt.Fprintf(&b, "- Items: %d\n", res.Inspection.TotalItems)
		fmt.Fprintf(&b, "- Clauses: %d (%d correct, %d incorrect conclusions)\n",
			res.Inspection.TotalClauses, res.Inspection.CorrectConclusions, res.Inspection.IncorrectConclusions)
		fmt.Fprintf(&b, "- Cross-page continuations merged: %d\n", res.Inspection.CrossPageContinuations)
		fmt.Fprintf(&b, "- Findings: %d errors, %d warnings, %d info\n\n",
			res.ErrorCount(inspection.SeverityError), res.ErrorCount(inspection.SeverityWarning), res.ErrorCount(inspection.SeverityInfo))
	}

	fmt.Fprintf(&b, "## Page Numbering\n\n")
	if len(res.PageNumbers.Marks) == 0 {
		fmt.Fprintf(&b, "No page markers were found.\n\n")
	} else {
		fmt.Fprintf(&b, "- Declared total: %d (agreement: %v)\n", res.PageNumbers.DeclaredTotal, res.PageNumbers.TotalsAgree)
		fmt.Fprintf(&b, "- Marked pages: %d\n", res.PageNumbers.ActualPages)
		if len(res.PageNumbers.Anomalies) == 0 {
			fmt.Fprintf(&b, "- Continuity: clean\n\n")
		} else {
			for _, a := range res.PageNumbers.Anomalies {
				fmt.Fprintf(&b, "- %s on page %d (expected %d, got %d)\n", a.Kind, a.PhysicalPage, a.Expected, a.Actual)
			}
			b.WriteString("\n")
		}
	}

	if len(res.FieldComparisons) > 0 {
		fmt.Fprintf(&b, "## Field Reconciliation\n\n")
		fmt.Fprintf(&b, "| Field | Table | Label | Match |\n|---|---|---|---|\n")
		for _, c := range res.FieldComparisons {
			verdict := "yes"
			if !c.IsMatch {
				verdict = "NO"
			} else if c.FormatMismatch {
				verdict = "yes (format differs)"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", c.FieldName, cellOrDash(c.TableValue), cellOrDash(c.LabelValue), verdict)
		}
		b.WriteString("\n")
	}

	if res.Inspection.HasTable {
		fmt.Fprintf(&b, "## Items\n\n")
		for _, item := range res.Inspection.ItemChecks {
			fmt.Fprintf(&b, "### %s %s — %s\n\n", item.ItemNumber, item.ItemName, item.Status)
			for _, clause := range item.Clauses {
				mark := "OK"
				if !clause.IsConclusionCorrect {
					mark = fmt.Sprintf("MISMATCH (expected %s)", clause.ExpectedConclusion)
				}
				fmt.Fprintf(&b, "- clause %s: %d requirement(s), conclusion %q — %s\n",
					clause.ClauseNumber, len(clause.Requirements), clause.Conclusion, mark)
			}
			for _, issue := range item.Issues {
				fmt.Fprintf(&b, "- issue: %s\n", issue)
			}
			b.WriteString("\n")
		}
	}

	if len(res.Inspection.Errors) > 0 {
		fmt.Fprintf(&b, "## Findings\n\n")
		fmt.Fprintf(&b, "| Severity | Code | Message |\n|---|---|---|\n")
		for _, e := range res.Inspection.Errors {
			fmt.Fprintf(&b, "| %s | `%s` | %s |\n", e.Severity, e.Code, sanitizeLine(e.Message))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func cellOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

func sanitizeLine(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	return strings.ReplaceAll(s, "|", "\\|")
}
