package inspection

import (
	"fmt"

	"github.com/lulf87/pdf-report-checker-sub000/internal/textnorm"
)

// PageItems is one page's parsed items in row order, plus whether the page
// itself was flagged as a 续表 continuation of the detected table.
type PageItems struct {
	PageNumber   int
	Continuation bool
	Items        []*InspectionItemCheck
}

// MergeResult is the document-level item list after continuation rows have
// been attached to the items they continue.
type MergeResult struct {
	Items         []*InspectionItemCheck
	Continuations int
	Errors        []ErrorItem
}

// MergeContinuations folds the per-page item lists into one document-level
// list, in physical page order. This is the only place a later page's data
// is attached to an earlier page's entity.
//
// A page's item continues an earlier one when its lead row carried a 续
// marker, or when the page is a 续表 page and the item opens it with a blank
// or matching sequence number. An unmatched continuation is reported and
// kept as its own orphan item, never guessed into a target.
func MergeContinuations(pages []PageItems) MergeResult {
	var res MergeResult
	if len(pages) == 0 {
		return res
	}

	res.Items = append(res.Items, pages[0].Items...)

	for _, page := range pages[1:] {
		for idx, item := range page.Items {
			leadsContinuationPage := page.Continuation && idx == 0 && continuesOpenItem(res.Items, item)
			if !item.Continued && !leadsContinuationPage {
				res.Items = append(res.Items, item)
				continue
			}

			target, err := findContinuationTarget(res.Items, item, page.PageNumber)
			if err != nil {
				res.Errors = append(res.Errors, *err)
				item.Issues = append(item.Issues, err.Message)
				item.Status = StatusWarning
				res.Items = append(res.Items, item)
				continue
			}

			mergeInto(target, item)
			res.Continuations++
		}
	}
	return res
}

// continuesOpenItem reports whether a 续表 page's lead item refers back to an
// item already open: a blank sequence number, or a number some open item
// carries. A fresh number matching nothing opens a new item instead.
func continuesOpenItem(open []*InspectionItemCheck, item *InspectionItemCheck) bool {
	if item.ItemNumber == "" {
		return true
	}
	for _, candidate := range open {
		if candidate.ItemNumber == item.ItemNumber {
			return true
		}
	}
	return false
}

// findContinuationTarget resolves which open item a continuation belongs
// to. Returns a finding instead of a target when the reference is unmatched
// or ambiguous.
func findContinuationTarget(open []*InspectionItemCheck, item *InspectionItemCheck, page int) (*InspectionItemCheck, *ErrorItem) {
	if len(open) == 0 {
		return nil, &ErrorItem{
			Code:       CodeContinuationUnmatched,
			Severity:   SeverityWarning,
			Message:    fmt.Sprintf("page %d: continuation row %q has no open item to continue", page, item.ItemNumber),
			PageNumber: page,
			ItemNumber: item.ItemNumber,
		}
	}
	mostRecent := open[len(open)-1]

	if item.ItemNumber != "" {
		for _, candidate := range open {
			if candidate.ItemNumber != item.ItemNumber {
				continue
			}
			if item.ItemName == "" || textnorm.Equal(item.ItemName, candidate.ItemName) {
				return candidate, nil
			}
			return nil, &ErrorItem{
				Code:       CodeContinuationUnmatched,
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("page %d: continuation of item %s names %q but the open item is %q", page, item.ItemNumber, item.ItemName, candidate.ItemName),
				PageNumber: page,
				ItemNumber: item.ItemNumber,
			}
		}
		return nil, &ErrorItem{
			Code:       CodeContinuationUnmatched,
			Severity:   SeverityWarning,
			Message:    fmt.Sprintf("page %d: continuation row references item %s which was never opened", page, item.ItemNumber),
			PageNumber: page,
			ItemNumber: item.ItemNumber,
		}
	}

	// Blank sequence number: tables frequently omit both the number and the
	// repeated item name on continuation rows.
	if item.ItemName == "" {
		return mostRecent, nil
	}

	var matches []*InspectionItemCheck
	for _, candidate := range open {
		if textnorm.Equal(item.ItemName, candidate.ItemName) {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, &ErrorItem{
			Code:       CodeContinuationUnmatched,
			Severity:   SeverityWarning,
			Message:    fmt.Sprintf("page %d: continuation row names item %q which matches no open item", page, item.ItemName),
			PageNumber: page,
		}
	default:
		return nil, &ErrorItem{
			Code:       CodeContinuationAmbiguous,
			Severity:   SeverityWarning,
			Message:    fmt.Sprintf("page %d: continuation row names item %q which matches %d open items", page, item.ItemName, len(matches)),
			PageNumber: page,
		}
	}
}

// mergeInto appends the continuation's clauses onto the target item,
// joining clauses that share a clause number.
func mergeInto(target, cont *InspectionItemCheck) {
	for _, clause := range cont.Clauses {
		// A merged-cell sub-row carries no clause number of its own; it
		// extends the clause left open at the end of the target.
		if clause.ClauseNumber == "" && len(target.Clauses) > 0 {
			last := &target.Clauses[len(target.Clauses)-1]
			last.Requirements = append(last.Requirements, clause.Requirements...)
			if clause.Conclusion != "" {
				last.Conclusion = clause.Conclusion
			}
			continue
		}
		ci := clauseIndex(target.Clauses, clause.ClauseNumber)
		if ci < 0 {
			target.Clauses = append(target.Clauses, clause)
			continue
		}
		target.Clauses[ci].Requirements = append(target.Clauses[ci].Requirements, clause.Requirements...)
		if clause.Conclusion != "" {
			target.Clauses[ci].Conclusion = clause.Conclusion
		}
	}
	target.Issues = append(target.Issues, cont.Issues...)
}
