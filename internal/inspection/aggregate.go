package inspection

import (
	"fmt"
	"sort"
)

// Aggregate folds detection, merge, and validation output into the final
// document-level result. Pure fold: it reads the item list, appends
// findings, and fills totals; it performs no I/O.
func Aggregate(det DetectionResult, merge MergeResult, correct, incorrect int, conclusionErrs []ErrorItem) InspectionItemCheckResult {
	if !det.Found {
		return InspectionItemCheckResult{
			HasTable:   false,
			ItemChecks: []InspectionItemCheck{},
			Errors: []ErrorItem{{
				Code:     CodeTableNotFound,
				Message:  "no inspection-item table found on any page",
				Severity: SeverityInfo,
			}},
		}
	}

	errs := append([]ErrorItem{}, merge.Errors...)
	errs = append(errs, conclusionErrs...)
	errs = append(errs, checkSerialNumbers(merge.Items)...)
	errs = append(errs, checkRequiredFields(merge.Items)...)

	totalClauses := 0
	items := make([]InspectionItemCheck, 0, len(merge.Items))
	for _, item := range merge.Items {
		totalClauses += len(item.Clauses)
		items = append(items, *item)
	}

	return InspectionItemCheckResult{
		HasTable:               true,
		TotalItems:             len(items),
		TotalClauses:           totalClauses,
		CorrectConclusions:     correct,
		IncorrectConclusions:   incorrect,
		ItemChecks:             items,
		CrossPageContinuations: merge.Continuations,
		Errors:                 errs,
	}
}

// checkSerialNumbers validates that item sequence numbers form a contiguous
// run. The scan works on a sorted copy, so a duplicate is caught wherever
// its twin sits in the table. A repeated number is an error; a gap is a
// warning, since extractors sometimes drop a row the document actually has.
func checkSerialNumbers(items []*InspectionItemCheck) []ErrorItem {
	type numbered struct {
		n    int
		item *InspectionItemCheck
	}
	var seq []numbered
	for _, item := range items {
		if n := itemSortKey(item.ItemNumber); n != 0 {
			seq = append(seq, numbered{n, item})
		}
	}
	sort.SliceStable(seq, func(i, j int) bool { return seq[i].n < seq[j].n })

	var errs []ErrorItem
	for i := 1; i < len(seq); i++ {
		prev, cur := seq[i-1], seq[i]
		switch {
		case cur.n == prev.n:
			errs = append(errs, ErrorItem{
				Code:       CodeSerialDuplicate,
				Severity:   SeverityError,
				Message:    fmt.Sprintf("item sequence number %d appears twice", cur.n),
				PageNumber: cur.item.FirstPage,
				ItemNumber: cur.item.ItemNumber,
			})
		case cur.n != prev.n+1:
			errs = append(errs, ErrorItem{
				Code:       CodeSerialGap,
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("item sequence numbers jump from %d to %d", prev.n, cur.n),
				PageNumber: cur.item.FirstPage,
				ItemNumber: cur.item.ItemNumber,
			})
		}
	}
	return errs
}

// checkRequiredFields emits the data-completeness findings:
//
//   - a clause with recorded results but a blank printed conclusion
//   - a blank result inside a clause whose other results are recorded
//   - a clause concluded 不符合 with no remark explaining it
//
// Items gain fail status for the first two; the remark check only warns.
func checkRequiredFields(items []*InspectionItemCheck) []ErrorItem {
	var errs []ErrorItem
	for _, item := range items {
		for i := range item.Clauses {
			clause := &item.Clauses[i]
			hasRecorded := false
			for _, r := range clause.Requirements {
				if !IsBlankResult(r.InspectionResult) {
					hasRecorded = true
					break
				}
			}
			if !hasRecorded {
				continue
			}

			if clause.Conclusion == "" {
				errs = append(errs, newClauseError(CodeEmptyConclusion, SeverityError, item, clause,
					"item %s clause %s: results are recorded but the conclusion cell is empty",
					item.ItemNumber, clause.ClauseNumber))
				item.Status = StatusFail
			}
			for _, r := range clause.Requirements {
				if r.InspectionResult == "" && r.RequirementText != "" {
					errs = append(errs, newClauseError(CodeEmptyResult, SeverityError, item, clause,
						"item %s clause %s: requirement %q has no recorded result",
						item.ItemNumber, clause.ClauseNumber, r.RequirementText))
					item.Status = StatusFail
				}
			}
			if clause.Conclusion == ConclusionFail && !anyRemark(clause.Requirements) {
				errs = append(errs, newClauseError(CodeEmptyRemark, SeverityWarning, item, clause,
					"item %s clause %s: concluded 不符合 without a remark",
					item.ItemNumber, clause.ClauseNumber))
				if item.Status == StatusPass {
					item.Status = StatusWarning
				}
			}
		}
	}
	return errs
}

func anyRemark(reqs []RequirementCheck) bool {
	for _, r := range reqs {
		if r.Remark != "" {
			return true
		}
	}
	return false
}
