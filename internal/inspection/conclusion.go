package inspection

import (
	"strings"

	"github.com/lulf87/pdf-report-checker-sub000/internal/textnorm"
)

// ExpectedConclusion computes the conclusion a clause's recorded results
// require, in fixed priority order:
//
//  1. any result containing 不符合 → 不符合
//  2. all results blank (see BlankResultSentinels) → "/"
//  3. otherwise → 符合
func ExpectedConclusion(requirements []RequirementCheck) string {
	for _, r := range requirements {
		if strings.Contains(r.InspectionResult, ConclusionFail) {
			return ConclusionFail
		}
	}
	allBlank := true
	for _, r := range requirements {
		if !IsBlankResult(r.InspectionResult) {
			allBlank = false
			break
		}
	}
	if allBlank {
		return ConclusionNA
	}
	return ConclusionPass
}

// IsBlankResult reports whether a 检验结果 value is one of the placeholder
// sentinels meaning "not recorded".
func IsBlankResult(result string) bool {
	folded := textnorm.Fold(result)
	for _, s := range BlankResultSentinels {
		if folded == textnorm.Fold(s) {
			return true
		}
	}
	return false
}

// conclusionMismatchCode selects the finding code for an incorrect
// conclusion from which rule produced the mismatch.
func conclusionMismatchCode(expected, actual string) string {
	switch {
	case expected == ConclusionNA && actual != ConclusionNA:
		return CodeConclusionShouldBeNA
	case expected == ConclusionPass && actual == ConclusionFail:
		return CodeConclusionNotFail
	case expected == ConclusionPass:
		return CodeConclusionShouldBePass
	case expected == ConclusionFail && actual != ConclusionFail:
		return CodeConclusionShouldBeFail
	case expected != ConclusionFail && actual == ConclusionFail:
		return CodeConclusionNotFail
	}
	return CodeConclusionShouldBePass
}

// ValidateConclusions recomputes every clause's expected conclusion from its
// requirements and compares it to the printed value. This is the single
// mutation of ClauseCheck after parsing: ExpectedConclusion and
// IsConclusionCorrect are filled here and nowhere else.
//
// Returns the correct/incorrect counts and the mismatch findings. Running it
// twice on the same input yields the same output.
func ValidateConclusions(items []*InspectionItemCheck) (correct, incorrect int, errs []ErrorItem) {
	for _, item := range items {
		for i := range item.Clauses {
			clause := &item.Clauses[i]
			expected := ExpectedConclusion(clause.Requirements)
			actual := textnorm.TrimCell(clause.Conclusion)

			clause.ExpectedConclusion = expected
			clause.IsConclusionCorrect = actual == expected
			if clause.IsConclusionCorrect {
				correct++
				continue
			}
			incorrect++

			code := conclusionMismatchCode(expected, actual)
			errs = append(errs, newClauseError(code, SeverityError, item, clause,
				"item %s (%s) clause %s: conclusion should be %q, got %q",
				item.ItemNumber, item.ItemName, clause.ClauseNumber, expected, actual))
			item.Issues = append(item.Issues,
				"clause "+clause.ClauseNumber+": conclusion should be "+quoted(expected)+", got "+quoted(actual))
		}

		if anyIncorrect(item.Clauses) {
			item.Status = StatusFail
		} else if len(item.Issues) > 0 && item.Status == StatusPass {
			item.Status = StatusWarning
		}
	}
	return correct, incorrect, errs
}

func anyIncorrect(clauses []ClauseCheck) bool {
	for _, c := range clauses {
		if !c.IsConclusionCorrect {
			return true
		}
	}
	return false
}

func quoted(s string) string {
	return "'" + s + "'"
}
