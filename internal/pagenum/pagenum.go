// Package pagenum validates the 共X页 第Y页 markers printed on report pages:
// the current index must climb by exactly one per page, every page must
// declare the same total, and the final page's index must equal that total.
package pagenum

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/lulf87/pdf-report-checker-sub000/internal/inspection"
)

// markerPattern matches "共 X 页 第 Y 页" with arbitrary interior spacing.
var markerPattern = regexp.MustCompile(`共\s*(\d+)\s*页\s*第\s*(\d+)\s*页`)

// Anomaly kinds reported in PageNumberCheck.
const (
	AnomalySkip             = "skip"
	AnomalyDuplicate        = "duplicate"
	AnomalyMismatchTotal    = "mismatch_total"
	AnomalyLastPageMismatch = "last_page_mismatch"
)

// Mark is one page's parsed marker: the total the page declares and the
// index it claims for itself.
type Mark struct {
	PhysicalPage  int    `json:"physical_page"`
	DeclaredTotal int    `json:"declared_total"`
	CurrentIndex  int    `json:"current_index"`
	RawText       string `json:"raw_text"`
	// TableContinuation excludes the mark from the monotonicity scan: a
	// continued table may legitimately repeat a page's logical position.
	TableContinuation bool `json:"table_continuation,omitempty"`
}

// Anomaly is one detected numbering defect.
type Anomaly struct {
	Kind         string `json:"kind"`
	PhysicalPage int    `json:"physical_page"`
	Expected     int    `json:"expected"`
	Actual       int    `json:"actual"`
}

// PageNumberCheck is the per-document numbering summary.
type PageNumberCheck struct {
	Marks         []Mark    `json:"marks"`
	Anomalies     []Anomaly `json:"anomalies"`
	DeclaredTotal int       `json:"declared_total"`
	ActualPages   int       `json:"actual_pages"`
	TotalsAgree   bool      `json:"totals_agree"`
}

// ParseMarker extracts a Mark from a page's marker text. ok is false when
// the text carries no recognizable marker.
func ParseMarker(physicalPage int, text string) (Mark, bool) {
	m := markerPattern.FindStringSubmatch(text)
	if m == nil {
		return Mark{}, false
	}
	total, _ := strconv.Atoi(m[1])
	current, _ := strconv.Atoi(m[2])
	return Mark{
		PhysicalPage:  physicalPage,
		DeclaredTotal: total,
		CurrentIndex:  current,
		RawText:       m[0],
	}, true
}

// Validate checks the ordered marks for continuity. Findings use the stable
// CONTINUITY_ERROR_001 code; duplicates and total mismatches are errors,
// skips are warnings.
func Validate(marks []Mark) (PageNumberCheck, []inspection.ErrorItem) {
	check := PageNumberCheck{Marks: marks, ActualPages: len(marks)}
	var errs []inspection.ErrorItem
	if len(marks) == 0 {
		check.TotalsAgree = true
		return check, nil
	}

	check.DeclaredTotal = majorityTotal(marks)
	check.TotalsAgree = true
	for _, m := range marks {
		if m.DeclaredTotal != check.DeclaredTotal {
			check.TotalsAgree = false
			check.Anomalies = append(check.Anomalies, Anomaly{
				Kind:         AnomalyMismatchTotal,
				PhysicalPage: m.PhysicalPage,
				Expected:     check.DeclaredTotal,
				Actual:       m.DeclaredTotal,
			})
			errs = append(errs, inspection.ErrorItem{
				Code:       inspection.CodeContinuity,
				Severity:   inspection.SeverityError,
				Message:    fmt.Sprintf("page %d declares a total of %d pages; the document agrees on %d", m.PhysicalPage, m.DeclaredTotal, check.DeclaredTotal),
				PageNumber: m.PhysicalPage,
			})
		}
	}

	// Monotonicity scan against the previous value, not a running counter,
	// so a single defect yields a single finding. Starting prev at 0 also
	// enforces that the first marked page carries index 1.
	prev := 0
	var last Mark
	for _, m := range marks {
		if m.TableContinuation {
			// Continued tables may repeat or advance the logical position;
			// either way the page anchors the scan without being judged.
			prev = m.CurrentIndex
			last = m
			continue
		}
		switch {
		case m.CurrentIndex == prev:
			check.Anomalies = append(check.Anomalies, Anomaly{
				Kind:         AnomalyDuplicate,
				PhysicalPage: m.PhysicalPage,
				Expected:     prev + 1,
				Actual:       m.CurrentIndex,
			})
			errs = append(errs, inspection.ErrorItem{
				Code:       inspection.CodeContinuity,
				Severity:   inspection.SeverityError,
				Message:    fmt.Sprintf("page %d repeats page index %d", m.PhysicalPage, m.CurrentIndex),
				PageNumber: m.PhysicalPage,
			})
		case m.CurrentIndex != prev+1:
			check.Anomalies = append(check.Anomalies, Anomaly{
				Kind:         AnomalySkip,
				PhysicalPage: m.PhysicalPage,
				Expected:     prev + 1,
				Actual:       m.CurrentIndex,
			})
			errs = append(errs, inspection.ErrorItem{
				Code:       inspection.CodeContinuity,
				Severity:   inspection.SeverityWarning,
				Message:    fmt.Sprintf("page %d jumps to page index %d, expected %d", m.PhysicalPage, m.CurrentIndex, prev+1),
				PageNumber: m.PhysicalPage,
			})
		}
		prev = m.CurrentIndex
		last = m
	}

	if last.CurrentIndex != check.DeclaredTotal {
		check.Anomalies = append(check.Anomalies, Anomaly{
			Kind:         AnomalyLastPageMismatch,
			PhysicalPage: last.PhysicalPage,
			Expected:     check.DeclaredTotal,
			Actual:       last.CurrentIndex,
		})
		errs = append(errs, inspection.ErrorItem{
			Code:       inspection.CodeContinuity,
			Severity:   inspection.SeverityError,
			Message:    fmt.Sprintf("last page carries index %d but the declared total is %d", last.CurrentIndex, check.DeclaredTotal),
			PageNumber: last.PhysicalPage,
		})
	}

	return check, errs
}

// majorityTotal picks the most common declared total; ties resolve to the
// earliest page's declaration.
func majorityTotal(marks []Mark) int {
	counts := map[int]int{}
	best, bestCount := marks[0].DeclaredTotal, 0
	for _, m := range marks {
		counts[m.DeclaredTotal]++
		if counts[m.DeclaredTotal] > bestCount {
			best, bestCount = m.DeclaredTotal, counts[m.DeclaredTotal]
		}
	}
	return best
}
