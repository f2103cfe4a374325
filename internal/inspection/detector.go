package inspection

import (
	"regexp"
	"strings"

	"github.com/lulf87/pdf-report-checker-sub000/internal/textnorm"
)

// HeaderScoreThreshold is the minimum fraction of RequiredHeaders a
// candidate header row must match. 5 of 6 clears it, which tolerates one
// column lost to OCR noise or extractor truncation.
const HeaderScoreThreshold = 0.8

var continuationPagePattern = regexp.MustCompile(`续(表|上表|前表)?\s*\d*`)

// PageTable is one detected occurrence of the inspection-item table: either
// the first qualifying table or a continuation of it on a later page.
type PageTable struct {
	PageNumber   int
	Table        RawTable
	Continuation bool
	HeaderScore  float64
}

// DetectionResult reports where the inspection-item table lives in the
// document. Found=false is a normal outcome, not an error.
type DetectionResult struct {
	Found     bool
	StartPage int
	Pages     []PageTable
	// Layout is the column layout of the first qualifying table; continuation
	// tables without their own header row are parsed against it.
	Layout ColumnLayout
}

// HeaderScore scores a candidate header row against RequiredHeaders: the
// fraction of required column labels present in the folded header text.
func HeaderScore(headers []string) float64 {
	if len(headers) == 0 {
		return 0
	}
	joined := ""
	for _, h := range headers {
		joined += textnorm.FoldLoose(h)
	}
	if joined == "" {
		return 0
	}
	matched := 0
	for _, want := range RequiredHeaders {
		if containsFuzzy(joined, textnorm.FoldLoose(want)) {
			matched++
		}
	}
	return float64(matched) / float64(len(RequiredHeaders))
}

// containsFuzzy reports whether needle occurs in haystack, tolerating one
// substituted rune for needles of three or more runes. OCR homophone
// substitutions typically corrupt a single character.
func containsFuzzy(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	if strings.Contains(haystack, needle) {
		return true
	}
	n := []rune(needle)
	if len(n) < 3 {
		return false
	}
	h := []rune(haystack)
	for i := 0; i+len(n) <= len(h); i++ {
		diff := 0
		for j := range n {
			if h[i+j] != n[j] {
				diff++
				if diff > 1 {
					break
				}
			}
		}
		if diff <= 1 {
			return true
		}
	}
	return false
}

// hasContinuationMark reports whether the page text carries a 续表-style
// marker above or inside the table area.
func hasContinuationMark(pageText string) bool {
	if pageText == "" {
		return false
	}
	return continuationPagePattern.MatchString(textnorm.Fold(pageText))
}

// DetectTables scans the pages in physical order for the inspection-item
// table. The first table whose header clears HeaderScoreThreshold anchors
// the result; subsequent pages contribute either a fresh qualifying copy or,
// when consecutive and marked 续表, a headerless continuation.
func DetectTables(pages []PageRecord) DetectionResult {
	var res DetectionResult
	lastPage := 0
	for _, page := range pages {
		for _, tbl := range page.Tables {
			score := HeaderScore(tbl.Headers)
			if score >= HeaderScoreThreshold {
				if !res.Found {
					res.Found = true
					res.StartPage = page.PageNumber
					res.Layout = LayoutFromHeaders(tbl.Headers)
				}
				res.Pages = append(res.Pages, PageTable{
					PageNumber:   page.PageNumber,
					Table:        tbl,
					Continuation: len(res.Pages) > 0,
					HeaderScore:  score,
				})
				lastPage = page.PageNumber
				continue
			}
			// A headerless table on the next consecutive page marked 续表
			// continues the detected table.
			if res.Found && page.PageNumber == lastPage+1 && hasContinuationMark(page.Text) {
				res.Pages = append(res.Pages, PageTable{
					PageNumber:   page.PageNumber,
					Table:        tbl,
					Continuation: true,
					HeaderScore:  score,
				})
				lastPage = page.PageNumber
			}
		}
	}
	return res
}
