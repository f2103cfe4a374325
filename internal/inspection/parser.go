package inspection

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lulf87/pdf-report-checker-sub000/internal/textnorm"
)

// ColumnLayout maps the seven logical columns onto header positions.
// A value of -1 means the column was not found in the header row.
type ColumnLayout struct {
	ItemNumber  int
	ItemName    int
	Clause      int
	Requirement int
	Result      int
	Conclusion  int
	Remark      int
	// Width is the header column count; rows narrower or wider than this
	// come from merged cells and go through the variable-width mapping.
	Width int
}

// DefaultLayout is the canonical seven-column order.
var DefaultLayout = ColumnLayout{
	ItemNumber: 0, ItemName: 1, Clause: 2, Requirement: 3,
	Result: 4, Conclusion: 5, Remark: 6, Width: 7,
}

// LayoutFromHeaders derives the column layout from the detected header row.
// Columns missing from the header keep their canonical position.
func LayoutFromHeaders(headers []string) ColumnLayout {
	layout := DefaultLayout
	layout.Width = len(headers)
	for idx, h := range headers {
		switch folded := textnorm.FoldLoose(h); {
		case strings.Contains(folded, "序号"):
			layout.ItemNumber = idx
		case strings.Contains(folded, "检验项目"):
			layout.ItemName = idx
		case strings.Contains(folded, "标准条款"):
			layout.Clause = idx
		case strings.Contains(folded, "标准要求"):
			layout.Requirement = idx
		case strings.Contains(folded, "检验结果"):
			layout.Result = idx
		case strings.Contains(folded, "单项结论"):
			layout.Conclusion = idx
		case strings.Contains(folded, "备注"):
			layout.Remark = idx
		}
	}
	return layout
}

// Row is one parsed table row after column mapping and forward-fill.
type Row struct {
	ItemNumber       string
	ItemName         string
	ClauseNumber     string
	RequirementText  string
	InspectionResult string
	Conclusion       string
	Remark           string
	// Continuation marks rows whose 序号 cell carried a 续 prefix.
	Continuation bool
	PageNumber   int
}

var (
	continuationNumberPattern = regexp.MustCompile(`续\s*[-－\s]*(\d+)`)
	digitsPattern             = regexp.MustCompile(`\d+`)
	plainIntPattern           = regexp.MustCompile(`^\d+$`)
)

// continuationNumber extracts the real sequence number out of a 续-prefixed
// cell ("续30", "续 30", "续-30" all yield "30"). Returns "" when the cell
// carries no number.
func continuationNumber(cell string) string {
	if m := continuationNumberPattern.FindStringSubmatch(cell); m != nil {
		return m[1]
	}
	return digitsPattern.FindString(cell)
}

// carry threads the forward-fill state over merged cells: the extractor
// leaves 序号/检验项目/标准条款 blank on rows covered by a vertical merge.
// Requirement text, result, conclusion, and remark are strictly per-row and
// are never carried.
type carry struct {
	itemNumber string
	itemName   string
	clause     string
}

// mapped holds a row's cells assigned to logical columns before
// forward-fill.
type mapped struct {
	itemNumber, itemName, clause, requirement, result, conclusion, remark string
}

// mapRowColumns assigns a raw row's cells to logical columns. The extractor
// returns different cell counts per row when merged cells are involved:
//
//	width   full row in header order
//	2..4    merged-cell sub-row: leading cells are requirement text, the
//	        last is the result
//	5       requirement sub-row that also carries result and conclusion
//	6       a full row missing one column; which one is decided by whether
//	        the fifth cell looks like a conclusion value
//	>width  extra category columns folded into the requirement text
func mapRowColumns(row []string, layout ColumnLayout) mapped {
	var m mapped
	width := layout.Width
	if width == 0 {
		width = 7
	}
	n := len(row)
	cell := func(i int) string {
		if i >= 0 && i < n {
			return textnorm.TrimCell(row[i])
		}
		return ""
	}

	switch {
	case n >= width && width >= 7:
		if n == width {
			m.itemNumber = cell(layout.ItemNumber)
			m.itemName = cell(layout.ItemName)
			m.clause = cell(layout.Clause)
			m.requirement = cell(layout.Requirement)
			m.result = cell(layout.Result)
			m.conclusion = cell(layout.Conclusion)
			m.remark = cell(layout.Remark)
			return m
		}
		// Wider than the header: the extra middle columns are category
		// labels belonging to the requirement text.
		extra := n - width
		m.itemNumber = cell(0)
		m.itemName = cell(1)
		m.clause = cell(2)
		var parts []string
		for i := layout.Requirement; i <= layout.Requirement+extra; i++ {
			if c := cell(i); c != "" {
				parts = append(parts, c)
			}
		}
		m.requirement = strings.Join(parts, " ")
		m.result = cell(layout.Result + extra)
		m.conclusion = cell(layout.Conclusion + extra)
		m.remark = cell(layout.Remark + extra)
		return m

	case n <= 4:
		var parts []string
		for i := 0; i < n-1; i++ {
			if c := cell(i); c != "" {
				parts = append(parts, c)
			}
		}
		m.requirement = strings.Join(parts, " ")
		m.result = cell(n - 1)
		return m

	case n == 5:
		var parts []string
		for i := 0; i < 3; i++ {
			if c := cell(i); c != "" {
				parts = append(parts, c)
			}
		}
		m.requirement = strings.Join(parts, " ")
		m.result = cell(3)
		m.conclusion = cell(4)
		return m

	default: // n == 6
		first := cell(0)
		if plainIntPattern.MatchString(first) || strings.Contains(first, "续") {
			m.itemNumber = first
			m.itemName = cell(1)
			m.clause = cell(2)
			m.requirement = cell(3)
			if isConclusionValue(cell(4)) {
				// 检验结果 column is the one missing.
				m.conclusion = cell(4)
				m.remark = cell(5)
			} else {
				m.result = cell(4)
				m.conclusion = cell(5)
			}
			return m
		}
		m.itemName = cell(0)
		m.clause = cell(1)
		m.requirement = cell(2)
		m.result = cell(3)
		m.conclusion = cell(4)
		m.remark = cell(5)
		return m
	}
}

// isConclusionValue reports whether a cell holds one of the three values the
// 单项结论 column may take. 检验结果 cells hold free text instead.
func isConclusionValue(s string) bool {
	switch textnorm.Fold(s) {
	case "", ConclusionPass, ConclusionFail, ConclusionNA:
		return true
	}
	return false
}

// ParseRows converts one detected table into parsed rows, forward-filling
// item and clause identity over merged cells. Repeated header rows inside
// the body are dropped.
func ParseRows(pt PageTable, layout ColumnLayout) []Row {
	var rows []Row
	var c carry
	for _, raw := range pt.Table.Rows {
		if len(raw) < 2 {
			continue
		}
		m := mapRowColumns(raw, layout)

		isContinuation := false
		if m.itemNumber != "" && strings.Contains(m.itemNumber, "续") {
			if real := continuationNumber(m.itemNumber); real != "" {
				m.itemNumber = real
				isContinuation = true
			}
		}

		// Merged or continuation rows inherit the open item.
		if (m.itemNumber == "" || isContinuation) && c.itemNumber != "" {
			if m.itemNumber == "" || m.itemNumber == c.itemNumber {
				m.itemNumber = c.itemNumber
				if m.itemName == "" {
					m.itemName = c.itemName
				}
			}
		}
		if m.clause == "" && c.clause != "" {
			m.clause = c.clause
		}

		if m.itemNumber != "" {
			c.itemNumber = m.itemNumber
			c.itemName = m.itemName
		}
		if m.clause != "" {
			c.clause = m.clause
		}

		// Repeated header row carried into the body.
		if strings.Contains(textnorm.Fold(m.itemNumber), "序号") {
			continue
		}
		if m.itemNumber == "" && m.itemName == "" {
			// A continuation page may open with merged-cell sub-rows before
			// any numbered row arrives. They belong to the item left open on
			// the previous page and are resolved by the merger; everywhere
			// else an anonymous row without content is extractor noise.
			if !pt.Continuation || (m.requirement == "" && m.result == "") {
				continue
			}
		}

		rows = append(rows, Row{
			ItemNumber:       m.itemNumber,
			ItemName:         m.itemName,
			ClauseNumber:     m.clause,
			RequirementText:  m.requirement,
			InspectionResult: m.result,
			Conclusion:       m.conclusion,
			Remark:           m.remark,
			Continuation:     isContinuation,
			PageNumber:       pt.PageNumber,
		})
	}
	return rows
}

// BuildItems groups one page's rows into items and clauses, preserving row
// order. Status starts at pass; it is only ever downgraded later.
func BuildItems(rows []Row) []*InspectionItemCheck {
	var items []*InspectionItemCheck
	byNumber := map[string]*InspectionItemCheck{}

	for _, row := range rows {
		item, ok := byNumber[row.ItemNumber]
		if !ok {
			item = &InspectionItemCheck{
				ItemNumber: row.ItemNumber,
				ItemName:   row.ItemName,
				Continued:  row.Continuation,
				Issues:     []string{},
				Status:     StatusPass,
				FirstPage:  row.PageNumber,
			}
			byNumber[row.ItemNumber] = item
			items = append(items, item)
		}
		if item.ItemName == "" && row.ItemName != "" {
			item.ItemName = row.ItemName
		}

		req := RequirementCheck{
			RequirementText:  row.RequirementText,
			InspectionResult: row.InspectionResult,
			Remark:           row.Remark,
		}

		ci := clauseIndex(item.Clauses, row.ClauseNumber)
		if ci < 0 {
			item.Clauses = append(item.Clauses, ClauseCheck{
				ClauseNumber: row.ClauseNumber,
				Requirements: []RequirementCheck{req},
				Conclusion:   row.Conclusion,
			})
			continue
		}
		item.Clauses[ci].Requirements = append(item.Clauses[ci].Requirements, req)
		// A clause spanning multiple rows prints its conclusion on one of
		// them; the last non-empty value wins.
		if row.Conclusion != "" {
			item.Clauses[ci].Conclusion = row.Conclusion
		}
	}
	return items
}

func clauseIndex(clauses []ClauseCheck, number string) int {
	for i := range clauses {
		if clauses[i].ClauseNumber == number {
			return i
		}
	}
	return -1
}

// itemSortKey extracts the integer part of an item number for ordering.
func itemSortKey(number string) int {
	if m := digitsPattern.FindString(number); m != "" {
		n, _ := strconv.Atoi(m)
		return n
	}
	return 0
}
