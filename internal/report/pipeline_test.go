package report

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lulf87/pdf-report-checker-sub000/internal/inspection"
)

var tableHeaders = []string{"序号", "检验项目", "标准条款", "标准要求", "检验结果", "单项结论", "备注"}

// fixtureRequest is a three-page report: a cover page carrying the key
// fields and a photo label, the inspection-item table, and a 续表 page
// continuing item 2. Item 3's printed conclusion contradicts its result.
func fixtureRequest() RequestEnvelope {
	return RequestEnvelope{
		DocumentID: "doc-001",
		Filename:   "report.pdf",
		Pages: []inspection.PageRecord{
			{
				PageNumber: 1,
				Text:       "检验报告\n样品名称：电热水壶\n委托方：华东电器有限公司\n型号规格：ABC-123\n生产日期：2023.05.01\n",
				PageMarker: "共3页 第1页",
				Labels: []inspection.LabelValue{{
					PageNumber:  1,
					SubjectName: "电热水壶",
					Fields: map[string]string{
						"委托方":  "华东电器有限公司",
						"型号规格": "ABC-123",
						"生产日期": "2023-05-01",
					},
				}},
			},
			{
				PageNumber: 2,
				PageMarker: "共3页 第2页",
				Tables: []inspection.RawTable{{
					PageNumber: 2,
					Headers:    tableHeaders,
					Rows: [][]string{
						{"1", "标志", "5.1", "标志应清晰", "合格", "符合", ""},
						{"2", "绝缘电阻", "5.2", "≥100MΩ", "110MΩ", "符合", ""},
						{"3", "耐压", "5.3", "试验中无击穿", "击穿，不符合", "符合", ""},
					},
				}},
			},
			{
				PageNumber: 3,
				Text:       "续表",
				PageMarker: "共3页 第3页",
				Tables: []inspection.RawTable{{
					PageNumber: 3,
					Rows: [][]string{
						{"续2", "", "5.2", "潮湿后≥1MΩ", "2MΩ", "", ""},
					},
				}},
			},
		},
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	res, err := NewPipeline().Run(context.Background(), fixtureRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.State != StateAggregated {
		t.Fatalf("State = %s, want %s", res.State, StateAggregated)
	}
	if !res.Inspection.HasTable {
		t.Fatal("HasTable = false")
	}
	if res.Inspection.TotalItems != 3 {
		t.Fatalf("TotalItems = %d, want 3", res.Inspection.TotalItems)
	}
	if res.Inspection.CrossPageContinuations != 1 {
		t.Fatalf("CrossPageContinuations = %d, want 1", res.Inspection.CrossPageContinuations)
	}
	if got := res.Inspection.CorrectConclusions + res.Inspection.IncorrectConclusions; got != res.Inspection.TotalClauses {
		t.Fatalf("conclusion counts %d do not add up to %d clauses", got, res.Inspection.TotalClauses)
	}
	if res.Inspection.IncorrectConclusions != 1 {
		t.Fatalf("IncorrectConclusions = %d, want 1", res.Inspection.IncorrectConclusions)
	}

	// Item 2's continuation must have been folded into its 5.2 clause.
	item2 := res.Inspection.ItemChecks[1]
	if len(item2.Clauses) != 1 || len(item2.Clauses[0].Requirements) != 2 {
		t.Fatalf("item 2 continuation not merged: %+v", item2.Clauses)
	}

	wantCodes := map[string]bool{
		inspection.CodeConclusionShouldBeFail: false,
		inspection.CodeDateFormatMismatch:     false,
	}
	for _, e := range res.Inspection.Errors {
		if _, ok := wantCodes[e.Code]; ok {
			wantCodes[e.Code] = true
		}
	}
	for code, seen := range wantCodes {
		if !seen {
			t.Errorf("finding %s missing from %+v", code, res.Inspection.Errors)
		}
	}

	if len(res.PageNumbers.Anomalies) != 0 {
		t.Fatalf("page numbering flagged a clean document: %+v", res.PageNumbers.Anomalies)
	}
	if res.PageNumbers.DeclaredTotal != 3 || !res.PageNumbers.TotalsAgree {
		t.Fatalf("page summary wrong: %+v", res.PageNumbers)
	}

	if res.ReportMarkdown == "" || !strings.Contains(res.ReportMarkdown, "## Findings") {
		t.Fatal("rendered report is missing the findings section")
	}

	wantStages := []string{"detect", "parse", "merge", "conclusions", "pagenumbers", "fields", "aggregate"}
	if diff := cmp.Diff(wantStages, res.Metadata.StagesExecuted); diff != "" {
		t.Fatalf("stages mismatch (-want +got):\n%s", diff)
	}
}

func TestPipelineContinuationPageOpeningWithSubRow(t *testing.T) {
	// The 续表 page opens with a bare two-cell sub-row: no 序号, no 检验项目,
	// no clause number. The data must survive into item 2's open clause.
	req := RequestEnvelope{
		DocumentID: "doc-004",
		Pages: []inspection.PageRecord{
			{
				PageNumber: 1,
				PageMarker: "共2页 第1页",
				Tables: []inspection.RawTable{{
					PageNumber: 1,
					Headers:    tableHeaders,
					Rows: [][]string{
						{"1", "标志", "5.1", "标志应清晰", "合格", "符合", ""},
						{"2", "绝缘电阻", "5.2", "≥100MΩ", "110MΩ", "符合", ""},
					},
				}},
			},
			{
				PageNumber: 2,
				Text:       "续表",
				PageMarker: "共2页 第2页",
				Tables: []inspection.RawTable{{
					PageNumber: 2,
					Rows:       [][]string{{"潮湿后≥1MΩ", "2MΩ"}},
				}},
			},
		},
	}
	res, err := NewPipeline().Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Inspection.CrossPageContinuations != 1 {
		t.Fatalf("CrossPageContinuations = %d, want 1", res.Inspection.CrossPageContinuations)
	}
	if res.Inspection.TotalItems != 2 || res.Inspection.TotalClauses != 2 {
		t.Fatalf("totals: items=%d clauses=%d", res.Inspection.TotalItems, res.Inspection.TotalClauses)
	}
	item2 := res.Inspection.ItemChecks[1]
	if len(item2.Clauses) != 1 || len(item2.Clauses[0].Requirements) != 2 {
		t.Fatalf("sub-row requirement lost on the continuation page: %+v", item2.Clauses)
	}
	if got := res.ErrorCount(inspection.SeverityError) + res.ErrorCount(inspection.SeverityWarning); got != 0 {
		t.Fatalf("clean document flagged: %+v", res.Inspection.Errors)
	}
}

func TestPipelineResultRoundTripsThroughJSON(t *testing.T) {
	res, err := NewPipeline().Run(context.Background(), fixtureRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	first, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded VerificationResult
	if err := json.Unmarshal(first, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	second, err := json.Marshal(decoded)
	if err != nil {
		t.Fatalf("remarshal: %v", err)
	}

	var a, b map[string]any
	if err := json.Unmarshal(first, &a); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(second, &b); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("result does not round-trip (-first +second):\n%s", diff)
	}
}

func TestPipelineNoTable(t *testing.T) {
	req := RequestEnvelope{
		DocumentID: "doc-002",
		Pages: []inspection.PageRecord{
			{PageNumber: 1, Text: "封面", PageMarker: "共1页 第1页"},
		},
	}
	res, err := NewPipeline().Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateTableNotFound {
		t.Fatalf("State = %s, want %s", res.State, StateTableNotFound)
	}
	if res.Inspection.HasTable {
		t.Fatal("HasTable = true")
	}
	if res.ErrorCount(inspection.SeverityInfo) != 1 {
		t.Fatalf("want one info finding, got %+v", res.Inspection.Errors)
	}
}

func TestPipelineRejectsEmptyPageList(t *testing.T) {
	_, err := NewPipeline().Run(context.Background(), RequestEnvelope{DocumentID: "doc-003"})
	if err == nil {
		t.Fatal("expected an error for an empty page list")
	}
}
