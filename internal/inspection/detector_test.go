package inspection

import "testing"

var standardHeaders = []string{"序号", "检验项目", "标准条款", "标准要求", "检验结果", "单项结论", "备注"}

func TestHeaderScoreFullMatch(t *testing.T) {
	if got := HeaderScore(standardHeaders); got != 1.0 {
		t.Fatalf("HeaderScore = %v, want 1.0", got)
	}
}

func TestHeaderScoreToleratesOneCorruptRune(t *testing.T) {
	headers := []string{"序号", "检脸项目", "标准条款", "标准要求", "检验结果", "单项结论"}
	if got := HeaderScore(headers); got < HeaderScoreThreshold {
		t.Fatalf("HeaderScore = %v, want >= %v with one OCR-corrupted rune", got, HeaderScoreThreshold)
	}
}

func TestHeaderScoreRejectsUnrelatedTable(t *testing.T) {
	headers := []string{"样品名称", "抽样日期", "抽样地点"}
	if got := HeaderScore(headers); got >= HeaderScoreThreshold {
		t.Fatalf("HeaderScore = %v for an unrelated table, want < %v", got, HeaderScoreThreshold)
	}
}

func TestDetectTablesAnchorsFirstQualifyingTable(t *testing.T) {
	pages := []PageRecord{
		{PageNumber: 1, Tables: []RawTable{{PageNumber: 1, Headers: []string{"样品名称", "抽样日期"}}}},
		{PageNumber: 2, Tables: []RawTable{{PageNumber: 2, Headers: standardHeaders}}},
	}
	det := DetectTables(pages)
	if !det.Found {
		t.Fatal("expected table to be found")
	}
	if det.StartPage != 2 {
		t.Fatalf("StartPage = %d, want 2", det.StartPage)
	}
	if len(det.Pages) != 1 || det.Pages[0].Continuation {
		t.Fatalf("unexpected pages: %+v", det.Pages)
	}
}

func TestDetectTablesNotFound(t *testing.T) {
	pages := []PageRecord{
		{PageNumber: 1, Text: "检验报告首页"},
		{PageNumber: 2, Tables: []RawTable{{Headers: []string{"委托方", "地址"}}}},
	}
	det := DetectTables(pages)
	if det.Found {
		t.Fatalf("expected no table, got %+v", det)
	}
}

func TestDetectTablesHeaderlessContinuation(t *testing.T) {
	pages := []PageRecord{
		{PageNumber: 2, Tables: []RawTable{{PageNumber: 2, Headers: standardHeaders}}},
		{PageNumber: 3, Text: "续表 2", Tables: []RawTable{{PageNumber: 3, Rows: [][]string{{"", "", "", "要求", "合格", "", ""}}}}},
	}
	det := DetectTables(pages)
	if len(det.Pages) != 2 {
		t.Fatalf("detected %d pages, want 2", len(det.Pages))
	}
	if !det.Pages[1].Continuation {
		t.Fatal("page 3 table should be marked as a continuation")
	}
}

func TestDetectTablesSkipsNonConsecutiveHeaderless(t *testing.T) {
	pages := []PageRecord{
		{PageNumber: 2, Tables: []RawTable{{PageNumber: 2, Headers: standardHeaders}}},
		{PageNumber: 5, Text: "续表", Tables: []RawTable{{PageNumber: 5, Rows: [][]string{{"x", "y"}}}}},
	}
	det := DetectTables(pages)
	if len(det.Pages) != 1 {
		t.Fatalf("detected %d pages, want 1: a gap breaks the continuation chain", len(det.Pages))
	}
}
