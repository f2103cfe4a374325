package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/lulf87/pdf-report-checker-sub000/internal/inspection"
	"github.com/lulf87/pdf-report-checker-sub000/internal/report"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleResult(docID string) report.VerificationResult {
	return report.VerificationResult{
		DocumentID: docID,
		Filename:   "report.pdf",
		State:      report.StateAggregated,
		Inspection: inspection.InspectionItemCheckResult{
			HasTable:     true,
			TotalItems:   2,
			TotalClauses: 3,
			ItemChecks:   []inspection.InspectionItemCheck{},
			Errors: []inspection.ErrorItem{
				{Code: inspection.CodeSerialGap, Severity: inspection.SeverityWarning, Message: "gap"},
			},
		},
		ReportMarkdown: "# Report\n",
	}
}

func TestSaveAndGetRun(t *testing.T) {
	st := openTestStore(t)

	runID, err := st.SaveRun(sampleResult("doc-001"))
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if runID == "" {
		t.Fatal("empty run id")
	}

	got, err := st.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.DocumentID != "doc-001" || got.State != report.StateAggregated {
		t.Fatalf("loaded run differs: %+v", got)
	}
	if got.Inspection.TotalClauses != 3 || len(got.Inspection.Errors) != 1 {
		t.Fatalf("inspection payload lost: %+v", got.Inspection)
	}
}

func TestGetRunNotFound(t *testing.T) {
	st := openTestStore(t)
	_, err := st.GetRun("run_missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("err = %v, want ErrRunNotFound", err)
	}
}

func TestGetRunInfrastructureErrorIsNotNotFound(t *testing.T) {
	st := openTestStore(t)
	runID, err := st.SaveRun(sampleResult("doc-001"))
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	st.Close()
	_, err = st.GetRun(runID)
	if err == nil {
		t.Fatal("expected an error from a closed store")
	}
	if errors.Is(err, ErrRunNotFound) {
		t.Fatalf("infrastructure error collapsed into ErrRunNotFound: %v", err)
	}
}

func TestListRuns(t *testing.T) {
	st := openTestStore(t)
	for _, id := range []string{"doc-001", "doc-002", "doc-003"} {
		if _, err := st.SaveRun(sampleResult(id)); err != nil {
			t.Fatalf("SaveRun(%s): %v", id, err)
		}
	}

	runs, err := st.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("listed %d runs, want 2", len(runs))
	}
	for _, r := range runs {
		if !r.HasTable || r.TotalClauses != 3 || r.WarningCount != 1 {
			t.Fatalf("summary columns wrong: %+v", r)
		}
	}
}

func TestPing(t *testing.T) {
	st := openTestStore(t)
	if err := st.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
