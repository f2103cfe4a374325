package report

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lulf87/pdf-report-checker-sub000/internal/fieldcompare"
	"github.com/lulf87/pdf-report-checker-sub000/internal/inspection"
	"github.com/lulf87/pdf-report-checker-sub000/internal/pagenum"
)

// Pipeline runs the verification stages in dependency order: detect,
// parse, merge, validate conclusions, validate page numbers, compare
// fields, aggregate. Every stage is a pure function of its inputs; a
// Pipeline holds no per-run state and one instance may verify independent
// documents concurrently.
type Pipeline struct {
	tracer trace.Tracer
}

func NewPipeline() *Pipeline {
	return &Pipeline{tracer: otel.Tracer("report/pipeline")}
}

// Run verifies one document. The only error it returns is a contract
// violation (no pages); every data-level anomaly becomes a finding inside
// the result instead.
func (p *Pipeline) Run(ctx context.Context, req RequestEnvelope) (VerificationResult, error) {
	res := VerificationResult{
		DocumentID: req.DocumentID,
		Filename:   req.Filename,
		State:      StateUnscanned,
		Metadata:   Metadata{StartedAt: time.Now()},
	}
	if len(req.Pages) == 0 {
		return res, fmt.Errorf("page list is empty: the extraction step must run first")
	}

	// Stage 1: table detection.
	ctx, span := p.tracer.Start(ctx, "detect")
	det := inspection.DetectTables(req.Pages)
	span.SetAttributes(attribute.Bool("table.found", det.Found), attribute.Int("table.pages", len(det.Pages)))
	span.End()
	res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, "detect")

	var merge inspection.MergeResult
	var correct, incorrect int
	var conclusionErrs []inspection.ErrorItem

	if !det.Found {
		res.State = StateTableNotFound
	} else {
		res.State = StateTableFound

		// Stage 2: structural parse, one item list per detected page.
		ctx, span = p.tracer.Start(ctx, "parse")
		var pages []inspection.PageItems
		for _, pt := range det.Pages {
			rows := inspection.ParseRows(pt, det.Layout)
			pages = append(pages, inspection.PageItems{
				PageNumber:   pt.PageNumber,
				Continuation: pt.Continuation,
				Items:        inspection.BuildItems(rows),
			})
		}
		span.End()
		res.State = StateParsed
		res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, "parse")

		// Stage 3: cross-page continuation merge.
		ctx, span = p.tracer.Start(ctx, "merge")
		merge = inspection.MergeContinuations(pages)
		span.SetAttributes(attribute.Int("merge.continuations", merge.Continuations))
		span.End()
		res.State = StateMerged
		res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, "merge")

		// Stage 4: conclusion validation.
		ctx, span = p.tracer.Start(ctx, "conclusions")
		correct, incorrect, conclusionErrs = inspection.ValidateConclusions(merge.Items)
		span.SetAttributes(attribute.Int("conclusions.incorrect", incorrect))
		span.End()
		res.State = StateValidated
		res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, "conclusions")
	}

	// Stage 5: page-number continuity, independent of table detection.
	ctx, span = p.tracer.Start(ctx, "pagenumbers")
	marks := collectMarks(req.Pages, det)
	pageCheck, pageErrs := pagenum.Validate(marks)
	span.SetAttributes(attribute.Int("pagenumbers.anomalies", len(pageCheck.Anomalies)))
	span.End()
	res.PageNumbers = pageCheck
	res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, "pagenumbers")

	// Stage 6: table-vs-label field reconciliation.
	_, span = p.tracer.Start(ctx, "fields")
	comparisons, fieldErrs := compareDocumentFields(req.Pages)
	span.SetAttributes(attribute.Int("fields.compared", len(comparisons)))
	span.End()
	res.FieldComparisons = comparisons
	res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, "fields")

	// Stage 7: aggregate. The flat finding list carries every stage's
	// emissions in stage order.
	res.Inspection = inspection.Aggregate(det, merge, correct, incorrect, conclusionErrs)
	res.Inspection.Errors = append(res.Inspection.Errors, pageErrs...)
	res.Inspection.Errors = append(res.Inspection.Errors, fieldErrs...)
	if det.Found {
		res.State = StateAggregated
	}
	res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, "aggregate")
	res.Metadata.CompletedAt = time.Now()
	res.ReportMarkdown = BuildMarkdown(res)
	return res, nil
}

// collectMarks parses every page's printed marker, flagging the pages the
// detector identified as table continuations.
func collectMarks(pages []inspection.PageRecord, det inspection.DetectionResult) []pagenum.Mark {
	continuations := map[int]bool{}
	for _, pt := range det.Pages {
		if pt.Continuation {
			continuations[pt.PageNumber] = true
		}
	}
	var marks []pagenum.Mark
	for _, page := range pages {
		text := page.PageMarker
		if text == "" {
			text = page.Text
		}
		mark, ok := pagenum.ParseMarker(page.PageNumber, text)
		if !ok {
			continue
		}
		mark.TableContinuation = continuations[page.PageNumber]
		marks = append(marks, mark)
	}
	return marks
}

// compareDocumentFields gathers the key fields and photo labels across the
// document and reconciles them. Field captions and labels may sit on
// different pages.
func compareDocumentFields(pages []inspection.PageRecord) ([]fieldcompare.FieldComparison, []inspection.ErrorItem) {
	tableFields := map[string]string{}
	sampleName := ""
	var labels []inspection.LabelValue
	for _, page := range pages {
		for name, value := range fieldcompare.ExtractFields(page.Text) {
			if _, seen := tableFields[name]; !seen {
				tableFields[name] = value
			}
		}
		if sampleName == "" {
			sampleName = fieldcompare.ExtractSampleName(page.Text)
		}
		labels = append(labels, page.Labels...)
	}
	return fieldcompare.Compare(tableFields, sampleName, labels)
}
