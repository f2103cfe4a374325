// Package fieldcompare reconciles scalar fields printed in a report table
// against the same fields read off photographed labels by the upstream OCR
// step. Comparison is exact after whitespace/width folding, except for
// production dates, which are compared on parsed calendar value with an
// independent surface-format check.
package fieldcompare

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lulf87/pdf-report-checker-sub000/internal/inspection"
	"github.com/lulf87/pdf-report-checker-sub000/internal/textnorm"
)

// Canonical field names of the cross-referenced set.
const (
	FieldClientName     = "委托方"
	FieldProductModel   = "型号规格"
	FieldProductionDate = "生产日期"
	FieldSerialBatch    = "产品编号/批号"
	FieldTrademark      = "商标"
	FieldManufacturer   = "制造商"
)

// fieldSynonyms maps each canonical field to the spellings it may carry in
// a table header or on a label.
var fieldSynonyms = map[string][]string{
	FieldClientName:     {"委托方", "委 托 方", "委托单位", "客户名称"},
	FieldProductModel:   {"型号规格", "规格型号", "型号", "规格", "model", "spec"},
	FieldProductionDate: {"生产日期", "production_date", "mfg", "mfd"},
	FieldSerialBatch:    {"产品编号/批号", "产品编号", "批号", "序列号", "serial_number", "batch_number", "lot", "sn"},
	FieldTrademark:      {"商标", "trademark", "brand"},
	FieldManufacturer:   {"制造商", "生产企业", "manufacturer"},
}

// ComparedFields is the fixed set, in report order.
var ComparedFields = []string{
	FieldClientName, FieldProductModel, FieldProductionDate,
	FieldSerialBatch, FieldTrademark, FieldManufacturer,
}

// blankEquivalents are values meaning "no fixed value": they compare equal
// to each other regardless of spelling.
var blankEquivalents = []string{"", "/", "见实物"}

// FieldComparison is one field's reconciliation outcome. FormatMismatch is
// only meaningful for date-like fields and is independent of IsMatch.
type FieldComparison struct {
	FieldName      string `json:"field_name"`
	TableValue     string `json:"table_value"`
	LabelValue     string `json:"label_value"`
	IsMatch        bool   `json:"is_match"`
	FormatMismatch bool   `json:"format_mismatch,omitempty"`
	PageNumber     int    `json:"page_number,omitempty"`
}

type dateFormat struct {
	pattern *regexp.Regexp
	name    string
}

// Date formats in detection order; day-precision forms come first so the
// month-precision forms cannot shadow them.
var dateFormats = []dateFormat{
	{regexp.MustCompile(`^(\d{4})\.(\d{1,2})\.(\d{1,2})$`), "YYYY.MM.DD"},
	{regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`), "YYYY/MM/DD"},
	{regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`), "YYYY-MM-DD"},
	{regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})日$`), "YYYY年MM月DD日"},
	{regexp.MustCompile(`^(\d{4})\.(\d{1,2})$`), "YYYY.MM"},
	{regexp.MustCompile(`^(\d{4})/(\d{1,2})$`), "YYYY/MM"},
	{regexp.MustCompile(`^(\d{4})-(\d{1,2})$`), "YYYY-MM"},
	{regexp.MustCompile(`^(\d{4})年(\d{1,2})月$`), "YYYY年MM月"},
}

// parsedDate is a calendar value at year, month, or day precision.
type parsedDate struct {
	year, month, day int
	format           string
}

// parseDate detects the surface format and extracts the calendar value.
func parseDate(s string) (parsedDate, bool) {
	folded := textnorm.Fold(s)
	for _, f := range dateFormats {
		m := f.pattern.FindStringSubmatch(folded)
		if m == nil {
			continue
		}
		d := parsedDate{format: f.name}
		d.year, _ = strconv.Atoi(m[1])
		if len(m) > 2 {
			d.month, _ = strconv.Atoi(m[2])
		}
		if len(m) > 3 {
			d.day, _ = strconv.Atoi(m[3])
		}
		return d, true
	}
	return parsedDate{}, false
}

// CanonicalField resolves a table or label field name to its canonical
// form; ok is false for names outside the compared set.
func CanonicalField(name string) (string, bool) {
	folded := strings.ToLower(textnorm.Fold(name))
	if folded == "" {
		return "", false
	}
	for _, canonical := range ComparedFields {
		for _, syn := range fieldSynonyms[canonical] {
			s := strings.ToLower(textnorm.Fold(syn))
			if folded == s || strings.Contains(folded, s) || strings.Contains(s, folded) {
				return canonical, true
			}
		}
	}
	return "", false
}

func isBlankEquivalent(v string) bool {
	folded := textnorm.Fold(v)
	for _, b := range blankEquivalents {
		if folded == textnorm.Fold(b) {
			return true
		}
	}
	return false
}

// valuesEqual applies the non-date comparison rules: blank-equivalents
// match each other, otherwise exact folded equality, with substring
// tolerance for serial/batch values since labels often append extra tokens.
func valuesEqual(field, table, label string) bool {
	if isBlankEquivalent(table) && isBlankEquivalent(label) {
		return true
	}
	t, l := textnorm.Fold(table), textnorm.Fold(label)
	if t == l {
		return true
	}
	if field == FieldSerialBatch && t != "" && l != "" {
		return strings.Contains(t, l) || strings.Contains(l, t)
	}
	return false
}

// labelFieldValue finds the field's value across the matched labels,
// resolving synonyms; with several labels the most frequent value wins.
func labelFieldValue(field string, labels []inspection.LabelValue) (string, int) {
	counts := map[string]int{}
	pages := map[string]int{}
	for _, label := range labels {
		for key, value := range label.Fields {
			canonical, ok := CanonicalField(key)
			if !ok || canonical != field || value == "" {
				continue
			}
			counts[value]++
			if _, seen := pages[value]; !seen {
				pages[value] = label.PageNumber
			}
		}
	}
	best, bestCount := "", 0
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	return best, pages[best]
}

// MatchLabels selects the labels whose subject names refer to the sample:
// exact folded equality or containment in either direction.
func MatchLabels(sampleName string, labels []inspection.LabelValue) []inspection.LabelValue {
	if sampleName == "" {
		return nil
	}
	sample := textnorm.Fold(sampleName)
	var matched []inspection.LabelValue
	for _, label := range labels {
		subject := textnorm.Fold(label.SubjectName)
		if subject == "" {
			continue
		}
		if subject == sample || strings.Contains(subject, sample) || strings.Contains(sample, subject) {
			matched = append(matched, label)
		}
	}
	return matched
}

// Compare reconciles the table-sourced fields against the label values for
// one sample. tableFields keys may use any synonym spelling. Unresolvable
// table fields are skipped; a field absent from every label yields a
// comparison against the empty value.
func Compare(tableFields map[string]string, sampleName string, labels []inspection.LabelValue) ([]FieldComparison, []inspection.ErrorItem) {
	matched := MatchLabels(sampleName, labels)
	if len(matched) == 0 {
		// Nothing to compare against; the sample-description path upstream
		// covers samples without photographed labels.
		return nil, nil
	}

	canonical := map[string]string{}
	for name, value := range tableFields {
		if field, ok := CanonicalField(name); ok {
			if _, taken := canonical[field]; !taken {
				canonical[field] = textnorm.TrimCell(value)
			}
		}
	}

	var comparisons []FieldComparison
	var errs []inspection.ErrorItem
	for _, field := range ComparedFields {
		tableValue, ok := canonical[field]
		if !ok {
			continue
		}
		labelValue, page := labelFieldValue(field, matched)
		if labelValue == "" && tableValue == "" {
			continue
		}

		cmp := FieldComparison{
			FieldName:  field,
			TableValue: tableValue,
			LabelValue: labelValue,
			PageNumber: page,
		}

		if field == FieldProductionDate {
			cmp.IsMatch, cmp.FormatMismatch = compareDates(tableValue, labelValue)
		} else {
			cmp.IsMatch = valuesEqual(field, tableValue, labelValue)
		}

		if !cmp.IsMatch {
			errs = append(errs, inspection.ErrorItem{
				Code:       inspection.CodeFieldMismatch,
				Severity:   inspection.SeverityError,
				Message:    fmt.Sprintf("field %s: table value %q does not match label value %q", field, tableValue, labelValue),
				PageNumber: page,
			})
		} else if cmp.FormatMismatch {
			errs = append(errs, inspection.ErrorItem{
				Code:       inspection.CodeDateFormatMismatch,
				Severity:   inspection.SeverityError,
				Message:    fmt.Sprintf("field %s: %q and %q agree on the date but use different formats", field, tableValue, labelValue),
				PageNumber: page,
			})
		}
		comparisons = append(comparisons, cmp)
	}
	return comparisons, errs
}

// compareDates compares two date values on parsed calendar content. Equal
// content printed in different surface formats still matches but raises the
// format flag: both sources are expected to share one format by policy.
func compareDates(table, label string) (match, formatMismatch bool) {
	td, tok := parseDate(table)
	ld, lok := parseDate(label)
	if !tok || !lok {
		return valuesEqual(FieldProductionDate, table, label), false
	}
	match = td.year == ld.year && td.month == ld.month && td.day == ld.day
	formatMismatch = match && td.format != ld.format
	return match, formatMismatch
}
