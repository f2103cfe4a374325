package fieldcompare

import (
	"regexp"

	"github.com/lulf87/pdf-report-checker-sub000/internal/textnorm"
)

// Free-text extraction of labelled fields from a page's running text, for
// reports where the key fields sit outside any detected table. Matches
// "名称：值" and "名称: 值" lines.

var fieldLinePatterns = buildFieldLinePatterns()

var sampleNamePattern = regexp.MustCompile(`样\s*品\s*名\s*称\s*[:：]\s*([^\n]+)`)

func buildFieldLinePatterns() map[string][]*regexp.Regexp {
	out := map[string][]*regexp.Regexp{}
	for field, syns := range fieldSynonyms {
		for _, syn := range syns {
			if !regexp.MustCompile(`^[\p{Han}/]+$`).MatchString(syn) {
				continue // label-side synonyms like "mfg" never appear as table captions
			}
			spaced := ""
			for _, r := range syn {
				if spaced != "" {
					spaced += `\s*`
				}
				spaced += regexp.QuoteMeta(string(r))
			}
			out[field] = append(out[field], regexp.MustCompile(spaced+`\s*[:：]\s*([^\n]+)`))
		}
	}
	return out
}

// ExtractFields pulls the compared fields out of page text. The first match
// per canonical field wins.
func ExtractFields(text string) map[string]string {
	fields := map[string]string{}
	for _, field := range ComparedFields {
		for _, pat := range fieldLinePatterns[field] {
			if m := pat.FindStringSubmatch(text); m != nil {
				fields[field] = textnorm.TrimCell(m[1])
				break
			}
		}
	}
	return fields
}

// ExtractSampleName finds the 样品名称 caption used to match photo labels.
func ExtractSampleName(text string) string {
	if m := sampleNamePattern.FindStringSubmatch(text); m != nil {
		return textnorm.TrimCell(m[1])
	}
	return ""
}
