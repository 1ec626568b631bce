// Package extract turns raw text into entity candidates for the
// graph. Extraction is heuristic: candidates carry the confidence of
// the pattern that produced them, and deduplication happens naturally
// through deterministic entity ids on upsert.
package extract

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/kgraph-io/kgraph/pkg/types"
)

// Extraction sources recorded on produced entities.
const (
	SourceCode  = "code_analysis"
	SourceText  = "text_analysis"
	SourceError = "error_analysis"
)

// Candidate is an entity proposal ready for upsert.
type Candidate struct {
	Name       string
	Type       string
	Properties types.Properties
	Confidence float64
	Source     string
}

// Extractor produces entity candidates from raw input.
type Extractor interface {
	FromCode(code string) []Candidate
	FromText(text string) []Candidate
	FromError(errorMsg string) []Candidate
}

// codePattern couples a regex with the entity type it yields.
type codePattern struct {
	name       string
	re         *regexp.Regexp
	entityType string
}

// RegexExtractor extracts candidates with a fixed pattern table.
type RegexExtractor struct {
	codePatterns []codePattern
	termRe       *regexp.Regexp
	pathRe       *regexp.Regexp
	errorRe      *regexp.Regexp
	errorFileRe  *regexp.Regexp
}

// NewRegexExtractor compiles the pattern table.
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{
		codePatterns: []codePattern{
			{"function_def", regexp.MustCompile(`(?m)def\s+(\w+)\s*\(`), "function"},
			{"class_def", regexp.MustCompile(`(?m)class\s+(\w+)\s*[(:]`), "class"},
			{"import_stmt", regexp.MustCompile(`(?m)(?:from[ \t]+(\w+)[ \t]+)?import[ \t]+([\w, \t]+)`), "library"},
			{"variable_assign", regexp.MustCompile(`(?m)(\w+)\s*=\s*`), "variable"},
			{"method_call", regexp.MustCompile(`(?m)(\w+)\.(\w+)\s*\(`), "method"},
			{"error_pattern", regexp.MustCompile(`(?m)(\w*Error|\w*Exception):\s*(.+)`), "error"},
			{"config_key", regexp.MustCompile(`(?m)["']([\w_]+)["']\s*:\s*`), "configuration"},
			{"file_extension", regexp.MustCompile(`(?m)\.(\w+)$`), "file_type"},
		},
		termRe:      regexp.MustCompile(`\b[A-Z][a-zA-Z]+(?:[A-Z][a-zA-Z]*)*\b`),
		pathRe:      regexp.MustCompile(`[\w/\\.-]+\.[a-zA-Z]{2,4}`),
		errorRe:     regexp.MustCompile(`(\w*Error|\w*Exception)`),
		errorFileRe: regexp.MustCompile(`File "([^"]+)"`),
	}
}

// FromCode extracts code structure candidates at confidence 0.8. Each
// capture group of a pattern yields its own candidate.
func (x *RegexExtractor) FromCode(code string) []Candidate {
	var candidates []Candidate
	for _, p := range x.codePatterns {
		for _, match := range p.re.FindAllStringSubmatch(code, -1) {
			for _, group := range match[1:] {
				name := strings.TrimSpace(group)
				if name == "" {
					continue
				}
				candidates = append(candidates, Candidate{
					Name: name,
					Type: p.entityType,
					Properties: types.Properties{
						"pattern":     types.String(p.name),
						"source_code": types.Bool(true),
					},
					Confidence: 0.8,
					Source:     SourceCode,
				})
			}
		}
	}
	return candidates
}

// FromText extracts capitalized technical terms at confidence 0.6 and
// file paths at 0.7. Terms shorter than three characters are skipped.
func (x *RegexExtractor) FromText(text string) []Candidate {
	var candidates []Candidate

	for _, term := range uniqueSorted(x.termRe.FindAllString(text, -1)) {
		if len(term) <= 2 {
			continue
		}
		candidates = append(candidates, Candidate{
			Name:       term,
			Type:       "concept",
			Properties: types.Properties{"source_text": types.Bool(true)},
			Confidence: 0.6,
			Source:     SourceText,
		})
	}

	for _, path := range uniqueSorted(x.pathRe.FindAllString(text, -1)) {
		candidates = append(candidates, Candidate{
			Name:       path,
			Type:       "file",
			Properties: types.Properties{"source_text": types.Bool(true)},
			Confidence: 0.7,
			Source:     SourceText,
		})
	}

	return candidates
}

// FromError extracts error and exception names at confidence 0.9 and
// file names from traceback frames at 0.8, keeping the full path as a
// property.
func (x *RegexExtractor) FromError(errorMsg string) []Candidate {
	var candidates []Candidate

	for _, errType := range uniqueSorted(x.errorRe.FindAllString(errorMsg, -1)) {
		candidates = append(candidates, Candidate{
			Name:       errType,
			Type:       "error",
			Properties: types.Properties{"source_error": types.Bool(true)},
			Confidence: 0.9,
			Source:     SourceError,
		})
	}

	seen := make(map[string]bool)
	for _, match := range x.errorFileRe.FindAllStringSubmatch(errorMsg, -1) {
		fullPath := match[1]
		if seen[fullPath] {
			continue
		}
		seen[fullPath] = true
		candidates = append(candidates, Candidate{
			Name: filepath.Base(fullPath),
			Type: "file",
			Properties: types.Properties{
				"source_error": types.Bool(true),
				"full_path":    types.String(fullPath),
			},
			Confidence: 0.8,
			Source:     SourceError,
		})
	}

	return candidates
}

// uniqueSorted deduplicates matches and orders them so extraction
// output is deterministic.
func uniqueSorted(matches []string) []string {
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}
