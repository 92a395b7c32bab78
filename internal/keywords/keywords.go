// Package keywords finds the job posting terms a cover letter covers.
//
// Two kinds of terms are extracted: plain keywords (lowercased words of at least
// three letters that are not stop words) and technical terms (acronyms, camelCase
// identifiers, hyphenated compounds and versioned names, case preserved).
package keywords

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// MaxMatches caps the number of matched terms reported.
const MaxMatches = 20

// MinKeywordLength is the shortest plain keyword kept.
const MinKeywordLength = 3

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`a an and are as at be by for from has he in is it its of on
		that the to was will with we you your this they have had been being do does did can
		could would should may might must shall`) {
		stopWords[w] = struct{}{}
	}
}

var (
	wordPattern = regexp.MustCompile(`\b[a-z]+\b`)

	technicalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b[A-Z]{2,6}\b`),                // acronyms
		regexp.MustCompile(`\b[a-z]+[A-Z][a-zA-Z]*\b`),      // camelCase
		regexp.MustCompile(`\b[a-zA-Z]+-[a-zA-Z]+\b`),       // hyphenated
		regexp.MustCompile(`\b[a-zA-Z]+\s*\d+(?:\.\d+)*\b`), // versions
	}
)

type set map[string]struct{}

func (s set) intersect(other set) set {
	out := set{}
	for k := range s {
		if _, ok := other[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Keywords returns the plain keywords of text.
func Keywords(text string) []string {
	return extractKeywords(text).sorted()
}

// TechnicalTerms returns the technical terms of text.
func TechnicalTerms(text string) []string {
	return extractTechnical(text).sorted()
}

func extractKeywords(text string) set {
	out := set{}
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(w) < MinKeywordLength {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func extractTechnical(text string) set {
	out := set{}
	for _, re := range technicalPatterns {
		for _, term := range re.FindAllString(text, -1) {
			out[term] = struct{}{}
		}
	}
	return out
}

// Analysis is the keyword overlap between a job posting and a cover letter.
type Analysis struct {
	Matched []string
	Score   float64
}

// Analyze matches the posting's terms against the letter.
//
// Matched lists technical terms first, then plain keywords that are not also
// technical terms, each group sorted, at most MaxMatches in total.
// Score is (keyword matches + 2 × technical matches) / posting terms × 100,
// capped at 100 and rounded to one decimal; a posting without terms scores 0.
func Analyze(jobDescription, coverLetter string) Analysis {
	jobKeywords := extractKeywords(jobDescription)
	jobTechnical := extractTechnical(jobDescription)

	matchedKeywords := jobKeywords.intersect(extractKeywords(coverLetter))
	matchedTechnical := jobTechnical.intersect(extractTechnical(coverLetter))

	matched := matchedTechnical.sorted()
	for _, kw := range matchedKeywords.sorted() {
		if _, dup := matchedTechnical[kw]; !dup {
			matched = append(matched, kw)
		}
	}
	if len(matched) > MaxMatches {
		matched = matched[:MaxMatches]
	}

	var score float64
	if total := len(jobKeywords) + len(jobTechnical); total > 0 {
		hits := len(matchedKeywords) + 2*len(matchedTechnical)
		score = math.Min(float64(hits)/float64(total)*100, 100)
	}

	return Analysis{
		Matched: matched,
		Score:   math.Round(score*10) / 10,
	}
}

// Match returns the matched terms of Analyze.
func Match(jobDescription, coverLetter string) []string {
	return Analyze(jobDescription, coverLetter).Matched
}
