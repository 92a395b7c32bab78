package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/cover-letter-generator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Tile is one summary value shown above a generated letter.
type Tile struct {
	Value string
	Label string
}

// Printer writes boxed, human-readable summaries for the CLI.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Long lines are wrapped.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		for _, part := range wrap(line, boxWidth-4) {
			fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, part)
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// wrap splits line into pieces of at most width runes, breaking at spaces where possible.
func wrap(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var current []rune
	for _, word := range words {
		w := []rune(word)
		for len(w) > width {
			if len(current) > 0 {
				lines = append(lines, string(current))
				current = nil
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(current) == 0:
			current = w
		case len(current)+1+len(w) <= width:
			current = append(append(current, ' '), w...)
		default:
			lines = append(lines, string(current))
			current = w
		}
	}
	if len(current) > 0 {
		lines = append(lines, string(current))
	}
	return lines
}

// PrintResult outputs the summary tiles, matched keywords and the letter itself.
func (p *Printer) PrintResult(result *types.GenerationResult, tiles []Tile) {
	if result == nil {
		return
	}

	if len(tiles) > 0 {
		var sb strings.Builder
		for _, t := range tiles {
			sb.WriteString(fmt.Sprintf("%-18s %s\n", t.Label+":", t.Value))
		}
		p.printBox("SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
	}

	if len(result.MatchedKeywords) > 0 {
		p.printBox("MATCHED KEYWORDS", chips(result.MatchedKeywords))
	}

	p.printBox("COVER LETTER", result.CoverLetter)
}

func chips(items []string) string {
	count := min(len(items), maxItemsToShow)
	out := "[" + strings.Join(items[:count], "] [") + "]"
	if len(items) > maxItemsToShow {
		out += fmt.Sprintf(" ... and %d more", len(items)-maxItemsToShow)
	}
	return out
}

// PrintHealth outputs the backend status and which providers have keys configured.
func (p *Printer) PrintHealth(status *types.HealthStatus) {
	if status == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status:   %s\n", status.Status))
	sb.WriteString(fmt.Sprintf("Version:  %s\n", status.Version))

	if len(status.AIProviders) > 0 {
		sb.WriteString("\nProviders:\n")
		names := make([]string, 0, len(status.AIProviders))
		for name := range status.AIProviders {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			mark := "✗ not configured"
			if status.AIProviders[name] {
				mark = "✓ configured"
			}
			sb.WriteString(fmt.Sprintf("  • %-10s %s\n", name, mark))
		}
	}

	title := "✅ API HEALTHY"
	if !status.Healthy() {
		title = "⚠ API UNHEALTHY"
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintKeywordAnalysis outputs the match score and matched terms.
func (p *Printer) PrintKeywordAnalysis(analysis *types.KeywordAnalysis) {
	if analysis == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Match score:    %.1f%%\n", analysis.MatchScore))
	sb.WriteString(fmt.Sprintf("Total matches:  %d\n", analysis.TotalMatches))
	if len(analysis.MatchedKeywords) > 0 {
		sb.WriteString("\n")
		sb.WriteString(chips(analysis.MatchedKeywords))
	}

	p.printBox("KEYWORD ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}
