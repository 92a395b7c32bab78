package main

import (
	"fmt"

	"github.com/jonathan/cover-letter-generator/internal/keywords"
	"github.com/jonathan/cover-letter-generator/internal/observability"
	"github.com/jonathan/cover-letter-generator/internal/types"
	"github.com/spf13/cobra"
)

var analyzeKeywordsCmd = &cobra.Command{
	Use:   "analyze-keywords",
	Short: "Score how well a cover letter covers a job posting's keywords",
	Long: `Compares a cover letter with a job posting and reports the matched keywords and a
match score from 0 to 100. By default the generation API computes the analysis; --local
computes it in-process with the same rules.`,
	RunE: runAnalyzeKeywords,
}

var (
	analyzeJob        jobSource
	analyzeLetterFile string
	analyzeLocal      bool
)

func init() {
	analyzeJob.register(analyzeKeywordsCmd)
	analyzeKeywordsCmd.Flags().StringVarP(&analyzeLetterFile, "letter-file", "l", "", "Path to cover letter text file, or - for stdin (required)")
	analyzeKeywordsCmd.Flags().BoolVar(&analyzeLocal, "local", false, "Analyze locally without calling the API")

	_ = analyzeKeywordsCmd.MarkFlagRequired("letter-file")

	rootCmd.AddCommand(analyzeKeywordsCmd)
}

func runAnalyzeKeywords(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	job, err := analyzeJob.load(ctx)
	if err != nil {
		return err
	}
	letter, err := readLetter(analyzeLetterFile)
	if err != nil {
		return err
	}

	var analysis *types.KeywordAnalysis
	if analyzeLocal {
		a := keywords.Analyze(job.Text, letter)
		analysis = &types.KeywordAnalysis{
			MatchedKeywords: a.Matched,
			MatchScore:      a.Score,
			TotalMatches:    len(a.Matched),
		}
	} else {
		client, err := newClient(nil)
		if err != nil {
			return err
		}
		analysis, err = client.AnalyzeKeywords(ctx, job.Text, letter)
		if err != nil {
			return fmt.Errorf("keyword analysis failed: %w", err)
		}
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintKeywordAnalysis(analysis)
	return nil
}
