package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/cover-letter-generator/internal/ingestion"
	"github.com/jonathan/cover-letter-generator/internal/notify"
	"github.com/jonathan/cover-letter-generator/internal/observability"
	"github.com/jonathan/cover-letter-generator/internal/presenter"
	"github.com/jonathan/cover-letter-generator/internal/types"
	"github.com/jonathan/cover-letter-generator/internal/workflow"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a cover letter from a résumé and a job posting",
	Long: `Reads a résumé and a job posting (file or URL), asks the generation API for a cover letter
and prints it with its word count, generation time, provider and matched keywords.

Use --export to also download the letter in one or more formats, and --copy to put it
on the clipboard through the terminal.`,
	RunE: runGenerate,
}

var (
	genResumeFile string
	genJob        jobSource
	genNotes      string
	genProvider   string
	genStyle      string
	genTone       string
	genWords      int
	genJobTitle   string
	genCompany    string
	genName       string
	genEmail      string
	genPhone      string
	genExport     []string
	genCopy       bool
	genJSON       bool
)

func init() {
	defaults := types.NewGenerationRequest()

	generateCmd.Flags().StringVarP(&genResumeFile, "resume-file", "r", "", "Path to résumé text file, or - for stdin (required)")
	genJob.register(generateCmd)
	generateCmd.Flags().StringVar(&genNotes, "notes", "", "Additional notes to include in the letter")
	generateCmd.Flags().StringVarP(&genProvider, "provider", "p", string(defaults.AIProvider), "AI provider: claude or openai")
	generateCmd.Flags().StringVar(&genStyle, "style", string(defaults.TemplateStyle), "Template style: professional, creative, technical or executive")
	generateCmd.Flags().StringVar(&genTone, "tone", string(defaults.Tone), "Tone: formal, conversational, enthusiastic or confident")
	generateCmd.Flags().IntVarP(&genWords, "words", "w", defaults.WordCount, fmt.Sprintf("Target word count (%d-%d)", types.MinWordCount, types.MaxWordCount))
	generateCmd.Flags().StringVar(&genJobTitle, "job-title", "", "Job title (defaults to the title of a fetched posting)")
	generateCmd.Flags().StringVar(&genCompany, "company", "", "Company name (defaults to the company of a fetched posting)")
	generateCmd.Flags().StringVarP(&genName, "name", "n", "", "Your name")
	generateCmd.Flags().StringVar(&genEmail, "email", "", "Your email")
	generateCmd.Flags().StringVar(&genPhone, "phone", "", "Your phone number")
	generateCmd.Flags().StringSliceVarP(&genExport, "export", "e", nil, "Export formats to download: pdf, docx, txt")
	generateCmd.Flags().StringP("out", "o", "", "Directory for exported files (default .)")
	generateCmd.Flags().BoolVar(&genCopy, "copy", false, "Copy the letter to the clipboard (OSC 52)")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "Print the raw API result as JSON instead of the summary")

	_ = generateCmd.MarkFlagRequired("resume-file")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	formats, err := parseFormats(genExport)
	if err != nil {
		return err
	}

	resume, err := ingestion.FromFile(genResumeFile)
	if err != nil {
		return fmt.Errorf("failed to read résumé: %w", err)
	}
	job, err := genJob.load(ctx)
	if err != nil {
		return err
	}

	req := buildGenerationRequest(resume, job)

	client, err := newClient(nil)
	if err != nil {
		return err
	}

	// Progress goes to stderr so stdout carries only the letter.
	terminal := notify.NewTerminal(os.Stderr, logger)
	wf := workflow.New(client, workflow.WithNotifier(terminal), workflow.WithLogger(logger))

	outcome, err := wf.Submit(ctx, req)
	if err != nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			printValidation(verr)
			return errors.New("invalid request")
		}
		return err
	}

	if genJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcome.Result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	}

	p := presenter.New(client, outcome.Result, outcome.Request,
		presenter.WithDownloader(presenter.DirDownloader{Dir: cfg.DownloadDir}),
		presenter.WithClipboard(presenter.TerminalClipboard{Out: os.Stderr}),
		presenter.WithNotifier(terminal),
		presenter.WithLogger(logger),
	)
	defer p.Reset()

	if !genJSON {
		observability.NewPrinter(cmd.OutOrStdout()).PrintResult(p.Result(), tiles(p.Stats()))
	}

	if genCopy {
		if err := p.Copy(); err != nil {
			return fmt.Errorf("failed to copy letter: %w", err)
		}
	}

	var failed int
	for _, f := range formats {
		path, err := p.Export(ctx, f)
		if err != nil {
			failed++
			continue
		}
		_, _ = fmt.Fprintf(os.Stderr, "  %s\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d exports failed", failed, len(formats))
	}
	return nil
}

// buildGenerationRequest combines the documents with the flags.
// A fetched posting supplies the job title and company when the flags leave them empty.
func buildGenerationRequest(resume, job *ingestion.Document) types.GenerationRequest {
	req := types.GenerationRequest{
		ResumeText:      resume.Text,
		JobDescription:  job.Text,
		AdditionalNotes: genNotes,
		AIProvider:      types.AIProvider(genProvider),
		TemplateStyle:   types.TemplateStyle(genStyle),
		Tone:            types.Tone(genTone),
		WordCount:       genWords,
		JobTitle:        genJobTitle,
		CompanyName:     genCompany,
		ApplicantName:   genName,
		ApplicantEmail:  genEmail,
		ApplicantPhone:  genPhone,
	}
	if req.JobTitle == "" {
		req.JobTitle = job.Title
	}
	if req.CompanyName == "" {
		req.CompanyName = job.Company
	}
	return req.WithDefaults()
}
