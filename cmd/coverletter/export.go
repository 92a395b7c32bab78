package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/jonathan/cover-letter-generator/internal/notify"
	"github.com/jonathan/cover-letter-generator/internal/presenter"
	"github.com/jonathan/cover-letter-generator/internal/types"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an existing cover letter as PDF, DOCX or text",
	Long: `Sends a cover letter to the generation API's export endpoint and writes the returned
document to the output directory, named CoverLetter_<name>_<company>.<ext>.`,
	RunE: runExport,
}

var (
	exportLetterFile string
	exportName       string
	exportCompany    string
	exportFormats    []string
)

func init() {
	exportCmd.Flags().StringVarP(&exportLetterFile, "letter-file", "l", "", "Path to cover letter text file, or - for stdin (required)")
	exportCmd.Flags().StringVarP(&exportName, "name", "n", "", "Applicant name used in the document and filename (required)")
	exportCmd.Flags().StringVar(&exportCompany, "company", "", "Company name used in the filename (required)")
	exportCmd.Flags().StringSliceVarP(&exportFormats, "format", "f", []string{string(types.FormatPDF)}, "Export formats: pdf, docx, txt")
	exportCmd.Flags().StringP("out", "o", "", "Directory for exported files (default .)")

	_ = exportCmd.MarkFlagRequired("letter-file")
	_ = exportCmd.MarkFlagRequired("name")
	_ = exportCmd.MarkFlagRequired("company")

	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	formats, err := parseFormats(exportFormats)
	if err != nil {
		return err
	}
	if len(formats) == 0 {
		return errors.New("at least one --format is required")
	}

	// Letters are exported as written; only trailing whitespace is dropped.
	letter, err := readLetter(exportLetterFile)
	if err != nil {
		return err
	}

	client, err := newClient(nil)
	if err != nil {
		return err
	}

	p := presenter.New(client,
		&types.GenerationResult{CoverLetter: letter},
		types.GenerationRequest{ApplicantName: exportName, CompanyName: exportCompany},
		presenter.WithDownloader(presenter.DirDownloader{Dir: cfg.DownloadDir}),
		presenter.WithNotifier(notify.NewTerminal(os.Stderr, logger)),
		presenter.WithLogger(logger),
	)
	defer p.Reset()

	for _, f := range formats {
		path, err := p.Export(ctx, f)
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", f, err)
		}
		fmt.Println(path)
	}
	return nil
}

func readLetter(path string) (string, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read letter: %w", err)
	}

	letter := strings.TrimRightFunc(string(raw), unicode.IsSpace)
	if strings.TrimSpace(letter) == "" {
		return "", fmt.Errorf("letter %s is empty", path)
	}
	return letter, nil
}
