package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/cover-letter-generator/internal/apiclient"
	"github.com/jonathan/cover-letter-generator/internal/fetch"
	"github.com/jonathan/cover-letter-generator/internal/ingestion"
	"github.com/jonathan/cover-letter-generator/internal/observability"
	"github.com/jonathan/cover-letter-generator/internal/presenter"
	"github.com/jonathan/cover-letter-generator/internal/types"
	"github.com/spf13/cobra"
)

func newClient(metrics *observability.Metrics) (*apiclient.Client, error) {
	client, err := apiclient.New(cfg.APIURL, apiclient.WithLogger(logger), apiclient.WithMetrics(metrics))
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, nil
}

// newJobLoader builds the posting loader. Private addresses are reachable only
// when allowPrivate is set, which the CLI does for URLs its own user typed.
func newJobLoader(useBrowser, allowPrivate bool) *ingestion.Loader {
	var renderer fetch.Renderer
	if useBrowser {
		renderer = fetch.NewChromeRenderer(logger)
	}
	fetchOpts := []fetch.Option{fetch.WithLogger(logger)}
	if allowPrivate {
		fetchOpts = append(fetchOpts, fetch.AllowPrivateNetworks())
	}
	return ingestion.NewLoader(fetch.New(fetchOpts...), renderer, logger)
}

// jobSource is the pair of mutually exclusive flags naming a job posting.
type jobSource struct {
	file       string
	url        string
	useBrowser bool
}

func (j *jobSource) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&j.file, "job-file", "j", "", "Path to job posting text file, or - for stdin (mutually exclusive with --job-url)")
	cmd.Flags().StringVar(&j.url, "job-url", "", "URL to fetch the job posting from (mutually exclusive with --job-file)")
	cmd.Flags().BoolVar(&j.useBrowser, "use-browser", false, "Render the posting in headless Chrome when the fetched page has too little text")
}

func (j *jobSource) load(ctx context.Context) (*ingestion.Document, error) {
	switch {
	case j.file == "" && j.url == "":
		return nil, errors.New("either --job-file or --job-url must be provided")
	case j.file != "" && j.url != "":
		return nil, errors.New("--job-file and --job-url are mutually exclusive; provide only one")
	case j.file != "":
		doc, err := ingestion.FromFile(j.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read job posting: %w", err)
		}
		return doc, nil
	default:
		doc, err := newJobLoader(j.useBrowser, true).FromURL(ctx, j.url)
		if err != nil {
			return nil, fmt.Errorf("failed to load job posting: %w", err)
		}
		return doc, nil
	}
}

// parseFormats parses a list of export formats, dropping duplicates.
func parseFormats(values []string) ([]types.ExportFormat, error) {
	seen := map[types.ExportFormat]bool{}
	var formats []types.ExportFormat
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			f, err := types.ParseExportFormat(part)
			if err != nil {
				return nil, err
			}
			if !seen[f] {
				seen[f] = true
				formats = append(formats, f)
			}
		}
	}
	return formats, nil
}

func tiles(stats []presenter.Stat) []observability.Tile {
	out := make([]observability.Tile, 0, len(stats))
	for _, s := range stats {
		out = append(out, observability.Tile{Value: s.Text, Label: s.Label})
	}
	return out
}

// printValidation writes one line per invalid field.
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func printValidation(verr *types.ValidationError) {
	for _, fe := range verr.Errors {
		fmt.Fprintf(os.Stderr, "  • %s: %s\n", fe.Field, fe.Message)
	}
}
