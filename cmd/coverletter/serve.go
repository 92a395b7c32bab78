package main

import (
	"fmt"

	"github.com/jonathan/cover-letter-generator/internal/observability"
	"github.com/jonathan/cover-letter-generator/internal/server"
	"github.com/jonathan/cover-letter-generator/internal/server/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web front end",
	Long: `Start an HTTP server with the cover letter form, the result view and export downloads.
Generation and export are forwarded to the generation API at --api-url.`,
	RunE: runServe,
}

var (
	serveNoRateLimit  bool
	serveJobURL       bool
	serveUseBrowser   bool
	serveSecureCookie bool
)

func init() {
	serveCmd.Flags().String("listen", "", "Address to listen on (default :5173)")
	serveCmd.Flags().Int("rate-limit", 0, "Form submissions allowed per client per minute (default 10)")
	serveCmd.Flags().BoolVar(&serveNoRateLimit, "no-rate-limit", false, "Disable rate limiting")
	serveCmd.Flags().BoolVar(&serveJobURL, "job-url", false, "Show a job posting URL field; the server fetches submitted URLs from public addresses only")
	serveCmd.Flags().BoolVar(&serveUseBrowser, "use-browser", false, "Render job posting URLs in headless Chrome when needed (requires --job-url)")
	serveCmd.Flags().BoolVar(&serveSecureCookie, "secure-cookies", false, "Mark session cookies Secure (serve behind HTTPS)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	client, err := newClient(metrics)
	if err != nil {
		return err
	}

	if status, err := client.CheckHealth(ctx); err != nil {
		logger.Warn("generation API is not reachable yet", zap.String("api_url", client.BaseURL()), zap.Error(err))
	} else {
		logger.Info("generation API reachable",
			zap.String("status", status.Status),
			zap.String("version", status.Version),
			zap.Any("ai_providers", status.AIProviders))
	}

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithMetrics(metrics, registry),
	}
	if serveJobURL {
		opts = append(opts, server.WithJobLoader(newJobLoader(serveUseBrowser, false)))
	}

	srv, err := server.New(server.Config{
		ListenAddr:    cfg.ListenAddr,
		RateLimit:     ratelimit.FrontEndConfig(cfg.RateLimit.Enabled && !serveNoRateLimit, cfg.RateLimit.PerMinute, cfg.RateLimit.Burst),
		SecureCookies: serveSecureCookie,
	}, client, opts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
