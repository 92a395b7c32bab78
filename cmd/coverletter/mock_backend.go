package main

import (
	"github.com/jonathan/cover-letter-generator/internal/mockbackend"
	"github.com/jonathan/cover-letter-generator/internal/types"
	"github.com/spf13/cobra"
)

var mockBackendCmd = &cobra.Command{
	Use:   "mock-backend",
	Short: "Run a local stand-in for the generation API",
	Long: `Serve the generation API contract (health, generate, export, analyze-keywords) with
deterministic template letters, for development and tests without AI provider keys.`,
	RunE: runMockBackend,
}

var mockProviders []string

func init() {
	mockBackendCmd.Flags().String("mock-listen", "", "Address to listen on (default :8000)")
	mockBackendCmd.Flags().Duration("latency", 0, "Artificial delay added to each generation")
	mockBackendCmd.Flags().StringSliceVar(&mockProviders, "providers", []string{string(types.ProviderClaude), string(types.ProviderOpenAI)},
		"AI providers to report as configured")

	rootCmd.AddCommand(mockBackendCmd)
}

func runMockBackend(_ *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	providers := map[types.AIProvider]bool{
		types.ProviderClaude: false,
		types.ProviderOpenAI: false,
	}
	for _, p := range mockProviders {
		providers[types.AIProvider(p)] = true
	}

	backend := mockbackend.New(
		mockbackend.WithLatency(cfg.Mock.Latency),
		mockbackend.WithProviders(providers),
		mockbackend.WithLogger(logger),
	)
	return backend.Run(ctx, cfg.Mock.ListenAddr)
}
