package main

import (
	"errors"
	"fmt"

	"github.com/jonathan/cover-letter-generator/internal/observability"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the generation API is up and which providers are configured",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	client, err := newClient(nil)
	if err != nil {
		return err
	}

	status, err := client.CheckHealth(ctx)
	if err != nil {
		return fmt.Errorf("generation API at %s is unavailable: %w", client.BaseURL(), err)
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintHealth(status)
	if !status.Healthy() {
		return errors.New("generation API reports unhealthy")
	}
	return nil
}
