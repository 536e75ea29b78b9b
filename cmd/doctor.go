package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcosgalleterobbva/bb-cli/config"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate configuration and check connectivity",
	Long: `Sanity checks: validates the server URL and token, then hits a
lightweight endpoint (dashboard pull requests) that only requires auth.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	resp, err := bbClient.DashboardPullRequests(context.Background(), 1)
	if err != nil {
		return err
	}

	fmt.Printf("OK: %s and %s look usable.\n", config.EnvServer, config.EnvToken)
	if values, ok := resp["values"].([]any); ok {
		fmt.Printf("Dashboard PRs visible: %d item(s) on first page.\n", len(values))
	}
	return nil
}
