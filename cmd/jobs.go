package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List the job catalog filtered by --search and --location",
	Run: func(cmd *cobra.Command, _ []string) {
		listJobs(cmd)
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}

func listJobs(cmd *cobra.Command) {
	logger, config := setup()
	s := startSession(context.Background(), config, logger)
	reportNotices(logger, s, 0)

	snap := s.Snapshot()
	out := cmd.OutOrStdout()

	renderJobs(out, snap.Jobs)
	fmt.Fprintf(out, "%d of %d jobs shown. Locations: %s\n", len(snap.Jobs), snap.Total, strings.Join(snap.Locations, "; "))
}
