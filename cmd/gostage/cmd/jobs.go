package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gostage/internal/config"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List all sync jobs defined in configuration",
	Long: `Jobs displays every sync job defined in the configuration file along
with its table selections.

Example:
  gostage jobs --config gostage.yaml`,
	RunE: runJobs,
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	jobNames := cfg.ListJobs()
	if len(jobNames) == 0 {
		cmd.Printf("No jobs defined in %s\n", configFile)
		return nil
	}

	// sorted for consistent output
	sort.Strings(jobNames)

	cmd.Printf("Jobs defined in %s:\n\n", configFile)

	for i, jobName := range jobNames {
		job, err := cfg.GetJob(jobName)
		if err != nil {
			return fmt.Errorf("failed to get job %q: %w", jobName, err)
		}

		cmd.Printf("%d. %s\n", i+1, jobName)
		cmd.Printf("   Tables:        %d\n", len(job.Tables))

		for _, ts := range job.Tables {
			if ts.AllColumns() {
				cmd.Printf("      - %s (all columns)\n", ts.Table)
			} else {
				cmd.Printf("      - %s (columns: %v)\n", ts.Table, ts.Columns)
			}
		}

		if len(job.IncludeSchemas) > 0 {
			cmd.Printf("   Schemas:       %v\n", job.IncludeSchemas)
		}
		if job.Processing != nil {
			cmd.Printf("   Processing:    Custom (chunk_size=%d, sleep=%.1fs)\n",
				job.Processing.ChunkSize, job.Processing.SleepSeconds)
		}

		if i < len(jobNames)-1 {
			cmd.Println()
		}
	}

	cmd.Printf("\nTotal: %d job(s)\n", len(jobNames))
	return nil
}
