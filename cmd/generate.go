// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/readme-stats/internal/analyzer"
	"github.com/naka-gawa/readme-stats/internal/config"
	"github.com/naka-gawa/readme-stats/internal/gateway"
	"github.com/naka-gawa/readme-stats/internal/render"
	"github.com/naka-gawa/readme-stats/internal/usecase"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Fetches GitHub stats and writes the profile README",
	Long: `Fetches repository metadata, follower and contribution counts for the
configured account, optionally clones each repository to tally commits and
line changes, and writes the rendered README to disk.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(1)
		}

		noLOC, _ := cmd.Flags().GetBool("no-loc")
		fullClone, _ := cmd.Flags().GetBool("full-clone")
		maxRepos, _ := cmd.Flags().GetInt("max-repos")
		workers, _ := cmd.Flags().GetInt("workers")

		// Inject dependencies and run the pipeline.
		githubGateway, err := gateway.NewGitHubGateway(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		repoAnalyzer := analyzer.New(githubGateway, logger, fullClone, cfg.CloneDepth)
		aggregator := usecase.NewAggregator(githubGateway, repoAnalyzer, logger)

		fmt.Println("Fetching GitHub metadata...")
		report := aggregator.Run(ctx, cfg.Username, usecase.Options{
			SkipLOC:  noLOC,
			MaxRepos: maxRepos,
			Workers:  workers,
		})

		content := render.BuildReadme(cfg.Username, report.Stats, report.Tally)
		if err := render.Write(cfg.OutputPath, content); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write README: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s updated.\n", cfg.OutputPath)
		fmt.Printf("Stats: repos=%d stars=%d followers=%d contributions=%d\n",
			report.Stats.TotalRepos, report.Stats.Stars, report.Stats.Followers, report.Stats.Contributions)
		fmt.Printf("Commits=%d, LOC added=%d, removed=%d, net=%d\n",
			report.Tally.Commits, report.Tally.LinesAdded, report.Tally.LinesRemoved, report.Tally.NetLines())
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().Bool("no-loc", false, "Skip LOC/commit scanning (fast)")
	generateCmd.Flags().Bool("full-clone", false, "Perform full clone for each repo (slow, accurate)")
	generateCmd.Flags().Int("max-repos", 0, "Limit number of repos to analyze (0 = no limit)")
	generateCmd.Flags().Int("workers", usecase.DefaultWorkers, "Parallel workers for repo analysis")
}
