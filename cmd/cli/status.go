package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/review-warden/internal/gitutil"
)

var (
	statusRepoURL        string
	statusInstallationID int64
	statusOutputJSON     bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the indexing state of a repository",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		owner, repo, err := gitutil.ParseRepoURL(statusRepoURL)
		if err != nil {
			return fmt.Errorf("invalid repository URL: %w", err)
		}
		repoFullName := owner + "/" + repo

		services, cleanup, err := initServices(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer cleanup()

		state, err := services.store.GetIndexingState(ctx, statusInstallationID, repoFullName)
		if err != nil {
			return fmt.Errorf("failed to read indexing state: %w", err)
		}
		if state == nil {
			fmt.Printf("%s has not been indexed yet.\n", repoFullName)
			return nil
		}

		if statusOutputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(state)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "REPOSITORY\tSTATUS\tLAST INDEXED FILE\tLAST UPDATED")
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			state.RepoFullName,
			state.Status,
			state.LastIndexedFilePath,
			state.UpdatedAt.Format(time.RFC822),
		)
		return w.Flush()
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	statusCmd.Flags().StringVarP(&statusRepoURL, "repo-url", "u", "", "Repository URL (e.g., https://github.com/owner/repo)")
	statusCmd.Flags().Int64Var(&statusInstallationID, "installation-id", 0, "GitHub App installation id the index belongs to")
	statusCmd.Flags().BoolVar(&statusOutputJSON, "json", false, "Output state as JSON")

	_ = statusCmd.MarkFlagRequired("repo-url")
	rootCmd.AddCommand(statusCmd)
}
