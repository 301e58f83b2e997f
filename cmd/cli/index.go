package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/review-warden/internal/gitutil"
)

var (
	indexRepoURL        string
	indexSHA            string
	indexInstallationID int64
	indexGithubToken    string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index a repository for semantic retrieval",
	Long:  `Clones the repository, chunks and embeds its files, and stores the vectors for similarity search during reviews. Re-running resumes from the last checkpoint.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		owner, repo, err := gitutil.ParseRepoURL(indexRepoURL)
		if err != nil {
			return fmt.Errorf("invalid repository URL: %w", err)
		}
		repoFullName := owner + "/" + repo

		services, cleanup, err := initServices(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer cleanup()

		services.logger.Info("indexing repository",
			"repo", repoFullName, "sha", indexSHA, "installation_id", indexInstallationID)

		if err := services.indexer.IndexRepository(ctx, indexInstallationID, repoFullName,
			indexRepoURL, indexSHA, indexGithubToken); err != nil {
			return fmt.Errorf("indexing failed: %w", err)
		}

		services.logger.Info("indexing complete", "repo", repoFullName)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	indexCmd.Flags().StringVarP(&indexRepoURL, "repo-url", "u", "", "Repository URL (e.g., https://github.com/owner/repo)")
	indexCmd.Flags().StringVar(&indexSHA, "sha", "", "Commit to index (defaults to the remote default branch head)")
	indexCmd.Flags().Int64Var(&indexInstallationID, "installation-id", 0, "GitHub App installation id the index belongs to")
	indexCmd.Flags().StringVarP(&indexGithubToken, "github-token", "t", os.Getenv("GITHUB_TOKEN"), "GitHub token for private repositories (or set GITHUB_TOKEN)")

	_ = indexCmd.MarkFlagRequired("repo-url")
	rootCmd.AddCommand(indexCmd)
}
