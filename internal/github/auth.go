// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/review-warden/internal/config"
)

// ClientFactory creates API clients scoped to a GitHub App installation.
// Each webhook delivery carries an installation id; tokens are short-lived
// so a fresh client is minted per job.
type ClientFactory interface {
	ClientFor(ctx context.Context, installationID int64) (Client, string, error)
}

type installationClientFactory struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewClientFactory returns a factory that authenticates as the configured
// GitHub App and exchanges its JWT for installation tokens on demand.
func NewClientFactory(cfg *config.Config, logger *slog.Logger) ClientFactory {
	return &installationClientFactory{cfg: cfg, logger: logger}
}

// ClientFor creates a GitHub client authenticated as the given installation.
// It returns the client together with the raw token string so callers that
// shell out to git can reuse the same credentials.
func (f *installationClientFactory) ClientFor(ctx context.Context, installationID int64) (Client, string, error) {
	f.logger.Info("creating GitHub installation client", "installation_id", installationID)

	privateKey, err := os.ReadFile(f.cfg.GitHub.PrivateKeyPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read private key from %s: %w", f.cfg.GitHub.PrivateKeyPath, err)
	}

	// The apps transport talks to the GitHub App API to mint installation tokens.
	appTransport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, f.cfg.GitHub.AppID, privateKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create GitHub App transport: %w", err)
	}
	appClient := github.NewClient(&http.Client{Transport: appTransport})

	token, _, err := appClient.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create installation token for installation ID %d: %w", installationID, err)
	}
	if token.GetToken() == "" {
		return nil, "", fmt.Errorf("received an empty installation token")
	}
	f.logger.Info("created installation token", "installation_id", installationID, "expires_at", token.GetExpiresAt())

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.GetToken()})
	tc := oauth2.NewClient(ctx, ts)
	installationClient := github.NewClient(tc)

	return NewGitHubClient(installationClient, f.logger), token.GetToken(), nil
}
