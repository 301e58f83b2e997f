package gitutil

import (
	"fmt"
	"regexp"
	"strings"
)

var repoURLRegex = regexp.MustCompile(`([^/:]+)/([^/]+?)(?:\.git)?$`)

// ParseRepoURL extracts the owner and repository name from a clone or web URL.
// Supported formats:
//
//	https://github.com/{owner}/{repo}
//	https://github.com/{owner}/{repo}.git
//	git@github.com:{owner}/{repo}.git
func ParseRepoURL(url string) (owner, repo string, err error) {
	url = strings.TrimSuffix(url, "/")

	matches := repoURLRegex.FindStringSubmatch(url)
	if len(matches) != 3 || matches[1] == "" || matches[2] == "" {
		return "", "", fmt.Errorf("invalid repository URL format: %s", url)
	}
	return matches[1], matches[2], nil
}
