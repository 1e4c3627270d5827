// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hay-kot/criterio"
)

// Endpoint validates a sync endpoint URL (http or https).
func Endpoint(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("endpoint is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint must use http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint is missing a host")
	}

	return nil
}

// OwnerLogin validates a GitHub owner login.
func OwnerLogin(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return fmt.Errorf("owner is required")
	}
	if strings.Contains(owner, "/") {
		return fmt.Errorf("owner must not contain a slash")
	}
	return nil
}

// RepoName validates a GitHub repository name.
func RepoName(repo string) error {
	if strings.TrimSpace(repo) == "" {
		return fmt.Errorf("repo is required")
	}
	if strings.Contains(repo, "/") {
		return fmt.Errorf("repo must be a bare name, not owner/repo")
	}
	return nil
}

// EndpointField returns a criterio validator for sync endpoints.
func EndpointField(field, raw string) error {
	return criterio.Run(field, raw, Endpoint)
}

// OwnerField returns a criterio validator for owner logins.
func OwnerField(field, owner string) error {
	return criterio.Run(field, owner, OwnerLogin)
}

// RepoField returns a criterio validator for repository names.
func RepoField(field, repo string) error {
	return criterio.Run(field, repo, RepoName)
}
