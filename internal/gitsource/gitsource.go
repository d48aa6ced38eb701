// Package gitsource clones the configured repository at specific versions.
package gitsource

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	builderrors "github.com/christophebedard/gen-docs/internal/errors"
	"github.com/christophebedard/gen-docs/internal/logfields"
)

// TokenEnvVar is the environment variable consulted for private-repository
// authentication.
const TokenEnvVar = "GITHUB_TOKEN"

// Source clones repositories restricted to a single branch or tag.
type Source struct{}

// NewSource creates a Source.
func NewSource() *Source {
	return &Source{}
}

// Clone clones the repository at the given branch or tag into destPath.
// Any pre-existing destPath is removed first. No retries are performed.
func (s *Source) Clone(ctx context.Context, url, destPath, branch string) error {
	slog.Debug("Cloning repository", logfields.URL(url), logfields.Branch(branch), logfields.Path(destPath))

	if err := os.RemoveAll(destPath); err != nil {
		return builderrors.WrapFatal(err, builderrors.CategoryFileSystem, "failed to remove existing clone directory")
	}

	auth := tokenAuth()
	if auth != nil {
		slog.Debug("Using " + TokenEnvVar + " for repository authentication")
	}

	repo, err := s.clone(ctx, url, destPath, plumbing.NewBranchReferenceName(branch), auth)
	if isRefNotFound(err) {
		// The version may name a tag rather than a branch.
		if err = os.RemoveAll(destPath); err != nil {
			return builderrors.WrapFatal(err, builderrors.CategoryFileSystem, "failed to remove partial clone directory")
		}
		repo, err = s.clone(ctx, url, destPath, plumbing.NewTagReferenceName(branch), auth)
	}
	if err != nil {
		return builderrors.WrapFatal(err, builderrors.CategoryGit, "failed to clone "+url+" at "+branch)
	}

	if ref, err := repo.Head(); err == nil {
		slog.Info("Repository cloned",
			logfields.Branch(branch),
			slog.String("commit", ref.Hash().String()[:8]),
			logfields.Path(destPath))
	} else {
		slog.Info("Repository cloned", logfields.Branch(branch), logfields.Path(destPath))
	}
	return nil
}

func (s *Source) clone(ctx context.Context, url, destPath string, ref plumbing.ReferenceName, auth transport.AuthMethod) (*git.Repository, error) {
	return git.PlainCloneContext(ctx, destPath, false, &git.CloneOptions{
		URL:           url,
		ReferenceName: ref,
		SingleBranch:  true,
		Auth:          auth,
	})
}

// isRefNotFound reports whether a clone failed because the requested
// reference does not exist, across the error shapes go-git uses for it.
func isRefNotFound(err error) bool {
	if err == nil {
		return false
	}
	var noMatch git.NoMatchingRefSpecError
	return errors.Is(err, plumbing.ErrReferenceNotFound) || errors.As(err, &noMatch)
}

// tokenAuth builds basic auth from the environment token, if present.
func tokenAuth() transport.AuthMethod {
	token := os.Getenv(TokenEnvVar)
	if token == "" {
		return nil
	}
	return &http.BasicAuth{
		Username: "token", // GitHub uses "token" as the username
		Password: token,
	}
}
