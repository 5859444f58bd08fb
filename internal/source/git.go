package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// CloneOptions parameterise a repository fetch.
type CloneOptions struct {
	// Token enables HTTPS basic auth for private repositories.
	Token string
	// Branch selects a branch; empty follows HEAD.
	Branch string
}

// ReadGit shallow-clones repoURL into a temporary directory, collects its
// Solidity files and removes the clone before returning. The returned
// commit hash identifies the audited revision.
func ReadGit(ctx context.Context, repoURL string, opts CloneOptions) ([]Document, string, error) {
	tmpDir, err := os.MkdirTemp("", "solsentry-clone-*")
	if err != nil {
		return nil, "", fmt.Errorf("creating temp directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			slog.Warn("Failed to clean up clone directory", "path", tmpDir, "error", err)
		}
	}()

	cloneOpts := &gogit.CloneOptions{
		URL:   repoURL,
		Depth: 1, // shallow clone for speed
	}
	if opts.Token != "" {
		cloneOpts.Auth = &githttp.BasicAuth{
			Username: "solsentry",
			Password: opts.Token,
		}
	}
	if opts.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
		cloneOpts.SingleBranch = true
	}

	slog.Debug("Cloning repository", "url", repoURL, "branch", opts.Branch, "dest", tmpDir)

	repo, err := gogit.PlainCloneContext(ctx, tmpDir, false, cloneOpts)
	if err != nil {
		return nil, "", fmt.Errorf("cloning %s: %w", repoURL, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, "", fmt.Errorf("resolving HEAD: %w", err)
	}

	docs, err := ReadLocal(tmpDir)
	if err != nil {
		return nil, "", fmt.Errorf("collecting contracts from %s: %w", repoURL, err)
	}
	return docs, head.Hash().String(), nil
}
