package git

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"

	"github.com/indaco/monopub/internal/core"
)

// RevisionReader resolves the HEAD commit of the repository containing Dir.
type RevisionReader struct {
	Dir string
}

// NewRevisionReader returns a RevisionReader rooted at dir.
func NewRevisionReader(dir string) *RevisionReader {
	return &RevisionReader{Dir: dir}
}

// Revision returns the full hash of HEAD.
func (r *RevisionReader) Revision(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	repo, err := open(r.Dir)
	if err != nil {
		return "", fmt.Errorf("%w: open repository at %s: %w", core.ErrExternalOperation, r.Dir, err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("%w: resolve HEAD: %w", core.ErrExternalOperation, err)
	}
	return head.Hash().String(), nil
}

// IsRepository reports whether dir is inside a git working tree.
func IsRepository(dir string) bool {
	_, err := open(dir)
	return err == nil
}

// CurrentBranch returns the short name of the checked out branch, or an
// empty string on a detached HEAD.
func CurrentBranch(dir string) (string, error) {
	repo, err := open(dir)
	if err != nil {
		return "", fmt.Errorf("%w: open repository at %s: %w", core.ErrExternalOperation, dir, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("%w: resolve HEAD: %w", core.ErrExternalOperation, err)
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

func open(dir string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	return repo, err
}
