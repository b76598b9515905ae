package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/indaco/monopub/internal/core"
)

// Client stages, commits, tags and pushes through the git binary.
type Client struct {
	dir         string
	execCommand func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

// NewClient returns a Client running git in dir.
func NewClient(dir string) *Client {
	return &Client{dir: dir, execCommand: exec.CommandContext}
}

// StageAll stages every working-tree change.
func (c *Client) StageAll(ctx context.Context) error {
	return c.run(ctx, "add", ".")
}

// Commit records the staged changes with message.
func (c *Client) Commit(ctx context.Context, message string) error {
	return c.run(ctx, "commit", "-m", message)
}

// Tag creates the annotated tag name on HEAD.
func (c *Client) Tag(ctx context.Context, name, message string) error {
	return c.run(ctx, "tag", "-a", name, "-m", message)
}

// Push pushes refspec to remote.
func (c *Client) Push(ctx context.Context, remote, refspec string) error {
	return c.run(ctx, "push", remote, refspec)
}

func (c *Client) run(ctx context.Context, args ...string) error {
	cmd := c.execCommand(ctx, "git", args...)
	cmd.Dir = c.dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrMsg := strings.TrimSpace(stderr.String())
		if stderrMsg != "" {
			return fmt.Errorf("%w: git %s: %s: %w", core.ErrExternalOperation, args[0], stderrMsg, err)
		}
		return fmt.Errorf("%w: git %s failed: %w", core.ErrExternalOperation, args[0], err)
	}
	return nil
}
