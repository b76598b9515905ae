package release

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/indaco/monopub/internal/core"
)

// DefaultRemote is the remote pushed to when none is configured.
const DefaultRemote = "origin"

// SourceControl stages, commits, tags and pushes the working tree.
type SourceControl interface {
	StageAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error
	Tag(ctx context.Context, name, message string) error
	Push(ctx context.Context, remote, refspec string) error
}

// CommitOptions configure the release commit.
type CommitOptions struct {
	// Branch is the push target; empty disables commit and push.
	Branch string
	// Message is the commit subject; one "- name@version" line per
	// published package is appended.
	Message string
	// Remote defaults to DefaultRemote.
	Remote string
	// Tags creates and pushes one "name@version" tag per published package.
	Tags bool
}

// Committer commits the manifests mutated by a run and pushes them.
type Committer struct {
	scm    SourceControl
	opts   CommitOptions
	logger *zap.Logger
}

// NewCommitter creates a Committer.
func NewCommitter(scm SourceControl, opts CommitOptions, logger *zap.Logger) *Committer {
	if opts.Remote == "" {
		opts.Remote = DefaultRemote
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Committer{scm: scm, opts: opts, logger: logger}
}

// Enabled reports whether a commit branch is configured.
func (c *Committer) Enabled() bool {
	return c.opts.Branch != ""
}

// PushBranch returns the configured branch without any remote prefix.
func (c *Committer) PushBranch() string {
	branch := strings.TrimPrefix(c.opts.Branch, "origin/")
	return strings.TrimPrefix(branch, c.opts.Remote+"/")
}

// TagName returns the release tag of a published package.
func TagName(rec PublishedPackage) string {
	return rec.Name + "@" + rec.NewVersion
}

// Message builds the commit message for trail: the template followed by one
// "- name@version" paragraph per published package, as repeated git -m
// flags would produce.
func (c *Committer) Message(trail *Trail) string {
	var sb strings.Builder
	sb.WriteString(c.opts.Message)
	for _, rec := range trail.Records() {
		sb.WriteString("\n\n- ")
		sb.WriteString(rec.Name)
		sb.WriteByte('@')
		sb.WriteString(rec.NewVersion)
	}
	return sb.String()
}

// Commit stages all changes, commits them with Message and pushes HEAD to
// the configured branch. It does nothing when no branch is configured or
// the trail is empty.
func (c *Committer) Commit(ctx context.Context, trail *Trail) error {
	if !c.Enabled() {
		return nil
	}
	if trail.Len() == 0 {
		c.logger.Debug("nothing published, commit skipped")
		return nil
	}

	if err := c.scm.StageAll(ctx); err != nil {
		return &core.ReleaseError{Op: "stage", Err: err}
	}
	if err := c.scm.Commit(ctx, c.Message(trail)); err != nil {
		return &core.ReleaseError{Op: "commit", Err: err}
	}

	var tags []string
	if c.opts.Tags {
		for _, rec := range trail.Records() {
			tag := TagName(rec)
			if err := c.scm.Tag(ctx, tag, c.opts.Message+" "+tag); err != nil {
				return &core.ReleaseError{Op: "tag", Package: rec.Name, Path: tag, Err: err}
			}
			tags = append(tags, tag)
		}
	}

	branch := c.PushBranch()
	if err := c.scm.Push(ctx, c.opts.Remote, "HEAD:"+branch); err != nil {
		return &core.ReleaseError{Op: "push", Path: c.opts.Remote + "/" + branch, Err: err}
	}
	for _, tag := range tags {
		if err := c.scm.Push(ctx, c.opts.Remote, "refs/tags/"+tag); err != nil {
			return &core.ReleaseError{Op: "push tag", Path: c.opts.Remote + " " + tag, Err: err}
		}
	}

	c.logger.Debug("commit created",
		zap.Int("packages", trail.Len()),
		zap.String("remote", c.opts.Remote),
		zap.String("branch", branch),
		zap.Strings("tags", tags),
	)
	return nil
}
