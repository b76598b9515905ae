package semver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/indaco/monopub/internal/core"
)

// BumpKind selects which part of a version a release increments.
type BumpKind int

const (
	BumpPatch BumpKind = iota
	BumpMinor
	BumpMajor
	BumpPrerelease
)

// shortRevisionLength is how many characters of the revision id a
// pre-release suffix carries.
const shortRevisionLength = 7

// prereleaseTagRegex restricts pre-release tags to dot-separated
// alphanumeric identifiers.
var prereleaseTagRegex = regexp.MustCompile(`^[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*$`)

// BumpPolicy is the version upgrade step applied to every package of a run.
type BumpPolicy struct {
	Kind BumpKind
	// Tag is the pre-release identifier; set only for BumpPrerelease.
	Tag string
}

// Patch, Minor and Major are the numeric policies.
var (
	Patch = BumpPolicy{Kind: BumpPatch}
	Minor = BumpPolicy{Kind: BumpMinor}
	Major = BumpPolicy{Kind: BumpMajor}
)

// Prerelease returns the policy appending "-<tag>.<revision>".
func Prerelease(tag string) BumpPolicy {
	return BumpPolicy{Kind: BumpPrerelease, Tag: tag}
}

// ParsePolicy maps a configured step to a policy: "major", "minor" and
// "patch" are numeric bumps, any other identifier is a pre-release tag.
func ParsePolicy(step string) (BumpPolicy, error) {
	step = strings.TrimSpace(step)
	switch step {
	case "major":
		return Major, nil
	case "minor":
		return Minor, nil
	case "patch":
		return Patch, nil
	case "":
		return BumpPolicy{}, fmt.Errorf("%w: version upgrade step is empty", core.ErrConfiguration)
	}
	if !prereleaseTagRegex.MatchString(step) {
		return BumpPolicy{}, fmt.Errorf("%w: invalid version upgrade step %q", core.ErrConfiguration, step)
	}
	return Prerelease(step), nil
}

func (p BumpPolicy) String() string {
	switch p.Kind {
	case BumpMajor:
		return "major"
	case BumpMinor:
		return "minor"
	case BumpPrerelease:
		return "prerelease(" + p.Tag + ")"
	default:
		return "patch"
	}
}

// NeedsRevision reports whether applying p requires the source-control revision.
func (p BumpPolicy) NeedsRevision() bool {
	return p.Kind == BumpPrerelease
}

// NextVersion returns the version following current under policy.
// Any pre-release or build suffix on current is dropped first and a leading
// "v" is preserved. revision is only read for pre-release policies, which
// keep the patch number and append "-<tag>.<revision[:7]>".
func NextVersion(current string, policy BumpPolicy, revision string) (string, error) {
	parsed, prefix, err := parse(current)
	if err != nil {
		return "", err
	}
	v := parsed.Release()

	switch policy.Kind {
	case BumpMajor:
		v = SemVersion{Major: v.Major + 1}
	case BumpMinor:
		v = SemVersion{Major: v.Major, Minor: v.Minor + 1}
	case BumpPatch:
		v.Patch++
	case BumpPrerelease:
		if policy.Tag == "" {
			return "", fmt.Errorf("%w: pre-release policy without tag", core.ErrConfiguration)
		}
		if revision == "" {
			return "", fmt.Errorf("%w: empty source-control revision", core.ErrExternalOperation)
		}
		v.PreRelease = policy.Tag + "." + shortRevision(revision)
	default:
		return "", fmt.Errorf("%w: unknown bump policy %d", core.ErrConfiguration, policy.Kind)
	}

	return prefix + v.String(), nil
}

func shortRevision(rev string) string {
	if len(rev) <= shortRevisionLength {
		return rev
	}
	return rev[:shortRevisionLength]
}

// RevisionSource resolves the current source-control revision id.
type RevisionSource interface {
	Revision(ctx context.Context) (string, error)
}

// StaticRevision is a RevisionSource that always returns itself.
type StaticRevision string

func (r StaticRevision) Revision(context.Context) (string, error) {
	return string(r), nil
}

// Calculator applies one policy for the duration of a run. The revision is
// resolved on first use and reused, so every pre-release bump of a run
// carries the same suffix.
type Calculator struct {
	policy BumpPolicy
	source RevisionSource
	logger *zap.Logger

	revision string
	resolved bool
}

// NewCalculator returns a Calculator. source may be nil for numeric policies.
func NewCalculator(policy BumpPolicy, source RevisionSource, logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{policy: policy, source: source, logger: logger}
}

// Policy returns the policy the calculator applies.
func (c *Calculator) Policy() BumpPolicy {
	return c.policy
}

// Next returns the version following current.
func (c *Calculator) Next(ctx context.Context, current string) (string, error) {
	rev, err := c.resolveRevision(ctx)
	if err != nil {
		return "", err
	}

	next, err := NextVersion(current, c.policy, rev)
	if err != nil {
		return "", err
	}

	c.logger.Debug("version computed",
		zap.String("current", current),
		zap.String("next", next),
		zap.Stringer("policy", c.policy),
	)
	return next, nil
}

func (c *Calculator) resolveRevision(ctx context.Context) (string, error) {
	if !c.policy.NeedsRevision() || c.resolved {
		return c.revision, nil
	}
	if c.source == nil {
		return "", fmt.Errorf("%w: no revision source configured", core.ErrConfiguration)
	}

	rev, err := c.source.Revision(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: resolve revision: %w", core.ErrExternalOperation, err)
	}

	c.revision = strings.TrimSpace(rev)
	c.resolved = true
	c.logger.Debug("revision resolved", zap.String("revision", c.revision))
	return c.revision, nil
}
