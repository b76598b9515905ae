// Package registry publishes package directories to a package registry.
package registry

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/indaco/monopub/internal/core"
	"github.com/indaco/monopub/internal/workspace"
)

// DefaultCommand is the publish command used when none is configured.
var DefaultCommand = []string{"npm", "publish", "--registry", "{registry}"}

// CommandPublisher publishes by running a command inside the package
// directory. Arguments may reference {registry}, {name}, {version} and {path}.
type CommandPublisher struct {
	command     []string
	registry    string
	logger      *zap.Logger
	execCommand func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

// NewCommandPublisher returns a CommandPublisher for registry. An empty
// command selects DefaultCommand.
func NewCommandPublisher(command []string, registry string, logger *zap.Logger) *CommandPublisher {
	if len(command) == 0 {
		command = DefaultCommand
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandPublisher{
		command:     command,
		registry:    registry,
		logger:      logger,
		execCommand: exec.CommandContext,
	}
}

// Args returns the expanded command line for pkg at version.
func (p *CommandPublisher) Args(pkg workspace.PackageInfo, version string) []string {
	r := strings.NewReplacer(
		"{registry}", p.registry,
		"{name}", pkg.Name,
		"{version}", version,
		"{path}", pkg.Path,
	)
	args := make([]string, len(p.command))
	for i, arg := range p.command {
		args[i] = r.Replace(arg)
	}
	return args
}

// Publish runs the publish command for pkg.
func (p *CommandPublisher) Publish(ctx context.Context, pkg workspace.PackageInfo, version string) error {
	args := p.Args(pkg, version)

	cmd := p.execCommand(ctx, args[0], args[1:]...)
	cmd.Dir = pkg.Path
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrMsg := strings.TrimSpace(stderr.String())
		if stderrMsg != "" {
			return fmt.Errorf("%w: %s: %s: %w", core.ErrExternalOperation, args[0], stderrMsg, err)
		}
		return fmt.Errorf("%w: %s failed: %w", core.ErrExternalOperation, strings.Join(args, " "), err)
	}

	p.logger.Debug("package published",
		zap.String("package", pkg.Name),
		zap.String("version", version),
		zap.Strings("command", args),
		zap.String("output", strings.TrimSpace(stdout.String())),
	)
	return nil
}

// Publication is one publish captured by a RecordingPublisher.
type Publication struct {
	Name    string
	Version string
	Path    string
	Args    []string
}

// RecordingPublisher captures publishes instead of running them. Dry runs
// use it to report the commands a real run would execute.
type RecordingPublisher struct {
	command      *CommandPublisher
	publications []Publication
}

// NewRecordingPublisher records the command lines command would run.
func NewRecordingPublisher(command *CommandPublisher) *RecordingPublisher {
	return &RecordingPublisher{command: command}
}

// Publish records pkg at version.
func (p *RecordingPublisher) Publish(ctx context.Context, pkg workspace.PackageInfo, version string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pub := Publication{Name: pkg.Name, Version: version, Path: pkg.Path}
	if p.command != nil {
		pub.Args = p.command.Args(pkg, version)
	}
	p.publications = append(p.publications, pub)
	return nil
}

// Publications returns the recorded publishes in order.
func (p *RecordingPublisher) Publications() []Publication {
	out := make([]Publication, len(p.publications))
	copy(out, p.publications)
	return out
}
