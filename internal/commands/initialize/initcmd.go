package initialize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/urfave/cli/v3"

	"github.com/indaco/monopub/internal/config"
	"github.com/indaco/monopub/internal/core"
	"github.com/indaco/monopub/internal/git"
	"github.com/indaco/monopub/internal/printer"
	"github.com/indaco/monopub/internal/workspace"
)

const header = "# monopub release configuration\n"

// Run returns the "init" command.
func Run() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Write a starter " + config.DefaultConfigFile,
		UsageText: "monopub init [--template npm|pnpm|yarn] [--branch origin/main] [--force]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "template",
				Usage: "Publish command template: " + strings.Join(TemplateNames(), ", "),
				Value: "npm",
			},
			&cli.StringFlag{
				Name:  "branch",
				Usage: "Branch release commits are pushed to",
			},
			&cli.StringSliceFlag{
				Name:  "packages",
				Usage: "Workspace package globs (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing configuration file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runInitCmd(ctx, cmd)
		},
	}
}

func runInitCmd(ctx context.Context, cmd *cli.Command) error {
	tmpl, err := GetTemplate(cmd.String("template"))
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}

	fsys := core.NewOSFileSystem()
	path := config.DefaultConfigFile
	if _, err := fsys.Stat(ctx, path); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("%w: %s already exists (use --force to overwrite)", core.ErrConfiguration, path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	branch := cmd.String("branch")
	data, err := Generate(tmpl, branch, cmd.StringSlice("packages"))
	if err != nil {
		return err
	}
	if err := fsys.WriteFile(ctx, path, data, core.PermPublicRead); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printer.PrintSuccess(fmt.Sprintf("Created %s (%s template)", path, tmpl.Name))
	if branch == "" {
		if current, err := git.CurrentBranch("."); err == nil && current != "" {
			printer.PrintFaint(fmt.Sprintf("No commit-branch set. Re-run with --branch origin/%s to push release commits.", current))
		}
	}
	printer.PrintFaint("Run 'monopub doctor' to check it against the workspace.")
	return nil
}

// Generate renders a configuration file for tmpl.
func Generate(tmpl *Template, branch string, packages []string) ([]byte, error) {
	if len(packages) == 0 {
		packages = workspace.DefaultPatterns
	}
	cascade := true
	cfg := config.Config{
		VersionUpgradeStep:             config.DefaultStep,
		PublishRegistry:                config.DefaultRegistry,
		PublishWhenDependencyPublished: &cascade,
		CommitBranch:                   branch,
		Workspace:                      &config.WorkspaceConfig{Packages: packages},
		Publish:                        &config.PublishConfig{Command: tmpl.Command},
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("encode configuration: %w", err)
	}
	return append([]byte(header), data...), nil
}
