package next

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/indaco/monopub/internal/clix"
	"github.com/indaco/monopub/internal/config"
	"github.com/indaco/monopub/internal/core"
	"github.com/indaco/monopub/internal/semver"
)

// Run returns the "next" command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "next",
		Usage:     "Print the version that follows <version> under the upgrade step",
		UsageText: "monopub next <version> [--step major|minor|patch|<tag>] [--revision <sha>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "step",
				Usage: "Version upgrade step (defaults to version-upgrade-step)",
			},
			&cli.StringFlag{
				Name:  "revision",
				Usage: "Revision used in pre-release suffixes instead of HEAD",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runNextCmd(ctx, cmd, cfg)
		},
	}
}

func runNextCmd(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	current := cmd.Args().First()
	if current == "" {
		return fmt.Errorf("%w: missing version argument", core.ErrConfiguration)
	}

	step := cfg.VersionUpgradeStep
	if cmd.IsSet("step") {
		step = cmd.String("step")
	}
	policy, err := semver.ParsePolicy(step)
	if err != nil {
		return err
	}

	logger := clix.Logger(cmd)
	defer func() { _ = logger.Sync() }()

	source := clix.NewRevisionSourceFn(cfg.Root)
	if cmd.IsSet("revision") {
		source = semver.StaticRevision(cmd.String("revision"))
	}

	next, err := semver.NewCalculator(policy, source, logger).Next(ctx, current)
	if err != nil {
		return err
	}
	fmt.Println(next)
	return nil
}
