package plan

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/indaco/monopub/internal/clix"
	"github.com/indaco/monopub/internal/config"
	"github.com/indaco/monopub/internal/printer"
)

// Run returns the "plan" command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "Show what a publish would do without changing anything",
		UsageText: "monopub plan --changed <name> [--changed <name>...] [--changed-file <file>]",
		Flags:     clix.ReleaseFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runPlanCmd(ctx, cmd, cfg)
		},
	}
}

func runPlanCmd(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	cfg = clix.ApplyFlags(cmd, cfg)

	logger := clix.Logger(cmd)
	defer func() { _ = logger.Sync() }()

	session, err := clix.NewSession(ctx, cfg, logger, clix.SessionOptions{DryRun: true})
	if err != nil {
		return err
	}

	names, err := clix.ChangedNames(ctx, session.FS, cmd)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		printer.PrintFaint(clix.NothingToPublishMsg)
		return nil
	}

	changed, err := session.Resolve(names)
	if err != nil {
		return err
	}

	trail, err := session.Orchestrator.Run(ctx, changed)
	if err != nil {
		clix.PrintFailure(err, trail)
		return err
	}

	printer.PrintInfo(fmt.Sprintf("Release plan (step %s, registry %s)",
		session.Calculator.Policy(), cfg.PublishRegistry))
	clix.PrintTrail("would publish:", trail)
	clix.PrintRewrites(trail)
	clix.PrintSkipped(trail)
	if cfg.CommitBranch != "" && trail.Len() > 0 {
		printer.PrintFaint("Release commit would be pushed to " + cfg.CommitBranch)
	}
	return nil
}
