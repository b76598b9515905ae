package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/indaco/monopub/internal/clix"
	"github.com/indaco/monopub/internal/config"
	"github.com/indaco/monopub/internal/printer"
	"github.com/indaco/monopub/internal/tui"
	"github.com/indaco/monopub/internal/workspace"
)

// Prompt hooks, replaced in tests.
var (
	isInteractiveFn = tui.IsInteractive
	confirmFn       = tui.Confirm
)

// Run returns the "publish" command.
func Run(cfg *config.Config) *cli.Command {
	cmdFlags := clix.ReleaseFlags()
	cmdFlags = append(cmdFlags,
		&cli.StringFlag{
			Name:  "branch",
			Usage: "Branch the release commit is pushed to (overrides commit-branch)",
		},
		&cli.BoolFlag{
			Name:  "no-commit",
			Usage: "Do not commit and push the manifest changes",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Run the release in memory: no manifest writes, publishes or pushes",
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "Do not ask for confirmation",
		},
	)

	return &cli.Command{
		Name:      "publish",
		Usage:     "Publish changed packages and the packages that depend on them",
		UsageText: "monopub publish --changed <name> [--changed <name>...] [--changed-file <file>] [--dry-run]",
		Flags:     cmdFlags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runPublishCmd(ctx, cmd, cfg)
		},
	}
}

func runPublishCmd(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	cfg = clix.ApplyFlags(cmd, cfg)
	dryRun := cmd.Bool("dry-run")
	interactive := isInteractiveFn()

	logger := clix.Logger(cmd)
	defer func() { _ = logger.Sync() }()

	session, err := clix.NewSession(ctx, cfg, logger, clix.SessionOptions{
		DryRun:  dryRun,
		Spinner: interactive,
	})
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

	if interactive && !dryRun && !cmd.Bool("yes") {
		ok, err := confirmFn(
			fmt.Sprintf("Publish %d changed package(s) to %s?", len(changed), cfg.PublishRegistry),
			describe(changed, cfg),
		)
		if err != nil {
			return err
		}
		if !ok {
			printer.PrintWarning("Release cancelled.")
			return nil
		}
	}

	if dryRun {
		fmt.Println(printer.Badge("DRY RUN", "3"))
	}

	trail, err := session.Orchestrator.Run(ctx, changed)
	if err != nil {
		clix.PrintFailure(err, trail)
		return err
	}

	if trail.Len() == 0 {
		printer.PrintFaint("Nothing was published.")
	}
	clix.PrintTrail(clix.PublishedHeader, trail)
	clix.PrintSkipped(trail)

	if dryRun {
		printRecorded(session)
		return clix.PrintOverlayDiff(ctx, session.Overlay)
	}

	if err := session.Committer.Commit(ctx, trail); err != nil {
		clix.PrintFailure(err, trail)
		return err
	}
	if session.Committer.Enabled() && trail.Len() > 0 {
		printer.PrintSuccess(fmt.Sprintf("Pushed release commit to %s/%s",
			cfg.CommitOptions().Remote, session.Committer.PushBranch()))
	}
	return nil
}

// describe summarizes what a run is about to do for the confirmation prompt.
func describe(changed []workspace.ChangedPackage, cfg *config.Config) string {
	names := make([]string, len(changed))
	for i, c := range changed {
		names[i] = c.Name
	}
	policy, _ := cfg.Policy()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Changed: %s\n", strings.Join(names, ", "))
	fmt.Fprintf(&sb, "Step: %s, dependents: %t", policy, cfg.Cascade())
	if cfg.CommitBranch != "" {
		fmt.Fprintf(&sb, ", push to %s", cfg.CommitBranch)
	}
	return sb.String()
}

func printRecorded(session *clix.Session) {
	pubs := session.Recorder.Publications()
	if len(pubs) == 0 {
		return
	}
	printer.PrintBold("commands that would run:")
	for _, p := range pubs {
		fmt.Printf("  (%s) %s\n", p.Path, strings.Join(p.Args, " "))
	}
}
