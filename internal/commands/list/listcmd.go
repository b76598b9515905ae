package list

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/indaco/monopub/internal/clix"
	"github.com/indaco/monopub/internal/config"
	"github.com/indaco/monopub/internal/core"
	"github.com/indaco/monopub/internal/printer"
	"github.com/indaco/monopub/internal/workspace"
)

// Run returns the "list" command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List workspace packages with their versions and dependents",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runListCmd(ctx, cmd, cfg)
		},
	}
}

func runListCmd(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	logger := clix.Logger(cmd)
	defer func() { _ = logger.Sync() }()

	idx, err := workspace.NewLoader(core.NewOSFileSystem(), cfg.LoaderOptions(), logger).Load(ctx)
	if err != nil {
		return err
	}

	if idx.Len() == 0 {
		printer.PrintWarning(fmt.Sprintf("No packages found for %v", cfg.LoaderOptions().Patterns))
		return nil
	}

	blacklist := make(map[string]bool, len(cfg.PublishBlacklist))
	for _, name := range cfg.PublishBlacklist {
		blacklist[name] = true
	}

	for _, pkg := range idx.Packages() {
		line := fmt.Sprintf("%s %s %s", printer.Bold(pkg.Name), pkg.Version, printer.Faint(pkg.Path))
		if blacklist[pkg.Name] {
			line += " " + printer.Warning("(blacklisted)")
		}
		fmt.Println(line)

		if deps := idx.Dependents(pkg.Name); len(deps) > 0 {
			names := make([]string, len(deps))
			for i, d := range deps {
				names[i] = d.Name
			}
			fmt.Println("  dependents: " + strings.Join(names, ", "))
		}
	}
	return nil
}
