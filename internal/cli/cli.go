package cli

import (
	"context"
	"fmt"

	urfavecli "github.com/urfave/cli/v3"

	"github.com/indaco/monopub/internal/commands/doctor"
	"github.com/indaco/monopub/internal/commands/initialize"
	"github.com/indaco/monopub/internal/commands/list"
	"github.com/indaco/monopub/internal/commands/next"
	"github.com/indaco/monopub/internal/commands/plan"
	"github.com/indaco/monopub/internal/commands/publish"
	"github.com/indaco/monopub/internal/config"
	"github.com/indaco/monopub/internal/printer"
	"github.com/indaco/monopub/internal/version"
)

var noColorFlag bool

// New builds and returns the root CLI command,
// configuring all subcommands and flags for the monopub cli.
func New(cfg *config.Config) *urfavecli.Command {
	return &urfavecli.Command{
		Name:                  "monopub",
		Version:               fmt.Sprintf("v%s", version.GetVersion()),
		Usage:                 "Release orchestrator for JavaScript monorepos",
		EnableShellCompletion: true,
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:        "no-color",
				Usage:       "Disable colored output",
				Destination: &noColorFlag,
			},
			&urfavecli.BoolFlag{
				Name:  "verbose",
				Usage: "Log every release step to stderr",
			},
		},
		Before: func(ctx context.Context, cmd *urfavecli.Command) (context.Context, error) {
			printer.SetNoColor(noColorFlag)
			return ctx, nil
		},
		Commands: []*urfavecli.Command{
			initialize.Run(),
			publish.Run(cfg),
			plan.Run(cfg),
			list.Run(cfg),
			next.Run(cfg),
			doctor.Run(cfg),
		},
	}
}
