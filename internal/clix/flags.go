package clix

import (
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/indaco/monopub/internal/config"
	"github.com/indaco/monopub/internal/logging"
)

// Logger returns the process logger for the --verbose setting of cmd.
func Logger(cmd *cli.Command) *zap.Logger {
	return logging.New(cmd.Bool("verbose"))
}

// ReleaseFlags returns the flags accepted by every command that plans or
// runs a release.
func ReleaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "changed",
			Aliases: []string{"c"},
			Usage:   "Name of a changed package (repeatable, kept in order)",
		},
		&cli.StringFlag{
			Name:  "changed-file",
			Usage: "File listing changed packages (.json, .yaml, .toml or one name per line)",
		},
		&cli.StringFlag{
			Name:  "changed-field",
			Usage: "Dot path of the package list inside --changed-file (e.g. release.packages)",
		},
		&cli.StringFlag{
			Name:  "changed-format",
			Usage: "Format of --changed-file (json, yaml, toml, raw); detected from the extension when unset",
		},
		&cli.StringFlag{
			Name:  "step",
			Usage: "Version upgrade step: major, minor, patch or a pre-release tag",
		},
		&cli.StringFlag{
			Name:  "registry",
			Usage: "Registry URL packages are published to",
		},
		&cli.BoolFlag{
			Name:  "no-cascade",
			Usage: "Do not publish dependents of changed packages",
		},
	}
}

// ApplyFlags returns a copy of cfg with the release flags set on cmd applied.
func ApplyFlags(cmd *cli.Command, cfg *config.Config) *config.Config {
	out := *cfg

	if cmd.IsSet("step") {
		out.VersionUpgradeStep = cmd.String("step")
	}
	if cmd.IsSet("registry") {
		out.PublishRegistry = cmd.String("registry")
	}
	if cmd.Bool("no-cascade") {
		cascade := false
		out.PublishWhenDependencyPublished = &cascade
	}
	if cmd.IsSet("branch") {
		out.CommitBranch = cmd.String("branch")
	}
	if cmd.Bool("no-commit") {
		out.CommitBranch = ""
	}
	return &out
}
