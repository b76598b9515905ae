package doctor

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/indaco/monopub/internal/config"
	"github.com/indaco/monopub/internal/core"
	"github.com/indaco/monopub/internal/printer"
	"github.com/indaco/monopub/internal/tui"
)

// Run returns the "doctor" command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "Check the configuration and the workspace it describes",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runDoctorCmd(ctx, cfg)
		},
	}
}

func runDoctorCmd(ctx context.Context, cfg *config.Config) error {
	results, err := config.NewValidator(core.NewOSFileSystem(), cfg).Validate(ctx)
	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Printf("%s %s %s\n", printer.Status(r.Passed, r.Warning), printer.Bold(r.Category+":"), r.Message)
	}

	if ci := tui.CIName(); ci != "" {
		printer.PrintFaint(fmt.Sprintf("CI detected (%s): prompts and spinners are disabled", ci))
	}

	errs, warns := config.ErrorCount(results), config.WarningCount(results)
	fmt.Println()
	if errs > 0 {
		printer.PrintError(fmt.Sprintf("%d check(s) failed, %d warning(s)", errs, warns))
		return fmt.Errorf("%w: %d check(s) failed", core.ErrConfiguration, errs)
	}
	if warns > 0 {
		printer.PrintWarning(fmt.Sprintf("All checks passed with %d warning(s)", warns))
		return nil
	}
	printer.PrintSuccess("All checks passed")
	return nil
}
