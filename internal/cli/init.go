package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaa/fpgaflow/internal/config"
	"github.com/jaa/fpgaflow/internal/exitcode"
)

func newInitCommand(app *AppContext) *cobra.Command {
	var force bool
	var global bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := initTargetPath(app, global)
			if err != nil {
				return err
			}

			if _, statErr := os.Stat(path); statErr == nil && !force {
				if app.Opts.NoInput || !isTTY(os.Stdin) {
					return withExitCode(exitcode.InvalidUsage,
						fmt.Errorf("%s already exists, pass --force to overwrite", path))
				}
				overwrite, promptErr := promptYesNo(app, fmt.Sprintf("%s already exists, overwrite?", path))
				if promptErr != nil {
					return promptErr
				}
				if !overwrite {
					fmt.Fprintln(app.IO.Out, "Aborted.")
					return nil
				}
			}

			if err := config.EnsureConfigDir(path); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(config.DefaultTemplate()), 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			if !app.Opts.Quiet {
				fmt.Fprintf(app.IO.Out, "Wrote %s\n", path)
				fmt.Fprintln(app.IO.Out, "Edit the project section, then run `fpgaflow validate`.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.Flags().BoolVar(&global, "global", false, "Write to the user config directory instead of the working directory")
	return cmd
}

func initTargetPath(app *AppContext, global bool) (string, error) {
	if p := app.Opts.ConfigPath; p != "" {
		return config.ExpandPath(p)
	}
	if global {
		return config.UserConfigPath()
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return config.ProjectConfigPath(wd), nil
}
