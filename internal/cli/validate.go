package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaa/fpgaflow/internal/config"
	"github.com/jaa/fpgaflow/internal/exitcode"
)

func newValidateCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the resolved configuration for problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}

			err = config.Validate(cfg)
			if app.Opts.JSON {
				result := struct {
					Valid    bool     `json:"valid"`
					Problems []string `json:"problems,omitempty"`
				}{Valid: err == nil}
				var verr *config.ValidationError
				if errors.As(err, &verr) {
					result.Problems = verr.Problems
				} else if err != nil {
					result.Problems = []string{err.Error()}
				}
				if encodeErr := json.NewEncoder(app.IO.Out).Encode(result); encodeErr != nil {
					return encodeErr
				}
				if err != nil {
					return withExitCode(exitcode.InvalidConfig, errSilent)
				}
				return nil
			}

			if err != nil {
				var verr *config.ValidationError
				if errors.As(err, &verr) {
					for _, problem := range verr.Problems {
						fmt.Fprintf(app.IO.ErrOut, "problem: %s\n", problem)
					}
					return withExitCode(exitcode.InvalidConfig,
						fmt.Errorf("configuration has %d problem(s)", len(verr.Problems)))
				}
				return withExitCode(exitcode.InvalidConfig, err)
			}

			if !app.Opts.Quiet {
				fmt.Fprintf(app.IO.Out, "Configuration for project %q is valid.\n", cfg.Project.Name)
			}
			return nil
		},
	}
}
