package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newVersionCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Opts.JSON {
				return json.NewEncoder(app.IO.Out).Encode(struct {
					Version string `json:"version"`
					Commit  string `json:"commit"`
					Date    string `json:"build_date"`
				}{app.Build.Version, app.Build.Commit, app.Build.Date})
			}
			printVersion(app)
			return nil
		},
	}
}
