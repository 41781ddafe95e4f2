package cli

import (
	"github.com/spf13/cobra"
)

func newBestRunCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "best-run",
		Short: "Print the best scoring run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.registration()
			if err != nil {
				return err
			}
			if err := app.newRunner().FetchBestResult(cmd.Context(), reg.Schedule()); err != nil {
				return app.fail(err)
			}
			return nil
		},
	}
}
