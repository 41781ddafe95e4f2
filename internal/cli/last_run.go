package cli

import (
	"github.com/spf13/cobra"
)

func newLastRunCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "last-run",
		Short: "Save the latest run result to autograder_log.txt",
		Long: `Fetch the latest grading result and save it, indented with four spaces,
to autograder_log.txt. The file is overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.registration()
			if err != nil {
				return err
			}
			if _, err := app.newRunner().FetchLatestResult(cmd.Context(), reg.Schedule()); err != nil {
				return app.fail(err)
			}
			return nil
		},
	}
}
