package cli

import (
	"github.com/spf13/cobra"
)

func newDownloadLogCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "download-log",
		Short: "Download the log of the saved run result",
		Long: `Download the log file named in autograder_log.txt (saved by last-run)
and write it byte for byte to autograder_run_log.txt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.registration()
			if err != nil {
				return err
			}
			result, err := app.artifacts().ReadResult()
			if err != nil {
				return app.fail(err)
			}
			if err := app.newRunner().DownloadLog(cmd.Context(), reg.Schedule(), result); err != nil {
				return app.fail(err)
			}
			return nil
		},
	}
}
