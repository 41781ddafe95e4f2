package cli

import (
	"github.com/spf13/cobra"
)

func newScheduleCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Schedule a grading run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.registration()
			if err != nil {
				return err
			}
			if err := app.newRunner().ScheduleRun(cmd.Context(), reg.Schedule()); err != nil {
				return app.fail(err)
			}
			return nil
		},
	}
}
