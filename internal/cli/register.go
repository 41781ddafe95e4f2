package cli

import (
	"github.com/spf13/cobra"
)

func newRegisterCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register the team with the autograder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.registration()
			if err != nil {
				return err
			}
			if err := app.newRunner().Register(cmd.Context(), reg); err != nil {
				return app.fail(err)
			}
			return nil
		},
	}
}
