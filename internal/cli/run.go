package cli

import (
	"github.com/spf13/cobra"
)

func newRunCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full grading workflow",
		Long: `Run the full grading workflow:
  1. register      - POST /register with the team metadata
  2. schedule      - POST /schedule to start grading
  3. last-run      - GET /last_run and save it to autograder_log.txt
  4. download-log  - GET /log/download and save it to autograder_run_log.txt

Steps run in this order exactly once. A non-success status from register or
schedule is printed and the workflow continues; any other failure stops it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runWorkflow(cmd.Context())
		},
	}
}
