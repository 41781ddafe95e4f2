package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"autograder/internal/artifact"
)

func newShowCommand(app *App) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved run result",
		Long: `Print autograder_log.txt as saved by the last run. No network access
and no credentials are needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := app.artifacts()
			if !asYAML {
				data, err := os.ReadFile(store.ResultPath())
				if err != nil {
					return app.fail(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			result, err := store.ReadResult()
			if err != nil {
				return app.fail(err)
			}
			out, err := artifact.RenderYAML(result)
			if err != nil {
				return app.fail(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "render the result as YAML")
	return cmd
}
