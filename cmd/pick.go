package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPickCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "pick --user NAME [DATE...]",
		Short: "Replace a user's picked dates",
		Long: `Replace the dates NAME is available on. Dates use the YYYY-MM-DD format.
Running pick without dates clears NAME's selection.`,
		Example: `  teamdates pick --user Alice 2024-01-10 2024-01-11
  teamdates pick --user Alice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCLIStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SaveUserAvailability(cmd.Context(), user, args); err != nil {
				return fmt.Errorf("failed to save availability: %w", err)
			}

			saved, err := store.UserAvailability(cmd.Context(), user)
			if err != nil {
				return err
			}
			if len(saved) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared all dates for %s\n", user)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d date(s) for %s\n", len(saved), user)
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Name of the team member")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
