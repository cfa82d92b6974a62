package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	var (
		user   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "show --user NAME",
		Short: "Show the dates a user has picked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCLIStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			dates, err := store.UserAvailability(cmd.Context(), user)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd, dates)
			}
			if len(dates) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s has not picked any dates\n", user)
				return nil
			}
			for _, d := range dates {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Name of the team member")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
