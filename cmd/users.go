package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUsersCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List everyone who has picked a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCLIStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			users := store.AllUsers(cmd.Context())
			if asJSON {
				return printJSON(cmd, users)
			}
			for _, u := range users {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")

	return cmd
}
