package cmd

import (
	"github.com/spf13/cobra"
)

func newPlanCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print the actions apply would perform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := newReconciler(cmd.Context(), opts)
			if err != nil {
				return err
			}

			_, err = rec.Preview(cmd.Context())
			return err
		},
	}
}
