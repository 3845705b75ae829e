package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/corpeningc/reconcile/internal/ui"
)

func newApplyCmd(opts *rootOptions) *cobra.Command {
	var assumeYes, review bool

	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Plan, confirm and apply deletions and conflict resolutions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := newReconciler(cmd.Context(), opts)
			if err != nil {
				return err
			}

			rec.AssumeYes = assumeYes
			if review {
				if !ui.IsTerminal(os.Stdout) {
					return errors.New("--review needs a terminal")
				}
				rec.Review = func(rendered string) error {
					return ui.ShowPlan("Pending actions", rendered, ui.NewStyles())
				}
			}

			_, err = rec.Apply(cmd.Context())
			return err
		},
	}

	applyCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "apply without asking for confirmation")
	applyCmd.Flags().BoolVar(&review, "review", false, "review the plan in a scrollable viewer before confirming")

	return applyCmd
}
