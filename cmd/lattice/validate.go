package main

import (
	"fmt"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/validator"
	"github.com/aretw0/lattice/pkg/network"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check network documents for consistency",
		Long: `Checks every reference of each document without materializing it, then loads
it to verify the level chains. All reference problems are reported at once.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := lattice.DefaultKinds()
			failed := 0
			for _, path := range args {
				doc, err := lattice.ReadDocument(path)
				if err == nil {
					err = validator.ValidateDocument(doc, kinds).Err()
				}
				if err == nil {
					var d *network.Digraph
					if d, err = network.Unmarshal(doc, kinds); err == nil {
						err = d.Validate()
						d.Close()
					}
				}
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: invalid\n%v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed validation", failed, len(args))
			}
			return nil
		},
	}
}
