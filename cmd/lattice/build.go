package main

import (
	"fmt"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/loader"
	"github.com/aretw0/lattice/pkg/codec"
	"github.com/aretw0/lattice/pkg/network"
	"github.com/aretw0/lattice/pkg/observability"
	"github.com/spf13/cobra"
)

func newBuildCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "build <blueprint.yaml>",
		Short: "Build a network from a YAML blueprint",
		Long: `Builds the network a blueprint declares by name and writes it as a document.
Without --out the document is printed in the configured format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := loader.New(lattice.DefaultKinds(),
				loader.WithLogger(a.logger),
				loader.WithNetworkOptions(
					network.WithLogger(a.logger),
					network.WithHooks(observability.LogHooks(a.logger)),
				),
			)
			d, err := l.LoadFile(args[0])
			if err != nil {
				return err
			}
			defer d.Close()

			if out != "" {
				if err := lattice.WriteFile(out, d); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d components)\n", out, len(d.Components()))
				return nil
			}

			c, err := codec.ByFormat(a.cfg.Format)
			if err != nil {
				return err
			}
			doc, err := network.Marshal(d)
			if err != nil {
				return err
			}
			return c.Encode(doc, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the document to this file")
	return cmd
}
