package main

import (
	"fmt"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/presentation/graph"
	"github.com/spf13/cobra"
)

func newGraphCmd(a *app) *cobra.Command {
	var active []string
	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Export the network as a Mermaid diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lattice.ReadFile(args[0], nil)
			if err != nil {
				return err
			}
			defer d.Close()

			var overlay *graph.Overlay
			if len(active) > 0 {
				overlay = &graph.Overlay{Active: active}
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(d, overlay))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&active, "highlight", nil, "Component labels to highlight")
	return cmd
}
