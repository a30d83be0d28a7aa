package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/lattice"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of lattice",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "lattice version %s\n", strings.TrimSpace(lattice.Version))
			return nil
		},
	}
}
