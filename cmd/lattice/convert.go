package main

import (
	"os"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/codec"
	"github.com/aretw0/lattice/pkg/network"
	"github.com/spf13/cobra"
)

func newConvertCmd(a *app) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Re-encode a network document",
		Long: `Loads a document and writes it in another format. Formats follow the file
extensions (.json, .yaml/.yml, .cjson) unless --to is given. Use "-" as <out>
for standard output.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lattice.ReadFile(args[0], nil)
			if err != nil {
				return err
			}
			defer d.Close()

			c := codec.ForPath(args[1])
			if to != "" {
				if c, err = codec.ByFormat(to); err != nil {
					return err
				}
			}
			doc, err := network.Marshal(d)
			if err != nil {
				return err
			}

			if args[1] == "-" {
				return c.Encode(doc, cmd.OutOrStdout())
			}
			data, err := codec.Marshal(c, doc)
			if err != nil {
				return err
			}
			a.logger.Debug("converted", "from", args[0], "to", args[1], "format", c.Format())
			return os.WriteFile(args[1], data, 0o644)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output format (json, yaml, compact)")
	return cmd
}
