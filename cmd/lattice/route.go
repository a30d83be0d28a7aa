package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/lattice"
	httpAdapter "github.com/aretw0/lattice/pkg/adapters/http"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/spf13/cobra"
)

func newRouteCmd(a *app) *cobra.Command {
	var (
		source string
		port   int
		value  string
	)
	cmd := &cobra.Command{
		Use:   "route <file>",
		Short: "Show where a value leaving a port is delivered",
		Long: `Performs a one-hop route lookup: prints one line per delivery of a value
leaving (--source, --port). The source "self" is the network boundary.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lattice.ReadFile(args[0], nil)
			if err != nil {
				return err
			}
			defer d.Close()

			src, err := httpAdapter.Find(d, source)
			if err != nil {
				return err
			}

			var v any = value
			if json.Valid([]byte(value)) {
				_ = json.Unmarshal([]byte(value), &v)
			}

			events := d.Route(domain.NewPortValue(domain.Port(port), v), src)
			if len(events) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:%d is not wired\n", source, port)
				return nil
			}
			for _, ev := range events {
				fmt.Fprintf(cmd.OutOrStdout(), "-> %s:%d %v\n", httpAdapter.Name(d, ev.Target), ev.Value.Port, ev.Value.Value)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "self", "Label of the source component")
	cmd.Flags().IntVar(&port, "port", 0, "Source port")
	cmd.Flags().StringVar(&value, "value", "null", "Value to route, as JSON when it parses")
	return cmd
}
