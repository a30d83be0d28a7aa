package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/presentation/tui"
	"github.com/aretw0/lattice/internal/validator"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/network"
	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	var banner bool
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize a network document",
		Long:  `Loads a network document and prints its components, ownership and couplings.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := lattice.ReadDocument(args[0])
			if err != nil {
				return err
			}
			kinds := lattice.DefaultKinds()
			d, err := network.Unmarshal(doc, kinds)
			if err != nil {
				return err
			}
			defer d.Close()

			out := cmd.OutOrStdout()
			if banner && tui.IsTerminal(out) {
				tui.PrintBanner(out)
			}

			report := validator.ValidateDocument(doc, kinds)
			rendered, err := tui.NewRenderer(out)(describe(args[0], d, report))
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}
	cmd.Flags().BoolVar(&banner, "banner", false, "Print the banner on terminals")
	return cmd
}

func describe(path string, d *network.Digraph, report *validator.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", path)
	fmt.Fprintf(&sb, "%d definitions, %d shared references, %d couplings, %d deliveries.\n\n",
		report.Definitions, report.BackRefs, report.Couplings, report.Deliveries)

	kinds := make([]string, 0, len(report.Kinds))
	for k := range report.Kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(&sb, "- `%s` × %d\n", k, report.Kinds[k])
	}

	sb.WriteString("\n## Components\n\n| Handle | Label | Kind | Ownership |\n|---|---|---|---|\n")
	for _, h := range d.Registry().Handles() {
		c, _ := d.Registry().Component(h)
		o, _ := d.Registry().Ownership(h)
		fmt.Fprintf(&sb, "| %d | %s | %s | %s |\n", h, label(c), c.Kind(), o)
	}

	sb.WriteString("\n## Couplings\n\n")
	for _, cp := range d.Graph() {
		for _, to := range cp.To {
			fmt.Fprintf(&sb, "- `%s` → `%s`\n", endpoint(cp.From), endpoint(to))
		}
	}
	return sb.String()
}

func label(c domain.Component) string {
	if l, ok := c.(domain.Labeled); ok && l.Label() != "" {
		return l.Label()
	}
	return "-"
}

func endpoint(e network.Endpoint) string {
	if e.Boundary {
		return fmt.Sprintf("self:%d", e.Port)
	}
	name := label(e.Component)
	if name == "-" {
		name = e.Component.Kind()
	}
	return fmt.Sprintf("%s:%d", name, e.Port)
}
