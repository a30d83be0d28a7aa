package main

import (
	"fmt"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/codec"
	"github.com/spf13/cobra"
)

func newStoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage stored network snapshots",
		Long:  `List, fetch, store and remove snapshots in the configured store.`,
	}
	cmd.AddCommand(newStoreLsCmd(a), newStoreGetCmd(a), newStorePutCmd(a), newStoreRmCmd(a))
	return cmd
}

func newStoreLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List stored snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment(nil)
			if err != nil {
				return err
			}
			defer env.Close()

			ids, err := env.Manager.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No snapshots found.")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newStoreGetCmd(a *app) *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment(nil)
			if err != nil {
				return err
			}
			defer env.Close()

			doc, err := env.Manager.Document(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c, err := codec.ByFormat(as)
			if err != nil {
				return err
			}
			return c.Encode(doc, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&as, "as", codec.FormatJSON, "Output format (json, yaml, compact)")
	return cmd
}

func newStorePutCmd(a *app) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "put <file>",
		Short: "Store a network document",
		Long:  `Loads a network document and stores it. Without --id a random ID is generated.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lattice.ReadFile(args[0], nil)
			if err != nil {
				return err
			}
			defer d.Close()

			env, err := a.environment(nil)
			if err != nil {
				return err
			}
			defer env.Close()

			if id == "" {
				if id, err = env.Manager.SaveNew(cmd.Context(), d); err != nil {
					return err
				}
			} else if err := env.Manager.Save(cmd.Context(), id, d); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Snapshot ID")
	return cmd
}

func newStoreRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Remove one or more snapshots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment(nil)
			if err != nil {
				return err
			}
			defer env.Close()

			failed := 0
			for _, id := range args {
				if err := env.Manager.Delete(cmd.Context(), id); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed snapshot '%s'\n", id)
			}
			if failed > 0 {
				return fmt.Errorf("failed to remove %d snapshots", failed)
			}
			return nil
		},
	}
}
