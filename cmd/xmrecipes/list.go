package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mensylisir/xmrecipes/action"
	"github.com/mensylisir/xmrecipes/recipe"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists the registered recipes and actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Recipes:")
			for _, name := range recipe.RegisteredNames() {
				r, err := recipe.Get(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %-20s %s\n", name, r.Description())
			}

			fmt.Fprintln(out, "Actions:")
			for _, name := range action.RegisteredNames() {
				a, err := action.Get(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %-20s %s\n", name, a.Description())
			}
			return nil
		},
	}
}
