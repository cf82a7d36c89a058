package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List every registered tool",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, manager, _, err := setup(ctx)
		if err != nil {
			return err
		}
		defer manager.CloseAll()

		descriptors := a.Registry().List()
		if len(descriptors) == 0 {
			fmt.Println("no tools registered")
			return nil
		}
		for _, desc := range descriptors {
			kind := "builtin"
			if a.Registry().IsExternal(desc.Name) {
				kind = "external"
			}
			fmt.Printf("%-40s %-8s %s\n", desc.Name, kind, desc.Description)
		}
		return nil
	},
}
