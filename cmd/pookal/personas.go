package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pookal/agent/personality"
)

func personasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "personas",
		Short: "List available companion personas",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range personality.List() {
				fmt.Printf("%-10s %s\n", p.ID, p.Description)
			}
		},
	}
}
