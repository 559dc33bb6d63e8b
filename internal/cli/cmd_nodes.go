package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nejeja/geoswitch/internal/config"
	"github.com/nejeja/geoswitch/internal/switcher"
)

func newNodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List the configured VPN nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			fmt.Printf("%-10s %-10s %-28s %s\n", "NODE", "BACKEND", "TARGET", "COUNTRIES")
			for _, n := range switcher.Table(cfg) {
				id := n.ID
				if n.Restricted {
					id += "*"
				}
				fmt.Printf("%-10s %-10s %-28s %s\n", id, n.Backend, n.Target, strings.Join(n.Allowed, ", "))
			}
			fmt.Println("\n* restricted node, supports skip-verify (RU_SKIP_VERIFY=1)")
			return nil
		},
	}
}
