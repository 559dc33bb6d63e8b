package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nejeja/geoswitch/internal/config"
	"github.com/nejeja/geoswitch/internal/geo"
	"github.com/nejeja/geoswitch/internal/platform"
	"github.com/nejeja/geoswitch/internal/switcher"
	"github.com/nejeja/geoswitch/internal/tunnel"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current egress and backend state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := platform.NewLogger("error")

			fmt.Println("=== geoswitch status ===")
			fmt.Println()

			printEgress(ctx, cfg, logger)
			fmt.Println()
			printBackends(ctx, cfg, logger)

			return nil
		},
	}
}

func printEgress(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	resolver := geo.NewResolver(cfg, logger)
	obs, err := resolver.Observe(ctx)

	fmt.Println("Egress:")
	if err != nil {
		fmt.Println("  (no geolocation provider reachable)")
		return
	}
	fmt.Printf("  IP:      %s\n", obs.IP)
	fmt.Printf("  Country: %s\n", obs.Country)
}

func printBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	table := switcher.Table(cfg)
	process := tunnel.NewProcess(cfg.Tunnel.CredentialsFile, logger)
	kernel := tunnel.NewKernel(switcher.KernelInterfaces(table), logger)

	fmt.Println("Backends:")
	status := "stopped"
	if process.IsRunning(ctx) {
		status = "running"
	}
	fmt.Printf("  %-25s %s\n", "openvpn", status)

	for _, iface := range switcher.KernelInterfaces(table) {
		state := "down"
		if kernel.IsUp(iface) {
			state = "up"
		}
		fmt.Printf("  %-25s %s\n", "wireguard "+iface, state)
	}
}
