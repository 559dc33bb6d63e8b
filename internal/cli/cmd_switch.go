package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nejeja/geoswitch/internal/config"
	"github.com/nejeja/geoswitch/internal/diag"
	"github.com/nejeja/geoswitch/internal/geo"
	"github.com/nejeja/geoswitch/internal/platform"
	"github.com/nejeja/geoswitch/internal/privilege"
	"github.com/nejeja/geoswitch/internal/switcher"
	"github.com/nejeja/geoswitch/internal/tunnel"
)

func newSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <node-id>",
		Short: "Tear down any active tunnel and switch to the named node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			nodeID := args[0]

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := platform.NewLogger(cfg.LogLevel)

			// Resolve the node before requesting elevation: a bogus id
			// must not trigger a sudo prompt or touch its timestamp.
			table := switcher.Table(cfg)
			if _, ok := switcher.Lookup(table, nodeID); !ok {
				return fmt.Errorf("%w: %s", switcher.ErrUnknownNode, nodeID)
			}

			// Elevation is held for the whole operation; Release runs on
			// every exit path.
			session, err := privilege.NewManager(logger).Acquire(ctx)
			if err != nil {
				return err
			}
			defer session.Release()

			backends := switcher.Backends{
				Managed: tunnel.NewManaged(cfg.Tunnel.PlaneBinary, logger),
				Process: tunnel.NewProcess(cfg.Tunnel.CredentialsFile, logger),
				Kernel:  tunnel.NewKernel(switcher.KernelInterfaces(table), logger),
			}
			resolver := geo.NewResolver(cfg, logger)

			sw := switcher.New(cfg, backends, resolver, logger)
			sw.SetDiagnostic(diag.NewDNSCheck(logger))

			result, err := sw.Switch(ctx, nodeID)
			if err != nil {
				return err
			}

			for _, w := range result.Warnings {
				fmt.Printf("[WARN] %s\n", w)
			}
			for _, d := range result.Diagnostics {
				if !d.Passed {
					fmt.Printf("[WARN] dns check: %s: %s\n", d.Name, d.Detail)
				}
			}
			fmt.Println(result.Line())
			return nil
		},
	}
}
