package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nejeja/geoswitch/internal/diag"
	"github.com/nejeja/geoswitch/internal/platform"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run the DNS-leak diagnostics against the active tunnel",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := platform.NewLogger("error")
			results := diag.NewDNSCheck(logger).Run(cmd.Context())

			if !printResults(results) {
				os.Exit(1)
			}
			return nil
		},
	}
}

// printResults prints diagnostic results with colored markers and
// returns true if all passed.
func printResults(results []diag.Result) bool {
	allPassed := true
	for _, r := range results {
		if r.Passed {
			printPass(r.Name + ": " + r.Detail)
		} else {
			printWarn(r.Name + ": " + r.Detail)
			allPassed = false
		}
	}
	return allPassed
}

func printPass(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printWarn(msg string) {
	fmt.Printf("  \033[33m!\033[0m %s\n", msg)
}
