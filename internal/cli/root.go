package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	quiet      bool
)

// Version is stamped at build time.
const Version = "0.1.0-dev"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "voucherd",
	Short: "voucherd - signature-authorized voucher issuance and settlement",
	Long: `voucherd runs a voucher ledger with operator-gated issuance,
signature-authorized minting and transfers, and a whitelist-gated
marketplace settling against a stable payment asset. State is persisted
in a local key-value store and every operation applies atomically.`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output to console after startup")
}
