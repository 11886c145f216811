// Package cmd provides the command-line interface for cdrasim.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cdrasim",
	Short: "cdrasim simulates a carbon dioxide removal assembly.",
	Long: `cdrasim simulates the carbon dioxide removal assembly of a ` +
		`space habitat. It advances a bed-swing removal model at a fixed ` +
		`step rate, injects configured failure modes, and streams habitat ` +
		`telemetry to an HTTP endpoint or a file.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	// A .env file can provide defaults such as CDRASIM_TELEMETRY_URL.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
