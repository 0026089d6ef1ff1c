package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "monito",
	Short: "Monito Price Intelligence Terminal",
	Long: color.New(color.FgCyan, color.Bold).Sprint(`
  __  __             _ _
 |  \/  | ___  _ __ (_) |_ ___
 | |\/| |/ _ \| '_ \| | __/ _ \
 | |  | | (_) | | | | | || (_)/
 |_|  |_|\___/|_| |_|_|\__\___/
`) + `
Monito Price Intelligence Terminal - multi-supplier catalog matching
and price comparison.

Ingest supplier price lists, resolve duplicate products across
suppliers, and surface the best deal for every product in the
unified catalog.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config.yaml (default: ~/.monito/config.yaml)")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(dbCmd)
}
