package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Client account exposure dashboard",
	Long: `dashboard serves the "Compte client" page built from the pre-aggregated
tables of the reporting database:

  • exposure by product
  • distribution by branch
  • top 10 account manager performance
  • top 10 depositors and risk concentration`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().String("config", defaultConfigPath(), "Path to the YAML config file")
	rootCmd.PersistentFlags().String("db", "", "Database path or DSN (overrides config)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewRenderCmd())
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
