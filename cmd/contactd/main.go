package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "contactd",
	Short: "Portfolio contact form endpoint",
	Long: `contactd serves the portfolio contact form endpoint (POST /api/contact)
with per-source rate limiting, field validation and email dispatch.

Configuration comes from environment variables (optionally a .env file).`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, validateCmd, sendCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
