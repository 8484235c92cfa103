package main

import (
	"fmt"
	"os"

	"github.com/lumenio-ai/lumen/internal/cli"
	"github.com/lumenio-ai/lumen/internal/cli/daemon"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lumend",
		Short: "Lumen daemon and CLI",
		Long:  "Lumen daemon for running the API server and managing the document index",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(daemon.ServeCmd())
	rootCmd.AddCommand(daemon.IndexCmd())
	rootCmd.AddCommand(daemon.DomainsCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
