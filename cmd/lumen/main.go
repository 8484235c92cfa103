package main

import (
	"fmt"
	"os"

	"github.com/lumenio-ai/lumen/internal/cli"
	"github.com/lumenio-ai/lumen/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "lumen",
		Short: "Lumen CLI - question answering over your document corpus",
		Long: `Lumen CLI provides commands to query and manage an indexed document corpus.

Environment variables:
  LUMEN_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.DomainsCmd())
	rootCmd.AddCommand(client.ReindexCmd())
	rootCmd.AddCommand(client.SetupCmd())
	rootCmd.AddCommand(client.ConversationCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
