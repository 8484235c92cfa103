package daemon

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenio-ai/lumen/internal/app"
	"github.com/lumenio-ai/lumen/internal/config"
)

// DomainsCmd returns the domains command
func DomainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List the domains the configured storage would produce",
		Long:  "Enumerate storage collections and print the resulting domain catalog without embedding anything",
		RunE:  runDomains,
	}
}

func runDomains(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	rt, err := app.BuildRuntime(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build runtime: %w", err)
	}
	defer rt.Close()

	// Catalog only; no content is loaded and nothing is embedded.
	if err := rt.Manager.CreateDomains(ctx); err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}

	for _, d := range rt.Manager.GetDomains() {
		fmt.Printf("%s (%d documents)\n", d.Name, len(d.Documents))
		for _, doc := range d.Documents {
			fmt.Printf("  %s\t%s\n", doc.ID, doc.Name)
		}
	}
	return nil
}
