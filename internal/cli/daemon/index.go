package daemon

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenio-ai/lumen/internal/app"
	"github.com/lumenio-ai/lumen/internal/config"
)

// IndexCmd returns the index command
func IndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Run a one-shot indexing pass",
		Long:  "Build the domain catalog from storage and run the full chunk, embed and store pass, then exit",
		RunE:  runIndex,
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
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

	start := time.Now()
	if err := rt.Index(ctx); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	domains := rt.Manager.GetDomains()
	documents := 0
	for _, d := range domains {
		documents += len(d.Documents)
	}
	log.Printf("indexed %d documents across %d domains in %v", documents, len(domains), time.Since(start))
	return nil
}
