package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AskCmd returns the ask command
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question over the indexed corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}

	cmd.Flags().StringSliceP("domain", "d", nil, "Restrict retrieval to these domains (repeatable)")
	cmd.Flags().Bool("no-stream", false, "Wait for the full answer instead of streaming")
	cmd.Flags().Bool("sources", false, "Print the sources behind the answer")

	return cmd
}

type askRequest struct {
	Question string   `json:"question"`
	Domains  []string `json:"domains,omitempty"`
	Stream   bool     `json:"stream,omitempty"`
}

type askSource struct {
	Domain       string  `json:"domain"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	ChunkID      string  `json:"chunk_id"`
	Score        float64 `json:"score"`
}

type askResponse struct {
	Answer  string      `json:"answer"`
	Sources []askSource `json:"sources"`
}

type askStreamFrame struct {
	Fragment string      `json:"fragment,omitempty"`
	Done     bool        `json:"done,omitempty"`
	Sources  []askSource `json:"sources,omitempty"`
	Error    string      `json:"error,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	client, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")
	domains, _ := cmd.Flags().GetStringSlice("domain")
	noStream, _ := cmd.Flags().GetBool("no-stream")
	showSources, _ := cmd.Flags().GetBool("sources")

	if noStream {
		resp, err := client.Post("/ask", askRequest{Question: question, Domains: domains})
		if err != nil {
			return err
		}

		var answer askResponse
		if err := json.Unmarshal(resp.Data, &answer); err != nil {
			return fmt.Errorf("failed to parse answer: %w", err)
		}

		fmt.Println(answer.Answer)
		if showSources {
			printSources(answer.Sources)
		}
		return nil
	}

	var sources []askSource
	err = client.PostStream("/ask", askRequest{Question: question, Domains: domains, Stream: true}, func(data []byte) error {
		var frame askStreamFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			return fmt.Errorf("failed to parse stream frame: %w", err)
		}
		if frame.Error != "" {
			return fmt.Errorf("generation failed: %s", frame.Error)
		}
		fmt.Print(frame.Fragment)
		if frame.Done {
			sources = frame.Sources
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Println()
	if showSources {
		printSources(sources)
	}
	return nil
}

func printSources(sources []askSource) {
	if len(sources) == 0 {
		return
	}
	fmt.Println("\nSources:")
	for _, s := range sources {
		fmt.Printf("  [%s] %s (%s, score %.3f)\n", s.Domain, s.DocumentName, s.ChunkID, s.Score)
	}
}
