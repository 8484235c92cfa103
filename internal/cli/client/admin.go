package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ReindexCmd returns the reindex command
func ReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Re-run the full indexing pass on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			if _, err := client.Post("/reindex", nil); err != nil {
				return err
			}
			fmt.Println("reindex complete")
			return nil
		},
	}
}

// SetupCmd returns the setup command
func SetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Rebuild the server from a new settings object",
		Long:  "Post a JSON settings file to the server; it rebuilds the whole pipeline and swaps it in atomically",
		RunE:  runSetup,
	}

	cmd.Flags().StringP("file", "f", "", "Path to a JSON settings file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSetup(cmd *cobra.Command, args []string) error {
	client, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("file")
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings map[string]interface{}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return fmt.Errorf("settings file is not valid JSON: %w", err)
	}

	if _, err := client.Post("/setup", settings); err != nil {
		return err
	}

	fmt.Println("server reconfigured")
	return nil
}

// ConversationCmd returns the conversation command group
func ConversationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conversation",
		Short: "Show the shared conversation history",
		RunE:  runConversationShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the shared conversation history",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			if _, err := client.Post("/conversation/clear", nil); err != nil {
				return err
			}
			fmt.Println("conversation cleared")
			return nil
		},
	})

	return cmd
}

func runConversationShow(cmd *cobra.Command, args []string) error {
	client, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := client.Get("/conversation")
	if err != nil {
		return err
	}

	var messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(resp.Data, &messages); err != nil {
		return fmt.Errorf("failed to parse conversation: %w", err)
	}

	for _, m := range messages {
		fmt.Printf("%s: %s\n", m.Role, m.Content)
	}
	return nil
}
