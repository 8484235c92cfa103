package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// DomainsCmd returns the domains command group
func DomainsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domains",
		Short: "Inspect and manage the domain catalog",
		RunE:  runDomainsList,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Show one domain with its documents",
		Args:  cobra.ExactArgs(1),
		RunE:  runDomainsGet,
	})

	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register an empty domain",
		Args:  cobra.ExactArgs(1),
		RunE:  runDomainsAdd,
	}
	addCmd.Flags().String("description", "", "Domain description")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a domain from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE:  runDomainsDelete,
	})

	return cmd
}

type domainResponse struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	DocumentCount int      `json:"document_count"`
	Documents     []string `json:"documents,omitempty"`
}

func runDomainsList(cmd *cobra.Command, args []string) error {
	client, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := client.Get("/domains")
	if err != nil {
		return err
	}

	var domains []domainResponse
	if err := json.Unmarshal(resp.Data, &domains); err != nil {
		return fmt.Errorf("failed to parse domains: %w", err)
	}

	for _, d := range domains {
		fmt.Printf("%s\t%d documents\t%s\n", d.Name, d.DocumentCount, d.Description)
	}
	return nil
}

func runDomainsGet(cmd *cobra.Command, args []string) error {
	client, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := client.Get("/domains/" + args[0])
	if err != nil {
		return err
	}

	var d domainResponse
	if err := json.Unmarshal(resp.Data, &d); err != nil {
		return fmt.Errorf("failed to parse domain: %w", err)
	}

	fmt.Printf("%s: %s\n", d.Name, d.Description)
	for _, doc := range d.Documents {
		fmt.Printf("  %s\n", doc)
	}
	return nil
}

func runDomainsAdd(cmd *cobra.Command, args []string) error {
	client, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	description, _ := cmd.Flags().GetString("description")
	_, err = client.Post("/domains", map[string]string{
		"name":        args[0],
		"description": description,
	})
	if err != nil {
		return err
	}

	fmt.Printf("domain %s created\n", args[0])
	return nil
}

func runDomainsDelete(cmd *cobra.Command, args []string) error {
	client, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if _, err := client.Delete("/domains/" + args[0]); err != nil {
		return err
	}

	fmt.Printf("domain %s deleted\n", args[0])
	return nil
}
