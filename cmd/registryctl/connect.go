package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigdatacesga/registry/pkg/kv"
	"github.com/bigdatacesga/registry/pkg/registry"
)

var connectCmd = &cobra.Command{
	Use:   "connect ENDPOINT",
	Short: "Rebind the registry's KV gateway to a new HTTP endpoint for the remainder of this invocation",
	Long: `connect exists for parity with the library's connect(endpoint) operation.
A single CLI invocation normally binds its endpoint once via REGISTRY_ENDPOINT;
this subcommand is for scripting a one-off connectivity check
against an alternate endpoint.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := args[0]
		registry.Connect(kv.NewHTTPGateway(endpoint))
		fmt.Printf("connected to %s\n", endpoint)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
