package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bigdatacesga/registry/pkg/registry"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Instantiate and inspect cluster instances",
}

var clusterInstantiateCmd = &cobra.Command{
	Use:   "instantiate USER PRODUCT VERSION",
	Short: "Instantiate a cluster from a registered product",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, product, version := args[0], args[1], args[2]
		rawOpts, _ := cmd.Flags().GetStringSlice("option")

		opts, err := parseOptions(rawOpts)
		if err != nil {
			return err
		}

		c, err := registry.InstantiateCluster(cmd.Context(), user, product, version, opts)
		if err != nil {
			return err
		}
		fmt.Printf("instantiated %s\n", c.DN())
		return nil
	},
}

var clusterDeinstantiateCmd = &cobra.Command{
	Use:   "deinstantiate USER PRODUCT VERSION ID",
	Short: "Recursively delete a cluster instance",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[3], err)
		}
		return registry.Deinstantiate(cmd.Context(), args[0], args[1], args[2], id)
	},
}

var clusterGetCmd = &cobra.Command{
	Use:   "get USER PRODUCT VERSION ID",
	Short: "Print a cluster's fixed attribute set, nodes and services as JSON",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[3], err)
		}
		c := registry.GetCluster(args[0], args[1], args[2], id)

		attrs, err := c.ToMap(cmd.Context())
		if err != nil {
			return err
		}
		nodes, err := c.Nodes(cmd.Context())
		if err != nil {
			return err
		}
		services, err := c.Services(cmd.Context())
		if err != nil {
			return err
		}

		nodeDNs := make([]string, len(nodes))
		for i, n := range nodes {
			nodeDNs[i] = n.DN()
		}
		svcDNs := make([]string, len(services))
		for i, s := range services {
			svcDNs[i] = s.DN()
		}

		return printJSON(map[string]any{
			"attributes": attrs,
			"nodes":      nodeDNs,
			"services":   svcDNs,
		})
	},
}

var clusterQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List cluster instances, optionally narrowed hierarchically by user/product/version",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		product, _ := cmd.Flags().GetString("product")
		version, _ := cmd.Flags().GetString("version")

		clusters, err := registry.QueryClusters(cmd.Context(), user, product, version)
		if err != nil {
			return err
		}
		for _, c := range clusters {
			fmt.Println(c.DN())
		}
		return nil
	},
}

func init() {
	clusterInstantiateCmd.Flags().StringSlice("option", nil, "Option override key=value, repeatable")

	clusterQueryCmd.Flags().String("user", "", "Filter by user")
	clusterQueryCmd.Flags().String("product", "", "Filter by product (requires --user)")
	clusterQueryCmd.Flags().String("version", "", "Filter by version (requires --product)")

	clusterCmd.AddCommand(clusterInstantiateCmd, clusterDeinstantiateCmd, clusterGetCmd, clusterQueryCmd)
	rootCmd.AddCommand(clusterCmd)
}

// parseOptions turns "key=value" pairs into a map, parsing each value as an
// integer, a float or a boolean (strconv rules, in that order) so
// numbers/booleans survive the command line, falling back to a plain string
// otherwise.
func parseOptions(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		idx := strings.IndexByte(p, '=')
		if idx < 0 {
			return nil, fmt.Errorf("invalid --option %q: expected key=value", p)
		}
		key, value := p[:idx], p[idx+1:]
		out[key] = parseOptionValue(value)
	}
	return out, nil
}

func parseOptionValue(v string) any {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}
