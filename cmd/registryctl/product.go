package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bigdatacesga/registry/pkg/registry"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage registered products",
}

var productRegisterCmd = &cobra.Command{
	Use:   "register NAME VERSION",
	Short: "Register a product from a template file and an options schema file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, version := args[0], args[1]
		templateFile, _ := cmd.Flags().GetString("template")
		optionsFile, _ := cmd.Flags().GetString("options")
		description, _ := cmd.Flags().GetString("description")
		orquestrator, _ := cmd.Flags().GetString("orquestrator")
		templateType, _ := cmd.Flags().GetString("templatetype")

		templateText, err := os.ReadFile(templateFile)
		if err != nil {
			return fmt.Errorf("read template file: %w", err)
		}
		optionsText, err := os.ReadFile(optionsFile)
		if err != nil {
			return fmt.Errorf("read options file: %w", err)
		}

		p, err := registry.Register(cmd.Context(), name, version, description,
			string(templateText), string(optionsText), orquestrator, registry.TemplateType(templateType))
		if err != nil {
			return err
		}
		fmt.Printf("registered %s\n", p.DN())
		return nil
	},
}

var productDeregisterCmd = &cobra.Command{
	Use:   "deregister NAME VERSION",
	Short: "Remove a registered product and its subtree",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return registry.Deregister(cmd.Context(), args[0], args[1])
	},
}

var productGetCmd = &cobra.Command{
	Use:   "get NAME VERSION",
	Short: "Print a product's fixed attribute set as JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := registry.GetProduct(args[0], args[1])
		m, err := p.ToMap(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(m)
	},
}

var productQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List registered products, optionally narrowed by name and version",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		version, _ := cmd.Flags().GetString("version")

		products, err := registry.QueryProducts(cmd.Context(), name, version)
		if err != nil {
			return err
		}
		for _, p := range products {
			fmt.Println(p.DN())
		}
		return nil
	},
}

func init() {
	productRegisterCmd.Flags().String("template", "", "Path to the product's template text")
	productRegisterCmd.Flags().String("options", "", "Path to the product's option schema JSON")
	productRegisterCmd.Flags().String("description", "", "Human-readable description")
	productRegisterCmd.Flags().String("orquestrator", "", "Opaque lifecycle-script text")
	productRegisterCmd.Flags().String("templatetype", string(registry.TemplateJSONJinja2), "json+jinja2 or yaml+jinja2")
	_ = productRegisterCmd.MarkFlagRequired("template")
	_ = productRegisterCmd.MarkFlagRequired("options")

	productQueryCmd.Flags().String("name", "", "Filter by product name")
	productQueryCmd.Flags().String("version", "", "Filter by product version (requires --name)")

	productCmd.AddCommand(productRegisterCmd, productDeregisterCmd, productGetCmd, productQueryCmd)
	rootCmd.AddCommand(productCmd)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
