package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/bigdatacesga/registry/pkg/log"
	"github.com/bigdatacesga/registry/pkg/metrics"
	"github.com/bigdatacesga/registry/pkg/registry"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "registryctl",
	Short:   "Operate a configuration registry for cluster instances of products",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("registryctl version %s (%s)\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initRegistry)
}

func initRegistry() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		os.Exit(1)
	}

	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	log.Init(log.Config{Level: log.Level(logLevel), JSONOutput: logJSON || cfg.LogJSON})

	gw, err := cfg.gateway()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: connect to kv backend: %v\n", err)
		os.Exit(1)
	}

	registry.SetDefault(registry.New(gw, registry.Config{
		ProductsPrefix: cfg.Products,
		ClustersPrefix: cfg.Clusters,
	}))

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.WithComponent("registryctl").Error().Err(err).Msg("metrics server stopped")
			}
		}()
		log.WithComponent("registryctl").Info().Str("addr", cfg.MetricsAddr).Msg("metrics endpoint listening")
	}
}
