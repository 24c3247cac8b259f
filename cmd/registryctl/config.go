package main

import (
	"github.com/kelseyhightower/envconfig"

	"github.com/bigdatacesga/registry/pkg/kv"
)

// cliConfig is the bootstrapping configuration loaded from the REGISTRY_*
// environment variables; the --log-level and --log-json flags on rootCmd
// take precedence over LOG_LEVEL/LOG_JSON when set. This is ambient process
// wiring, not a registry feature.
type cliConfig struct {
	Endpoint    string `envconfig:"ENDPOINT" default:"http://127.0.0.1:8500/v1/kv"`
	Backend     string `envconfig:"BACKEND" default:"http"`
	DataDir     string `envconfig:"DATA_DIR" default:"./registryctl-data"`
	Products    string `envconfig:"PRODUCTS_PREFIX" default:"products"`
	Clusters    string `envconfig:"CLUSTERS_PREFIX" default:"clusters"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON     bool   `envconfig:"LOG_JSON" default:"false"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:""`
}

func loadConfig() (cliConfig, error) {
	var cfg cliConfig
	if err := envconfig.Process("registry", &cfg); err != nil {
		return cliConfig{}, err
	}
	return cfg, nil
}

// gateway constructs the KV backend named by cfg.Backend.
func (c cliConfig) gateway() (kv.Gateway, error) {
	switch c.Backend {
	case "bolt":
		return kv.NewBoltGateway(c.DataDir)
	default:
		return kv.NewHTTPGateway(c.Endpoint), nil
	}
}
