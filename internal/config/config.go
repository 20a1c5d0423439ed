// Package config loads per-role YAML configuration for the sniffer,
// hub, and viewer binaries.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SnifferConfig holds the configuration for the sniffer agent.
type SnifferConfig struct {
	Interface   string `yaml:"interface"`
	HubHost     string `yaml:"hub_host"`
	HubPort     int    `yaml:"hub_port"`
	Hostname    string `yaml:"hostname"`
	Snaplen     int32  `yaml:"snaplen"`
	Promiscuous bool   `yaml:"promiscuous"`
}

// HubConfig holds the configuration for the aggregation hub.
type HubConfig struct {
	ListenPort int    `yaml:"listen_port"`
	AdminAddr  string `yaml:"admin_addr"`
}

// ViewerConfig holds the configuration for a headless viewer client.
type ViewerConfig struct {
	HubHost  string `yaml:"hub_host"`
	HubPort  int    `yaml:"hub_port"`
	Hostname string `yaml:"hostname"`
}

// Config is the top-level configuration struct; a role reads only the
// section it needs.
type Config struct {
	Sniffer SnifferConfig `yaml:"sniffer"`
	Hub     HubConfig     `yaml:"hub"`
	Viewer  ViewerConfig  `yaml:"viewer"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	return &cfg, nil
}

// DefaultSnifferConfig returns baseline values used when no config file
// is supplied and only CLI flags are given.
func DefaultSnifferConfig() SnifferConfig {
	return SnifferConfig{
		Snaplen:     1600,
		Promiscuous: true,
	}
}

// DefaultHubConfig returns baseline values for the hub when no config
// file is supplied.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		AdminAddr: "127.0.0.1:8090",
	}
}
