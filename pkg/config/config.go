// Package config defines the node configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Version is the version of the node, set at the build time.
var Version string

// Config is the top level struct representing the config for the node.
type Config struct {
	ProtocolConfiguration ProtocolConfiguration `yaml:"ProtocolConfiguration"`
}

// Default returns the config with every protocol setting at its default.
func Default() Config {
	return Config{ProtocolConfiguration: DefaultProtocolConfiguration()}
}

// LoadFile loads the config from the provided path, leaving the defaults in
// place for any setting the file doesn't mention.
func LoadFile(configPath string) (Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}

	config := Default()
	err = yaml.Unmarshal(configData, &config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	err = config.ProtocolConfiguration.Validate()
	if err != nil {
		return Config{}, err
	}

	return config, nil
}
