package voting

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries the operational tunables of the relayer. None of these
// are consensus critical; nodes may set them independently.
type Config struct {
	// RelayInterval is how often the relay pass and expiry reaper run.
	RelayInterval time.Duration `yaml:"relay_interval"`
	// MinRelayInterval is the minimum time between two relays of the
	// same vote.
	MinRelayInterval time.Duration `yaml:"min_relay_interval"`
	// P2PTopic and QuorumnetTopic name the transport channels used for
	// the two relay paths.
	P2PTopic       string `yaml:"p2p_topic"`
	QuorumnetTopic string `yaml:"quorumnet_topic"`
}

func DefaultConfig() Config {
	return Config{
		RelayInterval:    DefaultRelayInterval,
		MinRelayInterval: DefaultMinRelayInterval,
		P2PTopic:         "votes/p2p",
		QuorumnetTopic:   "votes/quorumnet",
	}
}

// UnmarshalYAML accepts durations in time.ParseDuration notation
// ("30s", "1m"), which yaml does not handle natively.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		RelayInterval    string `yaml:"relay_interval"`
		MinRelayInterval string `yaml:"min_relay_interval"`
		P2PTopic         string `yaml:"p2p_topic"`
		QuorumnetTopic   string `yaml:"quorumnet_topic"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	if raw.RelayInterval != "" {
		d, err := time.ParseDuration(raw.RelayInterval)
		if err != nil {
			return fmt.Errorf("parsing relay_interval: %w", err)
		}
		c.RelayInterval = d
	}
	if raw.MinRelayInterval != "" {
		d, err := time.ParseDuration(raw.MinRelayInterval)
		if err != nil {
			return fmt.Errorf("parsing min_relay_interval: %w", err)
		}
		c.MinRelayInterval = d
	}
	if raw.P2PTopic != "" {
		c.P2PTopic = raw.P2PTopic
	}
	if raw.QuorumnetTopic != "" {
		c.QuorumnetTopic = raw.QuorumnetTopic
	}
	return nil
}

// LoadConfig reads a yaml config file, filling in defaults for any field
// left unset.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	file, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
