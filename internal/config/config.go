// Package config loads boot-time configuration with viper, exposing
// exactly the keys named by spec.md §6. A missing or malformed
// mandatory field is boot-fatal per spec.md §7; the engine is never
// constructed with an invalid configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config mirrors the node.* and network.* keys spec.md §6 requires.
type Config struct {
	NodePrivateKey     string   `mapstructure:"node.private_key"`
	NodeBootstrapPeers []string `mapstructure:"node.bootstrap_peers"`
	NetworkP2PPort     int      `mapstructure:"network.p2p_port"`
	NetworkRPCPort     int      `mapstructure:"network.rpc_port"`
	NetworkExternalIP  string   `mapstructure:"network.external_ip"`
}

// Load reads configuration from path (TOML, JSON, or YAML, inferred
// from extension, matching the original Rust node's `config` crate)
// with environment-variable overrides of the form
// CAUSALGOSSIP_NODE_PRIVATE_KEY, CAUSALGOSSIP_NETWORK_P2P_PORT, etc.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("causalgossip")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("network.p2p_port", 4001)
	v.SetDefault("network.rpc_port", 4501)
	v.SetDefault("network.external_ip", "127.0.0.1")
	v.SetDefault("node.private_key", "")
	v.SetDefault("node.bootstrap_peers", []string{})

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Config{
		NodePrivateKey:     v.GetString("node.private_key"),
		NodeBootstrapPeers: v.GetStringSlice("node.bootstrap_peers"),
		NetworkP2PPort:     v.GetInt("network.p2p_port"),
		NetworkRPCPort:     v.GetInt("network.rpc_port"),
		NetworkExternalIP:  v.GetString("network.external_ip"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.NetworkP2PPort <= 0 || c.NetworkP2PPort > 65535 {
		return fmt.Errorf("config: invalid network.p2p_port %d", c.NetworkP2PPort)
	}
	if c.NetworkRPCPort <= 0 || c.NetworkRPCPort > 65535 {
		return fmt.Errorf("config: invalid network.rpc_port %d", c.NetworkRPCPort)
	}
	if c.NetworkRPCPort == c.NetworkP2PPort {
		return fmt.Errorf("config: network.rpc_port and network.p2p_port must differ")
	}
	return nil
}
