// Package config defines the ambient process-configuration surface
// (ports, cores, pool sizing, rendezvous address) loaded from an optional
// YAML file and overlaid onto built-in defaults. Pipeline-specific
// configuration (ACL rules, NAT tables, etc.) is out of scope here, per
// spec.md §1 — each example under examples/ owns its own.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPoolSize  = 2048 - 1
	DefaultCacheSize = 32
	DefaultNumRxd    = 128
	DefaultNumTxd    = 128
)

// PortConfig describes one port's queue layout, mirroring NetBricks'
// PortConfiguration field-for-field.
type PortConfig struct {
	Name      string `yaml:"name"`
	RxQueues  []int  `yaml:"rx_queues"`
	TxQueues  []int  `yaml:"tx_queues"`
	Rxd       int    `yaml:"rxd"`
	Txd       int    `yaml:"txd"`
	Loopback  bool   `yaml:"loopback"`
	TSO       bool   `yaml:"tso"`
	Checksum  bool   `yaml:"csum"`
}

// Config is the top-level process configuration.
type Config struct {
	Name      string            `yaml:"name"`
	Secondary bool              `yaml:"secondary"`
	PrimaryCore int             `yaml:"primary_core"`
	Cores     []int             `yaml:"cores"`
	Strict    bool              `yaml:"strict"`
	Ports     []PortConfig      `yaml:"ports"`
	PoolSize  int               `yaml:"pool_size"`
	CacheSize int               `yaml:"cache_size"`
	// DriverArgs carries free-form backend-specific arguments, in place of
	// the original's single dpdk_args string — this Go port has no single
	// fixed backend, so it is a map rather than a DPDK-specific field.
	DriverArgs map[string]string `yaml:"driver_args"`

	// RendezvousAddr is the host's TCP listen address for the ring-name
	// handshake (see internal/rendezvous).
	RendezvousAddr string `yaml:"rendezvous_addr"`
}

// DefaultConfig returns the built-in configuration, equivalent to the
// embedded default TOML document the original loader always merges first.
func DefaultConfig() *Config {
	return &Config{
		Name:        "tee-fabric",
		Secondary:   false,
		PrimaryCore: 0,
		Cores:       []int{0},
		Strict:      false,
		PoolSize:    DefaultPoolSize,
		CacheSize:   DefaultCacheSize,
		Ports: []PortConfig{
			{
				Name:     "SimulateQueue",
				RxQueues: []int{0},
				TxQueues: []int{0},
				Rxd:      DefaultNumRxd,
				Txd:      DefaultNumTxd,
			},
		},
		RendezvousAddr: "localhost:6010",
	}
}

// Load reads path as YAML and overlays it onto DefaultConfig. A path that
// does not exist is not an error: it simply yields the defaults, matching
// the original's "file is optional, built-in default always applies
// first" behavior.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// RequiredCores is the number of distinct cores this configuration needs:
// one reserved for orchestration, one per RX queue and one per enclave,
// matching
// spec.md §4.C's "available cores ≥ (NIC queues) + (enclaves) + 1" rule.
func (c *Config) RequiredCores(enclaveCount int) int {
	queueCount := 0
	for _, p := range c.Ports {
		queueCount += len(p.RxQueues)
	}
	return queueCount + enclaveCount + 1
}
