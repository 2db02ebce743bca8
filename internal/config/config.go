// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LinkTest LinkTestConfig `yaml:"linktest"`
}

// ---- PROCESS ----

type LinkTestConfig struct {
	Serial SerialConfig `yaml:"serial"`

	IntervalMs int    `yaml:"interval_ms"`
	Role       string `yaml:"role"` // transmit | listen; default for links without one
	Echo       bool   `yaml:"echo"` // listeners write back what they read
	Verbose    bool   `yaml:"verbose"`

	// Payload is hex bytes, e.g. "01 02 01". Empty => ascending bytes of PayloadLen.
	Payload    string `yaml:"payload"`
	PayloadLen int    `yaml:"payload_len"`

	QueueSize   int    `yaml:"queue_size"`
	FaultPolicy string `yaml:"fault_policy"` // sticky | latest

	Status StatusConfig `yaml:"status"`
	Links  []LinkConfig `yaml:"links"`
}

// ---- SERIAL ----

type SerialConfig struct {
	BaudRate  int    `yaml:"baud_rate"`
	DataBits  int    `yaml:"data_bits"`
	StopBits  int    `yaml:"stop_bits"`
	Parity    string `yaml:"parity"` // N | E | O
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- STATUS SERVER ----

type StatusConfig struct {
	Listen     string `yaml:"listen"` // host:port; empty disables the server
	TimeoutMs  int    `yaml:"timeout_ms"`
	MaxClients uint   `yaml:"max_clients"`
}

// ---- LINK ----

type LinkConfig struct {
	Device string `yaml:"device"`
	Role   string `yaml:"role"` // optional override
}

const (
	RoleTransmit = "transmit"
	RoleListen   = "listen"
)

// Defaults match the linktest command line flags.
const (
	DefaultBaudRate    = 115200
	DefaultDataBits    = 8
	DefaultStopBits    = 1
	DefaultParity      = "N"
	DefaultTimeoutMs   = 10
	DefaultIntervalMs  = 10
	DefaultPayloadLen  = 10
	DefaultQueueSize   = 4096
	DefaultFaultPolicy = "sticky"

	DefaultStatusTimeoutMs  = 30000
	DefaultStatusMaxClients = 8
)

// Default returns a config with every default applied and no links.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load reads a YAML config file and fills in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	lt := &c.LinkTest

	if lt.Serial.BaudRate == 0 {
		lt.Serial.BaudRate = DefaultBaudRate
	}
	if lt.Serial.DataBits == 0 {
		lt.Serial.DataBits = DefaultDataBits
	}
	if lt.Serial.StopBits == 0 {
		lt.Serial.StopBits = DefaultStopBits
	}
	if lt.Serial.Parity == "" {
		lt.Serial.Parity = DefaultParity
	}
	if lt.Serial.TimeoutMs == 0 {
		lt.Serial.TimeoutMs = DefaultTimeoutMs
	}
	if lt.IntervalMs == 0 {
		lt.IntervalMs = DefaultIntervalMs
	}
	if lt.Role == "" {
		lt.Role = RoleListen
	}
	if lt.PayloadLen == 0 {
		lt.PayloadLen = DefaultPayloadLen
	}
	if lt.QueueSize == 0 {
		lt.QueueSize = DefaultQueueSize
	}
	if lt.FaultPolicy == "" {
		lt.FaultPolicy = DefaultFaultPolicy
	}
	if lt.Status.TimeoutMs == 0 {
		lt.Status.TimeoutMs = DefaultStatusTimeoutMs
	}
	if lt.Status.MaxClients == 0 {
		lt.Status.MaxClients = DefaultStatusMaxClients
	}
}

// ---- derived values ----

func (lt LinkTestConfig) Interval() time.Duration {
	return time.Duration(lt.IntervalMs) * time.Millisecond
}

func (s SerialConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

func (s StatusConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// Enabled reports whether the status server should run.
func (s StatusConfig) Enabled() bool {
	return s.Listen != ""
}

// Transmitters counts links resolved to the transmit role.
// Only meaningful after Normalize.
func (lt LinkTestConfig) Transmitters() int {
	n := 0
	for _, l := range lt.Links {
		if l.Role == RoleTransmit {
			n++
		}
	}
	return n
}
