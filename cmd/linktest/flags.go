// cmd/linktest/flags.go
package main

import (
	"errors"

	flags "github.com/jessevdk/go-flags"

	"github.com/tamzrod/serial-linktest/internal/config"
)

// Options mirrors the YAML keys that are commonly tuned per run.
type Options struct {
	Config   string `short:"c" long:"config" description:"YAML config file"`
	Timeout  int    `short:"t" long:"timeout" default:"10" description:"serial read timeout (ms)"`
	Address  string `short:"a" long:"address" description:"status server bind host:port"`
	Speed    int    `short:"s" long:"speed" default:"115200" description:"baud rate"`
	Interval int    `short:"i" long:"interval" default:"10" description:"sleep between cycles (ms)"`
	Rollback bool   `short:"r" long:"rollback" description:"listeners echo what they read"`
	Send     bool   `short:"e" long:"send" description:"links without a role transmit"`
	Print    bool   `short:"p" long:"print" description:"log every frame"`
	Len      int    `short:"l" long:"len" default:"10" description:"synthetic payload length"`
	Data     string `short:"d" long:"data" description:"hex payload, e.g. \"01 02 01\""`

	NoEcho  bool `long:"no-rollback" description:"turn off echo set in the config file"`
	NoPrint bool `long:"no-print" description:"turn off verbose set in the config file"`
	Listen  bool `long:"listen" description:"links without a role listen, overriding the config file"`

	List     bool   `long:"list" description:"list serial ports and exit"`
	LogLevel string `long:"log-level" default:"info" description:"panic|fatal|error|warn|info|debug|trace"`
}

// isSet reports whether the long flag appeared on the command line.
// go-flags marks defaulted options as set too.
func isSet(p *flags.Parser, long string) bool {
	o := p.FindOptionByLongName(long)
	return o != nil && o.IsSet() && !o.IsSetDefault()
}

// conflicts rejects flag pairs that switch the same setting both ways.
func conflicts(o *Options) error {
	switch {
	case o.Send && o.Listen:
		return errors.New("-e/--send and --listen are mutually exclusive")
	case o.Rollback && o.NoEcho:
		return errors.New("-r/--rollback and --no-rollback are mutually exclusive")
	case o.Print && o.NoPrint:
		return errors.New("-p/--print and --no-print are mutually exclusive")
	}
	return nil
}

// apply overlays flags onto cfg. Without a config file every flag applies,
// defaults included; with one, only flags given explicitly win.
// Positional ports replace the configured link list.
func apply(p *flags.Parser, o *Options, ports []string, cfg *config.Config) {
	lt := &cfg.LinkTest
	all := o.Config == ""

	if all || isSet(p, "timeout") {
		lt.Serial.TimeoutMs = o.Timeout
	}
	if all || isSet(p, "speed") {
		lt.Serial.BaudRate = o.Speed
	}
	if all || isSet(p, "interval") {
		lt.IntervalMs = o.Interval
	}
	if all || isSet(p, "len") {
		lt.PayloadLen = o.Len
	}
	if isSet(p, "address") {
		lt.Status.Listen = o.Address
	}
	if isSet(p, "data") {
		lt.Payload = o.Data
	}
	if o.Rollback {
		lt.Echo = true
	}
	if o.NoEcho {
		lt.Echo = false
	}
	if o.Print {
		lt.Verbose = true
	}
	if o.NoPrint {
		lt.Verbose = false
	}
	if o.Send {
		lt.Role = config.RoleTransmit
	}
	if o.Listen {
		lt.Role = config.RoleListen
	}

	if len(ports) > 0 {
		links := make([]config.LinkConfig, 0, len(ports))
		for _, dev := range ports {
			links = append(links, config.LinkConfig{Device: dev})
		}
		lt.Links = links
	}
}
