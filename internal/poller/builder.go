// internal/poller/builder.go
package poller

import (
	"time"

	pmodbus "github.com/tamzrod/serial-linktest/internal/poller/modbus"
)

// Options is what the linkstat command collects from its flags.
type Options struct {
	Endpoint string
	UnitID   uint8
	Links    uint16
	Interval time.Duration
	Timeout  time.Duration
}

// Build constructs a Poller and wires Modbus client lifecycle.
// Connection is reused while healthy.
// On transport death, Poller discards the client and uses factory on a future tick.
func Build(o Options) (*Poller, error) {
	// client factory: ONE attempt per call
	factory := func() (Client, error) {
		return pmodbus.New(pmodbus.Config{
			Endpoint: o.Endpoint,
			UnitID:   o.UnitID,
			Timeout:  o.Timeout,
		})
	}

	// The status server may come up after the poller; the first tick dials.
	return New(
		Config{
			Endpoint: o.Endpoint,
			Interval: o.Interval,
			Links:    o.Links,
		},
		nil,
		factory,
	)
}
