// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/serial-linktest/internal/status"
)

// Client abstracts the one Modbus read the poller needs.
type Client interface {
	ReadInputRegisters(addr, qty uint16) ([]uint16, error) // FC 4
	Close() error
}

// Factory dials a fresh client. ONE attempt per call.
type Factory func() (Client, error)

// DeviceError is implemented by errors that carry a Modbus exception.
// The transport is still alive when one comes back.
type DeviceError interface {
	error
	ExceptionCode() byte
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Endpoint string
	Interval time.Duration
	Links    uint16
}

// Poller is a dumb, clock-driven reader of the link status registers.
type Poller struct {
	cfg     Config
	client  Client
	factory Factory
}

// New creates a poller with immutable config.
// client may be nil when factory is set; the first cycle dials.
func New(cfg Config, client Client, factory Factory) (*Poller, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("poller: endpoint required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.Links == 0 {
		return nil, errors.New("poller: at least one link required")
	}
	if client == nil && factory == nil {
		return nil, errors.New("poller: client or factory required")
	}
	return &Poller{cfg: cfg, client: client, factory: factory}, nil
}

// PollOnce performs exactly one poll cycle.
// All-or-nothing: any failure aborts the cycle.
// A transport failure drops the client; the next cycle redials via the factory.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{
		Endpoint: p.cfg.Endpoint,
		At:       time.Now(),
	}

	if p.client == nil {
		if p.factory == nil {
			res.Err = errors.New("poller: no client")
			return res
		}
		c, err := p.factory()
		if err != nil {
			res.Err = fmt.Errorf("poller: dial %s: %w", p.cfg.Endpoint, err)
			return res
		}
		p.client = c
	}

	regs, err := p.client.ReadInputRegisters(0, p.cfg.Links)
	if err != nil {
		var de DeviceError
		if !errors.As(err, &de) && p.factory != nil {
			_ = p.client.Close()
			p.client = nil
		}
		res.Err = err
		return res
	}
	if len(regs) != int(p.cfg.Links) {
		res.Err = fmt.Errorf("poller: expected %d registers, got %d", p.cfg.Links, len(regs))
		return res
	}

	// Commit only if the read succeeded
	links := make([]status.LinkHealth, len(regs))
	for i, r := range regs {
		links[i] = status.Decode(r)
	}
	res.Registers = regs
	res.Links = links
	return res
}

// Close releases the current client, if any.
func (p *Poller) Close() error {
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}
