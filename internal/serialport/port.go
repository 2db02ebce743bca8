// internal/serialport/port.go
package serialport

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goburrow/serial"
	bugst "go.bug.st/serial"
)

// ErrTimeout is returned by Read when nothing arrived within the configured timeout.
// It satisfies interface{ Timeout() bool }.
var ErrTimeout error = timeoutError{}

type timeoutError struct{}

func (timeoutError) Error() string   { return "serialport: read timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// Config is minimal transport config for one device.
type Config struct {
	Device   string
	BaudRate int
	DataBits int
	StopBits int
	Parity   string // N | E | O
	Timeout  time.Duration
}

// Port is an open serial device. Reads block at most Timeout.
// It implements link.Port.
type Port struct {
	name string
	rwc  serial.Port
}

// Open opens and configures one device.
func Open(cfg Config) (*Port, error) {
	if cfg.Device == "" {
		return nil, errors.New("serialport: device required")
	}

	p, err := serial.Open(&serial.Config{
		Address:  cfg.Device,
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		StopBits: cfg.StopBits,
		Parity:   cfg.Parity,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", cfg.Device, err)
	}

	return &Port{name: cfg.Device, rwc: p}, nil
}

func (p *Port) Name() string { return p.name }

func (p *Port) Read(b []byte) (int, error) {
	n, err := p.rwc.Read(b)
	if errors.Is(err, serial.ErrTimeout) {
		return n, ErrTimeout
	}
	return n, err
}

func (p *Port) Write(b []byte) (int, error) {
	return p.rwc.Write(b)
}

// Close closes the device.
func (p *Port) Close() error {
	if p == nil || p.rwc == nil {
		return nil
	}
	return p.rwc.Close()
}

// List enumerates the serial devices present on the host, sorted by name.
func List() ([]string, error) {
	ports, err := bugst.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("serialport: list: %w", err)
	}
	sort.Strings(ports)
	return ports, nil
}
