// internal/poller/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"time"

	gmodbus "github.com/goburrow/modbus"
)

// Client implements poller.Client using Modbus TCP.
// This adapter is geometry-only: it issues FC 4 and unpacks raw register bytes.
type Client struct {
	h *gmodbus.TCPClientHandler
	c gmodbus.Client
}

// Config is minimal transport config.
type Config struct {
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration
}

// ExceptionError is a Modbus exception answered by the server.
type ExceptionError struct {
	Function byte
	Code     byte
}

func (e *ExceptionError) Error() string {
	return fmt.Sprintf("modbus exception: fc=%d code=%d", e.Function, e.Code)
}

func (e *ExceptionError) ExceptionCode() byte { return e.Code }

// New creates a connected Modbus TCP client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus client: endpoint required")
	}

	h := gmodbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID

	if err := h.Connect(); err != nil {
		return nil, err
	}

	return &Client{
		h: h,
		c: gmodbus.NewClient(h),
	}, nil
}

// Close closes the TCP connection.
func (c *Client) Close() error {
	if c == nil || c.h == nil {
		return nil
	}
	return c.h.Close()
}

// ---- poller.Client interface ----

func (c *Client) ReadInputRegisters(addr, qty uint16) ([]uint16, error) {
	if qty == 0 {
		return nil, nil
	}
	raw, err := c.c.ReadInputRegisters(addr, qty)
	if err != nil {
		var me *gmodbus.ModbusError
		if errors.As(err, &me) {
			return nil, &ExceptionError{Function: me.FunctionCode, Code: me.ExceptionCode}
		}
		return nil, err
	}
	if len(raw)%2 != 0 {
		return nil, errors.New("modbus: read-registers byte count not even")
	}
	return unpackRegisters(raw), nil
}

// ---- helpers (pure geometry) ----

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
