// internal/server/handler.go
package server

import (
	"sync"

	"github.com/simonvetter/modbus"
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/serial-linktest/internal/status"
)

// Snapshotter is the aggregator contract the handler depends on.
type Snapshotter interface {
	Snapshot(seed []uint16) ([]uint16, error)
}

// Handler answers read-input-registers with the link status registers.
// Every other request is refused with an illegal-function exception.
// One Handler serves all connections; it holds no per-connection state.
type Handler struct {
	mu   sync.Mutex
	agg  Snapshotter
	regs []uint16 // latest snapshot, one register per link
	log  logrus.FieldLogger
}

// NewHandler seeds one register per link.
func NewHandler(agg Snapshotter, links int, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		agg:  agg,
		regs: status.SeedRegisters(links),
		log:  log,
	}
}

// ReadInputRegisters refreshes the snapshot and returns registers [addr, addr+qty).
// Aggregator failure yields ErrServerDeviceBusy and leaves the retained snapshot untouched.
func (h *Handler) ReadInputRegisters(addr, qty uint16) ([]uint16, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	regs, err := h.agg.Snapshot(h.regs)
	if err != nil {
		h.log.WithError(err).Warn("status snapshot failed; answering busy")
		return nil, modbus.ErrServerDeviceBusy
	}
	h.regs = regs

	end := int(addr) + int(qty)
	if qty == 0 || end > len(h.regs) {
		h.log.WithFields(logrus.Fields{
			"addr":  addr,
			"qty":   qty,
			"links": len(h.regs),
		}).Warn("status read out of range")
		return nil, modbus.ErrIllegalDataAddress
	}

	out := make([]uint16, qty)
	copy(out, h.regs[addr:end])
	return out, nil
}

// ---- modbus.RequestHandler ----

func (h *Handler) HandleInputRegisters(req *modbus.InputRegistersRequest) ([]uint16, error) {
	h.log.WithFields(logrus.Fields{
		"client":  req.ClientAddr,
		"unit_id": req.UnitId,
		"addr":    req.Addr,
		"qty":     req.Quantity,
	}).Debug("read input registers")

	return h.ReadInputRegisters(req.Addr, req.Quantity)
}

func (h *Handler) HandleCoils(req *modbus.CoilsRequest) ([]bool, error) {
	return nil, modbus.ErrIllegalFunction
}

func (h *Handler) HandleDiscreteInputs(req *modbus.DiscreteInputsRequest) ([]bool, error) {
	return nil, modbus.ErrIllegalFunction
}

func (h *Handler) HandleHoldingRegisters(req *modbus.HoldingRegistersRequest) ([]uint16, error) {
	return nil, modbus.ErrIllegalFunction
}
