// internal/status/fold.go
package status

import (
	"fmt"
	"strings"

	"github.com/tamzrod/serial-linktest/internal/outcome"
)

// Policy decides what a fold does with health bits for faults absent from an event.
type Policy int

const (
	// PolicySticky only ever clears health bits. Once seen, a fault stays flagged.
	PolicySticky Policy = iota

	// PolicyLatest re-sets every health bit before clearing the ones the event reports,
	// so the register reflects the most recent cycle only.
	PolicyLatest
)

func (p Policy) String() string {
	switch p {
	case PolicySticky:
		return "sticky"
	case PolicyLatest:
		return "latest"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy accepts "sticky" or "latest" (case-insensitive). Empty means sticky.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sticky":
		return PolicySticky, nil
	case "latest":
		return PolicyLatest, nil
	default:
		return PolicySticky, fmt.Errorf("status: unknown fault policy %q", s)
	}
}

// faultBit maps a fault kind to the health bit it clears.
func faultBit(k outcome.FaultKind) (uint16, bool) {
	switch k {
	case outcome.SendFailed:
		return 1 << BitSendOK, true
	case outcome.RecvFailed:
		return 1 << BitRecvOK, true
	case outcome.BadData:
		return 1 << BitDataOK, true
	default:
		return 0, false
	}
}

// Fold applies one cycle's faults to a register.
// Pure function.
func Fold(reg uint16, faults outcome.FaultSet, p Policy) uint16 {
	reg |= maskReported

	if p == PolicyLatest {
		reg |= HealthMask
	}

	for _, k := range faults.Kinds() {
		if bit, ok := faultBit(k); ok {
			reg &^= bit
		}
	}

	return reg
}
