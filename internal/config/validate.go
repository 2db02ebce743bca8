// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// MaxPayloadLen bounds a single test frame.
const MaxPayloadLen = 4096

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}
	lt := cfg.LinkTest

	// ------------------------------------------------------------
	// SERIAL PARAMETERS (shared by every link)
	// ------------------------------------------------------------

	if lt.Serial.BaudRate <= 0 {
		return fmt.Errorf("serial.baud_rate must be > 0, got %d", lt.Serial.BaudRate)
	}
	if lt.Serial.DataBits < 5 || lt.Serial.DataBits > 8 {
		return fmt.Errorf("serial.data_bits must be 5..8, got %d", lt.Serial.DataBits)
	}
	if lt.Serial.StopBits != 1 && lt.Serial.StopBits != 2 {
		return fmt.Errorf("serial.stop_bits must be 1 or 2, got %d", lt.Serial.StopBits)
	}
	switch strings.ToUpper(lt.Serial.Parity) {
	case "N", "E", "O":
	default:
		return fmt.Errorf("serial.parity must be N, E or O, got %q", lt.Serial.Parity)
	}
	if lt.Serial.TimeoutMs <= 0 {
		return fmt.Errorf("serial.timeout_ms must be > 0, got %d", lt.Serial.TimeoutMs)
	}

	// ------------------------------------------------------------
	// CYCLE
	// ------------------------------------------------------------

	if lt.IntervalMs <= 0 {
		return fmt.Errorf("interval_ms must be > 0, got %d", lt.IntervalMs)
	}
	if !validRole(lt.Role) {
		return fmt.Errorf("role must be %q or %q, got %q", RoleTransmit, RoleListen, lt.Role)
	}

	if strings.TrimSpace(lt.Payload) != "" {
		b, err := ParsePayload(lt.Payload)
		if err != nil {
			return fmt.Errorf("payload: %w", err)
		}
		if len(b) > MaxPayloadLen {
			return fmt.Errorf("payload: %d bytes exceeds %d", len(b), MaxPayloadLen)
		}
	} else if lt.PayloadLen <= 0 || lt.PayloadLen > MaxPayloadLen {
		return fmt.Errorf("payload_len must be 1..%d, got %d", MaxPayloadLen, lt.PayloadLen)
	}

	// ------------------------------------------------------------
	// OUTCOME AGGREGATION
	// ------------------------------------------------------------

	if lt.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be > 0, got %d", lt.QueueSize)
	}
	switch strings.ToLower(lt.FaultPolicy) {
	case "sticky", "latest":
	default:
		return fmt.Errorf("fault_policy must be sticky or latest, got %q", lt.FaultPolicy)
	}

	// ------------------------------------------------------------
	// STATUS SERVER (OPT-IN)
	// ------------------------------------------------------------

	if lt.Status.Enabled() {
		if _, _, err := net.SplitHostPort(lt.Status.Listen); err != nil {
			return fmt.Errorf("status.listen %q: %w", lt.Status.Listen, err)
		}
		if lt.Status.TimeoutMs <= 0 {
			return fmt.Errorf("status.timeout_ms must be > 0, got %d", lt.Status.TimeoutMs)
		}
	}

	// ------------------------------------------------------------
	// LINKS
	// ------------------------------------------------------------

	if len(lt.Links) == 0 {
		return errors.New("at least one link is required")
	}
	if len(lt.Links) > 0xFFFF {
		return fmt.Errorf("too many links (%d): status registers are addressed by u16", len(lt.Links))
	}

	seen := make(map[string]int)
	for i, l := range lt.Links {
		if strings.TrimSpace(l.Device) == "" {
			return fmt.Errorf("link %d: device required", i)
		}
		if prev, exists := seen[l.Device]; exists {
			return fmt.Errorf("link %d: device %q already used by link %d", i, l.Device, prev)
		}
		seen[l.Device] = i

		if l.Role != "" && !validRole(l.Role) {
			return fmt.Errorf("link %d (%s): role must be %q or %q, got %q",
				i, l.Device, RoleTransmit, RoleListen, l.Role)
		}
	}

	return nil
}

func validRole(r string) bool {
	switch strings.ToLower(r) {
	case RoleTransmit, RoleListen:
		return true
	}
	return false
}
