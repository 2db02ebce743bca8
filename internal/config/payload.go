// internal/config/payload.go
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePayload parses whitespace separated hex bytes ("01 02 ff").
// An optional 0x prefix per byte is accepted.
func ParsePayload(s string) ([]byte, error) {
	fields := strings.Fields(s)
	out := make([]byte, 0, len(fields))

	for i, f := range fields {
		f = strings.TrimPrefix(strings.TrimPrefix(f, "0x"), "0X")
		v, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("payload byte %d (%q): %w", i, fields[i], err)
		}
		out = append(out, byte(v))
	}

	return out, nil
}

// SynthPayload returns n ascending bytes starting at 0, wrapping at 256.
func SynthPayload(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i)
	}
	return out
}

// PayloadBytes returns the frame a transmitter writes each cycle.
// Must be called after Validate.
func (lt LinkTestConfig) PayloadBytes() []byte {
	if strings.TrimSpace(lt.Payload) != "" {
		b, err := ParsePayload(lt.Payload)
		if err == nil && len(b) > 0 {
			return b
		}
	}
	return SynthPayload(lt.PayloadLen)
}
