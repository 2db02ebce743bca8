// internal/config/normalize.go
package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	lt := &cfg.LinkTest

	lt.Role = strings.ToLower(lt.Role)
	lt.FaultPolicy = strings.ToLower(lt.FaultPolicy)
	lt.Serial.Parity = strings.ToUpper(lt.Serial.Parity)

	for i := range lt.Links {
		l := &lt.Links[i]

		// Links without an explicit role inherit the process role.
		if l.Role == "" {
			l.Role = lt.Role
		}
		l.Role = strings.ToLower(l.Role)
	}

	// An explicit payload decides the frame length.
	if strings.TrimSpace(lt.Payload) != "" {
		lt.PayloadLen = len(lt.PayloadBytes())
	}
}
