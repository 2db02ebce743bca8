// internal/serialport/builder.go
package serialport

import (
	cfg "github.com/tamzrod/serial-linktest/internal/config"
)

// Configs derives one device config per link, in link order.
func Configs(lt cfg.LinkTestConfig) []Config {
	out := make([]Config, 0, len(lt.Links))
	for _, l := range lt.Links {
		out = append(out, Config{
			Device:   l.Device,
			BaudRate: lt.Serial.BaudRate,
			DataBits: lt.Serial.DataBits,
			StopBits: lt.Serial.StopBits,
			Parity:   lt.Serial.Parity,
			Timeout:  lt.Serial.Timeout(),
		})
	}
	return out
}

// OpenAll opens every device or none: on the first failure, already opened
// ports are closed and the error is returned.
func OpenAll(cfgs []Config) ([]*Port, func() error, error) {
	ports := make([]*Port, 0, len(cfgs))

	closeAll := func() error {
		var last error
		for _, p := range ports {
			if err := p.Close(); err != nil {
				last = err
			}
		}
		return last
	}

	for _, c := range cfgs {
		p, err := Open(c)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		ports = append(ports, p)
	}

	return ports, closeAll, nil
}
