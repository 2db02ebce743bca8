// internal/link/builder.go
package link

import (
	"fmt"

	"github.com/sirupsen/logrus"

	cfg "github.com/tamzrod/serial-linktest/internal/config"
)

// Build turns link id of a normalized config into a Worker over port.
// No I/O happens here; the port is already open.
func Build(lt cfg.LinkTestConfig, id int, port Port, sink Sink, log logrus.FieldLogger) (*Worker, error) {
	if id < 0 || id >= len(lt.Links) {
		return nil, fmt.Errorf("link: id %d out of range (links=%d)", id, len(lt.Links))
	}

	role, err := ParseRole(lt.Links[id].Role)
	if err != nil {
		return nil, err
	}

	c := Config{
		ID:       id,
		Role:     role,
		Interval: lt.Interval(),
		Echo:     lt.Echo,
		Verbose:  lt.Verbose,
	}
	if role == Transmitter {
		c.Payload = lt.PayloadBytes()
		c.ReadLen = lt.PayloadLen
	}

	return New(c, port, sink, log)
}
