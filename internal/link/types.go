// internal/link/types.go
package link

import (
	"fmt"
	"io"

	"github.com/tamzrod/serial-linktest/internal/config"
	"github.com/tamzrod/serial-linktest/internal/outcome"
)

// Port abstracts the byte stream a worker drives.
// Reads are expected to be bounded by a timeout configured on the port itself.
type Port interface {
	io.Reader
	io.Writer
	Name() string
}

// Sink receives one event per completed transmit cycle.
type Sink interface {
	Publish(ev outcome.Event) bool
}

// Role selects the cycle a worker runs.
type Role int

const (
	Listener Role = iota
	Transmitter
)

func (r Role) String() string {
	switch r {
	case Listener:
		return config.RoleListen
	case Transmitter:
		return config.RoleTransmit
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole accepts the config spelling of a role.
func ParseRole(s string) (Role, error) {
	switch s {
	case config.RoleListen:
		return Listener, nil
	case config.RoleTransmit:
		return Transmitter, nil
	default:
		return Listener, fmt.Errorf("link: unknown role %q", s)
	}
}

// ListenBufSize is the fixed receive buffer of a listener.
const ListenBufSize = 50
