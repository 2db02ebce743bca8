// internal/server/server.go
package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/simonvetter/modbus"
	"github.com/sirupsen/logrus"

	cfg "github.com/tamzrod/serial-linktest/internal/config"
)

// Config is minimal listener config.
type Config struct {
	Listen     string // host:port
	Timeout    time.Duration
	MaxClients uint
}

// Server is the Modbus TCP front end of the status registers.
type Server struct {
	ms     *modbus.ModbusServer
	listen string
	log    logrus.FieldLogger
}

// New builds a server around h. It does not bind until Start.
func New(c Config, h *Handler, log logrus.FieldLogger) (*Server, error) {
	if c.Listen == "" {
		return nil, errors.New("status server: listen address required")
	}
	if h == nil {
		return nil, errors.New("status server: handler required")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	ms, err := modbus.NewServer(&modbus.ServerConfiguration{
		URL:        "tcp://" + c.Listen,
		Timeout:    c.Timeout,
		MaxClients: c.MaxClients,
	}, h)
	if err != nil {
		return nil, fmt.Errorf("status server: %w", err)
	}

	return &Server{ms: ms, listen: c.Listen, log: log}, nil
}

// Build wires a server for a normalized config.
func Build(lt cfg.LinkTestConfig, agg Snapshotter, log logrus.FieldLogger) (*Server, error) {
	h := NewHandler(agg, len(lt.Links), log)
	return New(Config{
		Listen:     lt.Status.Listen,
		Timeout:    lt.Status.Timeout(),
		MaxClients: lt.Status.MaxClients,
	}, h, log)
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	if err := s.ms.Start(); err != nil {
		return fmt.Errorf("status server: listen %s: %w", s.listen, err)
	}
	s.log.WithField("listen", s.listen).Info("status server started")
	return nil
}

// Stop closes the listener and every client connection.
func (s *Server) Stop() error {
	err := s.ms.Stop()
	s.log.WithField("listen", s.listen).Info("status server stopped")
	return err
}
