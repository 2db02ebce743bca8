// internal/link/worker.go
package link

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/serial-linktest/internal/outcome"
)

// Config is the immutable runtime config of one worker.
type Config struct {
	ID       int
	Role     Role
	Interval time.Duration

	// Transmitter only. The read-back buffer holds ReadLen plus
	// ListenBufSize spare bytes so padded echoes are seen.
	Payload []byte
	ReadLen int

	// Listener only.
	Echo bool

	// Verbose logs every frame sent and received.
	Verbose bool
}

// Worker drives one port. It is the port's only user.
type Worker struct {
	cfg  Config
	port Port
	sink Sink
	log  logrus.FieldLogger

	rbuf []byte
}

// New creates a worker with immutable config.
// sink may be nil, in which case transmit outcomes are only logged.
func New(cfg Config, port Port, sink Sink, log logrus.FieldLogger) (*Worker, error) {
	if cfg.ID < 0 {
		return nil, errors.New("link: id must be >= 0")
	}
	if port == nil {
		return nil, errors.New("link: port required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("link: interval must be > 0")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	w := &Worker{
		cfg:  cfg,
		port: port,
		sink: sink,
		log: log.WithFields(logrus.Fields{
			"link": cfg.ID,
			"port": port.Name(),
		}),
	}

	switch cfg.Role {
	case Transmitter:
		if len(cfg.Payload) == 0 {
			return nil, errors.New("link: transmitter needs a payload")
		}
		if cfg.ReadLen <= 0 {
			w.cfg.ReadLen = len(cfg.Payload)
		}
		w.rbuf = make([]byte, w.cfg.ReadLen+ListenBufSize)
	case Listener:
		w.rbuf = make([]byte, ListenBufSize)
	default:
		return nil, fmt.Errorf("link: unsupported role %v", cfg.Role)
	}

	return w, nil
}

func (w *Worker) ID() int      { return w.cfg.ID }
func (w *Worker) Role() Role   { return w.cfg.Role }
func (w *Worker) Name() string { return w.port.Name() }

// CycleOnce runs exactly one cycle for the worker's role.
// Transmit outcomes are published to the sink.
func (w *Worker) CycleOnce() {
	switch w.cfg.Role {
	case Transmitter:
		faults := w.TransmitOnce()
		if w.sink != nil && !w.sink.Publish(outcome.Event{LinkID: w.cfg.ID, Faults: faults}) {
			w.log.WithField("faults", faults.String()).Warn("outcome dropped: queue full")
		}
	case Listener:
		w.ListenOnce()
	}
}

// TransmitOnce writes the payload, reads it back and verifies it.
// Every failure is recorded in the returned set; none aborts the cycle.
func (w *Worker) TransmitOnce() outcome.FaultSet {
	var faults outcome.FaultSet
	payload := w.cfg.Payload

	if _, err := w.port.Write(payload); err != nil {
		faults = faults.Add(outcome.SendFailed)
		w.log.WithError(err).Warn("send failed")
	}
	if w.cfg.Verbose {
		w.log.WithField("data", fmt.Sprintf("% x", payload)).Info("send")
	}

	got, err := w.readBack(len(payload))
	if got == 0 {
		faults = faults.Add(outcome.RecvFailed)
		if err != nil && !isTimeout(err) {
			w.log.WithError(err).Warn("recv failed")
		} else {
			w.log.Warn("recv timeout")
		}
		return faults
	}

	recv := w.rbuf[:got]
	if w.cfg.Verbose {
		w.log.WithField("data", fmt.Sprintf("% x", recv)).Info("recv")
	}

	// Full-content equality: truncated or padded read-back is a mismatch too.
	if !bytes.Equal(recv, payload) {
		faults = faults.Add(outcome.BadData)
		w.log.WithFields(logrus.Fields{
			"sent": fmt.Sprintf("% x", payload),
			"recv": fmt.Sprintf("% x", recv),
		}).Warn("bad data")
	}

	return faults
}

// readBack reads until at least want bytes arrived or a read returns nothing.
// Extra bytes delivered by the same reads are kept. The last read error is returned.
func (w *Worker) readBack(want int) (int, error) {
	if want > len(w.rbuf) {
		want = len(w.rbuf)
	}

	got := 0
	for got < want {
		n, err := w.port.Read(w.rbuf[got:])
		got += n
		if err != nil {
			return got, err
		}
		if n == 0 {
			break
		}
	}
	return got, nil
}

// ListenOnce reads whatever is available and optionally echoes it back.
// An empty read or timeout is not an error for a listener.
func (w *Worker) ListenOnce() int {
	n, err := w.port.Read(w.rbuf)
	if err != nil && !isTimeout(err) {
		w.log.WithError(err).Debug("listen read failed")
	}
	if n <= 0 {
		return 0
	}

	data := w.rbuf[:n]

	if !w.cfg.Echo {
		w.log.WithField("data", fmt.Sprintf("% x", data)).Info("read")
		return n
	}

	if _, err := w.port.Write(data); err != nil {
		w.log.WithError(err).Warn("echo write failed")
		return n
	}
	if w.cfg.Verbose {
		w.log.WithField("data", fmt.Sprintf("% x", data)).Info("read and sent back")
	}
	return n
}

// isTimeout matches os.ErrDeadlineExceeded, net.Error and the serial port timeout.
func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
