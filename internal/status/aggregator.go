// internal/status/aggregator.go
package status

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/serial-linktest/internal/outcome"
)

var (
	// ErrBusy is returned when another snapshot is draining the channel.
	ErrBusy = errors.New("status: outcome channel busy")

	// ErrClosed is returned once the outcome channel is closed and fully drained.
	ErrClosed = errors.New("status: outcome channel closed")
)

// Aggregator is the single consumer of the outcome channel.
// It keeps no registers of its own: callers pass the prior snapshot in.
type Aggregator struct {
	mu     sync.Mutex // single consumer
	src    *outcome.Channel
	policy Policy
	log    logrus.FieldLogger

	lastDropped uint64
}

func NewAggregator(src *outcome.Channel, p Policy, log logrus.FieldLogger) *Aggregator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Aggregator{src: src, policy: p, log: log}
}

// Snapshot drains every event currently queued and folds it into a copy of seed.
// It never waits for producers. Events queued before Close are still folded.
// On error no events are consumed and nil is returned.
func (a *Aggregator) Snapshot(seed []uint16) ([]uint16, error) {
	if !a.mu.TryLock() {
		return nil, ErrBusy
	}
	defer a.mu.Unlock()

	if a.src == nil || (a.src.Closed() && a.src.Len() == 0) {
		return nil, ErrClosed
	}

	regs := make([]uint16, len(seed))
	copy(regs, seed)

	a.src.Drain(func(ev outcome.Event) {
		if ev.LinkID < 0 || ev.LinkID >= len(regs) {
			a.log.WithField("link", ev.LinkID).Warn("outcome for unknown link dropped")
			return
		}
		regs[ev.LinkID] = Fold(regs[ev.LinkID], ev.Faults, a.policy)
		a.log.WithFields(logrus.Fields{
			"link":     ev.LinkID,
			"faults":   ev.Faults.String(),
			"register": regs[ev.LinkID],
		}).Debug("outcome folded")
	})

	if d := a.src.Dropped(); d != a.lastDropped {
		a.log.WithField("dropped_total", d).Warn("outcome queue overflowed; events were dropped")
		a.lastDropped = d
	}

	return regs, nil
}
