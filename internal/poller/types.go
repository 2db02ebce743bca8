// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/serial-linktest/internal/status"
)

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	Endpoint string
	At       time.Time

	// Registers are copied verbatim from the status server, one per link.
	Registers []uint16

	// Links is Registers decoded; same length and order.
	Links []status.LinkHealth

	Err error // non-nil means the poll cycle failed
}

// Changed reports the link ids whose decoded health differs from prev.
// A failed or size-mismatched previous result marks every link changed.
func (r PollResult) Changed(prev PollResult) []int {
	var out []int
	for i, h := range r.Links {
		if prev.Err != nil || len(prev.Links) != len(r.Links) || prev.Links[i] != h {
			out = append(out, i)
		}
	}
	return out
}
