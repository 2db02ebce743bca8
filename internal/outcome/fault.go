// internal/outcome/fault.go
package outcome

import "strings"

// FaultKind is one categorized failure observed during a transmit cycle.
type FaultKind uint8

const (
	SendFailed FaultKind = iota + 1
	RecvFailed           // timeout, read error or nothing received
	BadData              // read-back differs from what was written
)

func (k FaultKind) String() string {
	switch k {
	case SendFailed:
		return "SendFailed"
	case RecvFailed:
		return "RecvFailed"
	case BadData:
		return "BadData"
	default:
		return "Unknown"
	}
}

// AllKinds lists every fault kind in register bit order.
var AllKinds = []FaultKind{SendFailed, RecvFailed, BadData}

// FaultSet holds each FaultKind at most once.
// The zero value is the empty set.
type FaultSet uint8

func (s FaultSet) Add(k FaultKind) FaultSet {
	return s | 1<<k
}

func (s FaultSet) Has(k FaultKind) bool {
	return s&(1<<k) != 0
}

func (s FaultSet) Empty() bool {
	return s == 0
}

// Kinds returns the members in register bit order.
func (s FaultSet) Kinds() []FaultKind {
	var out []FaultKind
	for _, k := range AllKinds {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

func (s FaultSet) String() string {
	kinds := s.Kinds()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Of builds a set from the given kinds. Duplicates collapse.
func Of(kinds ...FaultKind) FaultSet {
	var s FaultSet
	for _, k := range kinds {
		s = s.Add(k)
	}
	return s
}
