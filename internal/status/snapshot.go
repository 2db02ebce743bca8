// internal/status/snapshot.go
package status

import "fmt"

// LinkHealth is the decoded view of one Link Status Register.
// It contains no logic and no memory of the past beyond current state.
type LinkHealth struct {
	Reported bool
	SendOK   bool
	RecvOK   bool
	DataOK   bool
}

// Healthy reports whether the link has reported and no fault bit is cleared.
func (h LinkHealth) Healthy() bool {
	return h.Reported && h.SendOK && h.RecvOK && h.DataOK
}

func (h LinkHealth) String() string {
	if !h.Reported {
		return "silent"
	}
	if h.Healthy() {
		return "ok"
	}
	return fmt.Sprintf("fault(send_ok=%t recv_ok=%t data_ok=%t)", h.SendOK, h.RecvOK, h.DataOK)
}

// Decode unpacks a register. Reserved bits are ignored.
func Decode(reg uint16) LinkHealth {
	return LinkHealth{
		Reported: reg&(1<<BitReported) != 0,
		SendOK:   reg&(1<<BitSendOK) != 0,
		RecvOK:   reg&(1<<BitRecvOK) != 0,
		DataOK:   reg&(1<<BitDataOK) != 0,
	}
}
