// internal/status/fold_test.go
package status

import (
	"testing"

	"github.com/tamzrod/serial-linktest/internal/outcome"
)

func TestSeedIsFifteen(t *testing.T) {
	if Seed != 15 {
		t.Fatalf("seed must stay 15 for wire compatibility, got %d", Seed)
	}
	h := Decode(Seed)
	if !h.Healthy() {
		t.Fatalf("seed should decode as healthy, got %s", h)
	}
}

func TestFold_NoFaultsKeepsHealthBits(t *testing.T) {
	tests := []uint16{0, Seed, 1 << BitRecvOK, HealthMask &^ (1 << BitDataOK)}

	for _, before := range tests {
		after := Fold(before, 0, PolicySticky)
		if after&(1<<BitReported) == 0 {
			t.Fatalf("before=%04b: liveness bit not set", before)
		}
		if after&HealthMask != before&HealthMask {
			t.Fatalf("before=%04b after=%04b: health bits changed", before, after)
		}
	}
}

func TestFold_SendFailedClearsBitOne(t *testing.T) {
	after := Fold(Seed, outcome.Of(outcome.SendFailed), PolicySticky)

	if after&(1<<BitSendOK) != 0 {
		t.Fatalf("bit 1 should be clear, got %04b", after)
	}
	if after&(1<<BitRecvOK) == 0 || after&(1<<BitDataOK) == 0 {
		t.Fatalf("bits 2-3 should be unchanged, got %04b", after)
	}
	if after != 13 {
		t.Fatalf("expected 13, got %d", after)
	}
}

func TestFold_AllFaults(t *testing.T) {
	all := outcome.Of(outcome.SendFailed, outcome.RecvFailed, outcome.BadData)

	if got := Fold(Seed, all, PolicySticky); got != 1 {
		t.Fatalf("expected only liveness bit, got %04b", got)
	}
}

func TestFold_StickyNeverResets(t *testing.T) {
	reg := Fold(Seed, outcome.Of(outcome.BadData), PolicySticky)
	reg = Fold(reg, 0, PolicySticky)

	if reg&(1<<BitDataOK) != 0 {
		t.Fatalf("sticky policy re-set bit 3: %04b", reg)
	}
}

func TestFold_LatestResetsAbsentFaults(t *testing.T) {
	reg := Fold(Seed, outcome.Of(outcome.BadData, outcome.SendFailed), PolicyLatest)
	reg = Fold(reg, outcome.Of(outcome.RecvFailed), PolicyLatest)

	want := Encode(LinkHealth{Reported: true, SendOK: true, RecvOK: false, DataOK: true})
	if reg != want {
		t.Fatalf("expected %04b, got %04b", want, reg)
	}
}

func TestFold_ReservedBitsUntouched(t *testing.T) {
	reg := Fold(0xFF00|Seed, outcome.Of(outcome.RecvFailed), PolicyLatest)
	if reg&0xFF00 != 0xFF00 {
		t.Fatalf("reserved bits changed: %016b", reg)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
		ok   bool
	}{
		{"", PolicySticky, true},
		{"sticky", PolicySticky, true},
		{"LATEST", PolicyLatest, true},
		{"reset", PolicySticky, false},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParsePolicy(%q) err=%v, want ok=%t", tt.in, err, tt.ok)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	h := LinkHealth{Reported: true, SendOK: true, RecvOK: false, DataOK: true}
	if got := Decode(Encode(h)); got != h {
		t.Fatalf("decode(encode(h)) = %+v, want %+v", got, h)
	}
	if Decode(0).String() != "silent" {
		t.Fatalf("zero register should read as silent")
	}
}
