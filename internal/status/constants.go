// internal/status/constants.go
package status

// Link Status Register layout constants.
// These values define the protocol and MUST NOT be configurable.
// Health bits use inverse polarity: 1 = no such fault seen.

// ---- BITS ----

// BitReported is set once the link has reported at least one cycle.
const BitReported = 0

// BitSendOK is cleared when a write to the link failed.
const BitSendOK = 1

// BitRecvOK is cleared when the read-back timed out or failed.
const BitRecvOK = 2

// BitDataOK is cleared when the read-back did not match what was written.
const BitDataOK = 3

// ---- MASKS ----

const maskReported uint16 = 1 << BitReported

// HealthMask covers bits 1-3.
const HealthMask uint16 = 1<<BitSendOK | 1<<BitRecvOK | 1<<BitDataOK

// ---- SEED ----

// Seed is the value every register holds before any event is folded.
// Bits 0-3 set; bits 4-15 reserved and always zero.
const Seed uint16 = maskReported | HealthMask // 15
