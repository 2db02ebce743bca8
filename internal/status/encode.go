// internal/status/encode.go
package status

// Encode converts a LinkHealth into its register word.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(h LinkHealth) uint16 {
	var reg uint16

	if h.Reported {
		reg |= 1 << BitReported
	}
	if h.SendOK {
		reg |= 1 << BitSendOK
	}
	if h.RecvOK {
		reg |= 1 << BitRecvOK
	}
	if h.DataOK {
		reg |= 1 << BitDataOK
	}

	return reg
}

// SeedRegisters returns n registers holding Seed.
func SeedRegisters(n int) []uint16 {
	regs := make([]uint16, n)
	for i := range regs {
		regs[i] = Seed
	}
	return regs
}
