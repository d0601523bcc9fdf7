// Package cart implements the bank-switching cartridge controllers: No-MBC,
// MBC1, MBC3 (spec scope), plus MBC5 which the ROM header already
// distinguishes and which shares MBC1's banking shape closely enough to be
// worth carrying.
package cart

import "fmt"

// Cartridge maps guest addresses 0x0000-0x7FFF (ROM + bank control) and
// 0xA000-0xBFFF (external RAM) to bytes. Exactly one implementation is
// constructed per session (picked by header byte 0x147); callers never need
// to branch on cartridge kind once they hold a Cartridge.
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// BatteryBacked is implemented by controllers with persistable external RAM.
// The core never calls this itself (persistence is a host concern); it
// exists for a host to save/restore a .sav file across sessions.
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// New picks a controller implementation from the ROM header's cartridge
// type byte (0x0147). An unrecognized type is a fatal load-time error per
// the error-handling design (UnsupportedCartType).
func New(rom []byte) (Cartridge, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	ramSize := h.RAMSizeBytes
	switch h.CartType {
	case 0x00:
		return NewNoMBC(rom), nil
	case 0x01, 0x02, 0x03:
		return NewMBC1(rom, ramSize), nil
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return NewMBC3(rom, ramSize, h.CartType == 0x0F || h.CartType == 0x10), nil
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return NewMBC5(rom, ramSize), nil
	default:
		return nil, fmt.Errorf("%w: header byte 0x147=0x%02X", ErrUnsupportedCartType, h.CartType)
	}
}
