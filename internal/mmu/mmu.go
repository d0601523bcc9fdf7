// Package mmu routes the CPU's 16-bit address space to the component that
// owns each region: cartridge ROM/RAM, VRAM/OAM/PPU registers, work RAM,
// high RAM, and the timer/joypad/serial/interrupt IO registers. It owns no
// state of its own beyond the boot ROM overlay flag already tracked by ram.RAM.
package mmu

import (
	"github.com/connor-lennox/rgbl/internal/cart"
	"github.com/connor-lennox/rgbl/internal/joypad"
	"github.com/connor-lennox/rgbl/internal/ppu"
	"github.com/connor-lennox/rgbl/internal/ram"
	"github.com/connor-lennox/rgbl/internal/timer"
)

// MMU satisfies cpu.MemoryBus by dispatching across the full guest address
// map to the components wired in at construction time.
type MMU struct {
	Cart   cart.Cartridge
	PPU    *ppu.PPU
	RAM    *ram.RAM
	Joypad *joypad.Joypad
	Timer  *timer.Timer
}

// New wires a fresh MMU around its collaborators. The PPU's interrupt
// callback is expected to already be constructed to call ram.RequestInterrupt
// (the PPU package has no dependency on ram, so that wiring happens in the
// machine package that owns both).
func New(c cart.Cartridge, p *ppu.PPU, r *ram.RAM, j *joypad.Joypad, t *timer.Timer) *MMU {
	return &MMU{Cart: c, PPU: p, RAM: r, Joypad: j, Timer: t}
}

func (m *MMU) Read(addr uint16) byte {
	switch {
	case addr <= 0x7FFF:
		if m.RAM.BootROMActive(addr) {
			return m.RAM.ReadBootROM(addr)
		}
		return m.Cart.Read(addr)
	case addr >= 0x8000 && addr <= 0x9FFF:
		return m.PPU.CPURead(addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		return m.Cart.Read(addr)
	case addr >= 0xC000 && addr <= 0xDFFF:
		return m.RAM.ReadWRAM(addr - 0xC000)
	case addr >= 0xE000 && addr <= 0xFDFF:
		return m.RAM.ReadWRAM(addr - 0xE000)
	case addr >= 0xFE00 && addr <= 0xFE9F:
		return m.PPU.CPURead(addr)
	case addr >= 0xFEA0 && addr <= 0xFEFF:
		return 0xFF
	case addr == 0xFF00:
		return m.Joypad.Read()
	case addr == 0xFF01:
		return m.RAM.ReadSB()
	case addr == 0xFF02:
		return m.RAM.ReadSC()
	case addr == 0xFF04:
		return m.Timer.DIV()
	case addr == 0xFF05:
		return m.Timer.TIMA()
	case addr == 0xFF06:
		return m.Timer.TMA()
	case addr == 0xFF07:
		return m.Timer.TAC()
	case addr == 0xFF0F:
		return m.RAM.IF()
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return 0xFF // audio: Non-goal, open bus
	case addr >= 0xFF40 && addr <= 0xFF4B:
		return m.PPU.CPURead(addr)
	case addr == 0xFF50:
		return 0xFF
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return m.RAM.ReadHRAM(addr - 0xFF80)
	case addr == 0xFFFF:
		return m.RAM.IE()
	default:
		return 0xFF
	}
}

func (m *MMU) Write(addr uint16, v byte) {
	switch {
	case addr <= 0x7FFF:
		m.Cart.Write(addr, v)
	case addr >= 0x8000 && addr <= 0x9FFF:
		m.PPU.CPUWrite(addr, v)
	case addr >= 0xA000 && addr <= 0xBFFF:
		m.Cart.Write(addr, v)
	case addr >= 0xC000 && addr <= 0xDFFF:
		m.RAM.WriteWRAM(addr-0xC000, v)
	case addr >= 0xE000 && addr <= 0xFDFF:
		m.RAM.WriteWRAM(addr-0xE000, v)
	case addr >= 0xFE00 && addr <= 0xFE9F:
		m.PPU.CPUWrite(addr, v)
	case addr >= 0xFEA0 && addr <= 0xFEFF:
		// forbidden region, writes ignored
	case addr == 0xFF00:
		if m.Joypad.WriteSelect(v) {
			m.RAM.RequestInterrupt(4)
		}
	case addr == 0xFF01:
		m.RAM.WriteSB(v)
	case addr == 0xFF02:
		m.RAM.WriteSC(v)
	case addr == 0xFF04:
		if m.Timer.WriteDIV()&timer.InterruptBit != 0 {
			m.RAM.RequestInterrupt(2)
		}
	case addr == 0xFF05:
		m.Timer.WriteTIMA(v)
	case addr == 0xFF06:
		m.Timer.WriteTMA(v)
	case addr == 0xFF07:
		if m.Timer.WriteTAC(v)&timer.InterruptBit != 0 {
			m.RAM.RequestInterrupt(2)
		}
	case addr == 0xFF0F:
		m.RAM.SetIF(v)
	case addr >= 0xFF10 && addr <= 0xFF3F:
		// audio: Non-goal, writes ignored
	case addr == 0xFF46:
		m.dmaOAM(v)
	case addr >= 0xFF40 && addr <= 0xFF4B:
		m.PPU.CPUWrite(addr, v)
	case addr == 0xFF50:
		m.RAM.WriteBootDisable(v)
	case addr >= 0xFF80 && addr <= 0xFFFE:
		m.RAM.WriteHRAM(addr-0xFF80, v)
	case addr == 0xFFFF:
		m.RAM.SetIE(v)
	}
}

// dmaOAM performs the 160-byte OAM DMA transfer triggered by a write to
// 0xFF46 as an instantaneous copy: the source region's timing effects on the
// bus are out of scope, matching the emulator's Non-goal on cycle-exact
// memory contention.
func (m *MMU) dmaOAM(v byte) {
	src := uint16(v) << 8
	for i := uint16(0); i < 0xA0; i++ {
		m.PPU.CPUWrite(0xFE00+i, m.Read(src+i))
	}
}

// Read16/Write16 are little-endian 16-bit helpers (low byte at addr). The
// CPU does not call them; it builds its 16-bit accesses from Read/Write.
func (m *MMU) Read16(addr uint16) uint16 {
	lo := m.Read(addr)
	hi := m.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (m *MMU) Write16(addr uint16, v uint16) {
	m.Write(addr, byte(v))
	m.Write(addr+1, byte(v>>8))
}

// Tick advances the timer and PPU by mcycles (n*4 dots for the PPU),
// forwarding any interrupts they raise into the shared IF register.
func (m *MMU) Tick(mcycles int) {
	if req := m.Timer.Tick(mcycles); req&timer.InterruptBit != 0 {
		m.RAM.RequestInterrupt(2)
	}
	m.PPU.Tick(mcycles * 4)
}
