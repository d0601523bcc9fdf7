// Package machine assembles the CPU, MMU, timer, PPU, joypad, and cartridge
// into a runnable "motherboard": one Step() drives exactly one CPU
// instruction (or interrupt dispatch, or HALT idle) and its corresponding
// timer/PPU advance, in the fixed order real hardware imposes.
package machine

import (
	"github.com/connor-lennox/rgbl/internal/cart"
	"github.com/connor-lennox/rgbl/internal/cpu"
	"github.com/connor-lennox/rgbl/internal/joypad"
	"github.com/connor-lennox/rgbl/internal/lcd"
	"github.com/connor-lennox/rgbl/internal/mmu"
	"github.com/connor-lennox/rgbl/internal/ppu"
	"github.com/connor-lennox/rgbl/internal/ram"
	"github.com/connor-lennox/rgbl/internal/timer"
)

// Presenter receives a completed frame. Called once per VBlank, on the
// 143->144 LY transition.
type Presenter interface {
	Present(fb *lcd.Framebuffer)
}

// InputSource is polled once per Step for the live button state.
type InputSource interface {
	Poll() joypad.ButtonSet
}

// SerialSink receives each byte written out over the serial port (0xFF01
// with bit 7 of 0xFF02 set), byte at a time.
type SerialSink interface {
	SerialOut(b byte)
}

// serialWriter adapts a SerialSink to the io.Writer ram.RAM expects.
type serialWriter struct{ sink SerialSink }

func (w serialWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		w.sink.SerialOut(b)
	}
	return len(p), nil
}

// Machine owns every core component for one running cartridge.
type Machine struct {
	CPU    *cpu.CPU
	MMU    *mmu.MMU
	PPU    *ppu.PPU
	RAM    *ram.RAM
	Timer  *timer.Timer
	Joypad *joypad.Joypad
	Cart   cart.Cartridge

	FB *lcd.Framebuffer

	presenter Presenter
	input     InputSource

	prevLY byte
}

// New constructs a Machine around a parsed cartridge. The boot ROM overlay
// is left disabled; callers that want one call SetBootROM before the first
// Step, otherwise ResetNoBoot should be called to reach a runnable state.
func New(c cart.Cartridge) *Machine {
	m := &Machine{
		RAM:    ram.New(),
		Timer:  timer.New(),
		Joypad: joypad.New(),
		Cart:   c,
		FB:     &lcd.Framebuffer{},
	}
	m.PPU = ppu.New(func(bit int) { m.RAM.RequestInterrupt(uint(bit)) })
	m.PPU.SetFramebuffer(m.FB)
	m.MMU = mmu.New(c, m.PPU, m.RAM, m.Joypad, m.Timer)
	m.CPU = cpu.New(m.MMU)
	return m
}

// SetPresenter installs the host's frame sink. May be nil (headless runs).
func (m *Machine) SetPresenter(p Presenter) { m.presenter = p }

// SetInputSource installs the host's button poller. May be nil (no input).
func (m *Machine) SetInputSource(in InputSource) { m.input = in }

// SetSerialSink installs the host's serial byte sink (used by test-ROM
// runners to detect pass/fail banners).
func (m *Machine) SetSerialSink(sink SerialSink) {
	if sink == nil {
		m.RAM.SetSerialSink(nil)
		return
	}
	m.RAM.SetSerialSink(serialWriter{sink: sink})
}

// SetBootROM installs a boot ROM image; the CPU starts executing from 0x0000
// instead of jumping straight to the post-boot register state.
func (m *Machine) SetBootROM(data []byte) {
	m.RAM.SetBootROM(data)
	m.CPU.SetPC(0x0000)
}

// ResetNoBoot brings the CPU to the documented post-boot register state,
// skipping the boot ROM entirely (the common path when no boot ROM image is
// supplied).
func (m *Machine) ResetNoBoot() {
	m.CPU.ResetNoBoot()
	m.CPU.SetPC(0x0100)
}

// Step runs exactly one CPU step (instruction, interrupt dispatch, or one
// mcycle of HALT idle) and advances every other component by the same
// number of mcycles, in the fixed order: joypad sample, CPU step, timer
// tick, PPU tick. Returns the mcycles elapsed and any fatal CPU error
// (ErrUnsupportedOpcode).
func (m *Machine) Step() (int, error) {
	if m.input != nil {
		if m.Joypad.SetPressed(m.input.Poll()) {
			m.RAM.RequestInterrupt(4)
		}
	}

	mcycles, err := m.CPU.Step()
	if err != nil {
		return mcycles, err
	}

	m.MMU.Tick(mcycles)

	if m.prevLY != 144 && m.PPU.CPURead(0xFF44) == 144 {
		if m.presenter != nil {
			m.presenter.Present(m.FB)
		}
	}
	m.prevLY = m.PPU.CPURead(0xFF44)

	return mcycles, nil
}

// StepFrame runs Step repeatedly until one full frame has been presented
// (the LY 143->144 transition), or a generous Step budget is exhausted, which
// only happens if the LCD is off and no VBlank transition can occur.
func (m *Machine) StepFrame() error {
	const maxStepsPerFrame = 1 << 18
	for i := 0; i < maxStepsPerFrame; i++ {
		before := m.prevLY
		if _, err := m.Step(); err != nil {
			return err
		}
		if before != 144 && m.prevLY == 144 {
			return nil
		}
	}
	return nil
}
