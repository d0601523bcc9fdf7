package cpu

import "testing"

// flatBus is a plain 64KiB address space, enough to exercise the CPU in
// isolation without pulling in cartridge/PPU/timer wiring.
type flatBus struct {
	mem [0x10000]byte
}

func (b *flatBus) Read(addr uint16) byte     { return b.mem[addr] }
func (b *flatBus) Write(addr uint16, v byte) { b.mem[addr] = v }

func newCPUWithROM(code []byte) (*CPU, *flatBus) {
	b := &flatBus{}
	copy(b.mem[:], code)
	return New(b), b
}

func mustStep(t *testing.T, c *CPU) int {
	t.Helper()
	cyc, err := c.Step()
	if err != nil {
		t.Fatalf("Step() error: %v", err)
	}
	return cyc
}

func TestCPU_NopAndPC(t *testing.T) {
	c, _ := newCPUWithROM([]byte{0x00}) // NOP
	if cyc := mustStep(t, c); cyc != 1 {
		t.Fatalf("NOP mcycles got %d want 1", cyc)
	}
	if c.PC != 1 {
		t.Fatalf("PC after NOP got %#04x want 0x0001", c.PC)
	}
}

func TestCPU_LD_A_d8_And_XOR_A(t *testing.T) {
	c, _ := newCPUWithROM([]byte{0x3E, 0x12, 0xAF}) // LD A,0x12; XOR A
	mustStep(t, c)
	if c.A != 0x12 {
		t.Fatalf("A after LD got %02x want 12", c.A)
	}
	mustStep(t, c)
	if c.A != 0x00 {
		t.Fatalf("A after XOR got %02x want 00", c.A)
	}
	if c.F&0x80 == 0 { // Z flag
		t.Fatalf("Z flag not set after XOR A")
	}
}

func TestCPU_LD_a16_A_and_LD_A_a16(t *testing.T) {
	prog := []byte{0x3E, 0x77, 0xEA, 0x00, 0xC0, 0x3E, 0x00, 0xFA, 0x00, 0xC0}
	c, b := newCPUWithROM(prog)
	mustStep(t, c) // LD A,77
	mustStep(t, c) // LD (C000),A
	if a := b.Read(0xC000); a != 0x77 {
		t.Fatalf("mem at C000 got %02x want 77", a)
	}
	mustStep(t, c) // LD A,00
	mustStep(t, c) // LD A,(C000)
	if c.A != 0x77 {
		t.Fatalf("A after LD A,(C000) got %02x want 77", c.A)
	}
}

func TestCPU_JP_and_JR(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0000] = 0xC3
	rom[0x0001] = 0x10
	rom[0x0002] = 0x00
	rom[0x0010] = 0x18 // JR -2 (loops on itself)
	rom[0x0011] = 0xFE
	c, _ := newCPUWithROM(rom)

	cyc := mustStep(t, c) // JP
	if cyc != 4 || c.PC != 0x0010 {
		t.Fatalf("JP mcycles=%d PC=%#04x want mcycles=4 PC=0x0010", cyc, c.PC)
	}
	pcBefore := c.PC
	mustStep(t, c) // JR -2
	if c.PC != pcBefore {
		t.Fatalf("JR -2 PC got %#04x want %#04x", c.PC, pcBefore)
	}
}

func TestCPU_INC_B_Flags(t *testing.T) {
	c, _ := newCPUWithROM([]byte{0x04, 0x04}) // INC B twice
	c.B = 0x0F
	c.F = 0x10 // carry set initially
	mustStep(t, c)
	if c.B != 0x10 {
		t.Fatalf("INC B result got %02x want 10", c.B)
	}
	if c.F&0x20 == 0 { // H set
		t.Fatalf("INC B should set H flag")
	}
	if c.F&0x10 == 0 { // C preserved
		t.Fatalf("INC B should preserve C flag")
	}
	c.B = 0xFF
	mustStep(t, c)
	if c.B != 0x00 || c.F&0x80 == 0 { // Z set
		t.Fatalf("INC B to 0 should set Z flag, B=%02x, F=%02x", c.B, c.F)
	}
}

func TestCPU_LD_16bit_and_LDH(t *testing.T) {
	prog := []byte{
		0x21, 0x00, 0xC0, // LD HL, C000
		0x36, 0x5A, // LD (HL), 5A
		0x3E, 0x00, // LD A, 00
		0xF0, 0x00, // LD A, (FF00+0)
		0xE0, 0x01, // LD (FF00+1), A
	}
	c, b := newCPUWithROM(prog)
	b.Write(0xFF00, 0xA7)

	for i := 0; i < 5; i++ {
		mustStep(t, c)
	}
	if v := b.Read(0xC000); v != 0x5A {
		t.Fatalf("mem C000 got %02x want 5A", v)
	}
	if v := b.Read(0xFF01); v != c.A {
		t.Fatalf("LDH (FF00+1),A expected write to FF01 with A=%02x got %02x", c.A, v)
	}
}

func TestCPU_CALL_RET(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0000] = 0xCD
	rom[0x0001] = 0x05
	rom[0x0002] = 0x00
	rom[0x0005] = 0xC9 // RET
	c, _ := newCPUWithROM(rom)

	mustStep(t, c) // CALL
	if c.PC != 0x0005 {
		t.Fatalf("PC after CALL got %04x want 0005", c.PC)
	}
	retCycles := mustStep(t, c)
	if c.PC != 0x0003 || retCycles != 4 {
		t.Fatalf("RET did not return to 0003; PC=%04x cyc=%d", c.PC, retCycles)
	}
}

func TestCPU_UnsupportedOpcodeIsFatal(t *testing.T) {
	c, _ := newCPUWithROM([]byte{0xD3}) // D3 is unassigned on the SM83
	if _, err := c.Step(); err == nil {
		t.Fatalf("expected ErrUnsupportedOpcode, got nil")
	}
}

func TestCPU_CBBitAndSet(t *testing.T) {
	prog := []byte{
		0xCB, 0x47, // BIT 0,A
		0xCB, 0xC7, // SET 0,A
		0xCB, 0x87, // RES 0,A
	}
	c, _ := newCPUWithROM(prog)
	c.A = 0x00
	c.F = 0
	mustStep(t, c) // BIT 0,A -> A is 0, bit 0 clear -> Z set
	if c.F&flagZ == 0 {
		t.Fatalf("BIT 0,A on zero register should set Z")
	}
	mustStep(t, c) // SET 0,A
	if c.A != 0x01 {
		t.Fatalf("SET 0,A got %02x want 01", c.A)
	}
	mustStep(t, c) // RES 0,A
	if c.A != 0x00 {
		t.Fatalf("RES 0,A got %02x want 00", c.A)
	}
}

func TestCPU_EIDelaysEnableByOneInstruction(t *testing.T) {
	c, _ := newCPUWithROM([]byte{0xFB, 0x00, 0x00}) // EI; NOP; NOP
	mustStep(t, c)                                  // EI
	if c.IME {
		t.Fatalf("IME should not be set immediately after EI")
	}
	mustStep(t, c) // NOP (the delayed instruction)
	if !c.IME {
		t.Fatalf("IME should be set after the instruction following EI")
	}
}

// TestCPU_BoundaryScenarios exercises the four literal boundary cases the
// designated CPU properties are built around: ADD A,B half-carry,
// SUB A,B full borrow, ADD HL,BC half-carry, and RLCA's wrap-through-carry.
func TestCPU_BoundaryScenarios(t *testing.T) {
	cases := []struct {
		name    string
		opcode  byte
		setup   func(c *CPU)
		check   func(t *testing.T, c *CPU)
	}{
		{
			name:   "ADD A,B half-carry 0x0F+0x01",
			opcode: 0x80, // ADD A,B
			setup: func(c *CPU) {
				c.A = 0x0F
				c.B = 0x01
			},
			check: func(t *testing.T, c *CPU) {
				if c.A != 0x10 {
					t.Fatalf("A got %#02x want 0x10", c.A)
				}
				if c.F&flagH == 0 {
					t.Fatalf("ADD A,B 0x0F+0x01 should set H")
				}
				if c.F&flagZ != 0 {
					t.Fatalf("ADD A,B 0x0F+0x01 should not set Z")
				}
				if c.F&flagC != 0 {
					t.Fatalf("ADD A,B 0x0F+0x01 should not set C")
				}
				if c.F&flagN != 0 {
					t.Fatalf("ADD A,B should clear N")
				}
			},
		},
		{
			name:   "SUB A,B full borrow 0x00-0x01",
			opcode: 0x90, // SUB A,B
			setup: func(c *CPU) {
				c.A = 0x00
				c.B = 0x01
			},
			check: func(t *testing.T, c *CPU) {
				if c.A != 0xFF {
					t.Fatalf("A got %#02x want 0xFF", c.A)
				}
				if c.F&flagC == 0 {
					t.Fatalf("SUB A,B 0x00-0x01 should set C (borrow)")
				}
				if c.F&flagH == 0 {
					t.Fatalf("SUB A,B 0x00-0x01 should set H (borrow)")
				}
				if c.F&flagN == 0 {
					t.Fatalf("SUB A,B should set N")
				}
				if c.F&flagZ != 0 {
					t.Fatalf("SUB A,B 0x00-0x01 should not set Z")
				}
			},
		},
		{
			name:   "ADD HL,BC half-carry 0x0FFF+0x0001",
			opcode: 0x09, // ADD HL,BC
			setup: func(c *CPU) {
				c.setHL(0x0FFF)
				c.setBC(0x0001)
			},
			check: func(t *testing.T, c *CPU) {
				if hl := c.getHL(); hl != 0x1000 {
					t.Fatalf("HL got %#04x want 0x1000", hl)
				}
				if c.F&flagH == 0 {
					t.Fatalf("ADD HL,BC 0x0FFF+0x0001 should set H")
				}
				if c.F&flagC != 0 {
					t.Fatalf("ADD HL,BC 0x0FFF+0x0001 should not set C")
				}
				if c.F&flagN != 0 {
					t.Fatalf("ADD HL,BC should clear N")
				}
			},
		},
		{
			name:   "RLCA 0x85",
			opcode: 0x07, // RLCA
			setup: func(c *CPU) {
				c.A = 0x85
				c.F = flagZ // Z set beforehand; RLCA must clear it regardless
			},
			check: func(t *testing.T, c *CPU) {
				if c.A != 0x0B {
					t.Fatalf("A got %#02x want 0x0B", c.A)
				}
				if c.F&flagC == 0 {
					t.Fatalf("RLCA 0x85 should set C from bit 7")
				}
				if c.F&flagZ != 0 {
					t.Fatalf("RLCA always clears Z, even if it was set")
				}
				if c.F&(flagN|flagH) != 0 {
					t.Fatalf("RLCA should clear N and H")
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newCPUWithROM([]byte{tc.opcode})
			tc.setup(c)
			mustStep(t, c)
			tc.check(t, c)
		})
	}
}

func TestCPU_HALT_WakesOnPendingInterruptWithoutIME(t *testing.T) {
	c, b := newCPUWithROM([]byte{0x76, 0x00}) // HALT; NOP
	mustStep(t, c)                            // HALT
	b.Write(0xFFFF, 0x01)                     // IE: VBlank enabled
	b.Write(0xFF0F, 0x01)                     // IF: VBlank pending
	cyc := mustStep(t, c)
	if cyc != 1 {
		t.Fatalf("HALT wake mcycles got %d want 1", cyc)
	}
}
