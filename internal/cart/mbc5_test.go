package cart

import "testing"

func TestMBC5_ROMBanking_WideBankNumber(t *testing.T) {
	rom := make([]byte, 264*0x4000) // enough banks to exercise the 9th bit
	rom[0x4000] = 0x01
	rom[260*0x4000] = 0xAA
	m := NewMBC5(rom, 0)

	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("default bank1 read got %02X want 01", got)
	}

	m.Write(0x2000, 0x04) // low 8 bits = 4
	m.Write(0x3000, 0x01) // bit 8 set -> bank 0x104 = 260
	if got := m.Read(0x4000); got != 0xAA {
		t.Fatalf("bank260 read got %02X want AA", got)
	}

	// Bank 0 is selectable in the switchable window (no zero-remap).
	m.Write(0x2000, 0x00)
	m.Write(0x3000, 0x00)
	if got := m.Read(0x4000); got != rom[0] {
		t.Fatalf("bank0 read got %02X want %02X", got, rom[0])
	}
}

func TestMBC5_RAMBanking(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := NewMBC5(rom, 16*0x2000)

	m.Write(0x0000, 0x0A) // enable RAM
	m.Write(0x4000, 0x0F) // select RAM bank 15
	m.Write(0xA000, 0x7B)
	if got := m.Read(0xA000); got != 0x7B {
		t.Fatalf("RAM bank15 RW failed: got %02X", got)
	}

	m.Write(0x4000, 0x00)
	if got := m.Read(0xA000); got == 0x7B {
		t.Fatalf("RAM bank0 unexpectedly aliases bank15's value")
	}
}

func TestMBC5_RAMDisabled_ReadsOpenBus(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := NewMBC5(rom, 0x2000)
	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read got %02X want FF", got)
	}
}

func TestMBC5_SaveLoadRAM(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := NewMBC5(rom, 0x2000)
	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0x55)

	data := m.SaveRAM()
	n := NewMBC5(rom, 0x2000)
	n.LoadRAM(data)
	n.Write(0x0000, 0x0A)
	if got := n.Read(0xA000); got != 0x55 {
		t.Fatalf("reloaded RAM got %02X want 55", got)
	}
}
