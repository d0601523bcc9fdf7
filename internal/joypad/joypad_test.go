package joypad

import "testing"

func TestJoypad_DefaultReadAllOnes(t *testing.T) {
	j := New()
	if got := j.Read() & 0x0F; got != 0x0F {
		t.Fatalf("default lower nibble got %02x want 0F", got)
	}
}

func TestJoypad_DPadSelection(t *testing.T) {
	j := New()
	j.WriteSelect(0x20) // bit5=1, bit4=0 -> select D-Pad
	j.SetPressed(1<<uint(Right) | 1<<uint(Up))
	if got := j.Read() & 0x0F; got != 0x0A { // 1010b: Right,Up cleared
		t.Fatalf("D-Pad got %02x want 0A", got)
	}
}

func TestJoypad_ButtonSelection(t *testing.T) {
	j := New()
	j.WriteSelect(0x10) // bit5=0, bit4=1 -> select buttons
	j.SetPressed(1<<uint(A) | 1<<uint(Start))
	if got := j.Read() & 0x0F; got != 0x06 { // 0110b: A,Start cleared
		t.Fatalf("buttons got %02x want 06", got)
	}
}

func TestJoypad_FallingEdgeRequestsInterrupt(t *testing.T) {
	j := New()
	j.WriteSelect(0x20) // select D-Pad
	if edge := j.Press(Right); !edge {
		t.Fatalf("expected falling edge on first press")
	}
	if edge := j.Press(Up); !edge {
		t.Fatalf("expected falling edge pressing a second button")
	}
	if edge := j.Release(Right); edge {
		t.Fatalf("release should never itself produce a falling edge")
	}
}

func TestJoypad_UnselectedGroupReadsAllOnes(t *testing.T) {
	j := New()
	j.WriteSelect(0x30) // both groups deselected
	j.SetPressed(1 << uint(A))
	if got := j.Read() & 0x0F; got != 0x0F {
		t.Fatalf("unselected groups got %02x want 0F", got)
	}
}
