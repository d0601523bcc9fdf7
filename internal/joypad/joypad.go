// Package joypad models the JOYP (0xFF00) matrix: eight buttons projected
// through two selectable groups, active-low, with edge-triggered interrupts.
package joypad

// Button identifies one of the eight physical inputs.
type Button int

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// ButtonSet is a bitmask of pressed buttons, indexed by Button.
type ButtonSet uint8

func (s ButtonSet) Pressed(b Button) bool { return s&(1<<uint(b)) != 0 }

// Joypad owns the pressed-button set and the selection bits last written to
// JOYP. It does not own the IF register directly; SetPressed, Press, Release
// and WriteSelect report whether a 1->0 transition occurred on the low nibble so the caller (MMU)
// can raise the Joypad interrupt bit.
type Joypad struct {
	pressed     ButtonSet
	selectBits  byte // bits 5..4 as last written (0x30 mask)
	lastLowerNibble byte
}

// New returns a Joypad with both select bits at 0 (both groups selected) and
// nothing pressed, so the low nibble reads all ones.
func New() *Joypad {
	j := &Joypad{lastLowerNibble: 0x0F}
	return j
}

// SetPressed replaces the full pressed-button set (host calls this once per
// poll). It returns true if a 1->0 transition occurred on the selected
// group(s), i.e. the Joypad interrupt (IF bit 4) should be requested.
func (j *Joypad) SetPressed(s ButtonSet) bool {
	j.pressed = s
	return j.recompute()
}

// Press/Release mutate one button at a time; each returns true if that
// change produced a falling edge on JOYP's low nibble.
func (j *Joypad) Press(b Button) bool {
	j.pressed |= 1 << uint(b)
	return j.recompute()
}

func (j *Joypad) Release(b Button) bool {
	j.pressed &^= 1 << uint(b)
	return j.recompute()
}

// WriteSelect handles a CPU write to 0xFF00: only bits 5 and 4 are latched.
// Returns true if the new selection produces a falling edge against the
// buttons already held down.
func (j *Joypad) WriteSelect(v byte) bool {
	j.selectBits = v & 0x30
	return j.recompute()
}

// Read assembles the full JOYP byte: bits 7-6 read as 1, bits 5-4 reflect
// the last-written selection, bits 3-0 are the active-low group result.
func (j *Joypad) Read() byte {
	return 0xC0 | j.selectBits | j.lowerNibble()
}

func (j *Joypad) lowerNibble() byte {
	n := byte(0x0F)
	if j.selectBits&0x10 == 0 { // P14 low selects D-Pad
		if j.pressed.Pressed(Right) {
			n &^= 0x01
		}
		if j.pressed.Pressed(Left) {
			n &^= 0x02
		}
		if j.pressed.Pressed(Up) {
			n &^= 0x04
		}
		if j.pressed.Pressed(Down) {
			n &^= 0x08
		}
	}
	if j.selectBits&0x20 == 0 { // P15 low selects buttons
		if j.pressed.Pressed(A) {
			n &^= 0x01
		}
		if j.pressed.Pressed(B) {
			n &^= 0x02
		}
		if j.pressed.Pressed(Select) {
			n &^= 0x04
		}
		if j.pressed.Pressed(Start) {
			n &^= 0x08
		}
	}
	return n
}

func (j *Joypad) recompute() bool {
	n := j.lowerNibble()
	fallingEdge := j.lastLowerNibble&^n != 0
	j.lastLowerNibble = n
	return fallingEdge
}
