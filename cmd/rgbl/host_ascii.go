package main

import (
	"fmt"
	"os"
	"time"

	"github.com/connor-lennox/rgbl/internal/lcd"
	"github.com/connor-lennox/rgbl/internal/machine"
	"golang.org/x/term"
)

// asciiRamp renders shade indices darkest-to-lightest as block characters,
// for terminals that can't show the real palette.
var asciiRamp = [4]rune{'█', '▓', '▒', ' '}

// ASCIIHost is a Presenter that redraws the framebuffer as text in the
// current terminal, downsampled to fit whatever size the terminal reports.
type ASCIIHost struct {
	fps int
}

func NewASCIIHost() *ASCIIHost { return &ASCIIHost{fps: 30} }

func (h *ASCIIHost) Present(fb *lcd.Framebuffer) {
	cols, rows := lcd.Width/2, lcd.Height/4
	if w, r, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && r > 0 {
		if w-2 < cols {
			cols = w - 2
		}
		if r-2 < rows {
			rows = r - 2
		}
	}
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	fmt.Print("\033[H\033[2J")
	for ry := 0; ry < rows; ry++ {
		srcY := ry * lcd.Height / rows
		for rx := 0; rx < cols; rx++ {
			srcX := rx * lcd.Width / cols
			fmt.Print(string(asciiRamp[fb.At(srcX, srcY)&0x03]))
		}
		fmt.Print("\n")
	}
}

// RunASCII drives m at roughly the host's target frame rate until the
// process is interrupted; intended for quick visual smoke-checks of a ROM
// without an ebiten window.
func RunASCII(m *machine.Machine, h *ASCIIHost) error {
	m.SetPresenter(h)
	frameDur := time.Second / time.Duration(h.fps)
	for {
		start := time.Now()
		if err := m.StepFrame(); err != nil {
			return err
		}
		if d := frameDur - time.Since(start); d > 0 {
			time.Sleep(d)
		}
	}
}
