package main

import (
	"github.com/connor-lennox/rgbl/internal/joypad"
	"github.com/connor-lennox/rgbl/internal/lcd"
	"github.com/connor-lennox/rgbl/internal/machine"
	"github.com/hajimehoshi/ebiten/v2"
)

// shadePalette maps the core's 2-bit shade indices to the classic DMG
// four-tone green ramp, darkest last.
var shadePalette = [4][3]byte{
	{0x9B, 0xBC, 0x0F},
	{0x8B, 0xAC, 0x0F},
	{0x30, 0x62, 0x30},
	{0x0F, 0x38, 0x0F},
}

// EbitenApp drives the Machine inside ebiten's game loop: one Update call
// runs exactly one emulated frame, Draw blits the last presented framebuffer.
type EbitenApp struct {
	m     *machine.Machine
	tex   *ebiten.Image
	scale int
}

func NewEbitenApp(m *machine.Machine, scale int) *EbitenApp {
	a := &EbitenApp{m: m, scale: scale}
	m.SetPresenter(a)
	m.SetInputSource(a)
	return a
}

// Present satisfies machine.Presenter and does nothing: Draw always reads
// the Machine's live framebuffer.
func (a *EbitenApp) Present(fb *lcd.Framebuffer) {}

// Poll satisfies machine.InputSource, reading the keyboard each frame.
func (a *EbitenApp) Poll() joypad.ButtonSet {
	var s joypad.ButtonSet
	press := func(b joypad.Button, down bool) {
		if down {
			s |= 1 << uint(b)
		}
	}
	press(joypad.Right, ebiten.IsKeyPressed(ebiten.KeyRight))
	press(joypad.Left, ebiten.IsKeyPressed(ebiten.KeyLeft))
	press(joypad.Up, ebiten.IsKeyPressed(ebiten.KeyUp))
	press(joypad.Down, ebiten.IsKeyPressed(ebiten.KeyDown))
	press(joypad.A, ebiten.IsKeyPressed(ebiten.KeyZ))
	press(joypad.B, ebiten.IsKeyPressed(ebiten.KeyX))
	press(joypad.Start, ebiten.IsKeyPressed(ebiten.KeyEnter))
	press(joypad.Select, ebiten.IsKeyPressed(ebiten.KeyShiftRight))
	return s
}

func (a *EbitenApp) Update() error {
	return a.m.StepFrame()
}

func (a *EbitenApp) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(lcd.Width, lcd.Height)
	}
	pix := make([]byte, lcd.Width*lcd.Height*4)
	fb := a.m.FB
	for y := 0; y < lcd.Height; y++ {
		for x := 0; x < lcd.Width; x++ {
			c := shadePalette[fb.At(x, y)&0x03]
			i := (y*lcd.Width + x) * 4
			pix[i+0] = c[0]
			pix[i+1] = c[1]
			pix[i+2] = c[2]
			pix[i+3] = 0xFF
		}
	}
	a.tex.WritePixels(pix)
	screen.DrawImage(a.tex, nil)
}

func (a *EbitenApp) Layout(outsideWidth, outsideHeight int) (int, int) {
	return lcd.Width, lcd.Height
}

func (a *EbitenApp) Run(title string) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(lcd.Width*a.scale, lcd.Height*a.scale)
	return ebiten.RunGame(a)
}
