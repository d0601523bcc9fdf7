// Package ppu renders the background, window, and sprite layers into a
// 160x144 framebuffer of 2-bit shade indices, driven dot-by-dot from the
// machine's tick loop.
package ppu

import "github.com/connor-lennox/rgbl/internal/lcd"

// InterruptRequester is called with an IF bit number (0: VBlank, 1: STAT)
// whenever the PPU wants to raise one.
type InterruptRequester func(bit int)

// LineRegs captures the window-rendering state latched when a given
// scanline entered Drawing mode, so callers (and tests) can inspect it
// independently of the PPU's live, currently-being-written registers.
type LineRegs struct {
	WinVisible bool
	WinLine    byte
}

// PPU models VRAM/OAM, LCDC/STAT/scroll/palette registers, and the
// OAMScan/Drawing/HBlank/VBlank dot-based mode timing. Scanlines are
// composited (BG + window + sprites) once per line, at the OAMScan-to-
// Drawing transition (dot 80), and written into the shared framebuffer.
// Composition happens at Drawing's entry rather than its exit so that
// register/VRAM/OAM writes issued during the Drawing window are not
// baked into the line they arrive on.
type PPU struct {
	vram [0x2000]byte // 0x8000-0x9FFF
	oam  [0xA0]byte   // 0xFE00-0xFE9F

	lcdc byte // FF40
	stat byte // FF41 (mode bits 0-1, coincidence bit2, enables bits3-6)
	scy  byte // FF42
	scx  byte // FF43
	ly   byte // FF44
	lyc  byte // FF45
	bgp  byte // FF47
	obp0 byte // FF48
	obp1 byte // FF49
	wy   byte // FF4A
	wx   byte // FF4B

	dot int // dots within the current line [0..455]

	winLineCounter byte
	lineRegs       [lcd.Height]LineRegs

	fb  *lcd.Framebuffer
	req InterruptRequester
}

func New(req InterruptRequester) *PPU { return &PPU{req: req} }

// SetFramebuffer installs the buffer completed scanlines are written into.
func (p *PPU) SetFramebuffer(fb *lcd.Framebuffer) { p.fb = fb }

// Read implements VRAMReader for the PPU's own scanline renderer: internal
// rendering always sees live VRAM, independent of any CPU-facing access
// rules (this core does not model CPU/PPU memory contention).
func (p *PPU) Read(addr uint16) byte {
	if addr >= 0x8000 && addr <= 0x9FFF {
		return p.vram[addr-0x8000]
	}
	return 0xFF
}

// CPURead returns bytes for VRAM, OAM, and PPU IO registers.
func (p *PPU) CPURead(addr uint16) byte {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		return p.vram[addr-0x8000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		return p.oam[addr-0xFE00]
	case addr == 0xFF40:
		return p.lcdc
	case addr == 0xFF41:
		return 0x80 | (p.stat & 0x7F)
	case addr == 0xFF42:
		return p.scy
	case addr == 0xFF43:
		return p.scx
	case addr == 0xFF44:
		return p.ly
	case addr == 0xFF45:
		return p.lyc
	case addr == 0xFF47:
		return p.bgp
	case addr == 0xFF48:
		return p.obp0
	case addr == 0xFF49:
		return p.obp1
	case addr == 0xFF4A:
		return p.wy
	case addr == 0xFF4B:
		return p.wx
	default:
		return 0xFF
	}
}

// CPUWrite handles writes to VRAM, OAM, and PPU IO registers.
func (p *PPU) CPUWrite(addr uint16, value byte) {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		p.vram[addr-0x8000] = value
	case addr >= 0xFE00 && addr <= 0xFE9F:
		p.oam[addr-0xFE00] = value
	case addr == 0xFF40:
		prev := p.lcdc
		p.lcdc = value
		if prev&0x80 != 0 && value&0x80 == 0 {
			p.ly = 0
			p.dot = 0
			p.setMode(0)
			p.updateLYC()
		} else if prev&0x80 == 0 && value&0x80 != 0 {
			p.ly = 0
			p.dot = 0
			p.winLineCounter = 0
			p.setMode(2)
			p.updateLYC()
		}
	case addr == 0xFF41:
		p.stat = (p.stat & 0x07) | (value & 0x78)
	case addr == 0xFF42:
		p.scy = value
	case addr == 0xFF43:
		p.scx = value
	case addr == 0xFF44:
		p.ly = 0
		p.dot = 0
		p.updateLYC()
		if p.lcdc&0x80 != 0 {
			p.setMode(2)
		}
	case addr == 0xFF45:
		p.lyc = value
		p.updateLYC()
	case addr == 0xFF47:
		p.bgp = value
	case addr == 0xFF48:
		p.obp0 = value
	case addr == 0xFF49:
		p.obp1 = value
	case addr == 0xFF4A:
		p.wy = value
	case addr == 0xFF4B:
		p.wx = value
	}
}

// LineRegs returns the window state captured when scanline ly entered
// Drawing mode this frame (zero value if it hasn't happened yet).
func (p *PPU) LineRegs(ly int) LineRegs {
	if ly < 0 || ly >= lcd.Height {
		return LineRegs{}
	}
	return p.lineRegs[ly]
}

// Tick advances PPU state by the given number of dots.
func (p *PPU) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		if p.lcdc&0x80 == 0 {
			continue
		}
		p.dot++

		var mode byte
		if p.ly >= 144 {
			mode = 1
		} else {
			switch {
			case p.dot < 80:
				mode = 2
			case p.dot < 80+172:
				mode = 3
			default:
				mode = 0
			}
		}
		if mode == 3 && p.dot == 80 {
			p.captureLine(p.ly)
			p.renderScanline(p.ly)
		}
		p.setMode(mode)

		if p.dot >= 456 {
			p.dot = 0
			p.ly++
			if p.ly == 144 {
				if p.req != nil {
					p.req(0) // VBlank IF
				}
				if p.stat&(1<<4) != 0 && p.req != nil {
					p.req(1) // STAT VBlank source
				}
			} else if p.ly > 153 {
				p.ly = 0
				p.winLineCounter = 0
			}
			p.updateLYC()
			if p.ly >= 144 {
				p.setMode(1)
			} else {
				p.setMode(2)
			}
		}
	}
}

// captureLine latches whether the window is visible on scanline ly, and
// which window-internal line it should draw, advancing the persistent
// window line counter only on lines where the window actually renders.
func (p *PPU) captureLine(ly byte) {
	visible := p.lcdc&0x20 != 0 && p.wx <= 166 && ly >= p.wy
	lr := LineRegs{}
	if visible {
		lr.WinVisible = true
		lr.WinLine = p.winLineCounter
		p.winLineCounter++
	}
	if int(ly) < lcd.Height {
		p.lineRegs[ly] = lr
	}
}

// renderScanline composites and writes scanline ly. Called at the moment
// ly enters Drawing (dot 80), before any of that line's Drawing-window
// register writes can land.
func (p *PPU) renderScanline(ly byte) {
	var bgci [160]byte
	if p.lcdc&0x01 != 0 {
		mapBase := uint16(0x9800)
		if p.lcdc&0x08 != 0 {
			mapBase = 0x9C00
		}
		tileData8000 := p.lcdc&0x10 != 0
		bgci = RenderBGScanlineUsingFetcher(p, mapBase, tileData8000, p.scx, p.scy, ly)
	}

	lr := p.LineRegs(int(ly))
	if p.lcdc&0x20 != 0 && lr.WinVisible {
		mapBase := uint16(0x9800)
		if p.lcdc&0x40 != 0 {
			mapBase = 0x9C00
		}
		tileData8000 := p.lcdc&0x10 != 0
		winXStart := int(p.wx) - 7
		winPixels := RenderWindowScanlineUsingFetcher(p, mapBase, tileData8000, winXStart, lr.WinLine)
		start := winXStart
		if start < 0 {
			start = 0
		}
		for x := start; x < 160; x++ {
			bgci[x] = winPixels[x]
		}
	}

	var shaded [160]byte
	for x := range shaded {
		shaded[x] = applyPalette(p.bgp, bgci[x])
	}

	if p.lcdc&0x02 != 0 {
		tall := p.lcdc&0x04 != 0
		sprites := p.scanSpritesForLine(ly, tall)
		ci, pal, has := composeSpriteLine(p, sprites, ly, bgci, tall)
		for x := 0; x < 160; x++ {
			// ci 0 on a claimed pixel means it is hidden behind BG/window.
			if !has[x] || ci[x] == 0 {
				continue
			}
			palReg := p.obp0
			if pal[x] == 1 {
				palReg = p.obp1
			}
			shaded[x] = applyPalette(palReg, ci[x])
		}
	}

	if p.fb != nil {
		p.fb.WriteLine(int(ly), shaded)
	}
}

func applyPalette(pal byte, ci byte) byte {
	return (pal >> (ci * 2)) & 0x03
}

func (p *PPU) setMode(mode byte) {
	prev := p.stat & 0x03
	if prev == mode {
		return
	}
	p.stat = (p.stat &^ 0x03) | (mode & 0x03)
	switch mode {
	case 0:
		if p.stat&(1<<3) != 0 && p.req != nil {
			p.req(1)
		}
	case 2:
		if p.stat&(1<<5) != 0 && p.req != nil {
			p.req(1)
		}
	}
}

func (p *PPU) updateLYC() {
	if p.ly == p.lyc {
		p.stat |= 1 << 2
		if p.stat&(1<<6) != 0 && p.req != nil {
			p.req(1)
		}
	} else {
		p.stat &^= 1 << 2
	}
}

func (p *PPU) BGP() byte  { return p.bgp }
func (p *PPU) OBP0() byte { return p.obp0 }
func (p *PPU) OBP1() byte { return p.obp1 }
func (p *PPU) LCDC() byte { return p.lcdc }
func (p *PPU) SCY() byte  { return p.scy }
func (p *PPU) SCX() byte  { return p.scx }
func (p *PPU) WY() byte   { return p.wy }
func (p *PPU) WX() byte   { return p.wx }
