// Command rgbl runs a Game Boy ROM against the rgbl core, either in an
// ebiten window, as ASCII art in the current terminal, or headlessly (for
// CI-style test-ROM runs and PNG snapshotting).
package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/connor-lennox/rgbl/internal/cart"
	"github.com/connor-lennox/rgbl/internal/machine"
)

func main() {
	romPath := flag.String("rom", "", "path to a ROM (.gb)")
	bootPath := flag.String("bootrom", "", "optional DMG boot ROM")
	scale := flag.Int("scale", 3, "window scale (ebiten host) and -outpng snapshot scale")
	title := flag.String("title", "rgbl", "window title")
	ascii := flag.Bool("ascii", false, "render to the terminal instead of a window")
	headless := flag.Bool("headless", false, "run without any presenter")
	frames := flag.Int("frames", 300, "frames to run in -headless mode")
	outPNG := flag.String("outpng", "", "write the final framebuffer to this PNG path (headless only)")
	saveRAM := flag.Bool("save", true, "persist battery RAM to <rom>.sav across runs")
	testROM := flag.Bool("testrom", false, "headless blargg-style pass/fail detection over serial; exit 0/1")
	timeout := flag.Duration("timeout", 0, "wall-clock timeout for -testrom (0 disables)")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("-rom is required")
	}
	rom, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("read rom: %v", err)
	}
	if h, err := cart.ParseHeader(rom); err == nil {
		log.Printf("ROM %q: type=%s banks=%d ram=%dB", h.Title, h.CartTypeStr, h.ROMBanks, h.RAMSizeBytes)
	}

	c, err := cart.New(rom)
	if err != nil {
		log.Fatalf("unsupported cartridge: %v", err)
	}

	savPath := strings.TrimSuffix(*romPath, ".gb") + ".sav"
	if bb, ok := c.(cart.BatteryBacked); ok && *saveRAM {
		if data, err := os.ReadFile(savPath); err == nil {
			bb.LoadRAM(data)
		}
	}

	m := machine.New(c)
	if *bootPath != "" {
		boot, err := os.ReadFile(*bootPath)
		if err != nil {
			log.Fatalf("read bootrom: %v", err)
		}
		m.SetBootROM(boot)
	} else {
		m.ResetNoBoot()
	}

	switch {
	case *testROM:
		passed, serial, err := RunTestROM(m, *frames, *timeout)
		if err != nil {
			log.Fatalf("test run error: %v", err)
		}
		if !passed {
			log.Printf("serial output:\n%s", serial)
			os.Exit(1)
		}
		log.Print("PASSED")

	case *headless:
		for i := 0; i < *frames; i++ {
			if err := m.StepFrame(); err != nil {
				log.Fatalf("step: %v", err)
			}
		}
		if *outPNG != "" {
			if err := SaveSnapshotPNG(m.FB, *scale, *outPNG); err != nil {
				log.Fatalf("write png: %v", err)
			}
			log.Printf("wrote %s", *outPNG)
		}

	case *ascii:
		if err := RunASCII(m, NewASCIIHost()); err != nil {
			log.Fatalf("run: %v", err)
		}

	default:
		app := NewEbitenApp(m, *scale)
		if err := app.Run(*title); err != nil {
			log.Fatalf("run: %v", err)
		}
	}

	if bb, ok := c.(cart.BatteryBacked); ok && *saveRAM {
		if err := os.WriteFile(savPath, bb.SaveRAM(), 0644); err != nil {
			log.Printf("write save RAM: %v", err)
		}
	}
}
