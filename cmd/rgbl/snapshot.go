package main

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/connor-lennox/rgbl/internal/lcd"
	"golang.org/x/image/draw"
)

// SaveSnapshotPNG renders fb through the DMG palette into an RGBA image,
// upscales it by scale (nearest-neighbor, matching the blocky look of the
// real screen rather than a smoothed one), and writes it to path.
func SaveSnapshotPNG(fb *lcd.Framebuffer, scale int, path string) error {
	if scale < 1 {
		scale = 1
	}
	src := image.NewRGBA(image.Rect(0, 0, lcd.Width, lcd.Height))
	for y := 0; y < lcd.Height; y++ {
		for x := 0; x < lcd.Width; x++ {
			c := shadePalette[fb.At(x, y)&0x03]
			src.Set(x, y, color.RGBA{c[0], c[1], c[2], 0xFF})
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, lcd.Width*scale, lcd.Height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, dst)
}
