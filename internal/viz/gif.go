package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"time"
)

const (
	gifCellW   = 8
	gifCellH   = 16
	gifDelay   = 2
	gifMaxSize = 1200
)

// gifRecorder rasterizes canvas frames for an animated GIF.
type gifRecorder struct {
	frames []*image.Paletted
}

func newGIFRecorder() *gifRecorder {
	return &gifRecorder{}
}

func (g *gifRecorder) capture(c *Canvas) {
	if len(g.frames) >= gifMaxSize {
		return
	}
	dotW, dotH := gifCellW/2, gifCellH/4
	img := image.NewPaletted(image.Rect(0, 0, c.Width*gifCellW, c.Height*gifCellH),
		color.Palette{color.Black, color.RGBA{0xf0, 0x20, 0x00, 0xff}})
	for y := 0; y < c.DotHeight(); y++ {
		for x := 0; x < c.DotWidth(); x++ {
			if !c.Get(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	g.frames = append(g.frames, img)
}

// save writes the recording into dir and returns the file path.
func (g *gifRecorder) save(dir string) (string, error) {
	if len(g.frames) == 0 {
		return "", fmt.Errorf("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, f := range g.frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, gifDelay)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("softsim-%s.gif", time.Now().Format("20060102-150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return "", err
	}
	return path, nil
}
