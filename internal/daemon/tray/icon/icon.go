// Package icon renders the tray status icon.
package icon

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"runtime"
	"sync"

	ico "github.com/sergeymakinen/go-ico"
)

// Size is the icon edge length in pixels.
const Size = 64

var (
	ringColor    = color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
	onlineColor  = color.RGBA{R: 0x10, G: 0xb9, B: 0x81, A: 0xff}
	offlineColor = color.RGBA{R: 0xef, G: 0x44, B: 0x44, A: 0xff}
)

// Draw renders a blue disc with a green (online) or red (offline) center.
func Draw(online bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	center := centerColor(online)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			dx := float64(x) - Size/2 + 0.5
			dy := float64(y) - Size/2 + 0.5
			d2 := dx*dx + dy*dy
			switch {
			case d2 <= 16*16:
				img.SetRGBA(x, y, center)
			case d2 <= 28*28:
				img.SetRGBA(x, y, ringColor)
			}
		}
	}
	return img
}

func centerColor(online bool) color.RGBA {
	if online {
		return onlineColor
	}
	return offlineColor
}

// Encode encodes img for the platform tray: ICO on Windows, PNG elsewhere.
func Encode(img image.Image, goos string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if goos == "windows" {
		err = ico.Encode(&buf, img)
	} else {
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var (
	once        sync.Once
	iconOnline  []byte
	iconOffline []byte
)

// Bytes returns the cached encoded icon for the given status.
func Bytes(online bool) []byte {
	once.Do(func() {
		iconOnline, _ = Encode(Draw(true), runtime.GOOS)
		iconOffline, _ = Encode(Draw(false), runtime.GOOS)
	})
	if online {
		return iconOnline
	}
	return iconOffline
}
