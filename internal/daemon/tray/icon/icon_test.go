package icon

import (
	"bytes"
	"image/png"
	"testing"

	ico "github.com/sergeymakinen/go-ico"
)

func TestDrawIconColors(t *testing.T) {
	tests := []struct {
		name   string
		online bool
	}{
		{"online", true},
		{"offline", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := Draw(tt.online)
			if got := img.RGBAAt(Size/2, Size/2); got != centerColor(tt.online) {
				t.Errorf("center = %v, want %v", got, centerColor(tt.online))
			}
			if got := img.RGBAAt(Size/2, 8); got != ringColor {
				t.Errorf("ring = %v, want %v", got, ringColor)
			}
			if got := img.RGBAAt(0, 0); got.A != 0 {
				t.Errorf("corner should be transparent, got %v", got)
			}
		})
	}
}

func TestEncodeIconPerPlatform(t *testing.T) {
	img := Draw(true)

	data, err := Encode(img, "linux")
	if err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("linux icon is not a PNG: %v", err)
	}

	data, err = Encode(img, "windows")
	if err != nil {
		t.Fatalf("encode ico: %v", err)
	}
	m, err := ico.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("windows icon is not an ICO: %v", err)
	}
	if m.Bounds().Dx() != Size {
		t.Errorf("ico width = %d, want %d", m.Bounds().Dx(), Size)
	}
}

func TestIconBytesCached(t *testing.T) {
	if len(Bytes(true)) == 0 || len(Bytes(false)) == 0 {
		t.Fatal("icons should encode")
	}
	if bytes.Equal(Bytes(true), Bytes(false)) {
		t.Error("online and offline icons should differ")
	}
}
