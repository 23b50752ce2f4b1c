package imgio_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/wippyai/cv-bridge/cvcore"
	"github.com/wippyai/cv-bridge/hostlib"
	"github.com/wippyai/cv-bridge/imgio"
)

func encodePNG(t *testing.T) *bytes.Reader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 6, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestDecodeGray(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	m, err := imgio.DecodeGray(ctx, host, encodePNG(t))
	if err != nil {
		t.Fatalf("DecodeGray: %v", err)
	}
	defer m.Close(ctx)

	if m.Rows(ctx).Must() != 4 || m.Cols(ctx).Must() != 6 {
		t.Fatal("geometry mismatch")
	}
	if m.Type(ctx).Must() != cvcore.MatType8UC1 {
		t.Fatal("not 8UC1")
	}
	data := m.Bytes(ctx).Must()
	// Uniform input stays uniform through the luma conversion.
	for i := 1; i < len(data); i++ {
		if data[i] != data[0] {
			t.Fatalf("pixel %d == %d, pixel 0 == %d", i, data[i], data[0])
		}
	}
	if data[0] == 0 || data[0] == 255 {
		t.Fatalf("implausible gray level %d", data[0])
	}
}

func TestDecodeColor_BGROrder(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	m, err := imgio.DecodeColor(ctx, host, encodePNG(t))
	if err != nil {
		t.Fatalf("DecodeColor: %v", err)
	}
	defer m.Close(ctx)

	if m.Type(ctx).Must() != cvcore.MatType8UC3 {
		t.Fatal("not 8UC3")
	}
	data := m.Bytes(ctx).Must()
	if data[0] != 50 || data[1] != 100 || data[2] != 200 {
		t.Fatalf("first pixel BGR == %v, want [50 100 200]", data[:3])
	}
}

func TestDecodeFloat(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	m, err := imgio.DecodeFloat(ctx, host, encodePNG(t))
	if err != nil {
		t.Fatalf("DecodeFloat: %v", err)
	}
	defer m.Close(ctx)

	if m.Type(ctx).Must() != cvcore.MatType32FC3 {
		t.Fatal("not 32FC3")
	}
	if m.Rows(ctx).Must() != 4 || m.Cols(ctx).Must() != 6 {
		t.Fatal("geometry mismatch")
	}
}

func TestDecodeGray_BadData(t *testing.T) {
	ctx := context.Background()
	host := hostlib.New()
	defer host.Close()

	if _, err := imgio.DecodeGray(ctx, host, bytes.NewReader([]byte("not an image"))); err == nil {
		t.Fatal("garbage input should fail to decode")
	}
}
