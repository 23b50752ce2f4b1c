// Package imgio loads image files into boundary matrices. PNG, JPEG and
// GIF decode via the standard codecs; BMP, TIFF and WebP via the extended
// image codecs.
package imgio

import (
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"math"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	xdraw "golang.org/x/image/draw"

	"github.com/wippyai/cv-bridge/boundary"
	"github.com/wippyai/cv-bridge/cvcore"
)

// DecodeGray decodes r into an 8UC1 matrix.
func DecodeGray(ctx context.Context, d boundary.Dispatcher, r io.Reader) (*cvcore.Mat, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	xdraw.Draw(gray, bounds, img, bounds.Min, xdraw.Src)

	res := cvcore.NewMatFromBytes(ctx, d,
		int32(bounds.Dy()), int32(bounds.Dx()), cvcore.MatType8UC1, gray.Pix)
	if res.IsErr() {
		return nil, res.Fault()
	}
	return res.Value(), nil
}

// DecodeColor decodes r into an 8UC3 matrix with the native BGR channel
// order.
func DecodeColor(ctx context.Context, d boundary.Dispatcher, r io.Reader) (*cvcore.Mat, error) {
	rgba, bounds, err := decodeRGBA(r)
	if err != nil {
		return nil, err
	}

	w, h := bounds.Dx(), bounds.Dy()
	bgr := make([]byte, w*h*3)
	for i := 0; i < w*h; i++ {
		bgr[i*3+0] = rgba.Pix[i*4+2]
		bgr[i*3+1] = rgba.Pix[i*4+1]
		bgr[i*3+2] = rgba.Pix[i*4+0]
	}

	res := cvcore.NewMatFromBytes(ctx, d, int32(h), int32(w), cvcore.MatType8UC3, bgr)
	if res.IsErr() {
		return nil, res.Fault()
	}
	return res.Value(), nil
}

// DecodeFloat decodes r into a 32FC3 matrix with BGR channels scaled to
// [0, 1], the input format the structured edge detector expects.
func DecodeFloat(ctx context.Context, d boundary.Dispatcher, r io.Reader) (*cvcore.Mat, error) {
	rgba, bounds, err := decodeRGBA(r)
	if err != nil {
		return nil, err
	}

	w, h := bounds.Dx(), bounds.Dy()
	data := make([]byte, w*h*3*4)
	for i := 0; i < w*h; i++ {
		put := func(c int, v byte) {
			binary.LittleEndian.PutUint32(data[(i*3+c)*4:], math.Float32bits(float32(v)/255))
		}
		put(0, rgba.Pix[i*4+2])
		put(1, rgba.Pix[i*4+1])
		put(2, rgba.Pix[i*4+0])
	}

	res := cvcore.NewMatFromBytes(ctx, d, int32(h), int32(w), cvcore.MatType32FC3, data)
	if res.IsErr() {
		return nil, res.Fault()
	}
	return res.Value(), nil
}

func decodeRGBA(r io.Reader) (*image.RGBA, image.Rectangle, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("decoding image: %w", err)
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	xdraw.Draw(rgba, bounds, img, bounds.Min, xdraw.Src)
	return rgba, bounds, nil
}

// ReadGray loads path into an 8UC1 matrix.
func ReadGray(ctx context.Context, d boundary.Dispatcher, path string) (*cvcore.Mat, error) {
	return readWith(path, func(f *os.File) (*cvcore.Mat, error) { return DecodeGray(ctx, d, f) })
}

// ReadColor loads path into an 8UC3 matrix.
func ReadColor(ctx context.Context, d boundary.Dispatcher, path string) (*cvcore.Mat, error) {
	return readWith(path, func(f *os.File) (*cvcore.Mat, error) { return DecodeColor(ctx, d, f) })
}

// ReadFloat loads path into a 32FC3 matrix scaled to [0, 1].
func ReadFloat(ctx context.Context, d boundary.Dispatcher, path string) (*cvcore.Mat, error) {
	return readWith(path, func(f *os.File) (*cvcore.Mat, error) { return DecodeFloat(ctx, d, f) })
}

func readWith(path string, decode func(*os.File) (*cvcore.Mat, error)) (*cvcore.Mat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()
	return decode(f)
}
