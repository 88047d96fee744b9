package images

import (
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/gen2brain/avif"
	"github.com/gen2brain/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 85

func decodeSource(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// resizeTo scales src proportionally to the target width. Sources narrower
// than the target are not upscaled.
func resizeTo(src image.Image, width int) image.Image {
	bounds := src.Bounds()
	if width >= bounds.Dx() {
		return src
	}

	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeTo(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case FormatWebP:
		return webp.Encode(w, img, webp.Options{Quality: 82})
	case FormatAVIF:
		return avif.Encode(w, img, avif.Options{Quality: 60, Speed: 8})
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
