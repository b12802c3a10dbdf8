package imaging

import (
	"image"

	"golang.org/x/image/draw"
)

// clampCrop fits c into bounds b. The origin is clamped to the image and the
// box is shrunk to stay inside it, with at least one pixel on each side.
func clampCrop(c CropRegion, b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()

	x := clamp(c.X, 0, w-1)
	y := clamp(c.Y, 0, h-1)
	cw := clamp(c.Width, 1, w-x)
	ch := clamp(c.Height, 1, h-y)

	return image.Rect(b.Min.X+x, b.Min.Y+y, b.Min.X+x+cw, b.Min.Y+y+ch)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func cropImage(src image.Image, r image.Rectangle) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Copy(dst, image.Point{}, src, r, draw.Src, nil)
	return dst
}

// centerSquare returns the largest square centered in b.
func centerSquare(b image.Rectangle) image.Rectangle {
	side := min(b.Dx(), b.Dy())
	x := b.Min.X + (b.Dx()-side)/2
	y := b.Min.Y + (b.Dy()-side)/2
	return image.Rect(x, y, x+side, y+side)
}

// squareResize center-crops src to a square and scales it to size×size.
func squareResize(src image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, centerSquare(src.Bounds()), draw.Src, nil)
	return dst
}
