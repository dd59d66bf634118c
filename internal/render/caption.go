package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawCaption decodes the rendered PNG, writes text along the bottom edge and re-encodes it.
func drawCaption(src io.Reader, dst io.Writer, text string) error {
	img, err := png.Decode(src)
	if err != nil {
		return fmt.Errorf("failed to decode rendered chart: %w", err)
	}

	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)

	face := basicfont.Face7x13
	dr := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(color.RGBA{R: 51, G: 51, B: 51, A: 255}),
		Face: face,
	}

	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + (b.Dx()-tw)/2
	if x < b.Min.X+8 {
		x = b.Min.X + 8
	}
	y := b.Max.Y - 10

	pad := 4
	bg := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 230})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+pad)
	draw.Draw(rgba, rect, bg, image.Point{}, draw.Over)

	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)

	if err := png.Encode(dst, rgba); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}
