// Package render provides the drawing helpers shared by all deck actions:
// SVG glyph rasterization, text, and cover-art compositing.
package render

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Colors
var (
	ColorKeyBg      = color.RGBA{40, 40, 40, 255}
	ColorBackground = color.RGBA{25, 25, 25, 255}
	ColorWhite      = color.RGBA{255, 255, 255, 255}
	ColorGray       = color.RGBA{160, 160, 160, 255}
	ColorGreen      = color.RGBA{30, 215, 96, 255} // Spotify brand green
	ColorOrange     = color.RGBA{255, 165, 0, 255}
)

// Face creates a font face at the given size, using the Go fonts shipped
// with golang.org/x/image.
func Face(size float64, bold bool) (font.Face, error) {
	src := goregular.TTF
	if bold {
		src = gobold.TTF
	}

	tt, err := opentype.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	face, err := opentype.NewFace(tt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return face, nil
}

// DrawText draws text at the given baseline position.
func DrawText(img *image.RGBA, text string, x, y int, face font.Face, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// TextWidth returns the advance width of text in pixels.
func TextWidth(face font.Face, text string) int {
	return font.MeasureString(face, text).Ceil()
}

// TruncateToWidth shortens text with an ellipsis so it fits in maxWidth.
func TruncateToWidth(face font.Face, text string, maxWidth int) string {
	if TextWidth(face, text) <= maxWidth {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "…"
		if TextWidth(face, candidate) <= maxWidth {
			return candidate
		}
	}
	return ""
}

// Glyph renders an SVG glyph to a square image with the given size and color.
func Glyph(svgContent string, size int, glyphColor color.Color) image.Image {
	// Replace currentColor with the actual color
	r, g, b, _ := glyphColor.RGBA()
	hexColor := fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
	svgContent = strings.ReplaceAll(svgContent, "currentColor", hexColor)

	icon, err := oksvg.ReadIconStream(strings.NewReader(svgContent))
	if err != nil {
		log.Printf("Failed to parse SVG: %v", err)
		return image.NewRGBA(image.Rect(0, 0, size, size))
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.Transparent}, image.Point{}, draw.Src)

	icon.SetTarget(0, 0, float64(size), float64(size))

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	return img
}

// KeyBackground returns a key-sized image filled with the key background color.
func KeyBackground(bounds image.Rectangle) *image.RGBA {
	img := image.NewRGBA(bounds)
	draw.Draw(img, img.Bounds(), &image.Uniform{ColorKeyBg}, image.Point{}, draw.Src)
	return img
}

// GlyphKey renders a glyph centered on a key background. The glyph is sized
// to the given fraction of the key's smaller dimension.
func GlyphKey(bounds image.Rectangle, svgContent string, glyphColor color.Color, fraction float64) *image.RGBA {
	img := KeyBackground(bounds)
	CompositeGlyph(img, svgContent, glyphColor, fraction)
	return img
}

// CompositeGlyph draws a glyph centered over an existing key image, scaled
// to the given fraction of the key's smaller dimension.
func CompositeGlyph(img *image.RGBA, svgContent string, glyphColor color.Color, fraction float64) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	side := w
	if h < side {
		side = h
	}
	size := int(float64(side) * fraction)
	if size < 1 {
		size = 1
	}

	glyph := Glyph(svgContent, size, glyphColor)
	x := bounds.Min.X + (w-size)/2
	y := bounds.Min.Y + (h-size)/2
	target := image.Rect(x, y, x+size, y+size)
	draw.Draw(img, target, glyph, image.Point{}, draw.Over)
}

// ScaleSquare scales an image to a square of the given size, center-cropping
// when the source is not square.
func ScaleSquare(src image.Image, size int) image.Image {
	srcBounds := src.Bounds()
	srcW := srcBounds.Dx()
	srcH := srcBounds.Dy()

	// Crop to square from center
	var cropRect image.Rectangle
	if srcW > srcH {
		offset := srcBounds.Min.X + (srcW-srcH)/2
		cropRect = image.Rect(offset, srcBounds.Min.Y, offset+srcH, srcBounds.Min.Y+srcH)
	} else {
		offset := srcBounds.Min.Y + (srcH-srcW)/2
		cropRect = image.Rect(srcBounds.Min.X, offset, srcBounds.Min.X+srcW, offset+srcW)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, cropRect, draw.Over, nil)
	return dst
}

// CoverKey renders album art scaled to fill the key, dimmed slightly so a
// glyph composited on top stays readable.
func CoverKey(bounds image.Rectangle, art image.Image) *image.RGBA {
	img := KeyBackground(bounds)

	side := bounds.Dx()
	if bounds.Dy() < side {
		side = bounds.Dy()
	}
	scaled := ScaleSquare(art, side)
	draw.Draw(img, bounds, scaled, image.Point{}, draw.Src)

	// Dim the art so the overlay glyph reads against bright covers
	dim := image.NewUniform(color.RGBA{0, 0, 0, 90})
	draw.Draw(img, bounds, dim, image.Point{}, draw.Over)

	return img
}
