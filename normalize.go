package ico

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// PixelFormat is the sample layout of a PixelBuffer. All samples are 8 bit.
type PixelFormat int

const (
	FormatRGBA PixelFormat = iota
	FormatRGB
	FormatGray
	FormatGrayAlpha
	FormatIndexed
)

func (f PixelFormat) channels() int {
	switch f {
	case FormatRGBA:
		return 4
	case FormatRGB:
		return 3
	case FormatGrayAlpha:
		return 2
	default:
		return 1
	}
}

// PixelBuffer is decoded image data in the layout the PNG decoder produced
// it in.
type PixelBuffer struct {
	Width, Height int
	Format        PixelFormat
	Pix           []byte

	// Palette holds RGB triples for FormatIndexed. Transparency holds the
	// alpha of the leading palette entries, the rest are opaque.
	Palette      []byte
	Transparency []byte
}

// RGBA expands the buffer to non-premultiplied RGBA, four bytes per pixel.
func (b *PixelBuffer) RGBA() ([]byte, error) {
	n := b.Width * b.Height
	if len(b.Pix) < n*b.Format.channels() {
		return nil, fmt.Errorf("pixel buffer holds %d bytes, need %d", len(b.Pix), n*b.Format.channels())
	}

	out := make([]byte, 0, n*4)
	switch b.Format {
	case FormatRGBA:
		out = append(out, b.Pix[:n*4]...)
	case FormatRGB:
		for i := 0; i < n; i++ {
			p := b.Pix[i*3:]
			out = append(out, p[0], p[1], p[2], 255)
		}
	case FormatGray:
		for _, g := range b.Pix[:n] {
			out = append(out, g, g, g, 255)
		}
	case FormatGrayAlpha:
		for i := 0; i < n; i++ {
			g, a := b.Pix[i*2], b.Pix[i*2+1]
			out = append(out, g, g, g, a)
		}
	case FormatIndexed:
		if len(b.Palette) == 0 {
			return nil, ErrPaletteMissing
		}
		for _, idx := range b.Pix[:n] {
			base := int(idx) * 3
			if base+2 >= len(b.Palette) {
				return nil, fmt.Errorf("%w: index %d, palette has %d entries", ErrPaletteIndexOutOfRange, idx, len(b.Palette)/3)
			}
			alpha := uint8(255)
			if int(idx) < len(b.Transparency) {
				alpha = b.Transparency[idx]
			}
			out = append(out, b.Palette[base], b.Palette[base+1], b.Palette[base+2], alpha)
		}
	default:
		return nil, fmt.Errorf("unknown pixel format %d", b.Format)
	}
	return out, nil
}

// NRGBA normalizes the buffer into an image.
func (b *PixelBuffer) NRGBA() (*image.NRGBA, error) {
	pix, err := b.RGBA()
	if err != nil {
		return nil, err
	}
	return &image.NRGBA{
		Pix:    pix,
		Stride: 4 * b.Width,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}, nil
}

// limitPalette drops palette and transparency entries past the first n.
func (b *PixelBuffer) limitPalette(n int) {
	if len(b.Palette) > 3*n {
		b.Palette = b.Palette[:3*n]
	}
	if len(b.Transparency) > n {
		b.Transparency = b.Transparency[:n]
	}
}

// PixelBufferFrom captures the pixels of an image returned by image/png.
// Sixteen-bit samples keep their high byte.
//
// image/png decodes gray with alpha to *image.NRGBA, so such input is
// captured as FormatRGBA; FormatGrayAlpha only comes from buffers built by
// hand. The decoder also extends the palette with opaque black for indices
// past the end of PLTE. ImageEncoder.Encode cuts the palette back to the
// PLTE size so that those indices fail in RGBA.
func PixelBufferFrom(m image.Image) *PixelBuffer {
	bounds := m.Bounds()
	b := &PixelBuffer{Width: bounds.Dx(), Height: bounds.Dy()}
	n := b.Width * b.Height

	switch m := m.(type) {
	case *image.Paletted:
		b.Format = FormatIndexed
		b.Pix = make([]byte, 0, n)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			i := m.PixOffset(bounds.Min.X, y)
			b.Pix = append(b.Pix, m.Pix[i:i+b.Width]...)
		}
		for _, c := range m.Palette {
			if c == nil {
				break
			}
			nc := color.NRGBAModel.Convert(c).(color.NRGBA)
			b.Palette = append(b.Palette, nc.R, nc.G, nc.B)
			b.Transparency = append(b.Transparency, nc.A)
		}
	case *image.Gray:
		b.Format = FormatGray
		b.Pix = make([]byte, 0, n)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			i := m.PixOffset(bounds.Min.X, y)
			b.Pix = append(b.Pix, m.Pix[i:i+b.Width]...)
		}
	case *image.Gray16:
		b.Format = FormatGray
		b.Pix = make([]byte, 0, n)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				b.Pix = append(b.Pix, m.Pix[m.PixOffset(x, y)])
			}
		}
	case *image.NRGBA:
		b.Format = FormatRGBA
		b.Pix = make([]byte, 0, n*4)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			i := m.PixOffset(bounds.Min.X, y)
			b.Pix = append(b.Pix, m.Pix[i:i+4*b.Width]...)
		}
	case *image.NRGBA64:
		b.Format = FormatRGBA
		b.Pix = make([]byte, 0, n*4)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				p := m.Pix[m.PixOffset(x, y):]
				b.Pix = append(b.Pix, p[0], p[2], p[4], p[6])
			}
		}
	default:
		if o, ok := m.(interface{ Opaque() bool }); ok && o.Opaque() {
			// Truecolor without alpha decodes to *image.RGBA or *image.RGBA64.
			b.Format = FormatRGB
			b.Pix = make([]byte, 0, n*3)
			for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
					b.Pix = append(b.Pix, c.R, c.G, c.B)
				}
			}
			return b
		}
		dst := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
		draw.Draw(dst, dst.Bounds(), m, bounds.Min, draw.Src)
		b.Format = FormatRGBA
		b.Pix = dst.Pix
	}
	return b
}
