package ico

import (
	"fmt"
	"image"
	"image/color"
)

// DecodeBitmap decodes the bitmap payload of a non-PNG entry. The AND mask
// following the color data, when present, marks transparent pixels.
func DecodeBitmap(data []byte) (image.Image, error) {
	info, err := ReadDIBHeader(data)
	if err != nil {
		return nil, err
	}
	if uint64(info.HeaderSize) > uint64(len(data)) {
		return nil, fmt.Errorf("BMP header size %d exceeds data: %w", info.HeaderSize, ErrTruncated)
	}

	width, height := int(info.Width), int(info.Height)
	offset := int(info.HeaderSize)

	var palette []color.NRGBA
	if info.BitCount <= 8 {
		palette, err = readBitmapPalette(data, offset, info.PaletteSize)
		if err != nil {
			return nil, err
		}
		offset += 4 * info.PaletteSize
	} else if info.PaletteSize > 0 {
		// A color table on a direct-color bitmap is only an optimization hint.
		offset += 4 * info.PaletteSize
	}

	// The color data must be present before the image is allocated.
	stride64 := ((uint64(info.Width)*uint64(info.BitCount) + 31) &^ 31) / 8
	if uint64(offset)+uint64(info.Height)*stride64 > uint64(len(data)) {
		return nil, fmt.Errorf("BMP data for %dx%d image exceeds payload: %w", info.Width, info.Height, ErrTruncated)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	stride := rowStride(width, info.BitCount)
	row := func(y int) int {
		// BMP rows are stored bottom-to-top unless the height is negative
		if info.TopDown {
			return y
		}
		return height - 1 - y
	}

	for y := 0; y < height; y++ {
		rowOffset := offset + row(y)*stride
		if rowOffset+stride > len(data) {
			return nil, fmt.Errorf("BMP data truncated at row %d: %w", y, ErrTruncated)
		}
		src := data[rowOffset : rowOffset+stride]

		for x := 0; x < width; x++ {
			c, err := bitmapPixel(src, x, info.BitCount, palette)
			if err != nil {
				return nil, err
			}
			img.SetNRGBA(x, y, c)
		}
	}

	applyMask(img, data, offset+height*stride, info.TopDown)

	return img, nil
}

func readBitmapPalette(data []byte, offset, n int) ([]color.NRGBA, error) {
	if offset+4*n > len(data) {
		return nil, fmt.Errorf("BMP palette data truncated: %w", ErrTruncated)
	}

	palette := make([]color.NRGBA, n)
	for i := range palette {
		p := data[offset+i*4:]
		// Skip reserved byte at p[3]
		palette[i] = color.NRGBA{R: p[2], G: p[1], B: p[0], A: 255}
	}
	return palette, nil
}

// rowStride returns the length of a scanline, padded to 4 bytes.
func rowStride(width, bpp int) int {
	return ((width*bpp + 31) &^ 31) / 8
}

func bitmapPixel(row []byte, x, bpp int, palette []color.NRGBA) (color.NRGBA, error) {
	switch bpp {
	case 32:
		// BMP uses BGRA format
		p := row[x*4:]
		return color.NRGBA{R: p[2], G: p[1], B: p[0], A: p[3]}, nil
	case 24:
		p := row[x*3:]
		return color.NRGBA{R: p[2], G: p[1], B: p[0], A: 255}, nil
	case 1, 4, 8:
		perByte := 8 / bpp
		shift := uint(8 - bpp*(x%perByte+1))
		index := int(row[x/perByte]>>shift) & (1<<bpp - 1)
		if index >= len(palette) {
			return color.NRGBA{}, fmt.Errorf("BMP palette index %d out of range", index)
		}
		return palette[index], nil
	default:
		return color.NRGBA{}, fmt.Errorf("unsupported BMP bit depth: %d", bpp)
	}
}

// applyMask clears the alpha of every pixel whose AND mask bit is set. The
// mask is skipped when the payload is too short to hold it.
func applyMask(img *image.NRGBA, data []byte, offset int, topDown bool) {
	width, height := img.Rect.Dx(), img.Rect.Dy()
	stride := rowStride(width, 1)
	if offset+height*stride > len(data) {
		return
	}

	for y := 0; y < height; y++ {
		srcY := height - 1 - y
		if topDown {
			srcY = y
		}
		rowOffset := offset + srcY*stride

		for x := 0; x < width; x++ {
			maskByte := data[rowOffset+x/8]
			if (maskByte>>(7-uint(x%8)))&1 == 1 {
				i := img.PixOffset(x, y)
				img.Pix[i+3] = 0
			}
		}
	}
}
