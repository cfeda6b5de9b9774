package ico

import "encoding/binary"

// BitmapInfoHeaderSize is the size of a BITMAPINFOHEADER, the smallest DIB
// header accepted in icon entries.
const BitmapInfoHeaderSize = 40

// DIBInfo describes the bitmap header of a non-PNG icon entry.
type DIBInfo struct {
	HeaderSize uint32
	Width      uint32
	// Height is the logical image height. The stored height covers the
	// XOR image and the AND mask stacked on top of each other.
	Height  uint32
	TopDown bool

	BitCount    int
	PaletteSize int
}

// ReadDIBHeader parses the BITMAPINFOHEADER at the start of a bitmap icon
// entry. Only uncompressed bitmaps are accepted.
func ReadDIBHeader(data []byte) (DIBInfo, error) {
	if len(data) < 4 {
		return DIBInfo{}, ErrTruncated
	}
	headerSize := binary.LittleEndian.Uint32(data[0:])
	if headerSize < BitmapInfoHeaderSize {
		return DIBInfo{}, ErrHeaderTooShort
	}
	if len(data) < BitmapInfoHeaderSize {
		return DIBInfo{}, ErrTruncated
	}

	width := int32(binary.LittleEndian.Uint32(data[4:]))
	height := int32(binary.LittleEndian.Uint32(data[8:]))
	planes := binary.LittleEndian.Uint16(data[12:])
	bitCount := binary.LittleEndian.Uint16(data[14:])
	compression := binary.LittleEndian.Uint32(data[16:])
	colorsUsed := binary.LittleEndian.Uint32(data[32:])
	colorsImportant := binary.LittleEndian.Uint32(data[36:])

	if compression != 0 {
		return DIBInfo{}, ErrUnsupportedCompression
	}
	if planes != 1 {
		return DIBInfo{}, ErrInvalidPlanes
	}
	if colorsImportant != 0 {
		return DIBInfo{}, ErrInvalidField
	}
	if width <= 0 {
		return DIBInfo{}, ErrInvalidWidth
	}

	// Computed in 64 bits so that abs(MinInt32) does not overflow.
	absHeight := int64(height)
	if absHeight < 0 {
		absHeight = -absHeight
	}

	// Keep this conditional as is: for 24..31 bit images with a nonzero
	// colors-used field the palette size is colors-used, not 0.
	var paletteSize uint32
	if colorsUsed != 0 || bitCount < 24 {
		if colorsUsed != 0 {
			paletteSize = colorsUsed
		} else if bitCount >= 32 {
			paletteSize = 0
		} else {
			n, err := paletteLen(bitCount)
			if err != nil {
				return DIBInfo{}, err
			}
			paletteSize = n
		}
	}

	return DIBInfo{
		HeaderSize:  headerSize,
		Width:       uint32(width),
		Height:      uint32(absHeight / 2),
		TopDown:     height < 0,
		BitCount:    int(bitCount),
		PaletteSize: int(paletteSize),
	}, nil
}

// paletteLen returns 1<<bitCount, failing if it does not fit in 32 bits.
func paletteLen(bitCount uint16) (uint32, error) {
	if bitCount >= 32 {
		return 0, ErrPaletteTooLarge
	}
	return 1 << bitCount, nil
}
