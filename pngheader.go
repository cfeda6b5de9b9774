package ico

import (
	"bytes"
	"encoding/binary"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// PNG color types as stored in IHDR.
const (
	pngGrayscale      = 0
	pngTrueColor      = 2
	pngIndexed        = 3
	pngGrayscaleAlpha = 4
	pngTrueColorAlpha = 6
)

const ihdrLength = 13

// PNGInfo holds the fields of a PNG IHDR chunk that matter for icon entries.
type PNGInfo struct {
	Width     uint32
	Height    uint32
	BitDepth  uint8
	ColorType uint8

	// BitsPerPixel is the raw bit depth for indexed images (the width of a
	// palette index) and bit depth times channel count otherwise.
	BitsPerPixel int
}

func isPNG(data []byte) bool {
	return len(data) >= len(pngSignature) && bytes.Equal(data[:len(pngSignature)], pngSignature)
}

// ReadPNGHeader scans the chunks of a PNG stream up to the first IHDR and
// returns its dimensions and effective bits per pixel. Nothing after IHDR
// is inspected and chunk CRCs are not checked.
func ReadPNGHeader(data []byte) (PNGInfo, error) {
	if !isPNG(data) {
		return PNGInfo{}, ErrNotAPNG
	}

	pos := len(pngSignature)
	for pos+8 <= len(data) {
		length := uint64(binary.BigEndian.Uint32(data[pos:]))
		chunkType := string(data[pos+4 : pos+8])
		pos += 8

		// Data plus the trailing CRC must fit.
		if uint64(pos)+length+4 > uint64(len(data)) {
			return PNGInfo{}, ErrTruncated
		}

		if chunkType != "IHDR" {
			pos += int(length) + 4
			continue
		}

		if length < ihdrLength {
			return PNGInfo{}, ErrTruncated
		}
		return parseIHDR(data[pos : pos+int(length)])
	}

	return PNGInfo{}, ErrTruncated
}

func parseIHDR(b []byte) (PNGInfo, error) {
	info := PNGInfo{
		Width:     binary.BigEndian.Uint32(b[0:]),
		Height:    binary.BigEndian.Uint32(b[4:]),
		BitDepth:  b[8],
		ColorType: b[9],
	}

	var channels int
	switch info.ColorType {
	case pngGrayscale, pngIndexed:
		channels = 1
	case pngTrueColor:
		channels = 3
	case pngGrayscaleAlpha:
		channels = 2
	case pngTrueColorAlpha:
		channels = 4
	default:
		return PNGInfo{}, ErrUnsupportedColorType
	}

	if info.ColorType == pngIndexed {
		info.BitsPerPixel = int(info.BitDepth)
	} else {
		info.BitsPerPixel = int(info.BitDepth) * channels
	}
	return info, nil
}

// pngPaletteEntries returns the number of PLTE entries of a PNG stream. It
// reports false when no PLTE chunk precedes the image data.
func pngPaletteEntries(data []byte) (int, bool) {
	if !isPNG(data) {
		return 0, false
	}

	pos := len(pngSignature)
	for pos+8 <= len(data) {
		length := uint64(binary.BigEndian.Uint32(data[pos:]))
		switch string(data[pos+4 : pos+8]) {
		case "PLTE":
			return int(length / 3), true
		case "IDAT", "IEND":
			return 0, false
		}

		pos += 8
		if uint64(pos)+length+4 > uint64(len(data)) {
			return 0, false
		}
		pos += int(length) + 4
	}
	return 0, false
}
