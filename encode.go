package ico

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Image is an encoded entry payload together with the directory fields
// derived from it.
type Image struct {
	Width    uint32
	Height   uint32
	BitDepth int
	// Hotspot is written for cursor containers only.
	Hotspot Hotspot
	Data    []byte
}

// compatPNGBitCount is the bit count icoutils writes for every PNG icon
// entry, whatever the PNG's real depth.
const compatPNGBitCount = 32

// Encoder writes ICO and CUR containers.
type Encoder struct {
	Kind ResourceKind

	// PNGBitCountFromHeader makes PNG icon entries report the bit depth of
	// their IHDR (64 for 16-bit RGBA, say). By default they report 32, as
	// icoutils does, so output stays byte-identical to its files.
	PNGBitCountFromHeader bool
}

// Encode writes a container of the given kind with default options.
func Encode(w io.Writer, kind ResourceKind, images []Image) error {
	enc := &Encoder{Kind: kind}
	return enc.Encode(w, images)
}

// Encode writes images to w in order: header, directory, then payloads.
// Entries are neither reordered nor deduplicated.
func (enc *Encoder) Encode(w io.Writer, images []Image) error {
	if enc.Kind != KindIcon && enc.Kind != KindCursor {
		return fmt.Errorf("unsupported resource kind %d", uint16(enc.Kind))
	}
	if len(images) > math.MaxUint16 {
		return fmt.Errorf("too many images: %d", len(images))
	}

	header := Header{
		Type:  uint16(enc.Kind),
		Count: uint16(len(images)),
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Offsets wrap around like the 32-bit field they are stored in.
	offset := uint32(headerSize + directoryEntrySize*len(images))
	for i, img := range images {
		entry := enc.directoryEntry(img, offset)
		if err := binary.Write(w, binary.LittleEndian, entry); err != nil {
			return fmt.Errorf("failed to write directory entry %d: %w", i+1, err)
		}
		offset += uint32(len(img.Data))
	}

	for i, img := range images {
		if _, err := w.Write(img.Data); err != nil {
			return fmt.Errorf("failed to write image %d: %w", i+1, err)
		}
	}

	return nil
}

func (enc *Encoder) directoryEntry(img Image, offset uint32) DirectoryEntry {
	entry := DirectoryEntry{
		Width:  dimensionByte(img.Width),
		Height: dimensionByte(img.Height),
		Size:   uint32(len(img.Data)),
		Offset: offset,
	}

	if enc.Kind == KindCursor {
		entry.PlanesOrX = clampUint16(img.Hotspot.X)
		entry.BitsOrY = clampUint16(img.Hotspot.Y)
		return entry
	}

	entry.PlanesOrX = 1
	bitCount := img.BitDepth
	if !enc.PNGBitCountFromHeader && isPNG(img.Data) {
		bitCount = compatPNGBitCount
	}
	entry.BitsOrY = clampUint16(bitCount)
	return entry
}

// dimensionByte stores 256 and above as 0.
func dimensionByte(n uint32) uint8 {
	if n >= 256 {
		return 0
	}
	return uint8(n)
}

func clampUint16(v int) uint16 {
	switch {
	case v <= 0:
		return 0
	case v >= math.MaxUint16:
		return math.MaxUint16
	default:
		return uint16(v)
	}
}
