// Package ico reads, filters and writes Windows icon (ICO) and cursor (CUR)
// files. A file is a directory of images sharing one resource kind; each
// image is stored either as a PNG stream or as a bitmap with an AND mask.
package ico

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	headerSize         = 6
	directoryEntrySize = 16
)

// ResourceKind is the container-wide type field of an ICO/CUR header.
type ResourceKind uint16

const (
	KindIcon   ResourceKind = 1
	KindCursor ResourceKind = 2
)

func (k ResourceKind) String() string {
	switch k {
	case KindIcon:
		return "icon"
	case KindCursor:
		return "cursor"
	default:
		return fmt.Sprintf("ResourceKind(%d)", uint16(k))
	}
}

// Header represents the ICO file header
type Header struct {
	Reserved uint16 // Always 0
	Type     uint16 // 1 for ICO, 2 for CUR
	Count    uint16 // Number of images
}

// DirectoryEntry represents an entry in the ICO directory
type DirectoryEntry struct {
	Width      uint8  // Width in pixels (0 means 256)
	Height     uint8  // Height in pixels (0 means 256)
	ColorCount uint8  // Number of colors in palette (0 means no palette)
	Reserved   uint8  // Always 0
	PlanesOrX  uint16 // Color planes for icons, hotspot x for cursors
	BitsOrY    uint16 // Bits per pixel for icons, hotspot y for cursors
	Size       uint32 // Size of image data in bytes
	Offset     uint32 // Offset to image data from beginning of file
}

// GetWidth returns the actual width, handling the special case where 0 means 256
func (e DirectoryEntry) GetWidth() int {
	if e.Width == 0 {
		return 256
	}
	return int(e.Width)
}

// GetHeight returns the actual height, handling the special case where 0 means 256
func (e DirectoryEntry) GetHeight() int {
	if e.Height == 0 {
		return 256
	}
	return int(e.Height)
}

// Hotspot is the click point of a cursor, in pixels from the top left.
type Hotspot struct {
	X, Y int
}

// Entry is one image of a container: its directory record and payload.
type Entry struct {
	Directory DirectoryEntry
	Kind      ResourceKind
	Data      []byte
}

// IsPNG reports whether the payload is a PNG stream rather than a bitmap.
func (e Entry) IsPNG() bool {
	return isPNG(e.Data)
}

// Hotspot returns the stored hotspot of a cursor entry. Icon entries have
// none.
func (e Entry) Hotspot() (Hotspot, bool) {
	if e.Kind != KindCursor {
		return Hotspot{}, false
	}
	return Hotspot{X: int(e.Directory.PlanesOrX), Y: int(e.Directory.BitsOrY)}, true
}

// Container represents a decoded ICO or CUR file
type Container struct {
	Header  Header
	Entries []Entry
}

// Kind returns the resource kind shared by all entries.
func (c *Container) Kind() ResourceKind {
	return ResourceKind(c.Header.Type)
}

// Decode reads an ICO or CUR file from r. Payloads are kept as raw bytes;
// use ReadMetadata to inspect them.
func Decode(r io.Reader) (*Container, error) {
	// Read all data into memory for easier parsing
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read ICO data: %w", err)
	}

	header, err := readHeader(data)
	if err != nil {
		return nil, err
	}

	dirEnd := headerSize + directoryEntrySize*int(header.Count)
	if len(data) < dirEnd {
		return nil, fmt.Errorf("%w: directory extends beyond file boundary", ErrNotAContainer)
	}

	entries := make([]DirectoryEntry, header.Count)
	if err := binary.Read(bytes.NewReader(data[headerSize:dirEnd]), binary.LittleEndian, entries); err != nil {
		return nil, fmt.Errorf("%w: failed to read directory: %v", ErrNotAContainer, err)
	}

	c := &Container{
		Header:  header,
		Entries: make([]Entry, len(entries)),
	}
	for i, dir := range entries {
		end := uint64(dir.Offset) + uint64(dir.Size)
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: image %d extends beyond file boundary", ErrNotAContainer, i+1)
		}
		c.Entries[i] = Entry{
			Directory: dir,
			Kind:      c.Kind(),
			Data:      data[dir.Offset:end],
		}
	}

	return c, nil
}

func readHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, fmt.Errorf("%w: need at least %d bytes for header", ErrNotAContainer, headerSize)
	}

	header := Header{
		Reserved: binary.LittleEndian.Uint16(data[0:]),
		Type:     binary.LittleEndian.Uint16(data[2:]),
		Count:    binary.LittleEndian.Uint16(data[4:]),
	}

	if header.Reserved != 0 {
		return Header{}, fmt.Errorf("%w: reserved field must be 0", ErrNotAContainer)
	}

	if kind := ResourceKind(header.Type); kind != KindIcon && kind != KindCursor {
		return Header{}, fmt.Errorf("%w: unsupported file type %d", ErrNotAContainer, header.Type)
	}

	if header.Count == 0 {
		return Header{}, fmt.Errorf("%w: file contains no images", ErrNotAContainer)
	}

	return header, nil
}

// Config represents the metadata of an ICO file without decoding the image data.
type Config struct {
	Kind   ResourceKind
	Width  int
	Height int
	Count  int
}

// DecodeConfig reads only the header and directory of a container. It
// returns the kind, the directory dimensions of the largest image and the
// total number of images.
func DecodeConfig(r io.Reader) (Config, error) {
	headerBuf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return Config{}, fmt.Errorf("%w: failed to read header: %v", ErrNotAContainer, err)
	}

	header, err := readHeader(headerBuf)
	if err != nil {
		return Config{}, err
	}

	entries := make([]DirectoryEntry, header.Count)
	if err := binary.Read(r, binary.LittleEndian, entries); err != nil {
		return Config{}, fmt.Errorf("%w: failed to read directory: %v", ErrNotAContainer, err)
	}

	// Find the largest image
	var maxWidth, maxHeight int
	for _, entry := range entries {
		width := entry.GetWidth()
		height := entry.GetHeight()
		if width*height > maxWidth*maxHeight {
			maxWidth = width
			maxHeight = height
		}
	}

	return Config{
		Kind:   ResourceKind(header.Type),
		Width:  maxWidth,
		Height: maxHeight,
		Count:  int(header.Count),
	}, nil
}
