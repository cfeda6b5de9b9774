package ico

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	goico "github.com/sergeymakinen/go-ico"
	"github.com/sergeymakinen/go-ico/cur"
)

// ImageEncoder turns PNG input files into container entries. Both stages are
// replaceable; the zero value uses image/png and github.com/sergeymakinen/go-ico.
type ImageEncoder struct {
	// DecodePNG decodes a PNG stream into pixels.
	DecodePNG func(r io.Reader) (image.Image, error)

	// EncodePayload produces the payload of a single entry: a bitmap with
	// AND mask, or a PNG stream for 256x256 images.
	EncodePayload func(kind ResourceKind, m image.Image) ([]byte, error)
}

// Raw stores a PNG file as the entry payload byte for byte. Only its header
// is inspected.
func (e *ImageEncoder) Raw(data []byte, hotspot Hotspot) (Image, error) {
	info, err := ReadPNGHeader(data)
	if err != nil {
		return Image{}, err
	}
	return Image{
		Width:    info.Width,
		Height:   info.Height,
		BitDepth: info.BitsPerPixel,
		Hotspot:  hotspot,
		Data:     data,
	}, nil
}

// Encode decodes a PNG file, normalizes it to RGBA and re-encodes it as an
// entry payload for the given kind. The directory fields of the result are
// read back from the produced payload.
func (e *ImageEncoder) Encode(kind ResourceKind, data []byte, hotspot Hotspot) (Image, error) {
	decode := e.DecodePNG
	if decode == nil {
		decode = png.Decode
	}
	m, err := decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrNotAPNG, err)
	}

	buf := PixelBufferFrom(m)
	if buf.Format == FormatIndexed {
		if n, ok := pngPaletteEntries(data); ok {
			buf.limitPalette(n)
		}
	}
	rgba, err := buf.NRGBA()
	if err != nil {
		return Image{}, err
	}

	encode := e.EncodePayload
	if encode == nil {
		encode = encodePayload
	}
	payload, err := encode(kind, rgba)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	img, err := ImageFromPayload(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	img.Hotspot = hotspot
	return img, nil
}

// ImageFromPayload derives the directory fields of an already encoded
// payload, PNG or bitmap.
func ImageFromPayload(payload []byte) (Image, error) {
	if isPNG(payload) {
		info, err := ReadPNGHeader(payload)
		if err != nil {
			return Image{}, err
		}
		return Image{Width: info.Width, Height: info.Height, BitDepth: info.BitsPerPixel, Data: payload}, nil
	}

	info, err := ReadDIBHeader(payload)
	if err != nil {
		return Image{}, err
	}
	return Image{Width: info.Width, Height: info.Height, BitDepth: info.BitCount, Data: payload}, nil
}

// encodePayload runs the single-image go-ico encoder and takes the payload
// back out of the one-entry container it writes.
func encodePayload(kind ResourceKind, m image.Image) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if kind == KindCursor {
		err = cur.Encode(&buf, m)
	} else {
		err = goico.Encode(&buf, m)
	}
	if err != nil {
		return nil, err
	}

	c, err := Decode(&buf)
	if err != nil {
		return nil, err
	}
	if len(c.Entries) != 1 {
		return nil, fmt.Errorf("expected 1 encoded image, got %d", len(c.Entries))
	}
	return c.Entries[0].Data, nil
}
