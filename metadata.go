package ico

// Metadata is the uniform description of one entry, derived from the
// headers embedded in its payload. It is what filters and listings see.
type Metadata struct {
	Index       int // 1-based position in the container
	Width       int
	Height      int
	BitDepth    int
	PaletteSize int
	Kind        ResourceKind
	PNG         bool

	// Hotspot is the stored cursor hotspot, zero for icons.
	Hotspot Hotspot
}

// EffectiveHotspot is the hotspot used for matching. Icons always report
// (0,0) regardless of what their directory entry holds.
func (m Metadata) EffectiveHotspot() Hotspot {
	if m.Kind != KindCursor {
		return Hotspot{}
	}
	return m.Hotspot
}

// ReadMetadata inspects the payload of e, which sits at the given 1-based
// index of its container. Header errors are returned as *EntryError.
func ReadMetadata(index int, e Entry) (Metadata, error) {
	m := Metadata{
		Index: index,
		Kind:  e.Kind,
		PNG:   e.IsPNG(),
	}

	if m.PNG {
		info, err := ReadPNGHeader(e.Data)
		if err != nil {
			return Metadata{}, &EntryError{Index: index, Err: err}
		}
		m.Width, m.Height, m.BitDepth = int(info.Width), int(info.Height), info.BitsPerPixel
	} else {
		info, err := ReadDIBHeader(e.Data)
		if err != nil {
			return Metadata{}, &EntryError{Index: index, Err: err}
		}
		m.Width, m.Height, m.BitDepth = int(info.Width), int(info.Height), info.BitCount
		m.PaletteSize = info.PaletteSize
	}

	if hotspot, ok := e.Hotspot(); ok {
		m.Hotspot = hotspot
	}
	return m, nil
}

// Metadata describes every entry of the container in order. It stops at
// the first entry whose headers cannot be read.
func (c *Container) Metadata() ([]Metadata, error) {
	metas := make([]Metadata, 0, len(c.Entries))
	for i, e := range c.Entries {
		m, err := ReadMetadata(i+1, e)
		if err != nil {
			return nil, err
		}
		metas = append(metas, m)
	}
	return metas, nil
}
