package png

// PaletteEntry is one PLTE entry: an 8-bit RGB triple. Parsing PLTE
// itself is an external collaborator; this is the shape
// Properties.Palette carries once a caller has parsed one.
type PaletteEntry struct {
	R, G, B uint8
}

// ChromaKey is a tRNS simple-transparency color key for non-indexed
// formats. Gray is used for grayscale formats; R, G, B for truecolor
// formats. tRNS is illegal for formats with a stored alpha channel, so
// a ChromaKey is never attached to those.
type ChromaKey struct {
	Gray    uint16
	R, G, B uint16
}

// Properties bundles a Format with its derived Shape and Interlacing
// layout, plus the optional palette and chroma-key that apply to a
// specific image (as opposed to the format alone).
type Properties struct {
	Format      Format
	Shape       Shape
	Interlacing Interlacing
	Palette     []PaletteEntry
	ChromaKey   *ChromaKey
}

// NewProperties constructs a Properties value for an image of the given
// pixel size, format, and interlacing method. This is the sole
// constructor: Properties values are otherwise immutable.
func NewProperties(size Size, format Format, interlaced bool) Properties {
	p := Properties{
		Format: format,
		Shape:  format.Shape(size),
	}
	if interlaced {
		p.Interlacing = Interlacing{Passes: newAdam7(format, size)}
	} else {
		p.Interlacing = Interlacing{None: true}
	}
	return p
}

// WithPalette returns a copy of p carrying the given palette.
func (p Properties) WithPalette(palette []PaletteEntry) Properties {
	p.Palette = palette
	return p
}

// WithChromaKey returns a copy of p carrying the given chroma key.
func (p Properties) WithChromaKey(key ChromaKey) Properties {
	p.ChromaKey = &key
	return p
}
