package png

// Image pairs Properties with the raw byte buffer they describe. When
// Properties.Interlacing.None is false, Data is the concatenation of the
// seven Adam7 pass buffers in the layout Properties.Interlacing.ByteRanges
// describes; when it is true, Data is a single rectangular raster of
// Properties.Shape.Bytes() bytes.
type Image struct {
	Properties Properties
	Data       []byte
}

// expectedLen is the byte count Data must have for img to be well formed.
func (img Image) expectedLen() int {
	if img.Properties.Interlacing.None {
		return img.Properties.Shape.Bytes()
	}
	ranges := img.Properties.Interlacing.ByteRanges()
	return ranges[6].End
}
