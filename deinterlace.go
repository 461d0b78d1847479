package png

import "fmt"

// Deinterlace reconstitutes a rectangular raster from an Adam7-interlaced
// Image. If img is already non-interlaced it is returned unchanged.
//
// Precondition: len(img.Data) must equal the sum of the seven per-pass
// byte counts (equivalently, the upper bound of img.Properties
// .Interlacing.ByteRanges()[6].End). A violation is a programming error,
// not a recoverable one, and panics.
func Deinterlace(img Image) Image {
	if img.Properties.Interlacing.None {
		if len(img.Data) != img.Properties.Shape.Bytes() {
			panic(fmt.Sprintf("png: deinterlace: non-interlaced data length %d, want %d", len(img.Data), img.Properties.Shape.Bytes()))
		}
		return img
	}

	if want := img.expectedLen(); len(img.Data) != want {
		panic(fmt.Sprintf("png: deinterlace: interlaced data length %d, want %d", len(img.Data), want))
	}

	format := img.Properties.Format
	depth := int(format.Depth())
	channels := format.Channels()
	dstPitch := img.Properties.Shape.Pitch
	dst := make([]byte, img.Properties.Shape.Bytes())

	ranges := img.Properties.Interlacing.ByteRanges()
	for p, sub := range img.Properties.Interlacing.Passes {
		base := ranges[p].Start
		if depth >= 8 {
			deinterlaceWholeByte(dst, dstPitch, img.Data, base, sub, channels, depth)
		} else {
			deinterlaceSubByte(dst, dstPitch, img.Data, base, sub, depth)
		}
	}

	out := img.Properties
	out.Interlacing = Interlacing{None: true}
	return Image{Properties: out, Data: dst}
}

func deinterlaceWholeByte(dst []byte, dstPitch int, src []byte, base int, sub SubImage, channels, depth int) {
	bpp := channels * depth / 8
	srcPitch := sub.Shape.Pitch
	for sy := 0; sy < sub.Shape.Size.Y; sy++ {
		dy := sub.StriderY.At(sy)
		for sx := 0; sx < sub.Shape.Size.X; sx++ {
			dx := sub.StriderX.At(sx)
			srcOff := base + sx*bpp + srcPitch*sy
			dstOff := dx*bpp + dstPitch*dy
			copy(dst[dstOff:dstOff+bpp], src[srcOff:srcOff+bpp])
		}
	}
}

// deinterlaceSubByte handles depth in {1,2,4}; channels is always 1 for
// these formats (grayscale or indexed).
func deinterlaceSubByte(dst []byte, dstPitch int, src []byte, base int, sub SubImage, depth int) {
	srcPitch := sub.Shape.Pitch
	for sy := 0; sy < sub.Shape.Size.Y; sy++ {
		dy := sub.StriderY.At(sy)
		for sx := 0; sx < sub.Shape.Size.X; sx++ {
			dx := sub.StriderX.At(sx)

			srcByte := base + (sx*depth>>3) + srcPitch*sy
			srcBit := (sx * depth) & 7
			dstByte := (dx*depth>>3) + dstPitch*dy
			dstBit := (dx * depth) & 7

			bits := (src[srcByte] << uint(srcBit)) >> uint(8-depth)
			dst[dstByte] |= bits << uint(8-dstBit-depth)
		}
	}
}

// Decompose yields the seven per-pass Rectangular images without merging
// them, using Properties.Interlacing.ByteRanges for slicing. Each
// resulting Image carries its own Properties constructed from the
// sub-image's pixel size with Interlacing.None set.
func Decompose(img Image) [7]Image {
	ranges := img.Properties.Interlacing.ByteRanges()
	var out [7]Image
	for i, sub := range img.Properties.Interlacing.Passes {
		props := NewProperties(sub.Shape.Size, img.Properties.Format, false)
		out[i] = Image{Properties: props, Data: img.Data[ranges[i].Start:ranges[i].End]}
	}
	return out
}

// Compose is the inverse of Deinterlace: given a rectangular raster and
// the Properties describing its target Adam7 layout, it scatters pixels
// back into the seven packed passes. It exists for round-trip testing
// and for any encoder built on top of this core.
func Compose(properties Properties, raster []byte) []byte {
	if properties.Interlacing.None {
		panic("png: compose: properties must describe an interlaced layout")
	}
	if len(raster) != properties.Shape.Bytes() {
		panic(fmt.Sprintf("png: compose: raster length %d, want %d", len(raster), properties.Shape.Bytes()))
	}

	format := properties.Format
	depth := int(format.Depth())
	channels := format.Channels()
	srcPitch := properties.Shape.Pitch

	ranges := properties.Interlacing.ByteRanges()
	out := make([]byte, ranges[6].End)

	for p, sub := range properties.Interlacing.Passes {
		base := ranges[p].Start
		if depth >= 8 {
			composeWholeByte(out, base, sub, raster, srcPitch, channels, depth)
		} else {
			composeSubByte(out, base, sub, raster, srcPitch, depth)
		}
	}
	return out
}

func composeWholeByte(dst []byte, base int, sub SubImage, raster []byte, srcPitch, channels, depth int) {
	bpp := channels * depth / 8
	dstPitch := sub.Shape.Pitch
	for sy := 0; sy < sub.Shape.Size.Y; sy++ {
		ry := sub.StriderY.At(sy)
		for sx := 0; sx < sub.Shape.Size.X; sx++ {
			rx := sub.StriderX.At(sx)
			srcOff := rx*bpp + srcPitch*ry
			dstOff := base + sx*bpp + dstPitch*sy
			copy(dst[dstOff:dstOff+bpp], raster[srcOff:srcOff+bpp])
		}
	}
}

func composeSubByte(dst []byte, base int, sub SubImage, raster []byte, srcPitch, depth int) {
	dstPitch := sub.Shape.Pitch
	for sy := 0; sy < sub.Shape.Size.Y; sy++ {
		ry := sub.StriderY.At(sy)
		for sx := 0; sx < sub.Shape.Size.X; sx++ {
			rx := sub.StriderX.At(sx)

			srcByte := (rx*depth>>3) + srcPitch*ry
			srcBit := (rx * depth) & 7
			dstByte := base + (sx*depth>>3) + dstPitch*sy
			dstBit := (sx * depth) & 7

			bits := (raster[srcByte] << uint(srcBit)) >> uint(8-depth)
			dst[dstByte] |= bits << uint(8-dstBit-depth)
		}
	}
}
