package png

// Strider is a finite arithmetic sequence (Start, Step) enumerating
// destination coordinates covered by an Adam7 pass: the i-th source pixel
// along this axis lands at destination coordinate Start + i*Step.
type Strider struct {
	Start int
	Step  int
}

// At returns the destination coordinate for source index i.
func (s Strider) At(i int) int {
	return s.Start + i*s.Step
}

// SubImage is one of the seven Adam7 sub-images: its pixel Shape under
// the parent Format, plus the strider pair mapping its local (x,y)
// indices to destination coordinates.
type SubImage struct {
	Shape    Shape
	StriderX Strider
	StriderY Strider
}

// adam7Pass is the per-pass formula for sub-image size and strider,
// table-driven straight out of the PNG Adam7 definition: width/height are
// (dimension+wAdd)>>wShift / (dimension+hAdd)>>hShift.
type adam7Pass struct {
	wAdd, wShift int
	hAdd, hShift int
	sx, sxStep   int
	sy, syStep   int
}

var adam7Passes = [7]adam7Pass{
	{7, 3, 7, 3, 0, 8, 0, 8},
	{3, 3, 7, 3, 4, 8, 0, 8},
	{3, 2, 3, 3, 0, 4, 4, 8},
	{1, 2, 3, 2, 2, 4, 0, 4},
	{1, 1, 1, 2, 0, 2, 2, 4},
	{0, 1, 1, 1, 1, 2, 0, 2},
	{0, 0, 0, 1, 0, 1, 1, 2},
}

// Interlacing is the sub-image layout for an image: either None (a single
// rectangular raster) or the seven Adam7 passes.
type Interlacing struct {
	None   bool
	Passes [7]SubImage
}

func newAdam7(format Format, size Size) [7]SubImage {
	var out [7]SubImage
	for i, p := range adam7Passes {
		w := (size.X + p.wAdd) >> p.wShift
		h := (size.Y + p.hAdd) >> p.hShift
		out[i] = SubImage{
			Shape:    format.Shape(Size{w, h}),
			StriderX: Strider{p.sx, p.sxStep},
			StriderY: Strider{p.sy, p.syStep},
		}
	}
	return out
}

// ByteRange is an exclusive [Start, End) byte range within a concatenated
// pass buffer.
type ByteRange struct {
	Start, End int
}

// ByteRanges partitions a concatenated Adam7 pass buffer into the seven
// per-pass byte ranges, in pass order.
func (l Interlacing) ByteRanges() [7]ByteRange {
	var out [7]ByteRange
	acc := 0
	for i, sub := range l.Passes {
		n := sub.Shape.Bytes()
		out[i] = ByteRange{acc, acc + n}
		acc += n
	}
	return out
}

// Pitches produces one pitch value per scanline in pass order: pass i
// contributes Passes[i].Shape.Size.Y copies of Passes[i].Shape.Pitch.
// Empty passes (zero width or height) contribute nothing. This is the
// interface scanline-filter code (outside this core) consumes.
func (l Interlacing) Pitches() []int {
	var out []int
	for _, sub := range l.Passes {
		if sub.Shape.Size.X == 0 || sub.Shape.Size.Y == 0 {
			continue
		}
		for i := 0; i < sub.Shape.Size.Y; i++ {
			out = append(out, sub.Shape.Pitch)
		}
	}
	return out
}
