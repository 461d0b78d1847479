package png

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"time"

	"github.com/pkg/errors"
)

// FormatError reports that the input bytes are not a valid, well-framed
// PNG chunk stream. It is distinct from OrderingError and
// SuggestedPaletteError: those are core decoding errors, this one is
// about framing (signature, chunk length/CRC), kept in the ambient
// Source/ChunkReader layer rather than the core.
type FormatError string

func (e FormatError) Error() string { return "png: invalid format: " + string(e) }

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// Source is a one-method byte-source capability: read up to limit
// bytes, or fewer at end-of-stream.
type Source interface {
	Read(limit int) ([]byte, error)
}

// ReaderSource adapts an io.Reader to Source using a buffered reader,
// so repeated small reads don't each hit the underlying io.Reader.
type ReaderSource struct {
	r *bufio.Reader
}

// NewReaderSource wraps r for chunked reads.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: bufio.NewReader(r)}
}

// Read returns up to limit bytes, or fewer (with a non-nil error) at
// end-of-stream.
func (s *ReaderSource) Read(limit int) ([]byte, error) {
	buf := make([]byte, limit)
	n, err := io.ReadFull(s.r, buf)
	return buf[:n], err
}

// Chunk is a single length/type/data/CRC record, the unit ChunkReader
// frames off the wire.
type Chunk struct {
	Length uint32
	Tag    ChunkTag
	Data   []byte
	CRC    uint32
}

// ChunkReader frames chunks from a Source, verifying each chunk's CRC32
// over its type and data bytes, in the style of
// poolqa/CgbiPngFix/ipaPng.Chunk.Populate and the fumin/png decoder's
// verifyChecksum.
type ChunkReader struct {
	src           Source
	maxChunkBytes int
}

// NewChunkReader wraps r for chunk-at-a-time framing.
func NewChunkReader(r io.Reader) *ChunkReader {
	return &ChunkReader{src: NewReaderSource(r)}
}

// SetMaxChunkBytes bounds the declared chunk length ReadChunk will
// accept; a chunk claiming more is rejected before its body is read, so
// no buffer is ever allocated for it. Zero (the default) means
// unlimited.
func (cr *ChunkReader) SetMaxChunkBytes(n int) {
	cr.maxChunkBytes = n
}

// ReadSignature consumes and checks the 8-byte PNG signature.
func (cr *ChunkReader) ReadSignature() error {
	got, err := cr.src.Read(len(pngSignature))
	if err != nil {
		return errors.WithStack(err)
	}
	if !bytes.Equal(got, pngSignature) {
		return errors.WithStack(FormatError("not a PNG file"))
	}
	return nil
}

// ReadChunk reads and CRC-verifies the next chunk.
func (cr *ChunkReader) ReadChunk() (*Chunk, error) {
	head, err := cr.src.Read(8)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(head) < 8 {
		return nil, errors.WithStack(io.ErrUnexpectedEOF)
	}
	length := binary.BigEndian.Uint32(head[:4])
	tag := ChunkTag(head[4:8])

	if cr.maxChunkBytes > 0 && length > uint32(cr.maxChunkBytes) {
		return nil, errors.WithStack(FormatError(fmt.Sprintf("chunk %s exceeds %d bytes", tag, cr.maxChunkBytes)))
	}

	data, err := cr.src.Read(int(length))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if uint32(len(data)) != length {
		return nil, errors.WithStack(io.ErrUnexpectedEOF)
	}

	crcBytes, err := cr.src.Read(4)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(crcBytes) < 4 {
		return nil, errors.WithStack(io.ErrUnexpectedEOF)
	}
	crc := binary.BigEndian.Uint32(crcBytes)

	h := crc32.NewIEEE()
	h.Write(head[4:8])
	h.Write(data)
	if h.Sum32() != crc {
		return nil, errors.WithStack(FormatError(fmt.Sprintf("bad CRC for chunk %s", tag)))
	}

	return &Chunk{Length: length, Tag: tag, Data: data, CRC: crc}, nil
}

// ihdrFields is the raw decoded IHDR body.
type ihdrFields struct {
	Width             uint32
	Height            uint32
	BitDepth          uint8
	ColorType         uint8
	CompressionMethod uint8
	FilterMethod      uint8
	InterlaceMethod   uint8
}

func parseIHDR(data []byte) (ihdrFields, error) {
	if len(data) < 13 {
		return ihdrFields{}, errors.New("png: invalid IHDR data")
	}
	return ihdrFields{
		Width:             binary.BigEndian.Uint32(data[0:4]),
		Height:            binary.BigEndian.Uint32(data[4:8]),
		BitDepth:          data[8],
		ColorType:         data[9],
		CompressionMethod: data[10],
		FilterMethod:      data[11],
		InterlaceMethod:   data[12],
	}, nil
}

// TIME is the decoded tIME chunk: last-modification timestamp.
type TIME struct {
	Year   uint16
	Month  uint8
	Day    uint8
	Hour   uint8
	Minute uint8
	Second uint8
}

func (t *TIME) parse(data []byte) error {
	if len(data) < 7 {
		return errors.New("png: invalid tIME data")
	}
	t.Year = binary.BigEndian.Uint16(data[:2])
	t.Month = data[2]
	t.Day = data[3]
	t.Hour = data[4]
	t.Minute = data[5]
	t.Second = data[6]
	return nil
}

// ToTime converts the stored timestamp to UTC.
func (t *TIME) ToTime() time.Time {
	return time.Date(int(t.Year), time.Month(t.Month), int(t.Day), int(t.Hour), int(t.Minute), int(t.Second), 0, time.UTC)
}

// TEXT is a decoded tEXt chunk: keyword and (uncompressed) text.
type TEXT struct {
	Keyword string
	Text    string
}

func (t *TEXT) parse(data []byte) error {
	idx := bytes.IndexByte(data, 0x00)
	if idx < 0 {
		return errors.New("png: invalid tEXt data: no null separator")
	}
	t.Keyword = string(data[:idx])
	t.Text = string(data[idx+1:])
	return nil
}

// ZTXT is a decoded zTXt chunk: keyword, compression method, and
// compressed text. Decompression of the text is out of this core's
// scope.
type ZTXT struct {
	Keyword           string
	CompressionMethod uint8
	CompressedText    []byte
}

func (z *ZTXT) parse(data []byte) error {
	idx := bytes.IndexByte(data, 0x00)
	if idx < 0 {
		return errors.New("png: invalid zTXt data: no null separator")
	}
	if len(data) < idx+2 {
		return errors.New("png: invalid zTXt data: missing compression method")
	}
	z.Keyword = string(data[:idx])
	z.CompressionMethod = data[idx+1]
	z.CompressedText = data[idx+2:]
	return nil
}

// DecodeLimits bounds the work Decode will perform on untrusted input: a
// caller wishing to cap work should set these before invocation. A zero
// DecodeLimits (or a nil pointer) means unbounded.
type DecodeLimits struct {
	MaxChunkBytes int
	MaxIDATBytes  int
}

// Stream is the result of decoding a chunk stream down to the point
// where pixel work (DEFLATE inflation, scanline defiltering,
// deinterlacing) can begin. IDAT holds the concatenated, still-DEFLATEd
// payload; callers combine it with Deinterlace once it has been
// inflated and defiltered by collaborators outside this core.
type Stream struct {
	Format            Format
	Size              Size
	Interlaced        bool
	IDAT              []byte
	SuggestedPalettes []*SuggestedPalette
	Time              *TIME
	Text              []TEXT
	CompressedText    []ZTXT
}

// Decode drives a ChunkReader and an OrderingValidator over r, validating
// chunk placement as it goes and collecting the handful of chunk bodies
// this core understands. It stops at IEND.
func Decode(r io.Reader, limits *DecodeLimits) (*Stream, error) {
	cr := NewChunkReader(r)
	if limits != nil {
		cr.SetMaxChunkBytes(limits.MaxChunkBytes)
	}
	if err := cr.ReadSignature(); err != nil {
		return nil, errors.WithStack(err)
	}

	var v OrderingValidator
	var st Stream
	var idat bytes.Buffer

	for {
		c, err := cr.ReadChunk()
		if err != nil {
			return nil, errors.WithStack(err)
		}

		if c.Tag == TagIHDR {
			ihdr, err := parseIHDR(c.Data)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			format, err := NewFormat(ihdr.BitDepth, ColorCode(ihdr.ColorType))
			if err != nil {
				return nil, errors.WithStack(err)
			}
			if oerr := v.PushIHDR(format); oerr != nil {
				return nil, errors.WithStack(oerr)
			}
			st.Format = format
			st.Size = Size{X: int(ihdr.Width), Y: int(ihdr.Height)}
			st.Interlaced = ihdr.InterlaceMethod == 1
			continue
		}

		if oerr := v.Push(c.Tag); oerr != nil {
			return nil, errors.WithStack(oerr)
		}

		switch c.Tag {
		case TagIDAT:
			if limits != nil && limits.MaxIDATBytes > 0 && idat.Len()+len(c.Data) > limits.MaxIDATBytes {
				return nil, errors.WithStack(FormatError("accumulated IDAT exceeds limit"))
			}
			idat.Write(c.Data)
		case TagSPLT:
			sp, err := ParseSuggestedPalette(c.Data)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			st.SuggestedPalettes = append(st.SuggestedPalettes, sp)
		case TagTIME:
			t := &TIME{}
			if err := t.parse(c.Data); err != nil {
				return nil, errors.WithStack(err)
			}
			st.Time = t
		case TagTEXT:
			t := TEXT{}
			if err := t.parse(c.Data); err != nil {
				return nil, errors.WithStack(err)
			}
			st.Text = append(st.Text, t)
		case TagZTXT:
			z := ZTXT{}
			if err := z.parse(c.Data); err != nil {
				return nil, errors.WithStack(err)
			}
			st.CompressedText = append(st.CompressedText, z)
		case TagIEND:
			st.IDAT = idat.Bytes()
			return &st, nil
		}
	}
}
