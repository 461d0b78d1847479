package png

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// SuggestedPaletteErrorKind classifies why a SuggestedPalette parse,
// construction, or serialization failed.
type SuggestedPaletteErrorKind int

const (
	InvalidName SuggestedPaletteErrorKind = iota
	InvalidChunkLength
	InvalidDataLength
	InvalidDepthCode
	InvalidFrequency
)

func (k SuggestedPaletteErrorKind) String() string {
	switch k {
	case InvalidName:
		return "invalid name"
	case InvalidChunkLength:
		return "invalid chunk length"
	case InvalidDataLength:
		return "invalid data length"
	case InvalidDepthCode:
		return "invalid depth code"
	case InvalidFrequency:
		return "invalid frequency"
	default:
		return "unknown suggested-palette error"
	}
}

// SuggestedPaletteError reports what went wrong parsing, constructing, or
// serializing an sPLT chunk.
type SuggestedPaletteError struct {
	Kind SuggestedPaletteErrorKind

	Reason        string // set for InvalidName
	Got, Min      int    // set for InvalidChunkLength
	Bytes, Stride int    // set for InvalidDataLength
	Code          uint8  // set for InvalidDepthCode
}

func (e *SuggestedPaletteError) Error() string {
	switch e.Kind {
	case InvalidName:
		return fmt.Sprintf("png: sPLT: invalid name: %s", e.Reason)
	case InvalidChunkLength:
		return fmt.Sprintf("png: sPLT: chunk length %d shorter than minimum %d", e.Got, e.Min)
	case InvalidDataLength:
		return fmt.Sprintf("png: sPLT: entry data length %d not a multiple of %d", e.Bytes, e.Stride)
	case InvalidDepthCode:
		return fmt.Sprintf("png: sPLT: depth code %d not 8 or 16", e.Code)
	case InvalidFrequency:
		return "png: sPLT: frequencies not non-strictly descending"
	default:
		return "png: sPLT: " + e.Kind.String()
	}
}

// Entry8 is one sPLT entry at depth 8.
type Entry8 struct {
	R, G, B, A uint8
	Freq       uint16
}

// Entry16 is one sPLT entry at depth 16.
type Entry16 struct {
	R, G, B, A uint16
	Freq       uint16
}

// SuggestedPalette is the parsed sPLT chunk body: a name and a
// depth-tagged sequence of entries, exactly one of Entries8/Entries16
// populated according to Depth.
type SuggestedPalette struct {
	Name      string
	Depth     uint8
	Entries8  []Entry8
	Entries16 []Entry16
}

// validateName enforces the PNG-text-name rules: scalars in
// U+0020..U+007D or U+00A1..U+00FF, no leading/trailing space, no
// consecutive spaces, length 1..79.
func validateName(name []byte) error {
	n := len(name)
	if n < 1 || n > 79 {
		return &SuggestedPaletteError{Kind: InvalidName, Reason: "length must be 1..79"}
	}
	if name[0] == ' ' || name[n-1] == ' ' {
		return &SuggestedPaletteError{Kind: InvalidName, Reason: "no leading or trailing space"}
	}
	for i, c := range name {
		if !(c >= 0x20 && c <= 0x7D) && !(c >= 0xA1 && c <= 0xFF) {
			return &SuggestedPaletteError{Kind: InvalidName, Reason: "scalar out of range"}
		}
		if c == ' ' && i > 0 && name[i-1] == ' ' {
			return &SuggestedPaletteError{Kind: InvalidName, Reason: "no consecutive spaces"}
		}
	}
	return nil
}

func descending8(entries []Entry8) bool {
	for i := 1; i < len(entries); i++ {
		if entries[i].Freq > entries[i-1].Freq {
			return false
		}
	}
	return true
}

func descending16(entries []Entry16) bool {
	for i := 1; i < len(entries); i++ {
		if entries[i].Freq > entries[i-1].Freq {
			return false
		}
	}
	return true
}

// NewSuggestedPalette8 constructs and validates a depth-8 SuggestedPalette.
func NewSuggestedPalette8(name string, entries []Entry8) (*SuggestedPalette, error) {
	if err := validateName([]byte(name)); err != nil {
		return nil, err
	}
	if !descending8(entries) {
		return nil, &SuggestedPaletteError{Kind: InvalidFrequency}
	}
	return &SuggestedPalette{Name: name, Depth: 8, Entries8: entries}, nil
}

// NewSuggestedPalette16 constructs and validates a depth-16 SuggestedPalette.
func NewSuggestedPalette16(name string, entries []Entry16) (*SuggestedPalette, error) {
	if err := validateName([]byte(name)); err != nil {
		return nil, err
	}
	if !descending16(entries) {
		return nil, &SuggestedPaletteError{Kind: InvalidFrequency}
	}
	return &SuggestedPalette{Name: name, Depth: 16, Entries16: entries}, nil
}

// ParseSuggestedPalette parses an sPLT chunk body: a null-terminated
// name, a depth byte (8 or 16), and a sequence of fixed-stride entries.
func ParseSuggestedPalette(data []byte) (*SuggestedPalette, error) {
	idx := bytes.IndexByte(data, 0x00)
	if idx < 0 {
		return nil, &SuggestedPaletteError{Kind: InvalidChunkLength, Got: len(data), Min: 2}
	}
	name := data[:idx]
	if err := validateName(name); err != nil {
		return nil, err
	}
	if len(data) < idx+2 {
		return nil, &SuggestedPaletteError{Kind: InvalidChunkLength, Got: len(data), Min: idx + 2}
	}

	depth := data[idx+1]
	rest := data[idx+2:]

	switch depth {
	case 8:
		if len(rest)%6 != 0 {
			return nil, &SuggestedPaletteError{Kind: InvalidDataLength, Bytes: len(rest), Stride: 6}
		}
		n := len(rest) / 6
		entries := make([]Entry8, n)
		for i := 0; i < n; i++ {
			o := i * 6
			entries[i] = Entry8{
				R:    rest[o],
				G:    rest[o+1],
				B:    rest[o+2],
				A:    rest[o+3],
				Freq: binary.BigEndian.Uint16(rest[o+4 : o+6]),
			}
		}
		if !descending8(entries) {
			return nil, &SuggestedPaletteError{Kind: InvalidFrequency}
		}
		return &SuggestedPalette{Name: string(name), Depth: 8, Entries8: entries}, nil

	case 16:
		if len(rest)%10 != 0 {
			return nil, &SuggestedPaletteError{Kind: InvalidDataLength, Bytes: len(rest), Stride: 10}
		}
		n := len(rest) / 10
		entries := make([]Entry16, n)
		for i := 0; i < n; i++ {
			o := i * 10
			entries[i] = Entry16{
				R:    binary.BigEndian.Uint16(rest[o : o+2]),
				G:    binary.BigEndian.Uint16(rest[o+2 : o+4]),
				B:    binary.BigEndian.Uint16(rest[o+4 : o+6]),
				A:    binary.BigEndian.Uint16(rest[o+6 : o+8]),
				Freq: binary.BigEndian.Uint16(rest[o+8 : o+10]),
			}
		}
		if !descending16(entries) {
			return nil, &SuggestedPaletteError{Kind: InvalidFrequency}
		}
		return &SuggestedPalette{Name: string(name), Depth: 16, Entries16: entries}, nil

	default:
		return nil, &SuggestedPaletteError{Kind: InvalidDepthCode, Code: depth}
	}
}

// Serialize emits the byte-exact sPLT chunk body: name, a null
// terminator, the depth byte, then packed entries.
func (s *SuggestedPalette) Serialize() ([]byte, error) {
	if err := validateName([]byte(s.Name)); err != nil {
		return nil, err
	}

	switch s.Depth {
	case 8:
		if !descending8(s.Entries8) {
			return nil, &SuggestedPaletteError{Kind: InvalidFrequency}
		}
		buf := make([]byte, 0, len(s.Name)+2+len(s.Entries8)*6)
		buf = append(buf, s.Name...)
		buf = append(buf, 0x00, 0x08)
		for _, e := range s.Entries8 {
			buf = append(buf, e.R, e.G, e.B, e.A)
			buf = binary.BigEndian.AppendUint16(buf, e.Freq)
		}
		return buf, nil

	case 16:
		if !descending16(s.Entries16) {
			return nil, &SuggestedPaletteError{Kind: InvalidFrequency}
		}
		buf := make([]byte, 0, len(s.Name)+2+len(s.Entries16)*10)
		buf = append(buf, s.Name...)
		buf = append(buf, 0x00, 0x10)
		for _, e := range s.Entries16 {
			buf = binary.BigEndian.AppendUint16(buf, e.R)
			buf = binary.BigEndian.AppendUint16(buf, e.G)
			buf = binary.BigEndian.AppendUint16(buf, e.B)
			buf = binary.BigEndian.AppendUint16(buf, e.A)
			buf = binary.BigEndian.AppendUint16(buf, e.Freq)
		}
		return buf, nil

	default:
		return nil, &SuggestedPaletteError{Kind: InvalidDepthCode, Code: s.Depth}
	}
}
