package png

import "fmt"

// OrderingErrorKind classifies why a chunk push was rejected.
type OrderingErrorKind int

const (
	MissingHeader OrderingErrorKind = iota
	PrematureIEND
	IllegalChunk
	MisplacedChunk
	DuplicateChunk
	MissingPalette
)

func (k OrderingErrorKind) String() string {
	switch k {
	case MissingHeader:
		return "missing header"
	case PrematureIEND:
		return "premature IEND"
	case IllegalChunk:
		return "illegal chunk"
	case MisplacedChunk:
		return "misplaced chunk"
	case DuplicateChunk:
		return "duplicate chunk"
	case MissingPalette:
		return "missing palette"
	default:
		return "unknown ordering error"
	}
}

// OrderingError reports the tag that was rejected and why.
type OrderingError struct {
	Kind OrderingErrorKind
	Tag  ChunkTag
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("png: %s: %s", e.Kind, e.Tag)
}

// OrderingValidator is a state machine over chunk type tags in stream
// order. It maintains the set of tags seen so far and the last accepted
// tag, and validates every push against the PNG chunk-ordering rules
// before advancing.
//
// The zero value is a ready-to-use validator in the pre-stream state,
// represented here as `started == false` rather than as a wire-level
// sentinel tag.
type OrderingValidator struct {
	started   bool
	lastValid ChunkTag
	seen      map[ChunkTag]bool
	format    *Format
}

// PushIHDR pushes the IHDR chunk, supplying the Format the framer
// decoded from it. Format acquisition is a side effect of pushing IHDR,
// but the validator is told the format rather than deriving it itself,
// since the validator works over tags alone.
func (v *OrderingValidator) PushIHDR(format Format) *OrderingError {
	return v.push(TagIHDR, &format)
}

// Push validates and, on acceptance, records the given chunk tag. It
// returns nil on acceptance; on rejection, state is unchanged — the
// offending tag is not added to the seen set and lastValid is untouched.
func (v *OrderingValidator) Push(tag ChunkTag) *OrderingError {
	return v.push(tag, nil)
}

func (v *OrderingValidator) push(tag ChunkTag, ihdrFormat *Format) *OrderingError {
	// First chunk must be IHDR.
	if !v.started && tag != TagIHDR {
		return &OrderingError{Kind: MissingHeader, Tag: tag}
	}

	// Once IEND has been accepted, every subsequent push is rejected,
	// with no exception.
	if v.started && v.lastValid == TagIEND {
		return &OrderingError{Kind: PrematureIEND, Tag: tag}
	}

	// Format must be known by this point (it is, once IHDR is accepted,
	// since PushIHDR sets it as part of acceptance below; this guards
	// any caller that somehow pushes before IHDR succeeds).
	if v.format == nil && tag != TagIHDR {
		return &OrderingError{Kind: MissingHeader, Tag: tag}
	}

	if v.format != nil {
		// tRNS illegal for alpha formats.
		if tag == TagTRNS && v.format.HasAlpha() {
			return &OrderingError{Kind: IllegalChunk, Tag: tag}
		}

		// PLTE requires has_color, and must precede bKGD/hIST/tRNS.
		if tag == TagPLTE {
			if !v.format.HasColor() {
				return &OrderingError{Kind: IllegalChunk, Tag: tag}
			}
			if v.seen[TagBKGD] || v.seen[TagHIST] || v.seen[TagTRNS] {
				return &OrderingError{Kind: MisplacedChunk, Tag: tag}
			}
		}
	}

	// Cumulative placement-by-class.
	if cls, ok := chunkClasses[tag]; ok {
		if cls.beforePLTE && v.seen[TagPLTE] {
			return &OrderingError{Kind: MisplacedChunk, Tag: tag}
		}
		if cls.beforeIDAT && v.seen[TagIDAT] {
			return &OrderingError{Kind: MisplacedChunk, Tag: tag}
		}
		if cls.nonRepeatable && v.seen[tag] {
			return &OrderingError{Kind: DuplicateChunk, Tag: tag}
		}
	}

	// IDAT blocks must be consecutive; indexed formats need PLTE by the
	// first IDAT.
	if tag == TagIDAT {
		if v.lastValid != TagIDAT && v.seen[TagIDAT] {
			return &OrderingError{Kind: MisplacedChunk, Tag: tag}
		}
		if !v.seen[TagIDAT] && v.format != nil && v.format.IsIndexed() && !v.seen[TagPLTE] {
			return &OrderingError{Kind: MissingPalette, Tag: tag}
		}
	}

	// Accept.
	if tag == TagIHDR && !v.started && ihdrFormat != nil {
		v.format = ihdrFormat
	}
	v.started = true
	v.lastValid = tag
	if v.seen == nil {
		v.seen = make(map[ChunkTag]bool)
	}
	v.seen[tag] = true
	return nil
}

// Format returns the format derived from IHDR, or false if IHDR has not
// yet been pushed.
func (v *OrderingValidator) Format() (Format, bool) {
	if v.format == nil {
		return Format{}, false
	}
	return *v.format, true
}
