package png

import "testing"

func mustFormat(t *testing.T, depth uint8, color ColorCode) Format {
	t.Helper()
	f, err := NewFormat(depth, color)
	if err != nil {
		t.Fatalf("NewFormat(%d, %s): %v", depth, color, err)
	}
	return f
}

// IHDR, IDAT, IEND with grayscale8 is accepted in order.
func TestOrderingGrayscale8MinimalStream(t *testing.T) {
	var v OrderingValidator
	format := mustFormat(t, 8, ColorGrayscale)
	if err := v.PushIHDR(format); err != nil {
		t.Fatalf("IHDR rejected: %v", err)
	}
	if err := v.Push(TagIDAT); err != nil {
		t.Fatalf("IDAT rejected: %v", err)
	}
	if err := v.Push(TagIEND); err != nil {
		t.Fatalf("IEND rejected: %v", err)
	}
}

// PLTE accepted for rgb8, rejected as IllegalChunk for grayscale8.
func TestOrderingPLTELegalOnlyForColorFormats(t *testing.T) {
	var v OrderingValidator
	format := mustFormat(t, 8, ColorTrueColor)
	if err := v.PushIHDR(format); err != nil {
		t.Fatalf("IHDR rejected: %v", err)
	}
	if err := v.Push(TagPLTE); err != nil {
		t.Fatalf("PLTE rejected for rgb8: %v", err)
	}

	var v2 OrderingValidator
	gray := mustFormat(t, 8, ColorGrayscale)
	if err := v2.PushIHDR(gray); err != nil {
		t.Fatalf("IHDR rejected: %v", err)
	}
	err := v2.Push(TagPLTE)
	if err == nil || err.Kind != IllegalChunk {
		t.Fatalf("PLTE on grayscale8 = %v, want IllegalChunk", err)
	}
}

// PLTE after IDAT is MisplacedChunk.
func TestOrderingPLTEAfterIDATMisplaced(t *testing.T) {
	var v OrderingValidator
	format := mustFormat(t, 8, ColorTrueColor)
	if err := v.PushIHDR(format); err != nil {
		t.Fatalf("IHDR rejected: %v", err)
	}
	if err := v.Push(TagIDAT); err != nil {
		t.Fatalf("IDAT rejected: %v", err)
	}
	err := v.Push(TagPLTE)
	if err == nil || err.Kind != MisplacedChunk {
		t.Fatalf("PLTE after IDAT = %v, want MisplacedChunk", err)
	}
}

// IHDR, IDAT, IDAT, tEXt, IDAT, IEND — the third IDAT is rejected since
// the run of IDAT chunks was interrupted by tEXt.
func TestOrderingIDATRunInterruptedByOtherChunk(t *testing.T) {
	var v OrderingValidator
	format := mustFormat(t, 8, ColorTrueColor)
	if err := v.PushIHDR(format); err != nil {
		t.Fatalf("IHDR rejected: %v", err)
	}
	if err := v.Push(TagIDAT); err != nil {
		t.Fatalf("first IDAT rejected: %v", err)
	}
	if err := v.Push(TagIDAT); err != nil {
		t.Fatalf("second IDAT rejected: %v", err)
	}
	if err := v.Push(TagTEXT); err != nil {
		t.Fatalf("tEXt rejected: %v", err)
	}
	err := v.Push(TagIDAT)
	if err == nil || err.Kind != MisplacedChunk {
		t.Fatalf("third IDAT = %v, want MisplacedChunk", err)
	}
}

func TestOrderingMissingHeader(t *testing.T) {
	var v OrderingValidator
	err := v.Push(TagIDAT)
	if err == nil || err.Kind != MissingHeader {
		t.Fatalf("push before IHDR = %v, want MissingHeader", err)
	}
}

func TestOrderingTRNSIllegalForAlphaFormats(t *testing.T) {
	var v OrderingValidator
	format := mustFormat(t, 8, ColorTrueColorAlpha)
	if err := v.PushIHDR(format); err != nil {
		t.Fatalf("IHDR rejected: %v", err)
	}
	err := v.Push(TagTRNS)
	if err == nil || err.Kind != IllegalChunk {
		t.Fatalf("tRNS on rgba8 = %v, want IllegalChunk", err)
	}
}

func TestOrderingMissingPaletteForIndexed(t *testing.T) {
	var v OrderingValidator
	format := mustFormat(t, 8, ColorIndexed)
	if err := v.PushIHDR(format); err != nil {
		t.Fatalf("IHDR rejected: %v", err)
	}
	err := v.Push(TagIDAT)
	if err == nil || err.Kind != MissingPalette {
		t.Fatalf("IDAT without PLTE on indexed format = %v, want MissingPalette", err)
	}
}

func TestOrderingDuplicateIHDR(t *testing.T) {
	var v OrderingValidator
	format := mustFormat(t, 8, ColorGrayscale)
	if err := v.PushIHDR(format); err != nil {
		t.Fatalf("IHDR rejected: %v", err)
	}
	err := v.PushIHDR(format)
	if err == nil || err.Kind != DuplicateChunk {
		t.Fatalf("duplicate IHDR = %v, want DuplicateChunk", err)
	}
}

// gAMA, PLTE, and sPLT are each non-repeatable by the cascading rule in
// R6: the beforePLTE and beforeIDAT classes inherit non-repeatability
// from the {IHDR, tIME} clause, not just IHDR/tIME themselves.
func TestOrderingDuplicateCascadedClasses(t *testing.T) {
	t.Run("gAMA", func(t *testing.T) {
		var v OrderingValidator
		format := mustFormat(t, 8, ColorTrueColor)
		if err := v.PushIHDR(format); err != nil {
			t.Fatalf("IHDR rejected: %v", err)
		}
		if err := v.Push(TagGAMA); err != nil {
			t.Fatalf("first gAMA rejected: %v", err)
		}
		err := v.Push(TagGAMA)
		if err == nil || err.Kind != DuplicateChunk {
			t.Fatalf("duplicate gAMA = %v, want DuplicateChunk", err)
		}
	})

	t.Run("PLTE", func(t *testing.T) {
		var v OrderingValidator
		format := mustFormat(t, 8, ColorTrueColor)
		if err := v.PushIHDR(format); err != nil {
			t.Fatalf("IHDR rejected: %v", err)
		}
		if err := v.Push(TagPLTE); err != nil {
			t.Fatalf("first PLTE rejected: %v", err)
		}
		err := v.Push(TagPLTE)
		if err == nil || err.Kind != DuplicateChunk {
			t.Fatalf("duplicate PLTE = %v, want DuplicateChunk", err)
		}
	})

	t.Run("sPLT", func(t *testing.T) {
		var v OrderingValidator
		format := mustFormat(t, 8, ColorTrueColor)
		if err := v.PushIHDR(format); err != nil {
			t.Fatalf("IHDR rejected: %v", err)
		}
		if err := v.Push(TagSPLT); err != nil {
			t.Fatalf("first sPLT rejected: %v", err)
		}
		err := v.Push(TagSPLT)
		if err == nil || err.Kind != DuplicateChunk {
			t.Fatalf("duplicate sPLT = %v, want DuplicateChunk", err)
		}
	})
}

// Every chunk after an accepted IEND is rejected, with no exception for
// a second IEND when IDAT was never seen.
func TestOrderingNothingFollowsIEND(t *testing.T) {
	var v OrderingValidator
	format := mustFormat(t, 8, ColorGrayscale)
	if err := v.PushIHDR(format); err != nil {
		t.Fatalf("IHDR rejected: %v", err)
	}
	if err := v.Push(TagIEND); err != nil {
		t.Fatalf("IEND rejected: %v", err)
	}
	if err := v.Push(TagIEND); err == nil || err.Kind != PrematureIEND {
		t.Fatalf("second IEND = %v, want PrematureIEND", err)
	}
	if err := v.Push(TagTEXT); err == nil || err.Kind != PrematureIEND {
		t.Fatalf("tEXt after IEND = %v, want PrematureIEND", err)
	}
}

func TestOrderingPLTEMustPrecedeBkgdHistTrns(t *testing.T) {
	var v OrderingValidator
	format := mustFormat(t, 8, ColorTrueColor)
	if err := v.PushIHDR(format); err != nil {
		t.Fatalf("IHDR rejected: %v", err)
	}
	if err := v.Push(TagBKGD); err != nil {
		t.Fatalf("bKGD rejected: %v", err)
	}
	err := v.Push(TagPLTE)
	if err == nil || err.Kind != MisplacedChunk {
		t.Fatalf("PLTE after bKGD = %v, want MisplacedChunk", err)
	}
}

func TestOrderingRejectedPushLeavesStateUnchanged(t *testing.T) {
	var v OrderingValidator
	format := mustFormat(t, 8, ColorGrayscale)
	if err := v.PushIHDR(format); err != nil {
		t.Fatalf("IHDR rejected: %v", err)
	}
	if err := v.Push(TagIDAT); err != nil {
		t.Fatalf("IDAT rejected: %v", err)
	}
	before := v.lastValid
	if err := v.Push(TagPLTE); err == nil {
		t.Fatalf("expected PLTE to be rejected after IDAT")
	}
	if v.lastValid != before {
		t.Fatalf("lastValid changed on rejected push: got %s, want %s", v.lastValid, before)
	}
	if v.seen[TagPLTE] {
		t.Fatalf("rejected chunk recorded in seen set")
	}
}
