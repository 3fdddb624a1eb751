package quoting

import (
	"math"

	"github.com/fabworks/sheetquote/internal/catalog"
)

// ComputeLayout fits a part's blanks onto one sheet option using a
// coarse axis-aligned grid: orientation A as-is, orientation B with
// axes swapped when rotation is allowed. Kerf is added to each blank
// dimension as cutting pitch and the edge margin shrinks the usable
// area on all sides. The nesting efficiency discounts the grid count
// but the result never drops below one piece per sheet, so the
// downstream sheet count can always divide by it. A positive
// piecesOverride supersedes the calculated count; the calculated value
// is preserved in PiecesPerSheetCalc for audit.
func ComputeLayout(opt catalog.SheetOption, part catalog.Part, qty int, piecesOverride int) LayoutResult {
	usableL := math.Max(opt.SheetLengthMM-2*part.EdgeMarginMM, 0)
	usableW := math.Max(opt.SheetWidthMM-2*part.EdgeMarginMM, 0)
	pitchL := part.BlankLengthMM + part.KerfMM
	pitchW := part.BlankWidthMM + part.KerfMM

	countA := gridCount(usableL, pitchL) * gridCount(usableW, pitchW)

	countB := 0
	if part.AllowRotate {
		countB = gridCount(usableL, pitchW) * gridCount(usableW, pitchL)
	}

	rawCount := countA
	if countB > rawCount {
		rawCount = countB
	}

	piecesCalc := 1
	if rawCount > 0 {
		piecesCalc = int(math.Floor(float64(rawCount) * part.NestEfficiency))
		if piecesCalc < 1 {
			piecesCalc = 1
		}
	}

	pieces := piecesCalc
	if piecesOverride > 0 {
		pieces = piecesOverride
	}

	sheetsNeeded := int(math.Ceil(float64(qty) / float64(pieces)))

	return LayoutResult{
		CountA:             countA,
		CountB:             countB,
		RawCount:           rawCount,
		PiecesPerSheetCalc: piecesCalc,
		PiecesPerSheet:     pieces,
		SheetsNeeded:       sheetsNeeded,
	}
}

func gridCount(usable, pitch float64) int {
	if pitch <= 0 {
		return 0
	}
	return int(math.Floor(usable / pitch))
}
