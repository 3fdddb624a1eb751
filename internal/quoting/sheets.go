package quoting

import (
	"math"
	"sort"

	"github.com/fabworks/sheetquote/internal/catalog"
)

// EvaluateSheetOptions ranks a material's sheet stocks for a part.
// Only options closest in thickness to the part survive (ties keep
// every tied candidate); each survivor is laid out and costed as
// sheetsNeeded times its sheet price, then the candidates are sorted
// ascending by material cost. The first row is the recommendation.
// An empty option list returns no ranking and no recommendation; the
// caller treats that as unpriceable, not as an error.
func EvaluateSheetOptions(options []catalog.SheetOption, part catalog.Part, qty int) ([]SheetRow, *SheetRow) {
	if len(options) == 0 {
		return nil, nil
	}

	minDiff := math.Inf(1)
	for _, opt := range options {
		if d := math.Abs(opt.ThicknessMM - part.ThicknessMM); d < minDiff {
			minDiff = d
		}
	}

	var rows []SheetRow
	for _, opt := range options {
		if math.Abs(opt.ThicknessMM-part.ThicknessMM) != minDiff {
			continue
		}
		calc := ComputeLayout(opt, part, qty, 0)
		rows = append(rows, SheetRow{
			SheetSpec:      opt.Spec(),
			SheetPrice:     opt.SheetPrice,
			PiecesPerSheet: calc.PiecesPerSheet,
			SheetsNeeded:   calc.SheetsNeeded,
			MaterialCost:   float64(calc.SheetsNeeded) * opt.SheetPrice,
			Option:         opt,
			Layout:         calc,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].MaterialCost < rows[j].MaterialCost
	})

	recommended := rows[0]
	return rows, &recommended
}

// ApplySheetOverride pins one candidate from an existing ranking and
// re-runs the layout with the supplied pieces-per-sheet override. The
// other candidates are not re-ranked. An empty SheetSpec pins the
// recommended (first) row. Returns nil when the spec matches no
// candidate.
func ApplySheetOverride(rows []SheetRow, part catalog.Part, qty int, ov Override) *SheetRow {
	if len(rows) == 0 {
		return nil
	}

	var chosen *SheetRow
	if ov.SheetSpec == "" {
		chosen = &rows[0]
	} else {
		for i := range rows {
			if rows[i].SheetSpec == ov.SheetSpec {
				chosen = &rows[i]
				break
			}
		}
	}
	if chosen == nil {
		return nil
	}

	calc := ComputeLayout(chosen.Option, part, qty, ov.PiecesPerSheet)
	return &SheetRow{
		SheetSpec:      chosen.SheetSpec,
		SheetPrice:     chosen.SheetPrice,
		PiecesPerSheet: calc.PiecesPerSheet,
		SheetsNeeded:   calc.SheetsNeeded,
		MaterialCost:   float64(calc.SheetsNeeded) * chosen.Option.SheetPrice,
		Option:         chosen.Option,
		Layout:         calc,
	}
}
