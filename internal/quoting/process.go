package quoting

import (
	"fmt"

	"github.com/fabworks/sheetquote/internal/catalog"
)

// ProcessCosts prices a part's routing steps for a quantity. Disabled
// steps produce no row. Steps referencing an unknown process code also
// produce no row and contribute zero, but the skip is surfaced as a
// warning so the understated cost is visible. Row order follows step
// order.
func ProcessCosts(steps []catalog.ProcessStep, processes map[string]catalog.ProcessDefinition, qty int, partCode string) (float64, []ProcessCostRow, []string) {
	var (
		total    float64
		rows     []ProcessCostRow
		warnings []string
	)

	for _, step := range steps {
		if !step.Enabled {
			continue
		}
		def, ok := processes[step.ProcessCode]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("part %s: unknown process %q, step skipped", partCode, step.ProcessCode))
			continue
		}

		runtimeCost := step.MinutesPerUnit * def.UnitRatePerMin * float64(qty)
		stepTotal := runtimeCost + def.SetupCost
		total += stepTotal

		rows = append(rows, ProcessCostRow{
			PartCode:       partCode,
			ProcessCode:    def.Code,
			Name:           def.Name,
			MinutesPerUnit: step.MinutesPerUnit,
			RatePerMin:     def.UnitRatePerMin,
			Qty:            qty,
			RuntimeCost:    runtimeCost,
			SetupCost:      def.SetupCost,
			TotalCost:      stepTotal,
		})
	}

	return total, rows, warnings
}
