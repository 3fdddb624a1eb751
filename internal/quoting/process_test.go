package quoting

import (
	"strings"
	"testing"

	"github.com/fabworks/sheetquote/internal/catalog"
)

func testProcesses() map[string]catalog.ProcessDefinition {
	return map[string]catalog.ProcessDefinition{
		"LASER": {Code: "LASER", Name: "Laser cutting", UnitRatePerMin: 2.5, SetupCost: 80},
		"BEND":  {Code: "BEND", Name: "Press brake", UnitRatePerMin: 1.2, SetupCost: 40},
	}
}

func TestProcessCostsPricesEnabledSteps(t *testing.T) {
	steps := []catalog.ProcessStep{
		{ProcessCode: "LASER", MinutesPerUnit: 2, Enabled: true},
		{ProcessCode: "BEND", MinutesPerUnit: 0.5, Enabled: true},
	}

	total, rows, warnings := ProcessCosts(steps, testProcesses(), 100, "PT-1")

	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	// 2 min * 2.5/min * 100 + 80 setup
	nearlyEqual(t, "laser runtime", rows[0].RuntimeCost, 500)
	nearlyEqual(t, "laser total", rows[0].TotalCost, 580)
	// 0.5 min * 1.2/min * 100 + 40 setup
	nearlyEqual(t, "bend total", rows[1].TotalCost, 100)
	nearlyEqual(t, "total", total, 680)

	if rows[0].ProcessCode != "LASER" || rows[1].ProcessCode != "BEND" {
		t.Fatalf("rows should keep step order: %+v", rows)
	}
}

func TestProcessCostsSkipsDisabledSteps(t *testing.T) {
	steps := []catalog.ProcessStep{
		{ProcessCode: "LASER", MinutesPerUnit: 2, Enabled: false},
		{ProcessCode: "BEND", MinutesPerUnit: 1, Enabled: true},
	}

	total, rows, warnings := ProcessCosts(steps, testProcesses(), 10, "PT-1")

	if len(warnings) != 0 {
		t.Fatalf("disabled steps should not warn: %v", warnings)
	}
	if len(rows) != 1 || rows[0].ProcessCode != "BEND" {
		t.Fatalf("expected only the enabled step, got %+v", rows)
	}
	nearlyEqual(t, "total", total, 1*1.2*10+40)
}

func TestProcessCostsUnknownCodeContributesZeroAndWarns(t *testing.T) {
	steps := []catalog.ProcessStep{
		{ProcessCode: "ANODIZE", MinutesPerUnit: 3, Enabled: true},
		{ProcessCode: "LASER", MinutesPerUnit: 1, Enabled: true},
	}

	total, rows, warnings := ProcessCosts(steps, testProcesses(), 10, "PT-9")

	if len(rows) != 1 {
		t.Fatalf("unknown process must not produce a row, got %+v", rows)
	}
	nearlyEqual(t, "total", total, 1*2.5*10+80)
	if len(warnings) != 1 || !strings.Contains(warnings[0], "ANODIZE") {
		t.Fatalf("expected one warning naming the unknown process, got %v", warnings)
	}
}
