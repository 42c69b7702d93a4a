package engine

import (
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/stromrallye/game/grid"
)

func TestDirectionTo(t *testing.T) {
	from := grid.Point{X: 2, Y: 2}
	tests := []struct {
		to   grid.Point
		want string
		ok   bool
	}{
		{grid.Point{X: 2, Y: 1}, Up, true},
		{grid.Point{X: 2, Y: 3}, Down, true},
		{grid.Point{X: 1, Y: 2}, Left, true},
		{grid.Point{X: 3, Y: 2}, Right, true},
		{grid.Point{X: 3, Y: 3}, "", false},
		{from, "", false},
	}
	for _, tt := range tests {
		got, ok := DirectionTo(from, tt.to)
		if got != tt.want || ok != tt.ok {
			t.Errorf("DirectionTo(%v, %v) = %q, %v; want %q, %v", from, tt.to, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPathToDirections(t *testing.T) {
	dirs, ok := PathToDirections(grid.Point{X: 1, Y: 1}, []grid.Point{{X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2}, {X: 1, Y: 1}})
	if !ok {
		t.Fatal("Expected a valid path")
	}
	want := []string{Right, Down, Left, Up}
	if strings.Join(dirs, ",") != strings.Join(want, ",") {
		t.Errorf("Got %v, want %v", dirs, want)
	}

	if _, ok := PathToDirections(grid.Point{X: 1, Y: 1}, []grid.Point{{X: 3, Y: 1}}); ok {
		t.Error("Expected a jump to be rejected")
	}
}

func TestFindNearestBattery(t *testing.T) {
	state := createTestGameState()

	pos, distance, found := FindNearestBattery(state)
	if !found {
		t.Fatal("Expected a charged battery")
	}
	// The drained battery at (1,1) is ignored.
	if pos != (grid.Point{X: 3, Y: 2}) || distance != 1 {
		t.Errorf("Got %v at %d", pos, distance)
	}

	state.Batteries[0].Charge = 0
	if _, _, found := FindNearestBattery(state); found {
		t.Error("Expected no charged battery")
	}
	if CountEmptyBatteries(state) != 2 {
		t.Errorf("Expected 2 empty batteries, got %d", CountEmptyBatteries(state))
	}
}

func TestAnalyzeChargeRisk(t *testing.T) {
	state := createTestGameState()
	if risk := AnalyzeChargeRisk(state); !strings.HasPrefix(risk, "SAFE") {
		t.Errorf("Expected SAFE, got %q", risk)
	}

	state.Charge = 1
	if risk := AnalyzeChargeRisk(state); !strings.HasPrefix(risk, "CAUTION") {
		t.Errorf("Expected CAUTION, got %q", risk)
	}

	state.RobotPos = grid.Point{X: 1, Y: 3}
	if risk := AnalyzeChargeRisk(state); !strings.HasPrefix(risk, "DANGER") {
		t.Errorf("Expected DANGER, got %q", risk)
	}

	state.Charge = 0
	if risk := AnalyzeChargeRisk(state); !strings.HasPrefix(risk, "CRITICAL") {
		t.Errorf("Expected CRITICAL, got %q", risk)
	}
}

func TestRenderBoard(t *testing.T) {
	state := InitGameStateFromPuzzle(&Puzzle{
		Size:  3,
		Robot: RobotSpec{Position: grid.Point{X: 1, Y: 1}, Charge: 2},
		Batteries: []BatterySpec{
			{Position: grid.Point{X: 3, Y: 1}, Charge: 12},
			{Position: grid.Point{X: 2, Y: 3}, Charge: 0},
		},
	})

	want := []string{
		" R  . 12",
		" .  .  .",
		" .  0  .",
	}
	got := RenderBoard(state)
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("RenderBoard =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}
