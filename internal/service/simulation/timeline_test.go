package simulation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/plantops/capaplan/internal/domain/models"
)

func TestShiftWindowsSkipNonWorkDays(t *testing.T) {
	cal := models.ShiftCalendar{EnabledShifts: 1, ShiftHours: 8, WorkDaysPerWeek: 5}
	windows := shiftWindows(cal, 7)

	if len(windows) != 5 {
		t.Fatalf("got %d windows for a 5-day week, want 5", len(windows))
	}
	if windows[0].start != 0 || windows[0].end != 480 {
		t.Errorf("first window = %+v, want [0,480)", windows[0])
	}
}

func TestShiftWindowsWeekendOvertime(t *testing.T) {
	cal := models.ShiftCalendar{
		EnabledShifts: 1, ShiftHours: 8, WorkDaysPerWeek: 5,
		WeekendOvertime: true, WeekendOvertimeHours: 4,
	}
	windows := shiftWindows(cal, 7)
	if len(windows) != 7 {
		t.Fatalf("got %d windows, want 7 with weekend overtime", len(windows))
	}
	saturday := windows[5]
	if saturday.length() != 240 {
		t.Errorf("saturday window = %f minutes, want 240", saturday.length())
	}
}

func TestTimelineAdvanceAcrossWindows(t *testing.T) {
	tl := &timeline{open: []interval{{0, 480}, {1440, 1920}}}

	cases := []struct {
		name       string
		from, work float64
		wantFinish float64
		wantOK     bool
	}{
		{"fits in first window", 0, 60, 60, true},
		{"starts mid window", 400, 50, 450, true},
		{"spans the gap", 450, 100, 1510, true},
		{"starts in the gap", 600, 30, 1470, true},
		{"exceeds horizon", 1900, 100, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			finish, ok := tl.advance(tc.from, tc.work)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && math.Abs(finish-tc.wantFinish) > 1e-9 {
				t.Errorf("finish = %f, want %f", finish, tc.wantFinish)
			}
		})
	}
}

func TestSubtractIntervals(t *testing.T) {
	open := []interval{{0, 480}}
	down := []interval{{100, 150}, {460, 500}}

	got := subtractIntervals(open, down)
	want := []interval{{0, 100}, {150, 460}}
	if len(got) != len(want) {
		t.Fatalf("got %d intervals, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("interval %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDrawBreakdownsReproducible(t *testing.T) {
	windows := []interval{{0, 480}, {1440, 1920}}
	breakdowns := []models.Breakdown{
		{MachineTool: "sewing", BreakdownPct: 50},
		{MachineTool: "cutting", BreakdownPct: 30},
	}

	a := drawBreakdowns(breakdowns, windows, rand.New(rand.NewSource(9)))
	b := drawBreakdowns(breakdowns, windows, rand.New(rand.NewSource(9)))

	if len(a) != len(b) {
		t.Fatalf("draws differ in machine classes: %v vs %v", a, b)
	}
	for mt, ivs := range a {
		if len(b[mt]) != len(ivs) {
			t.Fatalf("machine %s: %d vs %d intervals", mt, len(ivs), len(b[mt]))
		}
		for i := range ivs {
			if ivs[i] != b[mt][i] {
				t.Errorf("machine %s interval %d: %+v vs %+v", mt, i, ivs[i], b[mt][i])
			}
		}
	}
}

func TestTriangularWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		v := triangular(0.75, 1.0, 1.25, rng)
		if v < 0.75 || v > 1.25 {
			t.Fatalf("sample %f outside [0.75, 1.25]", v)
		}
	}
}

func TestPoolAssignmentGreedyLongestQueue(t *testing.T) {
	queues := map[string]int{"a/10": 5, "b/20": 2, "c/30": 0}

	got := poolAssignment(queues, 4)
	// One operator at a time to the longest queue, ties to the first key:
	// a/10 absorbs all four before b/20 ever out-queues it.
	if got["a/10"] != 4 || got["b/20"] != 0 {
		t.Errorf("assignment = %v, want a/10:4", got)
	}
	if got["c/30"] != 0 {
		t.Errorf("empty queue received operators: %v", got)
	}

	// Pure function: same inputs, same split.
	again := poolAssignment(queues, 4)
	for k, v := range got {
		if again[k] != v {
			t.Errorf("assignment not stable for %s: %d vs %d", k, v, again[k])
		}
	}
}
