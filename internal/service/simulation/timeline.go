package simulation

import (
	"math/rand"
	"sort"

	"github.com/plantops/capaplan/internal/domain/models"
)

const minutesPerDay = 1440

// interval is a half-open [start, end) span of simulated minutes.
type interval struct {
	start, end float64
}

func (iv interval) length() float64 { return iv.end - iv.start }

// shiftWindows builds the open working windows of the calendar over the
// horizon. Day d occupies [d*1440, (d+1)*1440); its shifts open at the start
// of the day. The horizon's first day is treated as a Monday.
func shiftWindows(cal models.ShiftCalendar, horizonDays int) []interval {
	var windows []interval
	for d := 0; d < horizonDays; d++ {
		weekday := (d + 1) % 7 // day 0 = Monday = time.Weekday 1
		minutes := cal.MinutesForDay(weekday)
		if minutes <= 0 {
			continue
		}
		if minutes > minutesPerDay {
			minutes = minutesPerDay
		}
		dayStart := float64(d) * minutesPerDay
		windows = append(windows, interval{start: dayStart, end: dayStart + minutes})
	}
	return windows
}

// subtractIntervals removes the down spans from the open windows.
func subtractIntervals(open, down []interval) []interval {
	if len(down) == 0 {
		return open
	}
	sorted := append([]interval{}, down...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	var out []interval
	for _, win := range open {
		cur := win
		for _, d := range sorted {
			if d.end <= cur.start || d.start >= cur.end {
				continue
			}
			if d.start > cur.start {
				out = append(out, interval{start: cur.start, end: d.start})
			}
			if d.end >= cur.end {
				cur.start = cur.end
				break
			}
			cur.start = d.end
		}
		if cur.length() > 0 {
			out = append(out, cur)
		}
	}
	return out
}

// timeline is the effective availability of one machine class: shift windows
// minus its breakdown intervals.
type timeline struct {
	open []interval
}

// totalOpen is the machine's available minutes across the horizon.
func (t *timeline) totalOpen() float64 {
	var total float64
	for _, iv := range t.open {
		total += iv.length()
	}
	return total
}

// advance maps `work` busy minutes onto the open intervals starting no
// earlier than `from`. It returns the finish time, or ok=false when the
// horizon's open time cannot absorb the work.
func (t *timeline) advance(from, work float64) (finish float64, ok bool) {
	remaining := work
	for _, iv := range t.open {
		if iv.end <= from {
			continue
		}
		start := iv.start
		if from > start {
			start = from
		}
		capacity := iv.end - start
		if capacity >= remaining {
			return start + remaining, true
		}
		remaining -= capacity
	}
	return 0, false
}

// nextOpen returns the earliest open instant at or after `from`, or ok=false
// when the horizon has no open time left.
func (t *timeline) nextOpen(from float64) (float64, bool) {
	for _, iv := range t.open {
		if iv.end <= from {
			continue
		}
		if from >= iv.start {
			return from, true
		}
		return iv.start, true
	}
	return 0, false
}

// drawBreakdowns realizes stochastic downtime per machine class: each day,
// with probability breakdown_pct/100, one outage lasting breakdown_pct% of
// the day's window, starting at a uniform offset. Machine classes are
// processed in sorted order and days ascending so the rng draw sequence is
// reproducible.
func drawBreakdowns(breakdowns []models.Breakdown, windows []interval, rng *rand.Rand) map[string][]interval {
	classes := make([]models.Breakdown, 0, len(breakdowns))
	for _, b := range breakdowns {
		if b.BreakdownPct > 0 {
			classes = append(classes, b)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].MachineTool < classes[j].MachineTool })

	downs := make(map[string][]interval, len(classes))
	for _, b := range classes {
		p := b.BreakdownPct / 100
		if p > 1 {
			p = 1
		}
		for _, win := range windows {
			if rng.Float64() >= p {
				continue
			}
			duration := win.length() * p
			offset := rng.Float64() * (win.length() - duration)
			start := win.start + offset
			downs[b.MachineTool] = append(downs[b.MachineTool], interval{start: start, end: start + duration})
		}
	}
	return downs
}
