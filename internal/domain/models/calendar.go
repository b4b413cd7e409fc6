package models

// ShiftCalendar defines the working time available per resource per day.
type ShiftCalendar struct {
	EnabledShifts        int     `bson:"enabled_shifts" json:"enabled_shifts"`
	ShiftHours           float64 `bson:"shift_hours" json:"shift_hours"`
	WorkDaysPerWeek      int     `bson:"work_days_per_week" json:"work_days_per_week"`
	WeekdayOvertime      bool    `bson:"weekday_overtime" json:"weekday_overtime"`
	WeekdayOvertimeHours float64 `bson:"weekday_overtime_hours" json:"weekday_overtime_hours"`
	WeekendOvertime      bool    `bson:"weekend_overtime" json:"weekend_overtime"`
	WeekendOvertimeHours float64 `bson:"weekend_overtime_hours" json:"weekend_overtime_hours"`
}

// BaseMinutesPerDay returns the regular (non-overtime) minutes of a work day.
func (c ShiftCalendar) BaseMinutesPerDay() float64 {
	return c.ShiftHours * 60 * float64(c.EnabledShifts)
}

// MinutesForDay returns the available minutes for the given weekday,
// including overtime when the calendar enables it. Weekdays outside the
// configured work week yield weekend-overtime minutes only.
func (c ShiftCalendar) MinutesForDay(weekday int) float64 {
	// weekday follows time.Weekday: 0 = Sunday.
	workday := weekday >= 1 && weekday <= c.WorkDaysPerWeek
	if workday {
		minutes := c.BaseMinutesPerDay()
		if c.WeekdayOvertime {
			minutes += c.WeekdayOvertimeHours * 60
		}
		return minutes
	}
	if c.WeekendOvertime {
		return c.WeekendOvertimeHours * 60
	}
	return 0
}
