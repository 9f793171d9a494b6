package refresh

import "time"

// scheduledHour is the local hour of day a scheduled refresh runs at.
const scheduledHour = 2

// nextScheduledRun returns the first Sunday of the month after now, at
// 02:00 in now's location. Refreshes are monthly; running them on an
// early-morning weekend slot keeps them out of clinic hours.
func nextScheduledRun(now time.Time) time.Time {
	firstOfNext := time.Date(now.Year(), now.Month(), 1, scheduledHour, 0, 0, 0, now.Location()).AddDate(0, 1, 0)

	daysUntilSunday := (int(time.Sunday) - int(firstOfNext.Weekday()) + 7) % 7
	return firstOfNext.AddDate(0, 0, daysUntilSunday)
}
