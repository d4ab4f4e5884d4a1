package changelog

import (
	"fmt"
	"time"
)

const (
	secondsPerMinuteConstant  = 60
	minutesPerHourConstant    = 60
	hoursPerDayConstant       = 24
	clockTemplateConstant     = "%d:%02d:%02d"
	singleDayTemplateConstant = "1 day, %s"
	multiDayTemplateConstant  = "%d days, %s"
)

// FormatElapsed renders the wall-clock duration between two instants as a
// days-and-clock string, for example "2 days, 0:00:00" or "0:05:00".
func FormatElapsed(previousTime time.Time, currentTime time.Time) string {
	elapsed := currentTime.Sub(previousTime)
	if elapsed < 0 {
		elapsed = 0
	}

	totalSeconds := int64(elapsed / time.Second)
	seconds := totalSeconds % secondsPerMinuteConstant
	totalMinutes := totalSeconds / secondsPerMinuteConstant
	minutes := totalMinutes % minutesPerHourConstant
	totalHours := totalMinutes / minutesPerHourConstant
	hours := totalHours % hoursPerDayConstant
	days := totalHours / hoursPerDayConstant

	clockText := fmt.Sprintf(clockTemplateConstant, hours, minutes, seconds)
	switch {
	case days == 1:
		return fmt.Sprintf(singleDayTemplateConstant, clockText)
	case days > 1:
		return fmt.Sprintf(multiDayTemplateConstant, days, clockText)
	default:
		return clockText
	}
}
