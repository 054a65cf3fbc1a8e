package schedule

import "time"

// Frequency is a user's digest batching preference for a category/channel.
type Frequency string

const (
	FrequencyInstant Frequency = "instant"
	FrequencyHourly  Frequency = "hourly"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
)

// digestHour is the local-reference hour daily and weekly digests fire at.
const digestHour = 9

// NextDigest computes when a digest batch for the given frequency should be
// dispatched, relative to now:
//
//   - hourly: top of the next hour
//   - daily: tomorrow at 09:00
//   - weekly: next Monday at 09:00, never the same day; a weekly digest
//     queued on a Monday waits a full week
//   - anything else: one hour from now
func NextDigest(now time.Time, freq Frequency) time.Time {
	switch freq {
	case FrequencyHourly:
		return time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location()).
			Add(time.Hour)

	case FrequencyDaily:
		next := now.AddDate(0, 0, 1)
		return time.Date(next.Year(), next.Month(), next.Day(), digestHour, 0, 0, 0, now.Location())

	case FrequencyWeekly:
		daysUntilMonday := (8 - int(now.Weekday())) % 7
		if daysUntilMonday == 0 {
			daysUntilMonday = 7
		}
		next := now.AddDate(0, 0, daysUntilMonday)
		return time.Date(next.Year(), next.Month(), next.Day(), digestHour, 0, 0, 0, now.Location())

	default:
		return now.Add(time.Hour)
	}
}
