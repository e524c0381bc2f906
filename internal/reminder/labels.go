package reminder

import "fmt"

// PickerOffsets are the lead times offered by the reminder picker UI,
// in minutes before the due date.
var PickerOffsets = []int{5, 15, 30, 60, 120, 720, 1440, 2880, 10080}

// OffsetLabel renders a minutes-before-due offset as a human phrase,
// e.g. 30 → "30 minutes", 120 → "2 hours", 2880 → "2 days".
func OffsetLabel(minutes int) string {
	return offsetLabel(minutes)
}

// reminderTitle renders the notification title for a reminder firing
// the given number of minutes ahead. Unlike the picker labels it
// bucketizes by threshold (5/15/30/60/120/1440), so a 90-minute lead
// reads as "2 hours" and anything within a day as "tomorrow".
func reminderTitle(minutes int) string {
	switch {
	case minutes <= 5:
		return "Task due in 5 minutes"
	case minutes <= 15:
		return "Task due in 15 minutes"
	case minutes <= 30:
		return "Task due in 30 minutes"
	case minutes <= 60:
		return "Task due in 1 hour"
	case minutes <= 120:
		return "Task due in 2 hours"
	case minutes <= 1440:
		return "Task due tomorrow"
	default:
		days := minutes / 1440
		if days == 1 {
			return "Task due in 1 day"
		}
		return fmt.Sprintf("Task due in %d days", days)
	}
}

// offsetLabel renders a minutes-before-due offset as the human phrase
// used in notification titles.
func offsetLabel(minutes int) string {
	switch {
	case minutes <= 0:
		return "now"
	case minutes%1440 == 0:
		days := minutes / 1440
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	case minutes%60 == 0:
		hours := minutes / 60
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	case minutes == 1:
		return "1 minute"
	default:
		return fmt.Sprintf("%d minutes", minutes)
	}
}
