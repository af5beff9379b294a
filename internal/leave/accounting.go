package leave

import (
	"time"

	"github.com/frahmantamala/leaveflow/internal/core/common/validation"
)

const day = 24 * time.Hour

// DaySpan counts the calendar days from start to end, both included.
func DaySpan(start, end time.Time) int {
	start, end = validation.TruncateDate(start), validation.TruncateDate(end)
	return int(end.Sub(start)/day) + 1
}

// Summary is a derived view over an employee's requests and is never stored.
type Summary struct {
	UsedDays      int `json:"usedDays"`
	RemainingDays int `json:"remainingDays"`
	TotalDays     int `json:"totalLeaveDays"`
}

// Summarize counts approved days against allowance. Remaining may go negative.
func Summarize(requests []*Request, allowance int) Summary {
	used := 0
	for _, r := range requests {
		if r.Status == StatusApproved {
			used += r.Duration()
		}
	}
	return Summary{
		UsedDays:      used,
		RemainingDays: allowance - used,
		TotalDays:     allowance,
	}
}
