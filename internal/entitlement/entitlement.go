// Package entitlement maps tenure to an annual leave allowance and keeps the
// cached allowance on every employee in step with it.
package entitlement

import "time"

const (
	// LowerTierDays applies below SeniorityYears of completed tenure.
	// Older deployments granted 20 days here; 14 is the current policy.
	LowerTierDays = 14
	// HigherTierDays applies from SeniorityYears of completed tenure.
	HigherTierDays = 28
	SeniorityYears = 5
)

// CompletedYears counts whole anniversaries of hireDate reached by now.
// A hire date in the future yields 0.
func CompletedYears(hireDate, now time.Time) int {
	hireDate, now = hireDate.UTC(), now.UTC()

	years := now.Year() - hireDate.Year()
	if now.Month() < hireDate.Month() || (now.Month() == hireDate.Month() && now.Day() < hireDate.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// Calculate returns the allowance for an employee hired on hireDate as of now.
func Calculate(hireDate, now time.Time) int {
	if CompletedYears(hireDate, now) >= SeniorityYears {
		return HigherTierDays
	}
	return LowerTierDays
}

// IsTier reports whether days is an allowance Calculate can produce.
func IsTier(days int) bool {
	return days == LowerTierDays || days == HigherTierDays
}
