package types

import "time"

// Period is the granularity of a report.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Valid returns true if p is one of the known periods.
func (p Period) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

// Bucket is the resolution statistics are requested at.
type Bucket string

const (
	BucketHour  Bucket = "hour"
	BucketDay   Bucket = "day"
	BucketMonth Bucket = "month"
)

// ResolvedPeriod is the concrete interval a report covers.
type ResolvedPeriod struct {
	Period Period `json:"period"`
	Bucket Bucket `json:"bucket"`

	// StartDate and EndDate are the first and last calendar days included,
	// both at midnight in Location.
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	// Start is inclusive and End is exclusive (midnight after EndDate).
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Location *time.Location `json:"-"`
}

// Days returns the number of calendar days in the period.
func (p ResolvedPeriod) Days() int {
	days := 0
	for d := p.StartDate; !d.After(p.EndDate); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}

// Contains returns true if t falls inside [Start, End).
func (p ResolvedPeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}
