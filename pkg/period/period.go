// Package period turns the loosely specified range of a report request into a
// concrete interval.
package period

import (
	"strings"
	"time"

	"github.com/jameshartig/energyreport/pkg/types"
)

const dateLayout = "2006-01-02"

// Resolve computes the interval covered by a report.
//
// period is the requested granularity and may be empty, in which case
// fallback is used (and types.PeriodWeek if fallback is invalid too). start and
// end are optional dates. now is converted to loc to find the current day,
// week or month when no date is given.
func Resolve(period types.Period, start, end string, fallback types.Period, now time.Time, loc *time.Location) (types.ResolvedPeriod, error) {
	if loc == nil {
		loc = time.Local
	}

	p, err := resolvePeriod(period, fallback)
	if err != nil {
		return types.ResolvedPeriod{}, err
	}

	startDate, hasStart, err := ParseDate(start, "start_date", loc)
	if err != nil {
		return types.ResolvedPeriod{}, err
	}
	endDate, hasEnd, err := ParseDate(end, "end_date", loc)
	if err != nil {
		return types.ResolvedPeriod{}, err
	}

	switch {
	case hasStart && hasEnd:
		// both given, used verbatim
	case hasStart:
		endDate = lastDay(p, startDate)
	case hasEnd:
		startDate = firstDay(p, endDate)
	default:
		startDate = currentStart(p, now.In(loc))
		endDate = lastDay(p, startDate)
	}

	if endDate.Before(startDate) {
		return types.ResolvedPeriod{}, types.NewValidationError(
			"end_date",
			"%s is before start date %s",
			endDate.Format(dateLayout),
			startDate.Format(dateLayout),
		)
	}

	return types.ResolvedPeriod{
		Period:    p,
		Bucket:    BucketFor(p),
		StartDate: startDate,
		EndDate:   endDate,
		Start:     startDate,
		End:       addDays(endDate, 1),
		Location:  loc,
	}, nil
}

func resolvePeriod(requested, fallback types.Period) (types.Period, error) {
	requested = types.Period(strings.ToLower(strings.TrimSpace(string(requested))))
	if requested != "" {
		if !requested.Valid() {
			return "", types.NewValidationError("period", "unknown period %q (expected day, week or month)", requested)
		}
		return requested, nil
	}
	if fallback.Valid() {
		return fallback, nil
	}
	return types.PeriodWeek, nil
}

// ParseDate parses a YYYY-MM-DD date, or an RFC 3339 timestamp reduced to its
// date, as midnight in loc. The bool is false when value is empty.
func ParseDate(value, field string, loc *time.Location) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.ParseInLocation(dateLayout, value, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return midnight(t.Year(), t.Month(), t.Day(), loc), true, nil
	}
	return time.Time{}, false, types.NewValidationError(
		field,
		"cannot parse %q as a date (expected YYYY-MM-DD)",
		value,
	)
}

// BucketFor returns the statistics resolution used for a period.
func BucketFor(p types.Period) types.Bucket {
	if p == types.PeriodDay {
		return types.BucketHour
	}
	return types.BucketDay
}

func currentStart(p types.Period, now time.Time) time.Time {
	today := midnight(now.Year(), now.Month(), now.Day(), now.Location())
	switch p {
	case types.PeriodWeek:
		// weeks start on monday
		offset := (int(today.Weekday()) + 6) % 7
		return addDays(today, -offset)
	case types.PeriodMonth:
		return midnight(today.Year(), today.Month(), 1, today.Location())
	}
	return today
}

func lastDay(p types.Period, start time.Time) time.Time {
	switch p {
	case types.PeriodWeek:
		return addDays(start, 6)
	case types.PeriodMonth:
		// day 0 of the next month is the last day of this one
		return midnight(start.Year(), start.Month()+1, 0, start.Location())
	}
	return start
}

func firstDay(p types.Period, end time.Time) time.Time {
	switch p {
	case types.PeriodWeek:
		return addDays(end, -6)
	case types.PeriodMonth:
		return midnight(end.Year(), end.Month(), 1, end.Location())
	}
	return end
}

// addDays moves by calendar days rather than 24h so DST changes keep midnight.
func addDays(t time.Time, days int) time.Time {
	return midnight(t.Year(), t.Month(), t.Day()+days, t.Location())
}

func midnight(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
