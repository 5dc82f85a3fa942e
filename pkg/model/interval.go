package model

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DateInterval is a half-open date range [Start, End) at day granularity.
// Both bounds are UTC midnights.
type DateInterval struct {
	Start time.Time `json:"start_date" bson:"start_date"`
	End   time.Time `json:"end_date" bson:"end_date"`
}

func NewDateInterval(start, end time.Time) DateInterval {
	return DateInterval{Start: Day(start), End: Day(end)}
}

// ParseDateInterval parses two ISO dates into a half-open interval.
func ParseDateInterval(start, end string) (DateInterval, error) {
	s, err := time.ParseInLocation(DateLayout, start, time.UTC)
	if err != nil {
		return DateInterval{}, fmt.Errorf("invalid start_date %q: %w", start, err)
	}
	e, err := time.ParseInLocation(DateLayout, end, time.UTC)
	if err != nil {
		return DateInterval{}, fmt.Errorf("invalid end_date %q: %w", end, err)
	}
	return DateInterval{Start: s, End: e}, nil
}

// Day truncates t to its UTC midnight.
func Day(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

func (i DateInterval) IsValid() bool {
	return i.Start.Before(i.End)
}

// Overlaps reports whether the two half-open intervals share at least one day.
func (i DateInterval) Overlaps(other DateInterval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

func (i DateInterval) Contains(day time.Time) bool {
	return !day.Before(i.Start) && day.Before(i.End)
}

func (i DateInterval) Nights() int {
	return int(i.End.Sub(i.Start) / (24 * time.Hour))
}

// Clip returns the portion of i that falls inside bounds.
// The second return value is false when the intervals do not overlap.
func (i DateInterval) Clip(bounds DateInterval) (DateInterval, bool) {
	if !i.Overlaps(bounds) {
		return DateInterval{}, false
	}
	clipped := i
	if clipped.Start.Before(bounds.Start) {
		clipped.Start = bounds.Start
	}
	if clipped.End.After(bounds.End) {
		clipped.End = bounds.End
	}
	return clipped, true
}

func (i DateInterval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format(DateLayout), i.End.Format(DateLayout))
}
