package models

import (
	"errors"
	"regexp"
	"time"
)

var ErrInvalidDate = errors.New("invalid date")

var (
	compactDay = regexp.MustCompile(`^\d{8}$`)
	dashedDay  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Day is a calendar day in both notations used by the API:
// YYYYMMDD for articles/summaries and YYYY-MM-DD for comments.
type Day struct {
	Compact string
	Dashed  string
}

// ParseDay accepts YYYYMMDD or YYYY-MM-DD.
func ParseDay(s string) (Day, error) {
	var layout string
	switch {
	case compactDay.MatchString(s):
		layout = "20060102"
	case dashedDay.MatchString(s):
		layout = "2006-01-02"
	default:
		return Day{}, ErrInvalidDate
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Day{}, ErrInvalidDate
	}
	return DayOf(t), nil
}

// DayOf returns the UTC calendar day of t.
func DayOf(t time.Time) Day {
	t = t.UTC()
	return Day{Compact: t.Format("20060102"), Dashed: t.Format("2006-01-02")}
}

func (d Day) String() string { return d.Compact }

// Start returns midnight UTC of the day.
func (d Day) Start() time.Time {
	t, _ := time.Parse("20060102", d.Compact)
	return t
}
