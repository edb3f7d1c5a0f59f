package site

import (
	"strconv"
	"time"
)

// postDateLayout parses the composed "<filename date> <time> <timezone>"
// string of a post, e.g. "2023-09-18 07:30:00 +0200".
const postDateLayout = "2006-01-02 15:04:05 -0700"

// DateInfo carries every representation of a post date that templates can ask
// for, so templates never need date formatting logic of their own.
type DateInfo struct {
	Year           string
	Month          string
	MonthPadded    string
	MonthName      string
	MonthNameShort string
	Day            string
	DayPadded      string
	DayName        string
	DayNameShort   string
	Timestamp      int64

	t time.Time
}

func newDateInfo(t time.Time) DateInfo {
	return DateInfo{
		Year:           t.Format("2006"),
		Month:          strconv.Itoa(int(t.Month())),
		MonthPadded:    t.Format("01"),
		MonthName:      t.Month().String(),
		MonthNameShort: t.Format("Jan"),
		Day:            strconv.Itoa(t.Day()),
		DayPadded:      t.Format("02"),
		DayName:        t.Weekday().String(),
		DayNameShort:   t.Format("Mon"),
		Timestamp:      t.Unix(),
		t:              t,
	}
}

// Time returns the underlying instant the bundle was derived from.
func (d DateInfo) Time() time.Time { return d.t }

func (d DateInfo) contextMap() map[string]any {
	return map[string]any{
		"year":             d.Year,
		"month":            d.Month,
		"month_padded":     d.MonthPadded,
		"month_name":       d.MonthName,
		"month_name_short": d.MonthNameShort,
		"day":              d.Day,
		"day_padded":       d.DayPadded,
		"day_name":         d.DayName,
		"day_name_short":   d.DayNameShort,
		"timestamp":        d.Timestamp,
	}
}
