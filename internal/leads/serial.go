package leads

import (
	"math"
	"time"

	"google.golang.org/genproto/googleapis/type/date"
)

// Excel's 1900 date system counts 1900-01-01 as serial 1 and keeps the
// non-existent 1900-02-29 as serial 60, so serials from 61 on are one day
// ahead of a plain day count from 1899-12-31.
var (
	serialEpoch      = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	serialEarlyEpoch = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
)

const phantomLeapDay = 60

// SerialFromDate converts a calendar date to an Excel date serial.
func SerialFromDate(d *date.Date) float64 {
	t := time.Date(int(d.GetYear()), time.Month(d.GetMonth()), int(d.GetDay()), 0, 0, 0, 0, time.UTC)
	return SerialFromTime(t)
}

// SerialFromTime converts the calendar day of t (time of day is dropped).
func SerialFromTime(t time.Time) float64 {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := math.Round(day.Sub(serialEpoch).Hours() / 24)
	if days <= phantomLeapDay {
		days--
	}
	return days
}

// DateFromSerial converts an Excel date serial to a calendar date. The
// fractional part (time of day) is ignored. Serials below 1 and the phantom
// leap day report ok=false.
func DateFromSerial(serial float64) (d *date.Date, ok bool) {
	n := int(math.Floor(serial))
	if n < 1 || n == phantomLeapDay {
		return nil, false
	}
	var t time.Time
	if n < phantomLeapDay {
		t = serialEarlyEpoch.AddDate(0, 0, n)
	} else {
		t = serialEpoch.AddDate(0, 0, n)
	}
	return &date.Date{Year: int32(t.Year()), Month: int32(t.Month()), Day: int32(t.Day())}, true
}

func serialYear(serial float64) (int, bool) {
	d, ok := DateFromSerial(serial)
	if !ok {
		return 0, false
	}
	return int(d.GetYear()), true
}
