package utils

import (
	"testing"
	"time"
)

func TestMonthRange(t *testing.T) {
	asOf := time.Date(2024, time.March, 15, 12, 30, 0, 0, time.UTC)
	start, end := MonthRange(asOf)

	wantStart := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}

	if end.Month() != time.March || end.Day() != 31 {
		t.Errorf("end = %v, want last instant of March", end)
	}
	if !end.Before(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v must precede April 1st", end)
	}
}

func TestMonthRange_LeapFebruary(t *testing.T) {
	asOf := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)
	start, end := MonthRange(asOf)

	if start.Day() != 1 || start.Month() != time.February {
		t.Errorf("start = %v, want February 1st", start)
	}
	if end.Day() != 29 {
		t.Errorf("end day = %d, want 29 in a leap year", end.Day())
	}
}

func TestMonthRange_December(t *testing.T) {
	asOf := time.Date(2023, time.December, 31, 23, 59, 59, 0, time.UTC)
	start, end := MonthRange(asOf)

	if start.Month() != time.December || start.Year() != 2023 {
		t.Errorf("start = %v, want December 2023", start)
	}
	if end.Year() != 2023 || end.Month() != time.December {
		t.Errorf("end = %v, must stay within December 2023", end)
	}
}
