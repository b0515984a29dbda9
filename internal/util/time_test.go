package util_test

import (
	"testing"
	"time"

	"github.com/srabbas1701/wealthlens/internal/util"
)

func TestRateDate_TruncatesToISTCalendarDay(t *testing.T) {
	// 20:00 UTC on Aug 24 is 01:30 IST on Aug 25
	input := time.Date(2026, 8, 24, 20, 0, 0, 0, time.UTC)
	got := util.RateDate(input)

	want := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRateDate_Idempotent(t *testing.T) {
	input := time.Date(2026, 8, 25, 11, 0, 0, 0, time.UTC)
	once := util.RateDate(input)
	twice := util.RateDate(once)
	if !once.Equal(twice) {
		t.Errorf("RateDate should be stable: %v vs %v", once, twice)
	}
}

func TestNextPublishTime_MorningBeforeAMSession(t *testing.T) {
	ist := util.ISTLocation()
	// Tuesday 09:00 IST
	input := time.Date(2026, 8, 25, 9, 0, 0, 0, ist)
	got := util.NextPublishTime(input).In(ist)

	if got.Day() != 25 || got.Hour() != 12 {
		t.Errorf("expected same-day 12:00 IST AM fixing, got %v", got)
	}
}

func TestNextPublishTime_AfternoonBeforePMSession(t *testing.T) {
	ist := util.ISTLocation()
	// Tuesday 14:00 IST, between the fixings
	input := time.Date(2026, 8, 25, 14, 0, 0, 0, ist)
	got := util.NextPublishTime(input).In(ist)

	if got.Day() != 25 || got.Hour() != 17 {
		t.Errorf("expected same-day 17:00 IST PM fixing, got %v", got)
	}
}

func TestNextPublishTime_EveningRollsToNextDay(t *testing.T) {
	ist := util.ISTLocation()
	// Tuesday 19:00 IST, both fixings done
	input := time.Date(2026, 8, 25, 19, 0, 0, 0, ist)
	got := util.NextPublishTime(input).In(ist)

	if got.Day() != 26 || got.Hour() != 12 {
		t.Errorf("expected next-day 12:00 IST, got %v", got)
	}
}

func TestNextPublishTime_SkipsWeekend(t *testing.T) {
	ist := util.ISTLocation()
	// Friday 19:00 IST → next fixing is Monday
	input := time.Date(2026, 8, 28, 19, 0, 0, 0, ist)
	got := util.NextPublishTime(input).In(ist)

	if got.Weekday() != time.Monday {
		t.Errorf("expected Monday, got %v (%v)", got.Weekday(), got)
	}
	if got.Day() != 31 || got.Hour() != 12 {
		t.Errorf("expected Monday Aug 31 12:00 IST, got %v", got)
	}
}
