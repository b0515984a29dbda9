package util

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// ISTLocation returns the Asia/Kolkata location IBJA publishes against,
// falling back to a fixed +05:30 zone if tzdata is unavailable.
func ISTLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		log.Errorf("Failed to load location 'Asia/Kolkata': %v. Falling back to fixed offset.", err)
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}

// RateDate truncates a timestamp to the IST calendar date it belongs to.
// The stored benchmark rate is keyed by this date.
func RateDate(t time.Time) time.Time {
	ist := t.In(ISTLocation())
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, time.UTC)
}

// NextPublishTime predicts when IBJA publishes its next rate.
// Sessions land around 12:00 (AM rate) and 17:00 (PM rate) IST on business
// days; weekends are skipped. Returned in UTC.
func NextPublishTime(input time.Time) time.Time {
	loc := ISTLocation()
	nowIST := input.In(loc)

	amToday := time.Date(nowIST.Year(), nowIST.Month(), nowIST.Day(), 12, 0, 0, 0, loc)
	pmToday := time.Date(nowIST.Year(), nowIST.Month(), nowIST.Day(), 17, 0, 0, 0, loc)

	var next time.Time
	switch {
	case nowIST.Before(amToday):
		next = amToday
	case nowIST.Before(pmToday):
		next = pmToday
	default:
		next = amToday.AddDate(0, 0, 1)
	}

	// Skip weekends: no fixing published
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}

	return next.UTC()
}
