package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session identifies the bullion-association publishing session for a rate.
// IBJA publishes twice a day; the session is informational and is NOT part of
// the uniqueness key — there is at most one stored rate per calendar date.
type Session string

const (
	SessionAM   Session = "AM"
	SessionPM   Session = "PM"
	SessionNone Session = ""
)

// RateSource tags where an accepted rate came from so downstream consumers
// can distinguish the authoritative benchmark from an indicative proxy.
type RateSource string

const (
	RateSourceIBJA      RateSource = "IBJA"       // primary, authoritative
	RateSourceMetalsDev RateSource = "METALS_DEV" // secondary spot proxy
)

// Authoritative reports whether the source is the primary benchmark.
// Proxy rates are labeled "indicative" on the read path.
func (s RateSource) Authoritative() bool {
	return s == RateSourceIBJA
}

// GoldRate is the canonical benchmark rate: rupees per gram for 24k and 22k
// gold, one record per calendar date. All source-specific unit conventions
// (per-10-gram, per-ounce) are converted before a GoldRate is constructed.
type GoldRate struct {
	RateDate   time.Time       `json:"rate_date"` // calendar date, midnight IST
	Session    Session         `json:"session,omitempty"`
	Price24K   decimal.Decimal `json:"price_24k"` // ₹ per gram, 999 fineness
	Price22K   decimal.Decimal `json:"price_22k"` // ₹ per gram, 916 fineness
	Source     RateSource      `json:"source"`
	Suspicious bool            `json:"suspicious"` // day-over-day delta above tolerance
	CapturedAt time.Time       `json:"captured_at"`
}
