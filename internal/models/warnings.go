package models

// WarningCode categorizes warnings by subsystem.
// W1xxx = rate validation, W2xxx = valuation, W3xxx = cascade.
type WarningCode string

const (
	WarnSuspiciousJump   WarningCode = "W1001" // day-over-day delta above tolerance, rate accepted anyway
	WarnProxySource      WarningCode = "W1002" // rate accepted from the secondary (indicative) source
	WarnStaleValuation   WarningCode = "W2001" // holding valued from invested value, no usable rate
	WarnLowConfidence    WarningCode = "W2002" // holding attributes incomplete, fell back to invested value
	WarnHoldingSkipped   WarningCode = "W3001" // holding failed to revalue, cascade continued without it
	WarnAggregateSkipped WarningCode = "W3002" // portfolio aggregate failed to recompute
)

// Warning represents a non-fatal issue encountered during processing.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
