package goldrate

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/srabbas1701/wealthlens/internal/models"
)

// ErrUnavailable is returned by a Source when the provider cannot produce a
// quote: network failure, non-2xx response, empty or unparsable body. A
// Source never returns a partially populated quote.
var ErrUnavailable = errors.New("rate source unavailable")

// Source fetches a raw gold quote from one external provider. Adapters are
// stateless and never touch storage. The pipeline tries sources in priority
// order; adding a provider means appending an adapter to that list.
type Source interface {
	Name() models.RateSource
	Fetch(ctx context.Context, session models.Session) (*RawQuote, error)
}

// RawQuote is a provider quote in the provider's native unit convention.
// GramsPerUnit is declared by the adapter (10 for IBJA's per-10-gram rates,
// 1 for a per-gram spot feed) so normalization never has to guess a unit
// from the magnitude of the number.
type RawQuote struct {
	Source       models.RateSource
	Date         time.Time
	Session      models.Session
	Price24K     decimal.Decimal // native unit, 999 fineness
	Price22K     decimal.Decimal // native unit, 916 fineness; zero if not published
	GramsPerUnit int64
}
