package company

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config is the single company configuration row. The VAT rate is a
// fraction (0.07 means 7%). Orders snapshot these values at creation, so
// editing them never reprices existing orders.
type Config struct {
	VATRate             decimal.Decimal
	DefaultShippingCost decimal.Decimal
	UpdatedAt           time.Time
}
