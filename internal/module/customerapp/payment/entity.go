package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stitchfactory/sf-order/internal/pkg/installment"
)

// Order is the payment page's view of a production order. The internal id
// stays server-side, responses only ever carry the public uuid.
type Order struct {
	ID           string
	UUID         string
	OrderNo      string
	CustomerName string
	Quantities   []SizeQuantity
	FabricType   string
	UnitPrice    decimal.Decimal
	VATIncluded  bool
	VATRate      decimal.Decimal
	Subtotal     decimal.Decimal
	VATAmount    decimal.Decimal
	GrandTotal   decimal.Decimal
	Deposit      decimal.Decimal
	Balance      decimal.Decimal
	Status       string
	Slips        map[installment.Kind]*installment.Slip
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type SizeQuantity struct {
	Size  string `json:"size"`
	Count int64  `json:"count"`
}

// MaxSlipSize bounds an uploaded proof-of-payment image.
const MaxSlipSize = 5 << 20

// AllowedContentTypes are the only accepted upload formats. The type is
// sniffed from the bytes, the client's declared header is not trusted.
var AllowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}
