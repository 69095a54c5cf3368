package order

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/stitchfactory/sf-order/internal/module/merchantapp/company"
	"github.com/stitchfactory/sf-order/internal/module/merchantapp/pricingrule"
	"github.com/stitchfactory/sf-order/internal/pkg/installment"
	"github.com/stitchfactory/sf-order/internal/pkg/invoice"
	"github.com/stitchfactory/sf-order/internal/pkg/pricing"
	"github.com/stitchfactory/sf-order/internal/pkg/session"
	"github.com/stitchfactory/sf-order/internal/pkg/urgency"
	"github.com/stitchfactory/sf-order/internal/pkg/util"
	"github.com/stitchfactory/sf-order/pkg/errors"
	"github.com/stitchfactory/sf-order/pkg/pubsub"
	"github.com/stitchfactory/sf-order/pkg/status"
)

type OrderUseCase interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (OrderResponse, error)
	GetOrder(ctx context.Context, ID string) (OrderResponse, error)
	GetManyOrder(ctx context.Context, req GetManyOrderRequest) (GetManyOrderResponse, ListMeta, error)
	UpdateOrder(ctx context.Context, req UpdateOrderRequest) (OrderResponse, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (OrderResponse, error)
	DecideSlip(ctx context.Context, req DecideSlipRequest) (DecideSlipResponse, error)
	GetInvoice(ctx context.Context, ID string) (invoice.Document, error)
}

type orderUseCase struct {
	logger           *logrus.Logger
	timeout          time.Duration
	orderRepository  OrderRepository
	slipRepository   SlipRepository
	ruleRepository   pricingrule.RuleRepository
	configRepository company.ConfigRepository
	publisher        pubsub.Publisher
}

type OrderUseCaseProperty struct {
	Logger           *logrus.Logger
	Timeout          time.Duration
	OrderRepository  OrderRepository
	SlipRepository   SlipRepository
	RuleRepository   pricingrule.RuleRepository
	ConfigRepository company.ConfigRepository
	Publisher        pubsub.Publisher
}

func NewOrderUseCase(props OrderUseCaseProperty) OrderUseCase {
	return &orderUseCase{
		logger:           props.Logger,
		timeout:          props.Timeout,
		orderRepository:  props.OrderRepository,
		slipRepository:   props.SlipRepository,
		ruleRepository:   props.RuleRepository,
		configRepository: props.ConfigRepository,
		publisher:        props.Publisher,
	}
}

func parseMoney(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Decimal{}, nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, fmt.Sprintf("'%s' must be a number", field))
	}
	if d.IsNegative() {
		return decimal.Decimal{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, fmt.Sprintf("'%s' must not be negative", field))
	}

	return d, nil
}

func quantitiesFromRequest(reqs []SizeQuantityRequest) ([]SizeQuantity, error) {
	seen := make(map[string]struct{}, len(reqs))
	quantities := make([]SizeQuantity, 0, len(reqs))

	for _, q := range reqs {
		if _, ok := seen[q.Size]; ok {
			return nil, errors.New(http.StatusBadRequest, status.BAD_REQUEST, fmt.Sprintf("duplicate size '%s'", q.Size))
		}
		if q.Count < 0 {
			return nil, errors.New(http.StatusBadRequest, status.BAD_REQUEST, fmt.Sprintf("size '%s' has a negative count", q.Size))
		}
		seen[q.Size] = struct{}{}
		quantities = append(quantities, SizeQuantity{Size: q.Size, Count: q.Count})
	}

	return quantities, nil
}

// resolvePrice applies the advisory tier resolution. A manual price always
// wins; with no manual price and no matching tier the previous price stays
// untouched.
func (u *orderUseCase) resolvePrice(ctx context.Context, o *Order, manualPrice *string) error {
	if manualPrice != nil {
		price, err := parseMoney("unit_price", *manualPrice)
		if err != nil {
			return err
		}
		o.UnitPrice = price
		o.ManualPrice = true
		return nil
	}

	rules, err := u.ruleRepository.FindManyByFabricType(ctx, o.FabricType, nil)
	if err != nil {
		return err
	}

	if price, ok := pricing.ResolveUnitPrice(o.FabricType, o.TotalQty(), rules); ok {
		o.UnitPrice = price
		o.ManualPrice = false
	}

	return nil
}

func (u *orderUseCase) computeTotals(o *Order) {
	t := pricing.ComputeTotals(pricing.TotalsInput{
		TotalQty:     o.TotalQty(),
		UnitPrice:    o.UnitPrice,
		AddOnCost:    o.AddOnCost,
		ShippingCost: o.ShippingCost,
		Discount:     o.Discount,
		VATIncluded:  o.VATIncluded,
		VATRate:      o.VATRate,
		Deposit:      o.Deposit,
	})

	o.Subtotal = t.Subtotal
	o.VATAmount = t.VATAmount
	o.GrandTotal = t.GrandTotal
	o.Balance = t.Balance
}

func (u *orderUseCase) publish(ctx context.Context, topic string, o Order) {
	buff, _ := json.Marshal(map[string]interface{}{
		"id":          o.ID,
		"order_no":    o.OrderNo,
		"status":      o.Status,
		"grand_total": o.GrandTotal,
		"balance":     o.Balance,
	})

	headers := map[string]string{}
	if acc, err := session.GetAccountFromCtx(ctx); err == nil {
		headers["actor"] = acc.Email
	}

	if err := u.publisher.Publish(ctx, topic, o.ID, headers, buff); err != nil {
		u.logger.WithContext(ctx).WithError(err).Warn("failed to publish event")
	}
}

// CreateOrder implements OrderUseCase.
func (u *orderUseCase) CreateOrder(ctx context.Context, req CreateOrderRequest) (OrderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	quantities, err := quantitiesFromRequest(req.Quantities)
	if err != nil {
		return OrderResponse{}, err
	}

	addOn, err := parseMoney("add_on_cost", req.AddOnCost)
	if err != nil {
		return OrderResponse{}, err
	}
	discount, err := parseMoney("discount", req.Discount)
	if err != nil {
		return OrderResponse{}, err
	}
	deposit, err := parseMoney("deposit", req.Deposit)
	if err != nil {
		return OrderResponse{}, err
	}

	cfg, err := u.configRepository.Find(ctx, nil)
	if err != nil {
		return OrderResponse{}, err
	}

	shipping := cfg.DefaultShippingCost
	if req.ShippingCost != nil {
		shipping, err = parseMoney("shipping_cost", *req.ShippingCost)
		if err != nil {
			return OrderResponse{}, err
		}
	}

	now := time.Now()
	o := Order{
		ID:            util.GenerateTimestampWithPrefix("PO"),
		UUID:          util.GenerateUUID(),
		OrderNo:       req.OrderNo,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Quantities:    quantities,
		FabricType:    req.FabricType,
		AddOnCost:     addOn,
		ShippingCost:  shipping,
		Discount:      discount,
		VATIncluded:   req.VATIncluded,
		VATRate:       cfg.VATRate,
		Deposit:       deposit,
		Deadline:      req.Deadline,
		Status:        StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := u.resolvePrice(ctx, &o, req.UnitPrice); err != nil {
		return OrderResponse{}, err
	}
	u.computeTotals(&o)

	slips := make([]installment.Slip, 0, len(installment.Kinds))
	o.Slips = make(map[installment.Kind]*installment.Slip, len(installment.Kinds))
	for _, kind := range installment.Kinds {
		s := installment.Slip{Kind: kind, ReviewState: installment.ReviewNone, UpdatedAt: now}
		slips = append(slips, s)
		slip := s
		o.Slips[kind] = &slip
	}

	tx, err := u.orderRepository.BeginTx(ctx)
	if err != nil {
		return OrderResponse{}, err
	}

	if err := u.orderRepository.Save(ctx, o, tx); err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return OrderResponse{}, err
	}

	if err := u.slipRepository.SaveMany(ctx, o.ID, slips, tx); err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return OrderResponse{}, err
	}

	if err := u.orderRepository.CommitTx(ctx, tx); err != nil {
		return OrderResponse{}, err
	}

	u.publish(ctx, "order-created", o)

	resp := OrderResponse{}
	resp.PopulateFromEntity(o, now)

	return resp, nil
}

// GetOrder implements OrderUseCase.
func (u *orderUseCase) GetOrder(ctx context.Context, ID string) (OrderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	o, err := u.orderRepository.FindByID(ctx, ID, nil)
	if err != nil {
		return OrderResponse{}, err
	}

	slips, err := u.slipRepository.FindManyByOrderID(ctx, ID, nil)
	if err != nil {
		return OrderResponse{}, err
	}
	o.Slips = slips

	resp := OrderResponse{}
	resp.PopulateFromEntity(o, time.Now())

	return resp, nil
}

// GetManyOrder implements OrderUseCase. The severity filter and the
// severity on each row come from the same classification, the dashboard can
// never disagree with the order form.
func (u *orderUseCase) GetManyOrder(ctx context.Context, req GetManyOrderRequest) (GetManyOrderResponse, ListMeta, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	filter := ListFilter{Severity: urgency.Severity(req.Severity)}
	offset := (req.Page - 1) * req.Size

	orders, err := u.orderRepository.FindMany(ctx, filter, offset, req.Size, nil)
	if err != nil {
		return GetManyOrderResponse{}, ListMeta{}, err
	}

	total, err := u.orderRepository.Count(ctx, filter, nil)
	if err != nil {
		return GetManyOrderResponse{}, ListMeta{}, err
	}

	now := time.Now()
	resp := GetManyOrderResponse{Orders: make([]OrderResponse, len(orders))}
	for k, o := range orders {
		slips, err := u.slipRepository.FindManyByOrderID(ctx, o.ID, nil)
		if err != nil {
			return GetManyOrderResponse{}, ListMeta{}, err
		}
		o.Slips = slips
		resp.Orders[k].PopulateFromEntity(o, now)
	}

	meta := ListMeta{Page: req.Page, Size: req.Size, Total: total}

	return resp, meta, nil
}

// UpdateOrder implements OrderUseCase. Quantity or fabric changes trigger
// price re-resolution, an explicit unit price in the request overrides it.
func (u *orderUseCase) UpdateOrder(ctx context.Context, req UpdateOrderRequest) (OrderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	quantities, err := quantitiesFromRequest(req.Quantities)
	if err != nil {
		return OrderResponse{}, err
	}

	addOn, err := parseMoney("add_on_cost", req.AddOnCost)
	if err != nil {
		return OrderResponse{}, err
	}
	shipping, err := parseMoney("shipping_cost", req.ShippingCost)
	if err != nil {
		return OrderResponse{}, err
	}
	discount, err := parseMoney("discount", req.Discount)
	if err != nil {
		return OrderResponse{}, err
	}
	deposit, err := parseMoney("deposit", req.Deposit)
	if err != nil {
		return OrderResponse{}, err
	}

	tx, err := u.orderRepository.BeginTx(ctx)
	if err != nil {
		return OrderResponse{}, err
	}

	o, err := u.orderRepository.FindByIDForUpdate(ctx, req.ID, tx)
	if err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return OrderResponse{}, err
	}

	now := time.Now()
	pricingChanged := o.FabricType != req.FabricType || o.TotalQty() != totalOf(quantities)

	o.CustomerName = req.CustomerName
	o.CustomerPhone = req.CustomerPhone
	o.Quantities = quantities
	o.FabricType = req.FabricType
	o.AddOnCost = addOn
	o.ShippingCost = shipping
	o.Discount = discount
	o.VATIncluded = req.VATIncluded
	o.Deposit = deposit
	o.Deadline = req.Deadline
	o.UpdatedAt = now

	if req.UnitPrice != nil || pricingChanged {
		if err := u.resolvePrice(ctx, &o, req.UnitPrice); err != nil {
			u.orderRepository.Rollback(ctx, tx)
			return OrderResponse{}, err
		}
	}
	u.computeTotals(&o)

	if err := u.orderRepository.Update(ctx, o.ID, o, tx); err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return OrderResponse{}, err
	}

	if err := u.orderRepository.CommitTx(ctx, tx); err != nil {
		return OrderResponse{}, err
	}

	slips, err := u.slipRepository.FindManyByOrderID(ctx, o.ID, nil)
	if err != nil {
		return OrderResponse{}, err
	}
	o.Slips = slips

	resp := OrderResponse{}
	resp.PopulateFromEntity(o, now)

	return resp, nil
}

func totalOf(quantities []SizeQuantity) int64 {
	var total int64
	for _, q := range quantities {
		total += q.Count
	}
	return total
}

// UpdateStatus implements OrderUseCase. Delivery is a guarded transition:
// an order cannot become delivered while its balance slip is not approved.
func (u *orderUseCase) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (OrderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	target := Status(req.Status)
	if !target.Valid() {
		return OrderResponse{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, fmt.Sprintf("unknown status '%s'", req.Status))
	}

	tx, err := u.orderRepository.BeginTx(ctx)
	if err != nil {
		return OrderResponse{}, err
	}

	o, err := u.orderRepository.FindByIDForUpdate(ctx, req.ID, tx)
	if err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return OrderResponse{}, err
	}

	slips, err := u.slipRepository.FindManyByOrderID(ctx, o.ID, tx)
	if err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return OrderResponse{}, err
	}
	o.Slips = slips

	if target == StatusDelivered {
		balance, ok := slips[installment.KindBalance]
		if !ok || balance.ReviewState != installment.ReviewApproved {
			u.orderRepository.Rollback(ctx, tx)
			state := installment.ReviewNone
			if ok {
				state = balance.ReviewState
			}
			return OrderResponse{}, errors.New(http.StatusConflict, status.CONFLICT, fmt.Sprintf("order cannot be delivered while the balance installment is '%s'", state))
		}
	}

	now := time.Now()
	o.Status = target
	o.UpdatedAt = now

	if err := u.orderRepository.Update(ctx, o.ID, o, tx); err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return OrderResponse{}, err
	}

	if err := u.orderRepository.CommitTx(ctx, tx); err != nil {
		return OrderResponse{}, err
	}

	if target == StatusDelivered {
		u.publish(ctx, "order-delivered", o)
	}

	resp := OrderResponse{}
	resp.PopulateFromEntity(o, now)

	return resp, nil
}

// DecideSlip implements OrderUseCase. The order row lock serializes
// concurrent decisions: the second approval of the same installment sees
// the approved state and returns success without a second side effect.
func (u *orderUseCase) DecideSlip(ctx context.Context, req DecideSlipRequest) (DecideSlipResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	kind, err := installment.ParseKind(req.Installment)
	if err != nil {
		return DecideSlipResponse{}, err
	}

	tx, err := u.orderRepository.BeginTx(ctx)
	if err != nil {
		return DecideSlipResponse{}, err
	}

	o, err := u.orderRepository.FindByIDForUpdate(ctx, req.ID, tx)
	if err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return DecideSlipResponse{}, err
	}

	slips, err := u.slipRepository.FindManyByOrderID(ctx, o.ID, tx)
	if err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return DecideSlipResponse{}, err
	}

	slip, ok := slips[kind]
	if !ok {
		u.orderRepository.Rollback(ctx, tx)
		return DecideSlipResponse{}, errors.New(http.StatusConflict, status.CONFLICT, fmt.Sprintf("the %s installment has no submission yet", kind))
	}

	now := time.Now()

	if req.Approved {
		changed, err := slip.Approve(req.Note, now)
		if err != nil {
			u.orderRepository.Rollback(ctx, tx)
			return DecideSlipResponse{}, err
		}

		if !changed {
			u.orderRepository.Rollback(ctx, tx)
			return DecideSlipResponse{Installment: string(kind), ReviewState: string(slip.ReviewState)}, nil
		}

		if err := u.slipRepository.Update(ctx, o.ID, *slip, tx); err != nil {
			u.orderRepository.Rollback(ctx, tx)
			return DecideSlipResponse{}, err
		}

		if err := u.orderRepository.CommitTx(ctx, tx); err != nil {
			return DecideSlipResponse{}, err
		}

		u.publish(ctx, "slip-approved", o)

		return DecideSlipResponse{Installment: string(kind), ReviewState: string(slip.ReviewState)}, nil
	}

	if err := slip.Reject(req.Note, now); err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return DecideSlipResponse{}, err
	}

	if err := u.slipRepository.Update(ctx, o.ID, *slip, tx); err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return DecideSlipResponse{}, err
	}

	if err := u.orderRepository.CommitTx(ctx, tx); err != nil {
		return DecideSlipResponse{}, err
	}

	u.publish(ctx, "slip-rejected", o)

	return DecideSlipResponse{Installment: string(kind), ReviewState: string(slip.ReviewState)}, nil
}

// GetInvoice implements OrderUseCase. The document reproduces the stored
// calculator figures verbatim, nothing is recomputed here.
func (u *orderUseCase) GetInvoice(ctx context.Context, ID string) (invoice.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	o, err := u.orderRepository.FindByID(ctx, ID, nil)
	if err != nil {
		return invoice.Document{}, err
	}

	quantities := make([]invoice.SizeQuantity, len(o.Quantities))
	for k, q := range o.Quantities {
		quantities[k] = invoice.SizeQuantity{Size: q.Size, Count: q.Count}
	}

	snapshot := invoice.OrderSnapshot{
		OrderNo:       o.OrderNo,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		FabricType:    o.FabricType,
		UnitPrice:     o.UnitPrice,
		Quantities:    quantities,
		AddOnCost:     o.AddOnCost,
		ShippingCost:  o.ShippingCost,
		Discount:      o.Discount,
		VATIncluded:   o.VATIncluded,
		VATRate:       o.VATRate,
		Deposit:       o.Deposit,
		IssuedAt:      time.Now(),
	}

	totals := pricing.Totals{
		Subtotal:   o.Subtotal,
		VATAmount:  o.VATAmount,
		GrandTotal: o.GrandTotal,
		Balance:    o.Balance,
	}

	return invoice.Build(snapshot, totals), nil
}
