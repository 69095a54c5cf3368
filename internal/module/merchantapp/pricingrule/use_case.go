package pricingrule

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/stitchfactory/sf-order/internal/pkg/pricing"
	"github.com/stitchfactory/sf-order/pkg/errors"
	"github.com/stitchfactory/sf-order/pkg/status"
)

type RuleUseCase interface {
	GetManyRule(ctx context.Context) (GetManyRuleResponse, error)
	CreateRule(ctx context.Context, req CreateRuleRequest) (RuleResponse, error)
	DeleteRule(ctx context.Context, ID int64) error
}

type ruleUseCase struct {
	logger         *logrus.Logger
	timeout        time.Duration
	ruleRepository RuleRepository
}

type RuleUseCaseProperty struct {
	Logger         *logrus.Logger
	Timeout        time.Duration
	RuleRepository RuleRepository
}

func NewRuleUseCase(props RuleUseCaseProperty) RuleUseCase {
	return &ruleUseCase{
		logger:         props.Logger,
		timeout:        props.Timeout,
		ruleRepository: props.RuleRepository,
	}
}

// GetManyRule implements RuleUseCase.
func (u *ruleUseCase) GetManyRule(ctx context.Context) (GetManyRuleResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	rules, err := u.ruleRepository.FindMany(ctx, nil)
	if err != nil {
		return GetManyRuleResponse{}, err
	}

	resp := GetManyRuleResponse{Rules: make([]RuleResponse, len(rules))}
	for k, rule := range rules {
		resp.Rules[k].PopulateFromEntity(rule)
	}

	return resp, nil
}

// CreateRule implements RuleUseCase. A new tier is rejected when its range
// would overlap an existing tier of the same fabric, otherwise resolution
// would become ambiguous.
func (u *ruleUseCase) CreateRule(ctx context.Context, req CreateRuleRequest) (RuleResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	unitPrice, err := decimal.NewFromString(req.UnitPrice)
	if err != nil || unitPrice.IsNegative() {
		return RuleResponse{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, "unit price must be a non-negative number")
	}

	rule := pricing.Rule{
		FabricType: req.FabricType,
		MinQty:     req.MinQty,
		MaxQty:     req.MaxQty,
		UnitPrice:  unitPrice,
	}

	existing, err := u.ruleRepository.FindManyByFabricType(ctx, req.FabricType, nil)
	if err != nil {
		return RuleResponse{}, err
	}

	if err := pricing.ValidateRules(append(existing, rule)); err != nil {
		return RuleResponse{}, errors.New(http.StatusConflict, status.CONFLICT, err.Error())
	}

	id, err := u.ruleRepository.Save(ctx, rule, nil)
	if err != nil {
		return RuleResponse{}, err
	}
	rule.ID = id

	resp := RuleResponse{}
	resp.PopulateFromEntity(rule)

	return resp, nil
}

// DeleteRule implements RuleUseCase.
func (u *ruleUseCase) DeleteRule(ctx context.Context, ID int64) error {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	return u.ruleRepository.Delete(ctx, ID, nil)
}
