package company

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/stitchfactory/sf-order/pkg/errors"
	"github.com/stitchfactory/sf-order/pkg/status"
)

type ConfigUseCase interface {
	GetConfig(ctx context.Context) (ConfigResponse, error)
	UpdateConfig(ctx context.Context, req UpdateConfigRequest) (ConfigResponse, error)
}

type configUseCase struct {
	logger           *logrus.Logger
	timeout          time.Duration
	configRepository ConfigRepository
}

type ConfigUseCaseProperty struct {
	Logger           *logrus.Logger
	Timeout          time.Duration
	ConfigRepository ConfigRepository
}

func NewConfigUseCase(props ConfigUseCaseProperty) ConfigUseCase {
	return &configUseCase{
		logger:           props.Logger,
		timeout:          props.Timeout,
		configRepository: props.ConfigRepository,
	}
}

// GetConfig implements ConfigUseCase.
func (u *configUseCase) GetConfig(ctx context.Context) (ConfigResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	cfg, err := u.configRepository.Find(ctx, nil)
	if err != nil {
		return ConfigResponse{}, err
	}

	resp := ConfigResponse{}
	resp.PopulateFromEntity(cfg)

	return resp, nil
}

// UpdateConfig implements ConfigUseCase.
func (u *configUseCase) UpdateConfig(ctx context.Context, req UpdateConfigRequest) (ConfigResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	vatRate, err := decimal.NewFromString(req.VATRate)
	if err != nil || vatRate.IsNegative() || vatRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return ConfigResponse{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, "vat rate must be a fraction between 0 and 1")
	}

	shipping, err := decimal.NewFromString(req.DefaultShippingCost)
	if err != nil || shipping.IsNegative() {
		return ConfigResponse{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, "default shipping cost must be a non-negative number")
	}

	cfg := Config{
		VATRate:             vatRate,
		DefaultShippingCost: shipping,
		UpdatedAt:           time.Now(),
	}

	if err := u.configRepository.Update(ctx, cfg, nil); err != nil {
		return ConfigResponse{}, err
	}

	resp := ConfigResponse{}
	resp.PopulateFromEntity(cfg)

	return resp, nil
}
