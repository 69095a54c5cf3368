package company

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/stitchfactory/sf-order/pkg/errors"
)

type mockConfigRepository struct {
	cfg Config
}

func (m *mockConfigRepository) Find(ctx context.Context, tx *sql.Tx) (Config, error) {
	return m.cfg, nil
}

func (m *mockConfigRepository) Update(ctx context.Context, cfg Config, tx *sql.Tx) error {
	m.cfg = cfg
	return nil
}

func newTestUseCase(repo *mockConfigRepository) ConfigUseCase {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewConfigUseCase(ConfigUseCaseProperty{
		Logger:           logger,
		Timeout:          5 * time.Second,
		ConfigRepository: repo,
	})
}

func TestGetConfig(t *testing.T) {
	repo := &mockConfigRepository{cfg: Config{
		VATRate:             decimal.RequireFromString("0.07"),
		DefaultShippingCost: decimal.RequireFromString("200"),
	}}

	resp, err := newTestUseCase(repo).GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	if resp.VATRate != "0.07" {
		t.Errorf("VATRate = %s, want 0.07", resp.VATRate)
	}
	if resp.DefaultShippingCost != "200.00" {
		t.Errorf("DefaultShippingCost = %s, want 200.00", resp.DefaultShippingCost)
	}
}

func TestUpdateConfig(t *testing.T) {
	repo := &mockConfigRepository{}
	useCase := newTestUseCase(repo)

	resp, err := useCase.UpdateConfig(context.Background(), UpdateConfigRequest{
		VATRate:             "0.1",
		DefaultShippingCost: "250",
	})
	if err != nil {
		t.Fatalf("UpdateConfig() error = %v", err)
	}
	if resp.VATRate != "0.1" {
		t.Errorf("VATRate = %s, want 0.1", resp.VATRate)
	}
	if !repo.cfg.DefaultShippingCost.Equal(decimal.RequireFromString("250")) {
		t.Errorf("stored DefaultShippingCost = %s, want 250", repo.cfg.DefaultShippingCost)
	}
}

func TestUpdateConfigValidation(t *testing.T) {
	useCase := newTestUseCase(&mockConfigRepository{})

	tests := []struct {
		name string
		req  UpdateConfigRequest
	}{
		{name: "vat rate not a number", req: UpdateConfigRequest{VATRate: "seven", DefaultShippingCost: "200"}},
		{name: "negative vat rate", req: UpdateConfigRequest{VATRate: "-0.07", DefaultShippingCost: "200"}},
		{name: "vat rate given as percent", req: UpdateConfigRequest{VATRate: "7", DefaultShippingCost: "200"}},
		{name: "negative shipping", req: UpdateConfigRequest{VATRate: "0.07", DefaultShippingCost: "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := useCase.UpdateConfig(context.Background(), tt.req)
			if err == nil {
				t.Fatal("UpdateConfig() should reject the input")
			}
			if ae := errors.Destruct(err); ae.HTTPStatusCode != http.StatusBadRequest {
				t.Errorf("status code = %d, want %d", ae.HTTPStatusCode, http.StatusBadRequest)
			}
		})
	}
}
