package payment

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/stitchfactory/sf-order/internal/module/customerapp/mediastore"
	"github.com/stitchfactory/sf-order/internal/pkg/installment"
	"github.com/stitchfactory/sf-order/pkg/errors"
)

const testUUID = "3f2a9b4e-8c1d-4e6f-9a7b-2c5d8e1f4a6b"

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}

	var buff bytes.Buffer
	if err := png.Encode(&buff, img); err != nil {
		t.Fatalf("encoding fixture image: %v", err)
	}
	return buff.Bytes()
}

type mockOrderRepository struct {
	orders map[string]Order
}

func (m *mockOrderRepository) BeginTx(ctx context.Context) (*sql.Tx, error)   { return nil, nil }
func (m *mockOrderRepository) CommitTx(ctx context.Context, tx *sql.Tx) error { return nil }
func (m *mockOrderRepository) Rollback(ctx context.Context, tx *sql.Tx) error { return nil }

func (m *mockOrderRepository) FindByUUID(ctx context.Context, UUID string, tx *sql.Tx) (Order, error) {
	o, ok := m.orders[UUID]
	if !ok {
		return Order{}, errors.New(http.StatusNotFound, "NOT_FOUND", orderNotFoundMessage)
	}
	return o, nil
}

func (m *mockOrderRepository) FindByUUIDForUpdate(ctx context.Context, UUID string, tx *sql.Tx) (Order, error) {
	return m.FindByUUID(ctx, UUID, tx)
}

type mockSlipRepository struct {
	slips   map[string]map[installment.Kind]*installment.Slip
	updated []installment.Slip
}

func (m *mockSlipRepository) FindManyByOrderID(ctx context.Context, orderID string, tx *sql.Tx) (map[installment.Kind]*installment.Slip, error) {
	out := map[installment.Kind]*installment.Slip{}
	for kind, s := range m.slips[orderID] {
		slip := *s
		out[kind] = &slip
	}
	return out, nil
}

func (m *mockSlipRepository) Update(ctx context.Context, orderID string, s installment.Slip, tx *sql.Tx) error {
	m.updated = append(m.updated, s)
	slip := s
	m.slips[orderID][s.Kind] = &slip
	return nil
}

type mockMediaStore struct {
	uploads []mediastore.UploadRequest
	fail    bool
}

func (m *mockMediaStore) Upload(ctx context.Context, req mediastore.UploadRequest) (mediastore.UploadResponse, error) {
	if m.fail {
		return mediastore.UploadResponse{}, errors.New(http.StatusBadGateway, "BAD_GATEWAY", "an error occurred while uploading the image, please retry")
	}
	m.uploads = append(m.uploads, req)
	return mediastore.UploadResponse{Ref: fmt.Sprintf("obj-%d", len(m.uploads))}, nil
}

type mockPublisher struct {
	topics []string
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, key string, headers map[string]string, message []byte) error {
	m.topics = append(m.topics, topic)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

type fixture struct {
	orderRepo  *mockOrderRepository
	slipRepo   *mockSlipRepository
	mediaStore *mockMediaStore
	publisher  *mockPublisher
	useCase    PaymentUseCase
}

func newFixture() *fixture {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	orderRepo := &mockOrderRepository{orders: map[string]Order{
		testUUID: {
			ID:           "PO-1",
			UUID:         testUUID,
			OrderNo:      "SO-1001",
			CustomerName: "Somchai T.",
			FabricType:   "cotton",
			Quantities:   []SizeQuantity{{Size: "M", Count: 100}},
			Subtotal:     decimal.RequireFromString("12000"),
			VATAmount:    decimal.RequireFromString("868"),
			GrandTotal:   decimal.RequireFromString("13268"),
			Deposit:      decimal.RequireFromString("5000"),
			Balance:      decimal.RequireFromString("8268"),
			Status:       "production",
			UpdatedAt:    time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		},
	}}

	slipRepo := &mockSlipRepository{slips: map[string]map[installment.Kind]*installment.Slip{
		"PO-1": {
			installment.KindBooking: {Kind: installment.KindBooking, ReviewState: installment.ReviewNone},
			installment.KindDeposit: {Kind: installment.KindDeposit, ReviewState: installment.ReviewNone},
			installment.KindBalance: {Kind: installment.KindBalance, ReviewState: installment.ReviewNone},
		},
	}}

	f := &fixture{
		orderRepo:  orderRepo,
		slipRepo:   slipRepo,
		mediaStore: &mockMediaStore{},
		publisher:  &mockPublisher{},
	}

	f.useCase = NewPaymentUseCase(PaymentUseCaseProperty{
		Logger:               logger,
		Timeout:              5 * time.Second,
		OrderRepository:      f.orderRepo,
		SlipRepository:       f.slipRepo,
		MediaStoreRepository: f.mediaStore,
		Publisher:            f.publisher,
	})

	return f
}

func TestGetOrder(t *testing.T) {
	f := newFixture()

	resp, err := f.useCase.GetOrder(context.Background(), testUUID)
	if err != nil {
		t.Fatalf("GetOrder() error = %v", err)
	}

	if resp.UUID != testUUID {
		t.Errorf("UUID = %s", resp.UUID)
	}
	if resp.GrandTotal != "13268.00" {
		t.Errorf("GrandTotal = %s, want 13268.00", resp.GrandTotal)
	}
	if len(resp.Installments) != 3 {
		t.Fatalf("len(Installments) = %d, want 3", len(resp.Installments))
	}

	booking, deposit := resp.Installments[0], resp.Installments[1]
	if !booking.Eligible {
		t.Error("booking must always be eligible")
	}
	if deposit.Eligible {
		t.Error("deposit must stay closed until booking approval")
	}
	if deposit.AmountDue != "5000.00" {
		t.Errorf("deposit AmountDue = %s, want 5000.00", deposit.AmountDue)
	}
	if booking.AmountDue != "0.00" {
		t.Errorf("booking AmountDue = %s, want 0.00", booking.AmountDue)
	}
}

func TestGetOrderUnknownUUID(t *testing.T) {
	f := newFixture()

	_, err := f.useCase.GetOrder(context.Background(), "7e0c4f2d-1a3b-4c5d-8e9f-0a1b2c3d4e5f")
	if err == nil {
		t.Fatal("GetOrder() should fail for an unknown uuid")
	}
	if ae := errors.Destruct(err); ae.HTTPStatusCode != http.StatusNotFound {
		t.Errorf("status code = %d, want %d", ae.HTTPStatusCode, http.StatusNotFound)
	}
}

func TestSubmitSlip(t *testing.T) {
	f := newFixture()

	resp, err := f.useCase.SubmitSlip(context.Background(), SubmitSlipRequest{
		UUID:        testUUID,
		Installment: "booking",
		Filename:    "slip.png",
		Body:        pngBytes(t),
	})
	if err != nil {
		t.Fatalf("SubmitSlip() error = %v", err)
	}

	if resp.ReviewState != "pending" {
		t.Errorf("ReviewState = %s, want pending", resp.ReviewState)
	}

	// The original and its thumbnail are both stored.
	if len(f.mediaStore.uploads) != 2 {
		t.Fatalf("uploaded %d objects, want 2", len(f.mediaStore.uploads))
	}
	if f.mediaStore.uploads[1].ContentType != "image/jpeg" {
		t.Errorf("thumbnail content type = %s, want image/jpeg", f.mediaStore.uploads[1].ContentType)
	}

	slip := f.slipRepo.slips["PO-1"][installment.KindBooking]
	if slip.ReviewState != installment.ReviewPending || slip.ImageRef == "" || slip.ThumbnailRef == "" {
		t.Errorf("stored slip = %+v", slip)
	}

	if len(f.publisher.topics) != 1 || f.publisher.topics[0] != "slip-submitted" {
		t.Errorf("published topics = %v", f.publisher.topics)
	}
}

func TestSubmitSlipRejectsNonImage(t *testing.T) {
	f := newFixture()

	_, err := f.useCase.SubmitSlip(context.Background(), SubmitSlipRequest{
		UUID:        testUUID,
		Installment: "booking",
		Filename:    "slip.pdf",
		Body:        []byte("%PDF-1.7 not an image"),
	})
	if err == nil {
		t.Fatal("SubmitSlip() should reject a non-image body")
	}
	if ae := errors.Destruct(err); ae.HTTPStatusCode != http.StatusBadRequest {
		t.Errorf("status code = %d, want %d", ae.HTTPStatusCode, http.StatusBadRequest)
	}
	if len(f.mediaStore.uploads) != 0 {
		t.Error("a rejected body must not reach storage")
	}
}

func TestSubmitSlipRejectsOversizedBody(t *testing.T) {
	f := newFixture()

	_, err := f.useCase.SubmitSlip(context.Background(), SubmitSlipRequest{
		UUID:        testUUID,
		Installment: "booking",
		Filename:    "slip.png",
		Body:        make([]byte, MaxSlipSize+1),
	})
	if err == nil {
		t.Fatal("SubmitSlip() should reject an oversized body")
	}
	if ae := errors.Destruct(err); ae.HTTPStatusCode != http.StatusBadRequest {
		t.Errorf("status code = %d, want %d", ae.HTTPStatusCode, http.StatusBadRequest)
	}
}

func TestSubmitSlipIneligibleInstallment(t *testing.T) {
	f := newFixture()

	_, err := f.useCase.SubmitSlip(context.Background(), SubmitSlipRequest{
		UUID:        testUUID,
		Installment: "deposit",
		Filename:    "slip.png",
		Body:        pngBytes(t),
	})
	if err == nil {
		t.Fatal("SubmitSlip() should refuse the deposit before booking approval")
	}
	if ae := errors.Destruct(err); ae.HTTPStatusCode != http.StatusConflict {
		t.Errorf("status code = %d, want %d", ae.HTTPStatusCode, http.StatusConflict)
	}
	if len(f.mediaStore.uploads) != 0 {
		t.Error("an ineligible submission must not reach storage")
	}
}

func TestSubmitSlipApprovedIsImmutable(t *testing.T) {
	f := newFixture()
	f.slipRepo.slips["PO-1"][installment.KindBooking].ReviewState = installment.ReviewApproved

	_, err := f.useCase.SubmitSlip(context.Background(), SubmitSlipRequest{
		UUID:        testUUID,
		Installment: "booking",
		Filename:    "slip.png",
		Body:        pngBytes(t),
	})
	if err == nil {
		t.Fatal("SubmitSlip() should refuse a re-upload on an approved slip")
	}
	if ae := errors.Destruct(err); ae.HTTPStatusCode != http.StatusConflict {
		t.Errorf("status code = %d, want %d", ae.HTTPStatusCode, http.StatusConflict)
	}
}

func TestSubmitSlipStorageFailureLeavesNoState(t *testing.T) {
	f := newFixture()
	f.mediaStore.fail = true

	_, err := f.useCase.SubmitSlip(context.Background(), SubmitSlipRequest{
		UUID:        testUUID,
		Installment: "booking",
		Filename:    "slip.png",
		Body:        pngBytes(t),
	})
	if err == nil {
		t.Fatal("SubmitSlip() should surface the storage failure")
	}
	if ae := errors.Destruct(err); ae.HTTPStatusCode != http.StatusBadGateway {
		t.Errorf("status code = %d, want %d", ae.HTTPStatusCode, http.StatusBadGateway)
	}

	if len(f.slipRepo.updated) != 0 {
		t.Error("a storage failure must not write any slip state")
	}
	if got := f.slipRepo.slips["PO-1"][installment.KindBooking].ReviewState; got != installment.ReviewNone {
		t.Errorf("slip state = %s, want untouched none", got)
	}
	if len(f.publisher.topics) != 0 {
		t.Errorf("published topics = %v, want none", f.publisher.topics)
	}
}

func TestSubmitSlipRejectedAllowsReupload(t *testing.T) {
	f := newFixture()
	f.slipRepo.slips["PO-1"][installment.KindBooking] = &installment.Slip{
		Kind:        installment.KindBooking,
		ReviewState: installment.ReviewRejected,
		Note:        "amount does not match",
	}

	resp, err := f.useCase.SubmitSlip(context.Background(), SubmitSlipRequest{
		UUID:        testUUID,
		Installment: "booking",
		Filename:    "slip.png",
		Body:        pngBytes(t),
	})
	if err != nil {
		t.Fatalf("SubmitSlip() error = %v", err)
	}
	if resp.ReviewState != "pending" {
		t.Errorf("ReviewState = %s, want pending", resp.ReviewState)
	}
	if note := f.slipRepo.slips["PO-1"][installment.KindBooking].Note; note != "" {
		t.Errorf("Note = %q, a re-upload must clear the rejection note", note)
	}
}
