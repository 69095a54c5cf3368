package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/jpeg"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/stitchfactory/sf-order/internal/module/customerapp/mediastore"
	"github.com/stitchfactory/sf-order/internal/pkg/installment"
	"github.com/stitchfactory/sf-order/pkg/errors"
	"github.com/stitchfactory/sf-order/pkg/pubsub"
	"github.com/stitchfactory/sf-order/pkg/status"
)

const thumbnailMaxDimension = 300

type PaymentUseCase interface {
	GetOrder(ctx context.Context, UUID string) (PaymentPageResponse, error)
	SubmitSlip(ctx context.Context, req SubmitSlipRequest) (SubmitSlipResponse, error)
}

type paymentUseCase struct {
	logger               *logrus.Logger
	timeout              time.Duration
	orderRepository      OrderRepository
	slipRepository       SlipRepository
	mediaStoreRepository mediastore.MediaStoreRepository
	publisher            pubsub.Publisher
}

type PaymentUseCaseProperty struct {
	Logger               *logrus.Logger
	Timeout              time.Duration
	OrderRepository      OrderRepository
	SlipRepository       SlipRepository
	MediaStoreRepository mediastore.MediaStoreRepository
	Publisher            pubsub.Publisher
}

func NewPaymentUseCase(props PaymentUseCaseProperty) PaymentUseCase {
	return &paymentUseCase{
		logger:               props.Logger,
		timeout:              props.Timeout,
		orderRepository:      props.OrderRepository,
		slipRepository:       props.SlipRepository,
		mediaStoreRepository: props.MediaStoreRepository,
		publisher:            props.Publisher,
	}
}

// GetOrder implements PaymentUseCase.
func (u *paymentUseCase) GetOrder(ctx context.Context, UUID string) (PaymentPageResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	o, err := u.orderRepository.FindByUUID(ctx, UUID, nil)
	if err != nil {
		return PaymentPageResponse{}, err
	}

	slips, err := u.slipRepository.FindManyByOrderID(ctx, o.ID, nil)
	if err != nil {
		return PaymentPageResponse{}, err
	}
	o.Slips = slips

	resp := PaymentPageResponse{}
	resp.PopulateFromEntity(o)

	return resp, nil
}

// validateImage sniffs the real content type and decodes the raster to make
// sure the bytes are an actual image, then produces the review thumbnail.
func (u *paymentUseCase) validateImage(body []byte) (contentType string, thumbnail []byte, err error) {
	if len(body) == 0 {
		return "", nil, errors.New(http.StatusBadRequest, status.BAD_REQUEST, "the slip image is empty")
	}
	if len(body) > MaxSlipSize {
		return "", nil, errors.New(http.StatusBadRequest, status.BAD_REQUEST, "the slip image exceeds the 5 MiB limit")
	}

	contentType = http.DetectContentType(body)
	if _, ok := AllowedContentTypes[contentType]; !ok {
		return "", nil, errors.New(http.StatusBadRequest, status.BAD_REQUEST, fmt.Sprintf("'%s' is not accepted, upload a JPEG or PNG image", contentType))
	}

	img, err := imaging.Decode(bytes.NewReader(body))
	if err != nil {
		return "", nil, errors.New(http.StatusBadRequest, status.BAD_REQUEST, "the slip image could not be decoded")
	}

	thumb := imaging.Fit(img, thumbnailMaxDimension, thumbnailMaxDimension, imaging.Lanczos)
	var buff bytes.Buffer
	if err := jpeg.Encode(&buff, thumb, &jpeg.Options{Quality: 75}); err != nil {
		return "", nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while preparing the slip image")
	}

	return contentType, buff.Bytes(), nil
}

// SubmitSlip implements PaymentUseCase. The image is stored before any row
// changes, so a pending slip always has an image reference and a storage
// failure leaves no partial state. The row lock then serializes against a
// concurrent re-upload or merchant decision, last committed write wins.
func (u *paymentUseCase) SubmitSlip(ctx context.Context, req SubmitSlipRequest) (SubmitSlipResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	kind, err := installment.ParseKind(req.Installment)
	if err != nil {
		return SubmitSlipResponse{}, err
	}

	contentType, thumbnail, err := u.validateImage(req.Body)
	if err != nil {
		return SubmitSlipResponse{}, err
	}

	o, err := u.orderRepository.FindByUUID(ctx, req.UUID, nil)
	if err != nil {
		return SubmitSlipResponse{}, err
	}

	slips, err := u.slipRepository.FindManyByOrderID(ctx, o.ID, nil)
	if err != nil {
		return SubmitSlipResponse{}, err
	}

	if !installment.Eligible(slips, kind) {
		return SubmitSlipResponse{}, errors.New(http.StatusConflict, status.CONFLICT, fmt.Sprintf("the %s installment is not open for submission yet", kind))
	}
	if s, ok := slips[kind]; ok && s.ReviewState == installment.ReviewApproved {
		return SubmitSlipResponse{}, errors.New(http.StatusConflict, status.CONFLICT, fmt.Sprintf("the %s installment has already been approved", kind))
	}

	ext := AllowedContentTypes[contentType]
	uploaded, err := u.mediaStoreRepository.Upload(ctx, mediastore.UploadRequest{
		Filename:    fmt.Sprintf("%s-%s%s", o.UUID, kind, ext),
		ContentType: contentType,
		Body:        req.Body,
	})
	if err != nil {
		return SubmitSlipResponse{}, err
	}

	thumbUploaded, err := u.mediaStoreRepository.Upload(ctx, mediastore.UploadRequest{
		Filename:    fmt.Sprintf("%s-%s-thumb.jpg", o.UUID, kind),
		ContentType: "image/jpeg",
		Body:        thumbnail,
	})
	if err != nil {
		return SubmitSlipResponse{}, err
	}

	tx, err := u.orderRepository.BeginTx(ctx)
	if err != nil {
		return SubmitSlipResponse{}, err
	}

	o, err = u.orderRepository.FindByUUIDForUpdate(ctx, req.UUID, tx)
	if err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return SubmitSlipResponse{}, err
	}

	slips, err = u.slipRepository.FindManyByOrderID(ctx, o.ID, tx)
	if err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return SubmitSlipResponse{}, err
	}

	// Re-check under the lock, the state may have moved since the
	// pre-check above.
	if !installment.Eligible(slips, kind) {
		u.orderRepository.Rollback(ctx, tx)
		return SubmitSlipResponse{}, errors.New(http.StatusConflict, status.CONFLICT, fmt.Sprintf("the %s installment is not open for submission yet", kind))
	}

	slip, ok := slips[kind]
	if !ok {
		u.orderRepository.Rollback(ctx, tx)
		return SubmitSlipResponse{}, errors.New(http.StatusNotFound, status.NOT_FOUND, orderNotFoundMessage)
	}

	if err := slip.Submit(uploaded.Ref, thumbUploaded.Ref, time.Now()); err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return SubmitSlipResponse{}, err
	}

	if err := u.slipRepository.Update(ctx, o.ID, *slip, tx); err != nil {
		u.orderRepository.Rollback(ctx, tx)
		return SubmitSlipResponse{}, err
	}

	if err := u.orderRepository.CommitTx(ctx, tx); err != nil {
		return SubmitSlipResponse{}, err
	}

	buff, _ := json.Marshal(map[string]interface{}{
		"id":          o.ID,
		"order_no":    o.OrderNo,
		"installment": kind,
	})
	if err := u.publisher.Publish(ctx, "slip-submitted", o.ID, nil, buff); err != nil {
		u.logger.WithContext(ctx).WithError(err).Warn("failed to publish event")
	}

	return SubmitSlipResponse{Installment: string(kind), ReviewState: string(slip.ReviewState)}, nil
}
