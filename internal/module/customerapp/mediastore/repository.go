package mediastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/stitchfactory/sf-order/pkg/errors"
	"github.com/stitchfactory/sf-order/pkg/status"
)

type MediaStoreRepository interface {
	Upload(ctx context.Context, req UploadRequest) (UploadResponse, error)
}

type mediaStoreRepository struct {
	baseURL      string
	basicAuthKey string
	logger       *logrus.Logger
	hc           *http.Client
}

func NewMediaStoreRepository(baseURL string, basicAuthKey string, logger *logrus.Logger, hc *http.Client) MediaStoreRepository {
	return &mediaStoreRepository{
		baseURL:      baseURL,
		basicAuthKey: basicAuthKey,
		logger:       logger,
		hc:           hc,
	}
}

// Upload implements MediaStoreRepository. A storage failure is surfaced as
// a retryable bad gateway, the caller must not have mutated any state yet.
func (r *mediaStoreRepository) Upload(ctx context.Context, req UploadRequest) (UploadResponse, error) {
	url := fmt.Sprintf("%s/v1/objects", r.baseURL)

	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(req.Body))
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return UploadResponse{}, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while uploading the image, please retry")
	}

	hr.Header.Add("Content-Type", req.ContentType)
	hr.Header.Add("Accept", "application/json")
	hr.Header.Add("X-Filename", req.Filename)
	hr.Header.Add("Authorization", fmt.Sprintf("Basic %s", r.basicAuthKey))

	hresp, err := r.hc.Do(hr)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return UploadResponse{}, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while uploading the image, please retry")
	}

	defer hresp.Body.Close()

	respBody, err := io.ReadAll(hresp.Body)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return UploadResponse{}, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while uploading the image, please retry")
	}

	if hresp.StatusCode < 200 || hresp.StatusCode > 299 {
		err := fmt.Errorf("media store responded with %d: %s", hresp.StatusCode, string(respBody))
		r.logger.WithContext(ctx).WithError(err).Error()
		return UploadResponse{}, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while uploading the image, please retry")
	}

	var resp UploadResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return UploadResponse{}, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while uploading the image, please retry")
	}

	return resp, nil
}
