package order

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/stitchfactory/sf-order/internal/pkg/installment"
	"github.com/stitchfactory/sf-order/pkg/errors"
	"github.com/stitchfactory/sf-order/pkg/status"
)

type SlipRepository interface {
	SaveMany(ctx context.Context, orderID string, slips []installment.Slip, tx *sql.Tx) error
	FindManyByOrderID(ctx context.Context, orderID string, tx *sql.Tx) (map[installment.Kind]*installment.Slip, error)
	Update(ctx context.Context, orderID string, s installment.Slip, tx *sql.Tx) error
}

type slipRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewSlipRepository(logger *logrus.Logger, db *sql.DB) SlipRepository {
	return &slipRepository{
		logger: logger,
		db:     db,
	}
}

// SaveMany implements SlipRepository. Used once per order, at creation, to
// seed the three empty slip rows.
func (r *slipRepository) SaveMany(ctx context.Context, orderID string, slips []installment.Slip, tx *sql.Tx) error {
	var cmd sqlCommand = r.db
	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO order_slip
		(
			order_id, installment, image_ref, thumbnail_ref, review_state, note, updated_at
		)
		VALUES
		(
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving slip's properties")
	}
	defer stmt.Close()

	for _, s := range slips {
		if _, err := stmt.ExecContext(ctx, orderID, s.Kind, s.ImageRef, s.ThumbnailRef, s.ReviewState, s.Note, s.UpdatedAt); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving slip's properties")
		}
	}

	return nil
}

// FindManyByOrderID implements SlipRepository.
func (r *slipRepository) FindManyByOrderID(ctx context.Context, orderID string, tx *sql.Tx) (map[installment.Kind]*installment.Slip, error) {
	var cmd sqlCommand = r.db
	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			installment, image_ref, thumbnail_ref, review_state, note, updated_at
		FROM order_slip
		WHERE
			order_id = $1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of slip's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, orderID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of slip's properties")
	}

	defer rows.Close()

	data := make(map[installment.Kind]*installment.Slip)
	for rows.Next() {
		var s installment.Slip

		if err := rows.Scan(&s.Kind, &s.ImageRef, &s.ThumbnailRef, &s.ReviewState, &s.Note, &s.UpdatedAt); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of slip's properties")
		}

		slip := s
		data[s.Kind] = &slip
	}

	return data, nil
}

// Update implements SlipRepository.
func (r *slipRepository) Update(ctx context.Context, orderID string, s installment.Slip, tx *sql.Tx) error {
	var cmd sqlCommand = r.db
	if tx != nil {
		cmd = tx
	}

	query := `
		UPDATE order_slip
		SET
			image_ref = $1,
			thumbnail_ref = $2,
			review_state = $3,
			note = $4,
			updated_at = $5
		WHERE
			order_id = $6
		AND
			installment = $7
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating slip's properties")
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, s.ImageRef, s.ThumbnailRef, s.ReviewState, s.Note, s.UpdatedAt, orderID, s.Kind)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating slip's properties")
	}

	return nil
}
