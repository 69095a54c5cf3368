package company

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/stitchfactory/sf-order/pkg/errors"
	"github.com/stitchfactory/sf-order/pkg/status"
)

type ConfigRepository interface {
	Find(ctx context.Context, tx *sql.Tx) (Config, error)
	Update(ctx context.Context, cfg Config, tx *sql.Tx) error
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type configRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewConfigRepository(logger *logrus.Logger, db *sql.DB) ConfigRepository {
	return &configRepository{
		logger: logger,
		db:     db,
	}
}

// Find implements ConfigRepository.
func (r *configRepository) Find(ctx context.Context, tx *sql.Tx) (Config, error) {
	var cmd sqlCommand = r.db
	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			vat_rate, default_shipping_cost, updated_at
		FROM company_config
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Config{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting company config's properties")
	}
	defer stmt.Close()

	var data Config
	if err := stmt.QueryRowContext(ctx).Scan(&data.VATRate, &data.DefaultShippingCost, &data.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return Config{}, errors.New(http.StatusNotFound, status.NOT_FOUND, "company config has not been initialized")
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Config{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting company config's properties")
	}

	return data, nil
}

// Update implements ConfigRepository.
func (r *configRepository) Update(ctx context.Context, cfg Config, tx *sql.Tx) error {
	var cmd sqlCommand = r.db
	if tx != nil {
		cmd = tx
	}

	query := `
		UPDATE company_config
		SET
			vat_rate = $1,
			default_shipping_cost = $2,
			updated_at = $3
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating company config's properties")
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, cfg.VATRate, cfg.DefaultShippingCost, cfg.UpdatedAt)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating company config's properties")
	}

	return nil
}
