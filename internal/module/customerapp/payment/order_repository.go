package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/stitchfactory/sf-order/pkg/errors"
	"github.com/stitchfactory/sf-order/pkg/status"
)

// The not-found message is deliberately neutral: the public page must not
// reveal whether a uuid is wrong or the order never existed.
const orderNotFoundMessage = "order not found"

type OrderRepository interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)
	CommitTx(ctx context.Context, tx *sql.Tx) error
	Rollback(ctx context.Context, tx *sql.Tx) error

	FindByUUID(ctx context.Context, UUID string, tx *sql.Tx) (Order, error)
	FindByUUIDForUpdate(ctx context.Context, UUID string, tx *sql.Tx) (Order, error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type orderRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewOrderRepository(logger *logrus.Logger, db *sql.DB) OrderRepository {
	return &orderRepository{
		logger: logger,
		db:     db,
	}
}

// BeginTx implements OrderRepository.
func (r *orderRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred trying to begin transaction")
	}

	return tx, nil
}

// CommitTx implements OrderRepository.
func (r *orderRepository) CommitTx(ctx context.Context, tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred trying to commit transaction")
	}

	return nil
}

// Rollback implements OrderRepository.
func (r *orderRepository) Rollback(ctx context.Context, tx *sql.Tx) error {
	if err := tx.Rollback(); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred trying to rollback transaction")
	}

	return nil
}

func (r *orderRepository) findByUUID(ctx context.Context, UUID string, cmd sqlCommand, forUpdate bool) (Order, error) {
	query := `
		SELECT
			id, uuid, order_no, customer_name, quantities, fabric_type, unit_price,
			vat_included, vat_rate, subtotal, vat_amount, grand_total, deposit, balance,
			status, created_at, updated_at
		FROM production_order
		WHERE
			uuid = $1
		LIMIT 1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Order{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting order's properties")
	}
	defer stmt.Close()

	var data Order
	var quantities []byte

	err = stmt.QueryRowContext(ctx, UUID).Scan(
		&data.ID, &data.UUID, &data.OrderNo, &data.CustomerName, &quantities, &data.FabricType, &data.UnitPrice,
		&data.VATIncluded, &data.VATRate, &data.Subtotal, &data.VATAmount, &data.GrandTotal, &data.Deposit, &data.Balance,
		&data.Status, &data.CreatedAt, &data.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Order{}, errors.New(http.StatusNotFound, status.NOT_FOUND, orderNotFoundMessage)
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Order{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting order's properties")
	}

	if err := json.Unmarshal(quantities, &data.Quantities); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Order{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting order's properties")
	}

	return data, nil
}

// FindByUUID implements OrderRepository.
func (r *orderRepository) FindByUUID(ctx context.Context, UUID string, tx *sql.Tx) (Order, error) {
	var cmd sqlCommand = r.db
	if tx != nil {
		cmd = tx
	}

	return r.findByUUID(ctx, UUID, cmd, false)
}

// FindByUUIDForUpdate implements OrderRepository. Locks the order row so a
// concurrent re-upload or merchant decision for the same order serializes.
func (r *orderRepository) FindByUUIDForUpdate(ctx context.Context, UUID string, tx *sql.Tx) (Order, error) {
	var cmd sqlCommand = r.db
	if tx != nil {
		cmd = tx
	}

	return r.findByUUID(ctx, UUID, cmd, true)
}
