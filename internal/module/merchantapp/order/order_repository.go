package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitchfactory/sf-order/internal/pkg/urgency"
	"github.com/stitchfactory/sf-order/pkg/errors"
	"github.com/stitchfactory/sf-order/pkg/status"
)

type ListFilter struct {
	Severity urgency.Severity
}

type OrderRepository interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)
	CommitTx(ctx context.Context, tx *sql.Tx) error
	Rollback(ctx context.Context, tx *sql.Tx) error

	Save(ctx context.Context, o Order, tx *sql.Tx) error
	FindByID(ctx context.Context, ID string, tx *sql.Tx) (Order, error)
	FindByIDForUpdate(ctx context.Context, ID string, tx *sql.Tx) (Order, error)
	FindMany(ctx context.Context, filter ListFilter, offset, limit int64, tx *sql.Tx) ([]Order, error)
	Count(ctx context.Context, filter ListFilter, tx *sql.Tx) (int64, error)
	Update(ctx context.Context, ID string, o Order, tx *sql.Tx) error
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

const orderColumns = `
	id, uuid, order_no, customer_name, customer_phone, quantities, fabric_type,
	unit_price, manual_price, add_on_cost, shipping_cost, discount,
	vat_included, vat_rate, subtotal, vat_amount, grand_total, deposit, balance,
	deadline, status, created_at, updated_at
`

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

func (r *orderRepository) scanOrder(row *sql.Row) (Order, error) {
	var data Order
	var quantities []byte
	var customerPhone sql.NullString
	var deadline sql.NullTime

	err := row.Scan(
		&data.ID, &data.UUID, &data.OrderNo, &data.CustomerName, &customerPhone, &quantities, &data.FabricType,
		&data.UnitPrice, &data.ManualPrice, &data.AddOnCost, &data.ShippingCost, &data.Discount,
		&data.VATIncluded, &data.VATRate, &data.Subtotal, &data.VATAmount, &data.GrandTotal, &data.Deposit, &data.Balance,
		&deadline, &data.Status, &data.CreatedAt, &data.UpdatedAt,
	)
	if err != nil {
		return Order{}, err
	}

	if customerPhone.Valid {
		data.CustomerPhone = customerPhone.String
	}
	if deadline.Valid {
		t := deadline.Time
		data.Deadline = &t
	}
	if err := json.Unmarshal(quantities, &data.Quantities); err != nil {
		return Order{}, err
	}

	return data, nil
}

func (r *orderRepository) findByID(ctx context.Context, ID string, cmd sqlCommand, forUpdate bool) (Order, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM production_order
		WHERE
			id = $1
		LIMIT 1
	`, orderColumns)
	if forUpdate {
		query += ` FOR UPDATE`
	}

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Order{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting order's properties")
	}
	defer stmt.Close()

	data, err := r.scanOrder(stmt.QueryRowContext(ctx, ID))
	if err != nil {
		if err == sql.ErrNoRows {
			return Order{}, errors.New(http.StatusNotFound, status.NOT_FOUND, fmt.Sprintf("order with id '%s' is not found", ID))
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Order{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting order's properties")
	}

	return data, nil
}

// FindByID implements OrderRepository.
func (r *orderRepository) FindByID(ctx context.Context, ID string, tx *sql.Tx) (Order, error) {
	var cmd sqlCommand = r.db
	if tx != nil {
		cmd = tx
	}

	return r.findByID(ctx, ID, cmd, false)
}

// FindByIDForUpdate implements OrderRepository. Locks the order row so slip
// transitions for one order serialize.
func (r *orderRepository) FindByIDForUpdate(ctx context.Context, ID string, tx *sql.Tx) (Order, error) {
	var cmd sqlCommand = r.db
	if tx != nil {
		cmd = tx
	}

	return r.findByID(ctx, ID, cmd, true)
}

// severityCondition translates the dashboard filter into a deadline window.
// The windows use the urgency package's day constants, so this can never
// disagree with urgency.Classify.
func severityCondition(severity urgency.Severity, now time.Time, args []interface{}) (string, []interface{}) {
	critical := now.AddDate(0, 0, urgency.CriticalWithinDays)
	warning := now.AddDate(0, 0, urgency.WarningWithinDays)

	switch severity {
	case urgency.SeverityOverdue:
		args = append(args, now)
		return fmt.Sprintf("deadline IS NOT NULL AND deadline < $%d", len(args)), args
	case urgency.SeverityCritical:
		args = append(args, now, critical)
		return fmt.Sprintf("deadline >= $%d AND deadline <= $%d", len(args)-1, len(args)), args
	case urgency.SeverityWarning:
		args = append(args, critical, warning)
		return fmt.Sprintf("deadline > $%d AND deadline <= $%d", len(args)-1, len(args)), args
	case urgency.SeverityNormal:
		args = append(args, warning)
		return fmt.Sprintf("(deadline IS NULL OR deadline > $%d)", len(args)), args
	}

	return "TRUE", args
}

// FindMany implements OrderRepository.
func (r *orderRepository) FindMany(ctx context.Context, filter ListFilter, offset, limit int64, tx *sql.Tx) ([]Order, error) {
	var cmd sqlCommand = r.db
	if tx != nil {
		cmd = tx
	}

	var args []interface{}
	condition := "TRUE"
	if filter.Severity != "" {
		condition, args = severityCondition(filter.Severity, time.Now(), args)
	}

	args = append(args, offset, limit)
	query := fmt.Sprintf(`
		SELECT %s
		FROM production_order
		WHERE %s
		ORDER BY id DESC
		OFFSET $%d
		LIMIT $%d
	`, orderColumns, condition, len(args)-1, len(args))

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order's properties")
	}

	defer rows.Close()

	var data = make([]Order, 0)

	for rows.Next() {
		var o Order
		var quantities []byte
		var customerPhone sql.NullString
		var deadline sql.NullTime

		if err := rows.Scan(
			&o.ID, &o.UUID, &o.OrderNo, &o.CustomerName, &customerPhone, &quantities, &o.FabricType,
			&o.UnitPrice, &o.ManualPrice, &o.AddOnCost, &o.ShippingCost, &o.Discount,
			&o.VATIncluded, &o.VATRate, &o.Subtotal, &o.VATAmount, &o.GrandTotal, &o.Deposit, &o.Balance,
			&deadline, &o.Status, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order's properties")
		}

		if customerPhone.Valid {
			o.CustomerPhone = customerPhone.String
		}
		if deadline.Valid {
			t := deadline.Time
			o.Deadline = &t
		}
		if err := json.Unmarshal(quantities, &o.Quantities); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order's properties")
		}

		data = append(data, o)
	}

	return data, nil
}

// Count implements OrderRepository.
func (r *orderRepository) Count(ctx context.Context, filter ListFilter, tx *sql.Tx) (int64, error) {
	var cmd sqlCommand = r.db
	if tx != nil {
		cmd = tx
	}

	var args []interface{}
	condition := "TRUE"
	if filter.Severity != "" {
		condition, args = severityCondition(filter.Severity, time.Now(), args)
	}

	query := fmt.Sprintf(`
		SELECT count(id)
		FROM production_order
		WHERE %s
	`, condition)

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while counting order's properties")
	}
	defer stmt.Close()

	var count int64
	if err := stmt.QueryRowContext(ctx, args...).Scan(&count); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while counting order's properties")
	}

	return count, nil
}

// Save implements OrderRepository.
func (r *orderRepository) Save(ctx context.Context, o Order, tx *sql.Tx) error {
	var cmd sqlCommand = r.db
	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO production_order
		(
			id, uuid, order_no, customer_name, customer_phone, quantities, fabric_type,
			unit_price, manual_price, add_on_cost, shipping_cost, discount,
			vat_included, vat_rate, subtotal, vat_amount, grand_total, deposit, balance,
			deadline, status, created_at, updated_at
		)
		VALUES
		(
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving order's properties")
	}
	defer stmt.Close()

	quantities, _ := json.Marshal(o.Quantities)

	var customerPhone sql.NullString
	if o.CustomerPhone != "" {
		customerPhone.String = o.CustomerPhone
		customerPhone.Valid = true
	}

	var deadline sql.NullTime
	if o.Deadline != nil {
		deadline.Time = *o.Deadline
		deadline.Valid = true
	}

	_, err = stmt.ExecContext(ctx,
		o.ID, o.UUID, o.OrderNo, o.CustomerName, customerPhone, quantities, o.FabricType,
		o.UnitPrice, o.ManualPrice, o.AddOnCost, o.ShippingCost, o.Discount,
		o.VATIncluded, o.VATRate, o.Subtotal, o.VATAmount, o.GrandTotal, o.Deposit, o.Balance,
		deadline, o.Status, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving order's properties")
	}

	return nil
}

// Update implements OrderRepository.
func (r *orderRepository) Update(ctx context.Context, ID string, o Order, tx *sql.Tx) error {
	var cmd sqlCommand = r.db
	if tx != nil {
		cmd = tx
	}

	query := `
		UPDATE production_order
		SET
			customer_name = $1,
			customer_phone = $2,
			quantities = $3,
			fabric_type = $4,
			unit_price = $5,
			manual_price = $6,
			add_on_cost = $7,
			shipping_cost = $8,
			discount = $9,
			vat_included = $10,
			subtotal = $11,
			vat_amount = $12,
			grand_total = $13,
			deposit = $14,
			balance = $15,
			deadline = $16,
			status = $17,
			updated_at = $18
		WHERE id = $19
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating order's properties")
	}
	defer stmt.Close()

	quantities, _ := json.Marshal(o.Quantities)

	var customerPhone sql.NullString
	if o.CustomerPhone != "" {
		customerPhone.String = o.CustomerPhone
		customerPhone.Valid = true
	}

	var deadline sql.NullTime
	if o.Deadline != nil {
		deadline.Time = *o.Deadline
		deadline.Valid = true
	}

	_, err = stmt.ExecContext(ctx,
		o.CustomerName, customerPhone, quantities, o.FabricType,
		o.UnitPrice, o.ManualPrice, o.AddOnCost, o.ShippingCost, o.Discount,
		o.VATIncluded, o.Subtotal, o.VATAmount, o.GrandTotal, o.Deposit, o.Balance,
		deadline, o.Status, o.UpdatedAt, ID,
	)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating order's properties")
	}

	return nil
}
