package pricingrule

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/stitchfactory/sf-order/internal/pkg/pricing"
	"github.com/stitchfactory/sf-order/pkg/errors"
	"github.com/stitchfactory/sf-order/pkg/status"
)

type RuleRepository interface {
	FindMany(ctx context.Context, tx *sql.Tx) ([]pricing.Rule, error)
	FindManyByFabricType(ctx context.Context, fabricType string, tx *sql.Tx) ([]pricing.Rule, error)
	Save(ctx context.Context, rule pricing.Rule, tx *sql.Tx) (int64, error)
	Delete(ctx context.Context, ID int64, tx *sql.Tx) error
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type ruleRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewRuleRepository(logger *logrus.Logger, db *sql.DB) RuleRepository {
	return &ruleRepository{
		logger: logger,
		db:     db,
	}
}

func (r *ruleRepository) findMany(ctx context.Context, cmd sqlCommand, condition string, args ...interface{}) ([]pricing.Rule, error) {
	query := fmt.Sprintf(`
		SELECT
			id, fabric_type, min_qty, max_qty, unit_price
		FROM pricing_rule
		%s
		ORDER BY fabric_type, min_qty
	`, condition)

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of pricing rule's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of pricing rule's properties")
	}

	defer rows.Close()

	var data = make([]pricing.Rule, 0)
	for rows.Next() {
		var rule pricing.Rule

		if err := rows.Scan(&rule.ID, &rule.FabricType, &rule.MinQty, &rule.MaxQty, &rule.UnitPrice); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of pricing rule's properties")
		}

		data = append(data, rule)
	}

	return data, nil
}

// FindMany implements RuleRepository.
func (r *ruleRepository) FindMany(ctx context.Context, tx *sql.Tx) ([]pricing.Rule, error) {
	var cmd sqlCommand = r.db
	if tx != nil {
		cmd = tx
	}

	return r.findMany(ctx, cmd, "")
}

// FindManyByFabricType implements RuleRepository.
func (r *ruleRepository) FindManyByFabricType(ctx context.Context, fabricType string, tx *sql.Tx) ([]pricing.Rule, error) {
	var cmd sqlCommand = r.db
	if tx != nil {
		cmd = tx
	}

	return r.findMany(ctx, cmd, "WHERE fabric_type = $1", fabricType)
}

// Save implements RuleRepository.
func (r *ruleRepository) Save(ctx context.Context, rule pricing.Rule, tx *sql.Tx) (int64, error) {
	var cmd sqlCommand = r.db
	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO pricing_rule
		(
			fabric_type, min_qty, max_qty, unit_price
		)
		VALUES
		(
			$1, $2, $3, $4
		)
		RETURNING id
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving pricing rule's properties")
	}
	defer stmt.Close()

	var id int64
	if err := stmt.QueryRowContext(ctx, rule.FabricType, rule.MinQty, rule.MaxQty, rule.UnitPrice).Scan(&id); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving pricing rule's properties")
	}

	return id, nil
}

// Delete implements RuleRepository.
func (r *ruleRepository) Delete(ctx context.Context, ID int64, tx *sql.Tx) error {
	var cmd sqlCommand = r.db
	if tx != nil {
		cmd = tx
	}

	query := `
		DELETE FROM pricing_rule
		WHERE id = $1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while deleting pricing rule's properties")
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, ID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while deleting pricing rule's properties")
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.New(http.StatusNotFound, status.NOT_FOUND, fmt.Sprintf("pricing rule with id '%d' is not found", ID))
	}

	return nil
}
