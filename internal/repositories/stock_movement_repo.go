package repositories

import (
	"context"

	"erpcore/internal/models"

	"github.com/google/uuid"
)

type StockMovementRepository interface {
	ListByProduct(ctx context.Context, tenantID, productID uuid.UUID, limit int) ([]*models.StockMovement, error)
}

type stockMovementRepo struct {
	db DB
}

func NewStockMovementRepo(db DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) ListByProduct(ctx context.Context, tenantID, productID uuid.UUID, limit int) ([]*models.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, tenant_id, product_id, movement_type, quantity, previous_stock, new_stock, reference, notes, created_by, created_at
		FROM stock_movements
		WHERE tenant_id = $1 AND product_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, productID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := []*models.StockMovement{}
	for rows.Next() {
		m := &models.StockMovement{}
		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.ProductID, &m.MovementType, &m.Quantity,
			&m.PreviousStock, &m.NewStock, &m.Reference, &m.Notes, &m.CreatedBy, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
