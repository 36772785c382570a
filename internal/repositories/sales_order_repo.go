package repositories

import (
	"context"
	"fmt"

	"erpcore/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type SalesOrderRepository interface {
	// Create inserts the order and its items in one transaction.
	Create(ctx context.Context, order *models.SalesOrder) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SalesOrder, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.SalesOrderSearchFilter) ([]*models.SalesOrder, error)
	Update(ctx context.Context, order *models.SalesOrder) error
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
	// ReplaceItems deletes the order's items, inserts the given set, and
	// recomputes subtotal and total from the new lines, atomically.
	ReplaceItems(ctx context.Context, tenantID, orderID uuid.UUID, items []*models.SalesOrderItem) (*models.SalesOrder, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Stats(ctx context.Context, tenantID uuid.UUID) (*models.SalesOrderStats, error)
}

type salesOrderRepo struct {
	db DB
}

func NewSalesOrderRepo(db DB) SalesOrderRepository {
	return &salesOrderRepo{db: db}
}

const salesOrderColumns = `id, tenant_id, order_number, reference, customer_id,
		order_date, expected_delivery_date, status, priority,
		subtotal, tax_amount, discount_amount, total_amount,
		notes, internal_notes, created_by, assigned_to, created_at, updated_at`

func scanSalesOrder(row pgx.Row) (*models.SalesOrder, error) {
	o := &models.SalesOrder{}
	err := row.Scan(
		&o.ID, &o.TenantID, &o.OrderNumber, &o.Reference, &o.CustomerID,
		&o.OrderDate, &o.ExpectedDeliveryDate, &o.Status, &o.Priority,
		&o.Subtotal, &o.TaxAmount, &o.DiscountAmount, &o.TotalAmount,
		&o.Notes, &o.InternalNotes, &o.CreatedBy, &o.AssignedTo, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *salesOrderRepo) Create(ctx context.Context, order *models.SalesOrder) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO sales_orders (id, tenant_id, order_number, reference, customer_id,
			order_date, expected_delivery_date, status, priority,
			subtotal, tax_amount, discount_amount, total_amount,
			notes, internal_notes, created_by, assigned_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
	`
	if _, err := tx.Exec(ctx, insert,
		order.ID, order.TenantID, order.OrderNumber, order.Reference, order.CustomerID,
		order.OrderDate, order.ExpectedDeliveryDate, order.Status, order.Priority,
		order.Subtotal, order.TaxAmount, order.DiscountAmount, order.TotalAmount,
		order.Notes, order.InternalNotes, order.CreatedBy, order.AssignedTo,
	); err != nil {
		return err
	}

	for _, item := range order.Items {
		if err := insertSalesOrderItem(ctx, tx, item); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func insertSalesOrderItem(ctx context.Context, tx pgx.Tx, item *models.SalesOrderItem) error {
	query := `
		INSERT INTO sales_order_items (id, tenant_id, sales_order_id, product_id,
			quantity, unit_price, discount_percent, line_total, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := tx.Exec(ctx, query,
		item.ID, item.TenantID, item.SalesOrderID, item.ProductID,
		item.Quantity, item.UnitPrice, item.DiscountPercent, item.LineTotal, item.Notes,
	)
	return err
}

func (r *salesOrderRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SalesOrder, error) {
	query := `SELECT ` + salesOrderColumns + ` FROM sales_orders WHERE tenant_id = $1 AND id = $2`
	order, err := scanSalesOrder(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *salesOrderRepo) listItems(ctx context.Context, tenantID, orderID uuid.UUID) ([]*models.SalesOrderItem, error) {
	query := `
		SELECT id, tenant_id, sales_order_id, product_id, quantity, unit_price, discount_percent, line_total, notes, created_at, updated_at
		FROM sales_order_items
		WHERE tenant_id = $1 AND sales_order_id = $2
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.SalesOrderItem{}
	for rows.Next() {
		item := &models.SalesOrderItem{}
		if err := rows.Scan(
			&item.ID, &item.TenantID, &item.SalesOrderID, &item.ProductID,
			&item.Quantity, &item.UnitPrice, &item.DiscountPercent, &item.LineTotal,
			&item.Notes, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *salesOrderRepo) List(ctx context.Context, tenantID uuid.UUID, filter models.SalesOrderSearchFilter) ([]*models.SalesOrder, error) {
	query := `SELECT ` + salesOrderColumns + ` FROM sales_orders WHERE tenant_id = $1`
	args := []any{tenantID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		query += fmt.Sprintf(" AND priority = $%d", len(args))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		query += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += fmt.Sprintf(" AND order_date >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += fmt.Sprintf(" AND order_date <= $%d", len(args))
	}

	query += " ORDER BY order_date DESC, order_number DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*models.SalesOrder{}
	for rows.Next() {
		o, err := scanSalesOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *salesOrderRepo) Update(ctx context.Context, order *models.SalesOrder) error {
	query := `
		UPDATE sales_orders
		SET reference = $1, customer_id = $2, order_date = $3, expected_delivery_date = $4,
			priority = $5, tax_amount = $6, discount_amount = $7,
			total_amount = subtotal + $6 - $7,
			notes = $8, internal_notes = $9, assigned_to = $10, updated_at = NOW()
		WHERE tenant_id = $11 AND id = $12
	`
	_, err := r.db.Exec(ctx, query,
		order.Reference, order.CustomerID, order.OrderDate, order.ExpectedDeliveryDate,
		order.Priority, order.TaxAmount, order.DiscountAmount,
		order.Notes, order.InternalNotes, order.AssignedTo, order.TenantID, order.ID,
	)
	return err
}

func (r *salesOrderRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	query := `UPDATE sales_orders SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	tag, err := r.db.Exec(ctx, query, status, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *salesOrderRepo) ReplaceItems(ctx context.Context, tenantID, orderID uuid.UUID, items []*models.SalesOrderItem) (*models.SalesOrder, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM sales_order_items WHERE tenant_id = $1 AND sales_order_id = $2`, tenantID, orderID); err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, item := range items {
		item.TenantID = tenantID
		item.SalesOrderID = orderID
		item.ComputeLineTotal()
		subtotal = subtotal.Add(item.LineTotal)
		if err := insertSalesOrderItem(ctx, tx, item); err != nil {
			return nil, err
		}
	}

	recompute := `
		UPDATE sales_orders
		SET subtotal = $1, total_amount = $1 + tax_amount - discount_amount, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
		RETURNING ` + salesOrderColumns
	order, err := scanSalesOrder(tx.QueryRow(ctx, recompute, subtotal, tenantID, orderID))
	if err != nil {
		return nil, err
	}
	order.Items = items

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *salesOrderRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM sales_order_items WHERE tenant_id = $1 AND sales_order_id = $2`, tenantID, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM sales_orders WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

func (r *salesOrderRepo) Stats(ctx context.Context, tenantID uuid.UUID) (*models.SalesOrderStats, error) {
	stats := &models.SalesOrderStats{}
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'confirmed'),
			COUNT(*) FILTER (WHERE status = 'delivered'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COALESCE(SUM(total_amount) FILTER (WHERE status NOT IN ('draft', 'cancelled')), 0)
		FROM sales_orders
		WHERE tenant_id = $1
	`
	err := r.db.QueryRow(ctx, query, tenantID).Scan(
		&stats.TotalOrders, &stats.DraftOrders, &stats.ConfirmedOrders,
		&stats.DeliveredOrders, &stats.CancelledOrders, &stats.TotalRevenue,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
