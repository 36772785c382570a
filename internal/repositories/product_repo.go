package repositories

import (
	"context"
	"fmt"

	"erpcore/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
	GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*models.Product, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.ProductSearchFilter) ([]*models.Product, error)
	ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// AdjustStock applies a signed quantity delta under a row lock and records
	// the movement, all in one transaction. Returns the product after the
	// adjustment.
	AdjustStock(ctx context.Context, tenantID, productID uuid.UUID, movement *models.StockMovement) (*models.Product, error)
}

type productRepo struct {
	db DB
}

func NewProductRepo(db DB) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, tenant_id, name, description, sku, barcode, product_type, category_id,
		cost_price, selling_price, margin_percentage,
		track_inventory, current_stock, minimum_stock, maximum_stock, stock_status,
		is_active, is_featured, created_by, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(
		&p.ID, &p.TenantID, &p.Name, &p.Description, &p.SKU, &p.Barcode, &p.ProductType, &p.CategoryID,
		&p.CostPrice, &p.SellingPrice, &p.MarginPercentage,
		&p.TrackInventory, &p.CurrentStock, &p.MinimumStock, &p.MaximumStock, &p.StockStatus,
		&p.IsActive, &p.IsFeatured, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (id, tenant_id, name, description, sku, barcode, product_type, category_id,
			cost_price, selling_price, margin_percentage,
			track_inventory, current_stock, minimum_stock, maximum_stock, stock_status,
			is_active, is_featured, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.TenantID, p.Name, p.Description, p.SKU, p.Barcode, p.ProductType, p.CategoryID,
		p.CostPrice, p.SellingPrice, p.MarginPercentage,
		p.TrackInventory, p.CurrentStock, p.MinimumStock, p.MaximumStock, p.StockStatus,
		p.IsActive, p.IsFeatured, p.CreatedBy,
	)
	return err
}

func (r *productRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 AND id = $2`
	return scanProduct(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *productRepo) GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 AND sku = $2`
	return scanProduct(r.db.QueryRow(ctx, query, tenantID, sku))
}

func (r *productRepo) List(ctx context.Context, tenantID uuid.UUID, filter models.ProductSearchFilter) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1`
	args := []any{tenantID}

	if filter.Query != nil && *filter.Query != "" {
		args = append(args, "%"+*filter.Query+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (name ILIKE $%d OR sku ILIKE $%d OR barcode ILIKE $%d)", n, n, n)
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if filter.ProductType != nil {
		args = append(args, *filter.ProductType)
		query += fmt.Sprintf(" AND product_type = $%d", len(args))
	}
	if filter.StockStatus != nil {
		args = append(args, *filter.StockStatus)
		query += fmt.Sprintf(" AND stock_status = $%d", len(args))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += fmt.Sprintf(" AND is_active = $%d", len(args))
	}

	query += " ORDER BY name"
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

	products := []*models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepo) ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE tenant_id = $1 AND track_inventory = true AND current_stock <= minimum_stock AND is_active = true
		ORDER BY current_stock`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, barcode = $3, product_type = $4, category_id = $5,
			cost_price = $6, selling_price = $7, margin_percentage = $8,
			track_inventory = $9, minimum_stock = $10, maximum_stock = $11, stock_status = $12,
			is_active = $13, is_featured = $14, updated_at = NOW()
		WHERE tenant_id = $15 AND id = $16
	`
	_, err := r.db.Exec(ctx, query,
		p.Name, p.Description, p.Barcode, p.ProductType, p.CategoryID,
		p.CostPrice, p.SellingPrice, p.MarginPercentage,
		p.TrackInventory, p.MinimumStock, p.MaximumStock, p.StockStatus,
		p.IsActive, p.IsFeatured, p.TenantID, p.ID,
	)
	return err
}

func (r *productRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM products WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepo) AdjustStock(ctx context.Context, tenantID, productID uuid.UUID, movement *models.StockMovement) (*models.Product, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	lock := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 AND id = $2 FOR UPDATE`
	product, err := scanProduct(tx.QueryRow(ctx, lock, tenantID, productID))
	if err != nil {
		return nil, err
	}

	movement.PreviousStock = product.CurrentStock
	movement.NewStock = product.CurrentStock + movement.Quantity
	product.CurrentStock = movement.NewStock
	product.DeriveStockStatus()

	update := `
		UPDATE products
		SET current_stock = $1, stock_status = $2, updated_at = NOW()
		WHERE tenant_id = $3 AND id = $4
	`
	if _, err := tx.Exec(ctx, update, product.CurrentStock, product.StockStatus, tenantID, productID); err != nil {
		return nil, err
	}

	insert := `
		INSERT INTO stock_movements (id, tenant_id, product_id, movement_type, quantity, previous_stock, new_stock, reference, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`
	if _, err := tx.Exec(ctx, insert,
		movement.ID, tenantID, productID, movement.MovementType, movement.Quantity,
		movement.PreviousStock, movement.NewStock, movement.Reference, movement.Notes, movement.CreatedBy,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return product, nil
}
