package repositories

import (
	"context"
	"fmt"

	"erpcore/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type InvoiceRepository interface {
	// Create inserts the invoice and its items in one transaction.
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.InvoiceSearchFilter) ([]*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
	MarkSent(ctx context.Context, tenantID, id uuid.UUID) error
	ReplaceItems(ctx context.Context, tenantID, invoiceID uuid.UUID, items []*models.InvoiceItem) (*models.Invoice, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// SweepOverdue flips past-due unpaid invoices to overdue across all
	// tenants and returns how many rows changed. Driven by the scheduler, not
	// a request path.
	SweepOverdue(ctx context.Context) (int64, error)
}

type invoiceRepo struct {
	db DB
}

func NewInvoiceRepo(db DB) InvoiceRepository {
	return &invoiceRepo{db: db}
}

const invoiceColumns = `id, tenant_id, invoice_number, reference, sales_order_id, customer_id,
		invoice_date, due_date, payment_terms, status,
		subtotal, tax_amount, discount_amount, total_amount, paid_amount,
		notes, terms_conditions, created_by, sent_at, created_at, updated_at`

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	inv := &models.Invoice{}
	err := row.Scan(
		&inv.ID, &inv.TenantID, &inv.InvoiceNumber, &inv.Reference, &inv.SalesOrderID, &inv.CustomerID,
		&inv.InvoiceDate, &inv.DueDate, &inv.PaymentTerms, &inv.Status,
		&inv.Subtotal, &inv.TaxAmount, &inv.DiscountAmount, &inv.TotalAmount, &inv.PaidAmount,
		&inv.Notes, &inv.TermsConditions, &inv.CreatedBy, &inv.SentAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO invoices (id, tenant_id, invoice_number, reference, sales_order_id, customer_id,
			invoice_date, due_date, payment_terms, status,
			subtotal, tax_amount, discount_amount, total_amount, paid_amount,
			notes, terms_conditions, created_by, sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 0, $15, $16, $17, NULL, NOW(), NOW())
	`
	if _, err := tx.Exec(ctx, insert,
		invoice.ID, invoice.TenantID, invoice.InvoiceNumber, invoice.Reference, invoice.SalesOrderID, invoice.CustomerID,
		invoice.InvoiceDate, invoice.DueDate, invoice.PaymentTerms, invoice.Status,
		invoice.Subtotal, invoice.TaxAmount, invoice.DiscountAmount, invoice.TotalAmount,
		invoice.Notes, invoice.TermsConditions, invoice.CreatedBy,
	); err != nil {
		return err
	}

	for _, item := range invoice.Items {
		if err := insertInvoiceItem(ctx, tx, item); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func insertInvoiceItem(ctx context.Context, tx pgx.Tx, item *models.InvoiceItem) error {
	query := `
		INSERT INTO invoice_items (id, tenant_id, invoice_id, product_id,
			quantity, unit_price, discount_percent, line_total, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := tx.Exec(ctx, query,
		item.ID, item.TenantID, item.InvoiceID, item.ProductID,
		item.Quantity, item.UnitPrice, item.DiscountPercent, item.LineTotal, item.Notes,
	)
	return err
}

func (r *invoiceRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE tenant_id = $1 AND id = $2`
	invoice, err := scanInvoice(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	invoice.Items = items
	return invoice, nil
}

func (r *invoiceRepo) listItems(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*models.InvoiceItem, error) {
	query := `
		SELECT id, tenant_id, invoice_id, product_id, quantity, unit_price, discount_percent, line_total, notes, created_at, updated_at
		FROM invoice_items
		WHERE tenant_id = $1 AND invoice_id = $2
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.InvoiceItem{}
	for rows.Next() {
		item := &models.InvoiceItem{}
		if err := rows.Scan(
			&item.ID, &item.TenantID, &item.InvoiceID, &item.ProductID,
			&item.Quantity, &item.UnitPrice, &item.DiscountPercent, &item.LineTotal,
			&item.Notes, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *invoiceRepo) List(ctx context.Context, tenantID uuid.UUID, filter models.InvoiceSearchFilter) ([]*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE tenant_id = $1`
	args := []any{tenantID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		query += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}
	if filter.SalesOrderID != nil {
		args = append(args, *filter.SalesOrderID)
		query += fmt.Sprintf(" AND sales_order_id = $%d", len(args))
	}
	if filter.Overdue != nil && *filter.Overdue {
		query += " AND due_date < NOW() AND total_amount > paid_amount AND status NOT IN ('paid', 'cancelled', 'draft')"
	}

	query += " ORDER BY invoice_date DESC, invoice_number DESC"
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

	invoices := []*models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *invoiceRepo) Update(ctx context.Context, invoice *models.Invoice) error {
	query := `
		UPDATE invoices
		SET reference = $1, customer_id = $2, invoice_date = $3, due_date = $4, payment_terms = $5,
			tax_amount = $6, discount_amount = $7,
			total_amount = subtotal + $6 - $7,
			notes = $8, terms_conditions = $9, updated_at = NOW()
		WHERE tenant_id = $10 AND id = $11
	`
	_, err := r.db.Exec(ctx, query,
		invoice.Reference, invoice.CustomerID, invoice.InvoiceDate, invoice.DueDate, invoice.PaymentTerms,
		invoice.TaxAmount, invoice.DiscountAmount,
		invoice.Notes, invoice.TermsConditions, invoice.TenantID, invoice.ID,
	)
	return err
}

func (r *invoiceRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	query := `UPDATE invoices SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	tag, err := r.db.Exec(ctx, query, status, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *invoiceRepo) MarkSent(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `
		UPDATE invoices
		SET status = $1, sent_at = COALESCE(sent_at, NOW()), updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
	`
	tag, err := r.db.Exec(ctx, query, models.InvoiceSent, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *invoiceRepo) ReplaceItems(ctx context.Context, tenantID, invoiceID uuid.UUID, items []*models.InvoiceItem) (*models.Invoice, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE tenant_id = $1 AND invoice_id = $2`, tenantID, invoiceID); err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, item := range items {
		item.TenantID = tenantID
		item.InvoiceID = invoiceID
		item.ComputeLineTotal()
		subtotal = subtotal.Add(item.LineTotal)
		if err := insertInvoiceItem(ctx, tx, item); err != nil {
			return nil, err
		}
	}

	recompute := `
		UPDATE invoices
		SET subtotal = $1, total_amount = $1 + tax_amount - discount_amount, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
		RETURNING ` + invoiceColumns
	invoice, err := scanInvoice(tx.QueryRow(ctx, recompute, subtotal, tenantID, invoiceID))
	if err != nil {
		return nil, err
	}
	invoice.Items = items

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *invoiceRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE tenant_id = $1 AND invoice_id = $2`, tenantID, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM invoices WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

func (r *invoiceRepo) SweepOverdue(ctx context.Context) (int64, error) {
	query := `
		UPDATE invoices
		SET status = 'overdue', updated_at = NOW()
		WHERE status IN ('sent', 'partially_paid') AND due_date < NOW() AND total_amount > paid_amount
	`
	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
