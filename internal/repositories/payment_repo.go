package repositories

import (
	"context"
	"fmt"
	"time"

	"erpcore/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PaymentRepository interface {
	// CreateAndApply inserts the payment and recomputes the invoice's
	// paid_amount and status from its completed payments, in one transaction.
	CreateAndApply(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Payment, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.PaymentSearchFilter) ([]*models.Payment, error)
	ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*models.Payment, error)
	// UpdateAndApply saves the payment and recomputes the referenced invoice.
	// When the payment moved between invoices, the previous invoice is
	// recomputed too so neither side keeps a stale paid_amount.
	UpdateAndApply(ctx context.Context, payment *models.Payment, previousInvoiceID uuid.UUID) error
	// SetStatusAndApply transitions the payment's status and cascades to its
	// invoice. Completed transitions stamp processed_at.
	SetStatusAndApply(ctx context.Context, tenantID, id uuid.UUID, status string) (*models.Payment, error)
	DeleteAndApply(ctx context.Context, tenantID, id uuid.UUID) error
}

type paymentRepo struct {
	db DB
}

func NewPaymentRepo(db DB) PaymentRepository {
	return &paymentRepo{db: db}
}

const paymentColumns = `id, tenant_id, payment_number, reference, invoice_id, customer_id,
		payment_date, amount, payment_method, status,
		notes, transaction_id, created_by, processed_at, created_at, updated_at`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(
		&p.ID, &p.TenantID, &p.PaymentNumber, &p.Reference, &p.InvoiceID, &p.CustomerID,
		&p.PaymentDate, &p.Amount, &p.PaymentMethod, &p.Status,
		&p.Notes, &p.TransactionID, &p.CreatedBy, &p.ProcessedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// applyToInvoice re-derives the invoice's paid_amount from its completed
// payments and sets the status that sum implies. Runs inside the caller's
// transaction so the payment write and the invoice cascade commit together.
func applyToInvoice(ctx context.Context, tx pgx.Tx, tenantID, invoiceID uuid.UUID) error {
	recompute := `
		UPDATE invoices
		SET paid_amount = COALESCE((
				SELECT SUM(amount) FROM payments
				WHERE tenant_id = $1 AND invoice_id = $2 AND status = 'completed'
			), 0),
			updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + invoiceColumns
	invoice, err := scanInvoice(tx.QueryRow(ctx, recompute, tenantID, invoiceID))
	if err != nil {
		return err
	}

	status := models.DerivePaymentStatus(invoice.Status, invoice.TotalAmount, invoice.PaidAmount, invoice.DueDate, time.Now())
	if status == invoice.Status {
		return nil
	}
	_, err = tx.Exec(ctx, `UPDATE invoices SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`, status, tenantID, invoiceID)
	return err
}

func (r *paymentRepo) CreateAndApply(ctx context.Context, payment *models.Payment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO payments (id, tenant_id, payment_number, reference, invoice_id, customer_id,
			payment_date, amount, payment_method, status,
			notes, transaction_id, created_by, processed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
	`
	if _, err := tx.Exec(ctx, insert,
		payment.ID, payment.TenantID, payment.PaymentNumber, payment.Reference, payment.InvoiceID, payment.CustomerID,
		payment.PaymentDate, payment.Amount, payment.PaymentMethod, payment.Status,
		payment.Notes, payment.TransactionID, payment.CreatedBy, payment.ProcessedAt,
	); err != nil {
		return err
	}

	if err := applyToInvoice(ctx, tx, payment.TenantID, payment.InvoiceID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *paymentRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE tenant_id = $1 AND id = $2`
	return scanPayment(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *paymentRepo) List(ctx context.Context, tenantID uuid.UUID, filter models.PaymentSearchFilter) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE tenant_id = $1`
	args := []any{tenantID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Method != nil {
		args = append(args, *filter.Method)
		query += fmt.Sprintf(" AND payment_method = $%d", len(args))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		query += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}
	if filter.InvoiceID != nil {
		args = append(args, *filter.InvoiceID)
		query += fmt.Sprintf(" AND invoice_id = $%d", len(args))
	}

	query += " ORDER BY payment_date DESC, payment_number DESC"
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

	payments := []*models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *paymentRepo) ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*models.Payment, error) {
	return r.List(ctx, tenantID, models.PaymentSearchFilter{InvoiceID: &invoiceID})
}

func (r *paymentRepo) UpdateAndApply(ctx context.Context, payment *models.Payment, previousInvoiceID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	update := `
		UPDATE payments
		SET reference = $1, invoice_id = $2, customer_id = $3, payment_date = $4,
			amount = $5, payment_method = $6, notes = $7, transaction_id = $8, updated_at = NOW()
		WHERE tenant_id = $9 AND id = $10
	`
	tag, err := tx.Exec(ctx, update,
		payment.Reference, payment.InvoiceID, payment.CustomerID, payment.PaymentDate,
		payment.Amount, payment.PaymentMethod, payment.Notes, payment.TransactionID,
		payment.TenantID, payment.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if err := applyToInvoice(ctx, tx, payment.TenantID, payment.InvoiceID); err != nil {
		return err
	}
	if previousInvoiceID != uuid.Nil && previousInvoiceID != payment.InvoiceID {
		if err := applyToInvoice(ctx, tx, payment.TenantID, previousInvoiceID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *paymentRepo) SetStatusAndApply(ctx context.Context, tenantID, id uuid.UUID, status string) (*models.Payment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	update := `
		UPDATE payments
		SET status = $1,
			processed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE processed_at END,
			updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
		RETURNING ` + paymentColumns
	payment, err := scanPayment(tx.QueryRow(ctx, update, status, tenantID, id))
	if err != nil {
		return nil, err
	}

	if err := applyToInvoice(ctx, tx, tenantID, payment.InvoiceID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *paymentRepo) DeleteAndApply(ctx context.Context, tenantID, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var invoiceID uuid.UUID
	del := `DELETE FROM payments WHERE tenant_id = $1 AND id = $2 RETURNING invoice_id`
	if err := tx.QueryRow(ctx, del, tenantID, id).Scan(&invoiceID); err != nil {
		return err
	}

	if err := applyToInvoice(ctx, tx, tenantID, invoiceID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
