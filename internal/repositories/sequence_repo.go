package repositories

import (
	"context"

	"github.com/google/uuid"
)

// Document number prefixes, one counter per tenant per type.
const (
	DocTypeSalesOrder = "SO"
	DocTypeInvoice    = "INV"
	DocTypePayment    = "PAY"
	DocTypeCustomer   = "CUST"
)

type SequenceRepository interface {
	Next(ctx context.Context, tenantID uuid.UUID, docType string) (int64, error)
}

type sequenceRepo struct {
	db DB
}

func NewSequenceRepo(db DB) SequenceRepository {
	return &sequenceRepo{db: db}
}

// Next allocates the next number for (tenant, doc type). The upsert keeps
// allocation on a single row, so concurrent callers serialize on the row lock
// and numbers come back gap-free and strictly increasing.
func (r *sequenceRepo) Next(ctx context.Context, tenantID uuid.UUID, docType string) (int64, error) {
	var next int64
	query := `
		INSERT INTO document_sequences (tenant_id, doc_type, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, doc_type)
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number
	`
	if err := r.db.QueryRow(ctx, query, tenantID, docType).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}
