package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/trackmint/peerledger/internal/domain"
)

// entryRepository is a table-parameterized sqlx implementation. The two
// ledger tables share one column layout, so the family only decides which
// table the queries hit.
type entryRepository struct {
	db    *sqlx.DB
	table string
}

// NewLentEntryRepository returns the store for the lender-owned family.
func NewLentEntryRepository(db *sqlx.DB) EntryRepository {
	return &entryRepository{db: db, table: "lent_entries"}
}

// NewBorrowedEntryRepository returns the store for the borrower-owned family.
func NewBorrowedEntryRepository(db *sqlx.DB) EntryRepository {
	return &entryRepository{db: db, table: "borrowed_entries"}
}

const entryColumns = `id, owner_id, lender_name, borrower_name, counterpart_email, counterpart_image,
		initial_amount, remaining_amount, repaid_amount, status, description,
		initial_notified, cleared_notified, last_notified_at, created_at, updated_at`

func (r *entryRepository) Create(ctx context.Context, entry *domain.Entry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (:id, :owner_id, :lender_name, :borrower_name, :counterpart_email, :counterpart_image,
			:initial_amount, :remaining_amount, :repaid_amount, :status, :description,
			:initial_notified, :cleared_notified, :last_notified_at, :created_at, :updated_at)
	`, r.table, entryColumns)

	_, err := r.db.NamedExecContext(ctx, query, entry)
	return err
}

func (r *entryRepository) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Entry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND owner_id = $2
	`, entryColumns, r.table)

	var entry domain.Entry
	err := r.db.GetContext(ctx, &entry, query, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &entry, nil
}

func (r *entryRepository) FindActive(ctx context.Context, key domain.NaturalKey) (*domain.Entry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE lender_name = $1 AND borrower_name = $2 AND counterpart_email = $3
			AND initial_amount = $4 AND description = $5 AND status <> $6
		LIMIT 1
	`, entryColumns, r.table)

	var entry domain.Entry
	err := r.db.GetContext(ctx, &entry, query,
		key.LenderName,
		key.BorrowerName,
		key.CounterpartEmail,
		key.InitialAmount,
		key.Description,
		domain.StatusCleared,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &entry, nil
}

func (r *entryRepository) FindCounterpart(ctx context.Context, lenderName, borrowerName string, initialAmount decimal.Decimal) (*domain.Entry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE lender_name = $1 AND borrower_name = $2 AND initial_amount = $3
		LIMIT 1
	`, entryColumns, r.table)

	var entry domain.Entry
	err := r.db.GetContext(ctx, &entry, query, lenderName, borrowerName, initialAmount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &entry, nil
}

func (r *entryRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Entry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, entryColumns, r.table)

	var entries []*domain.Entry
	err := r.db.SelectContext(ctx, &entries, query, ownerID)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *entryRepository) ListActive(ctx context.Context) ([]*domain.Entry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE status <> $1
		ORDER BY created_at
	`, entryColumns, r.table)

	var entries []*domain.Entry
	err := r.db.SelectContext(ctx, &entries, query, domain.StatusCleared)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *entryRepository) TotalsByOwner(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(initial_amount), 0) AS initial, COALESCE(SUM(remaining_amount), 0) AS remaining
		FROM %s
		WHERE owner_id = $1
	`, r.table)

	var totals struct {
		Initial   decimal.Decimal `db:"initial"`
		Remaining decimal.Decimal `db:"remaining"`
	}
	err := r.db.GetContext(ctx, &totals, query, ownerID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return totals.Initial, totals.Remaining, nil
}

func (r *entryRepository) Update(ctx context.Context, entry *domain.Entry) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET lender_name = :lender_name, borrower_name = :borrower_name,
			counterpart_email = :counterpart_email, counterpart_image = :counterpart_image,
			initial_amount = :initial_amount, remaining_amount = :remaining_amount,
			repaid_amount = :repaid_amount, status = :status, description = :description,
			initial_notified = :initial_notified, cleared_notified = :cleared_notified,
			last_notified_at = :last_notified_at, updated_at = now()
		WHERE id = :id
	`, r.table)

	_, err := r.db.NamedExecContext(ctx, query, entry)
	return err
}

func (r *entryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)

	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
