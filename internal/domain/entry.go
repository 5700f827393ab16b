package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction selects which record family is primary for an operation.
type Direction string

const (
	DirectionLend   Direction = "lend"
	DirectionBorrow Direction = "borrow"
)

const (
	StatusUnpaid  = "Unpaid"
	StatusCleared = "Cleared"
)

// DefaultImageRef is the sentinel stored when no counterpart image was uploaded.
const DefaultImageRef = "default-profile.png"

// Entry is a single ledger record. The same shape backs both families:
// a lent entry lives in lent_entries (counterpart = borrower) and a borrowed
// entry lives in borrowed_entries (counterpart = lender).
type Entry struct {
	ID               uuid.UUID       `db:"id"`
	OwnerID          uuid.UUID       `db:"owner_id"`
	LenderName       string          `db:"lender_name"`
	BorrowerName     string          `db:"borrower_name"`
	CounterpartEmail string          `db:"counterpart_email"`
	CounterpartImage string          `db:"counterpart_image"`
	InitialAmount    decimal.Decimal `db:"initial_amount"`
	RemainingAmount  decimal.Decimal `db:"remaining_amount"`
	RepaidAmount     decimal.Decimal `db:"repaid_amount"`
	Status           string          `db:"status"`
	Description      string          `db:"description"`
	InitialNotified  bool            `db:"initial_notified"`
	ClearedNotified  bool            `db:"cleared_notified"`
	LastNotifiedAt   *time.Time      `db:"last_notified_at"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

// Active reports whether the entry still counts against the one-active-entry
// rule for its natural key.
func (e *Entry) Active() bool {
	return e.Status != StatusCleared
}

// NaturalKey returns the duplicate-detection key for the entry.
func (e *Entry) NaturalKey() NaturalKey {
	return NaturalKey{
		LenderName:       e.LenderName,
		BorrowerName:     e.BorrowerName,
		CounterpartEmail: e.CounterpartEmail,
		InitialAmount:    e.InitialAmount,
		Description:      e.Description,
	}
}

// NaturalKey identifies a ledger entry by its human-meaningful fields, in lieu
// of a shared foreign key between the two families.
type NaturalKey struct {
	LenderName       string
	BorrowerName     string
	CounterpartEmail string
	InitialAmount    decimal.Decimal
	Description      string
}

// Identity is the authenticated caller, as resolved from the bearer token.
type Identity struct {
	ID    uuid.UUID
	Email string
}

// User is a registered account row. The auth service owns the table; the
// ledger only reads it to decide whether a counterpart is registered.
type User struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}
