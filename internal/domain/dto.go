package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wire DTOs. The two families share one storage shape but expose
// role-specific JSON field names, so each direction gets its own
// request/response types and converts through the neutral EntryInput /
// EntryPatch the service works with.

type CreateLentRequest struct {
	Lender          string          `json:"lender" validate:"required"`
	Borrower        string          `json:"borrower" validate:"required"`
	BorrowerEmail   string          `json:"borrowerEmail" validate:"required,email"`
	BorrowerImage   string          `json:"borrowerImage"`
	InitialAmount   decimal.Decimal `json:"initialAmount" validate:"gt=0"`
	RemainingAmount decimal.Decimal `json:"remainingAmount" validate:"gte=0"`
	Description     string          `json:"description"`
}

func (r *CreateLentRequest) ToInput() *EntryInput {
	return &EntryInput{
		LenderName:       r.Lender,
		BorrowerName:     r.Borrower,
		CounterpartEmail: r.BorrowerEmail,
		CounterpartImage: r.BorrowerImage,
		InitialAmount:    r.InitialAmount,
		RemainingAmount:  r.RemainingAmount,
		Description:      r.Description,
	}
}

type CreateBorrowRequest struct {
	Borrower        string          `json:"borrower" validate:"required"`
	Lender          string          `json:"lender" validate:"required"`
	LenderEmail     string          `json:"lenderEmail" validate:"required,email"`
	LenderImage     string          `json:"lenderImage"`
	InitialAmount   decimal.Decimal `json:"initialAmount" validate:"gt=0"`
	RemainingAmount decimal.Decimal `json:"remainingAmount" validate:"gte=0"`
	Description     string          `json:"description"`
}

func (r *CreateBorrowRequest) ToInput() *EntryInput {
	return &EntryInput{
		LenderName:       r.Lender,
		BorrowerName:     r.Borrower,
		CounterpartEmail: r.LenderEmail,
		CounterpartImage: r.LenderImage,
		InitialAmount:    r.InitialAmount,
		RemainingAmount:  r.RemainingAmount,
		Description:      r.Description,
	}
}

// Update requests carry pointers so an omitted field is distinguishable from
// a zero value. Present fields are still range-checked.
type UpdateLentRequest struct {
	Lender          *string          `json:"lender" validate:"omitempty,min=1"`
	Borrower        *string          `json:"borrower" validate:"omitempty,min=1"`
	BorrowerEmail   *string          `json:"borrowerEmail" validate:"omitempty,email"`
	BorrowerImage   *string          `json:"borrowerImage"`
	InitialAmount   *decimal.Decimal `json:"initialAmount" validate:"omitempty,gt=0"`
	RemainingAmount *decimal.Decimal `json:"remainingAmount" validate:"omitempty,gte=0"`
	Description     *string          `json:"description"`
}

func (r *UpdateLentRequest) ToPatch() *EntryPatch {
	return &EntryPatch{
		LenderName:       r.Lender,
		BorrowerName:     r.Borrower,
		CounterpartEmail: r.BorrowerEmail,
		CounterpartImage: r.BorrowerImage,
		InitialAmount:    r.InitialAmount,
		RemainingAmount:  r.RemainingAmount,
		Description:      r.Description,
	}
}

type UpdateBorrowRequest struct {
	Borrower        *string          `json:"borrower" validate:"omitempty,min=1"`
	Lender          *string          `json:"lender" validate:"omitempty,min=1"`
	LenderEmail     *string          `json:"lenderEmail" validate:"omitempty,email"`
	LenderImage     *string          `json:"lenderImage"`
	InitialAmount   *decimal.Decimal `json:"initialAmount" validate:"omitempty,gt=0"`
	RemainingAmount *decimal.Decimal `json:"remainingAmount" validate:"omitempty,gte=0"`
	Description     *string          `json:"description"`
}

func (r *UpdateBorrowRequest) ToPatch() *EntryPatch {
	return &EntryPatch{
		LenderName:       r.Lender,
		BorrowerName:     r.Borrower,
		CounterpartEmail: r.LenderEmail,
		CounterpartImage: r.LenderImage,
		InitialAmount:    r.InitialAmount,
		RemainingAmount:  r.RemainingAmount,
		Description:      r.Description,
	}
}

// EntryInput is the role-neutral create payload handed to the service.
type EntryInput struct {
	LenderName       string
	BorrowerName     string
	CounterpartEmail string
	CounterpartImage string
	InitialAmount    decimal.Decimal
	RemainingAmount  decimal.Decimal
	Description      string
}

// EntryPatch is the role-neutral partial-update payload. Nil means leave the
// field unchanged; derived fields always recompute.
type EntryPatch struct {
	LenderName       *string
	BorrowerName     *string
	CounterpartEmail *string
	CounterpartImage *string
	InitialAmount    *decimal.Decimal
	RemainingAmount  *decimal.Decimal
	Description      *string
}

// LentRecord is the wire shape of a lent entry.
type LentRecord struct {
	ID              uuid.UUID       `json:"id"`
	OwnerID         uuid.UUID       `json:"ownerId"`
	Lender          string          `json:"lender"`
	Borrower        string          `json:"borrower"`
	BorrowerEmail   string          `json:"borrowerEmail"`
	BorrowerImage   string          `json:"borrowerImage"`
	InitialAmount   decimal.Decimal `json:"initialAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	RepaidAmount    decimal.Decimal `json:"repaidAmount"`
	Status          string          `json:"status"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// BorrowedRecord is the wire shape of a borrowed entry.
type BorrowedRecord struct {
	ID              uuid.UUID       `json:"id"`
	OwnerID         uuid.UUID       `json:"ownerId"`
	Borrower        string          `json:"borrower"`
	Lender          string          `json:"lender"`
	LenderEmail     string          `json:"lenderEmail"`
	LenderImage     string          `json:"lenderImage"`
	InitialAmount   decimal.Decimal `json:"initialAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	RepaidAmount    decimal.Decimal `json:"repaidAmount"`
	Status          string          `json:"status"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (e *Entry) ToLentRecord() *LentRecord {
	return &LentRecord{
		ID:              e.ID,
		OwnerID:         e.OwnerID,
		Lender:          e.LenderName,
		Borrower:        e.BorrowerName,
		BorrowerEmail:   e.CounterpartEmail,
		BorrowerImage:   e.CounterpartImage,
		InitialAmount:   e.InitialAmount,
		RemainingAmount: e.RemainingAmount,
		RepaidAmount:    e.RepaidAmount,
		Status:          e.Status,
		Description:     e.Description,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func (e *Entry) ToBorrowedRecord() *BorrowedRecord {
	return &BorrowedRecord{
		ID:              e.ID,
		OwnerID:         e.OwnerID,
		Borrower:        e.BorrowerName,
		Lender:          e.LenderName,
		LenderEmail:     e.CounterpartEmail,
		LenderImage:     e.CounterpartImage,
		InitialAmount:   e.InitialAmount,
		RemainingAmount: e.RemainingAmount,
		RepaidAmount:    e.RepaidAmount,
		Status:          e.Status,
		Description:     e.Description,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

// ListLentResponse is the payload for GET /api/lent/get-lent.
type ListLentResponse struct {
	Records            []*LentRecord   `json:"records"`
	TotalInitialAmount decimal.Decimal `json:"totalInitialAmount"`
}

// ListBorrowResponse is the payload for GET /api/borrow/get-borrow.
type ListBorrowResponse struct {
	Records             []*BorrowedRecord `json:"records"`
	TotalBorrowedAmount decimal.Decimal   `json:"totalBorrowedAmount"`
}

// LedgerSummary aggregates both directions for the dashboard.
type LedgerSummary struct {
	TotalLent            decimal.Decimal `json:"totalLent"`
	TotalBorrowed        decimal.Decimal `json:"totalBorrowed"`
	OutstandingLent      decimal.Decimal `json:"outstandingLent"`
	OutstandingBorrowed  decimal.Decimal `json:"outstandingBorrowed"`
}
