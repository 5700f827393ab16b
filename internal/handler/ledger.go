package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/trackmint/peerledger/internal/domain"
	customError "github.com/trackmint/peerledger/pkg/errors"
	"github.com/trackmint/peerledger/pkg/middleware"
	"github.com/trackmint/peerledger/pkg/response"
)

// LedgerService is the engine surface the handlers need.
type LedgerService interface {
	CreateEntry(ctx context.Context, direction domain.Direction, caller domain.Identity, input *domain.EntryInput) (*domain.Entry, error)
	UpdateEntry(ctx context.Context, direction domain.Direction, id uuid.UUID, caller domain.Identity, patch *domain.EntryPatch) (*domain.Entry, error)
	ListEntries(ctx context.Context, direction domain.Direction, ownerID uuid.UUID) ([]*domain.Entry, decimal.Decimal, error)
	DeleteEntry(ctx context.Context, direction domain.Direction, id, ownerID uuid.UUID) error
	GetSummary(ctx context.Context, ownerID uuid.UUID) (*domain.LedgerSummary, error)
}

type LedgerHandler struct {
	service  LedgerService
	validate *validator.Validate
}

func NewLedgerHandler(service LedgerService) *LedgerHandler {
	validate := validator.New()
	validate.RegisterCustomTypeFunc(decimalAsFloat, decimal.Decimal{})

	return &LedgerHandler{
		service:  service,
		validate: validate,
	}
}

// decimalAsFloat lets the standard numeric rules (gt, gte) apply to
// decimal.Decimal fields.
func decimalAsFloat(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// Register mounts the ledger routes on the authenticated API subrouter.
func (h *LedgerHandler) Register(api *mux.Router) {
	lent := api.PathPrefix("/lent").Subrouter()
	lent.HandleFunc("/create-lent", h.CreateLent).Methods("POST")
	lent.HandleFunc("/update-lent/{id}", h.UpdateLent).Methods("PUT")
	lent.HandleFunc("/get-lent", h.GetLent).Methods("GET")
	lent.HandleFunc("/delete-lent/{id}", h.DeleteLent).Methods("DELETE")

	borrow := api.PathPrefix("/borrow").Subrouter()
	borrow.HandleFunc("/create-borrow", h.CreateBorrow).Methods("POST")
	borrow.HandleFunc("/update-borrow/{id}", h.UpdateBorrow).Methods("PUT")
	borrow.HandleFunc("/get-borrow", h.GetBorrow).Methods("GET")
	borrow.HandleFunc("/delete-borrow/{id}", h.DeleteBorrow).Methods("DELETE")

	api.HandleFunc("/ledger/summary", h.GetSummary).Methods("GET")
}

func (h *LedgerHandler) CreateLent(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req domain.CreateLentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if msg, ok := h.firstValidationError(&req); !ok {
		response.BadRequest(w, msg)
		return
	}

	entry, err := h.service.CreateEntry(r.Context(), domain.DirectionLend, caller, req.ToInput())
	if err != nil {
		h.serviceError(w, err)
		return
	}

	response.Created(w, "Lent money record created successfully!", entry.ToLentRecord())
}

func (h *LedgerHandler) UpdateLent(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid record id")
		return
	}

	var req domain.UpdateLentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if msg, ok := h.firstValidationError(&req); !ok {
		response.BadRequest(w, msg)
		return
	}

	entry, err := h.service.UpdateEntry(r.Context(), domain.DirectionLend, id, caller, req.ToPatch())
	if err != nil {
		h.serviceError(w, err)
		return
	}

	response.Success(w, "Lent money record updated successfully!", entry.ToLentRecord())
}

func (h *LedgerHandler) GetLent(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	entries, total, err := h.service.ListEntries(r.Context(), domain.DirectionLend, caller.ID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	records := make([]*domain.LentRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, entry.ToLentRecord())
	}

	response.Success(w, "Lent money records fetched successfully!", domain.ListLentResponse{
		Records:            records,
		TotalInitialAmount: total,
	})
}

func (h *LedgerHandler) DeleteLent(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid record id")
		return
	}

	if err := h.service.DeleteEntry(r.Context(), domain.DirectionLend, id, caller.ID); err != nil {
		h.serviceError(w, err)
		return
	}

	response.Success(w, "Lent money record deleted successfully!", nil)
}

func (h *LedgerHandler) CreateBorrow(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req domain.CreateBorrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if msg, ok := h.firstValidationError(&req); !ok {
		response.BadRequest(w, msg)
		return
	}

	entry, err := h.service.CreateEntry(r.Context(), domain.DirectionBorrow, caller, req.ToInput())
	if err != nil {
		h.serviceError(w, err)
		return
	}

	response.Created(w, "Borrow money record created successfully!", entry.ToBorrowedRecord())
}

func (h *LedgerHandler) UpdateBorrow(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid record id")
		return
	}

	var req domain.UpdateBorrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if msg, ok := h.firstValidationError(&req); !ok {
		response.BadRequest(w, msg)
		return
	}

	entry, err := h.service.UpdateEntry(r.Context(), domain.DirectionBorrow, id, caller, req.ToPatch())
	if err != nil {
		h.serviceError(w, err)
		return
	}

	response.Success(w, "Borrowed money record updated successfully!", entry.ToBorrowedRecord())
}

func (h *LedgerHandler) GetBorrow(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	entries, total, err := h.service.ListEntries(r.Context(), domain.DirectionBorrow, caller.ID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	records := make([]*domain.BorrowedRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, entry.ToBorrowedRecord())
	}

	response.Success(w, "Borrow money records fetched successfully!", domain.ListBorrowResponse{
		Records:             records,
		TotalBorrowedAmount: total,
	})
}

func (h *LedgerHandler) DeleteBorrow(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid record id")
		return
	}

	if err := h.service.DeleteEntry(r.Context(), domain.DirectionBorrow, id, caller.ID); err != nil {
		h.serviceError(w, err)
		return
	}

	response.Success(w, "Borrow money record deleted successfully!", nil)
}

func (h *LedgerHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	summary, err := h.service.GetSummary(r.Context(), caller.ID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	response.Success(w, "Ledger summary fetched successfully!", summary)
}

// firstValidationError validates the request and reports only the first
// failing field.
func (h *LedgerHandler) firstValidationError(req interface{}) (string, bool) {
	err := h.validate.Struct(req)
	if err == nil {
		return "", true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body", false
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", fieldName(fe)), false
	case "email":
		return fmt.Sprintf("%q must be a valid email", fieldName(fe)), false
	case "gt":
		return fmt.Sprintf("%q must be greater than %s", fieldName(fe), fe.Param()), false
	case "gte":
		return fmt.Sprintf("%q must be greater than or equal to %s", fieldName(fe), fe.Param()), false
	case "min":
		return fmt.Sprintf("%q is not allowed to be empty", fieldName(fe)), false
	default:
		return fmt.Sprintf("%q is invalid", fieldName(fe)), false
	}
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return "field"
	}
	// JSON payloads use lowerCamelCase field names
	return string(name[0]|0x20) + name[1:]
}

func (h *LedgerHandler) serviceError(w http.ResponseWriter, err error) {
	var be *customError.BusinessError
	if errors.As(err, &be) {
		switch be.Code {
		case customError.ErrCodeValidation, customError.ErrCodeDuplicateActiveEntry:
			response.BadRequest(w, be.Message)
			return
		case customError.ErrCodeEntryNotFound:
			response.NotFound(w, be.Message)
			return
		}
	}
	response.InternalServerError(w, "Internal server error", err)
}
