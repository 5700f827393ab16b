package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/trackmint/peerledger/internal/domain"
	customError "github.com/trackmint/peerledger/pkg/errors"
	"github.com/trackmint/peerledger/pkg/middleware"
	"github.com/trackmint/peerledger/pkg/response"
	"github.com/trackmint/peerledger/tests/mocks"
)

func setupRouter(service *mocks.MockLedgerService) *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	NewLedgerHandler(service).Register(api)
	return router
}

func performRequest(router *mux.Router, method, path string, body []byte, caller *domain.Identity) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), *caller))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

var caller = domain.Identity{ID: uuid.New(), Email: "alice@x.com"}

func validCreateLentBody() []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"lender":          "Alice",
		"borrower":        "Bob",
		"borrowerEmail":   "bob@x.com",
		"initialAmount":   1000,
		"remainingAmount": 1000,
		"description":     "trip",
	})
	return body
}

func TestCreateLent_Success(t *testing.T) {
	service := &mocks.MockLedgerService{}
	entry := &domain.Entry{
		ID:               uuid.New(),
		OwnerID:          caller.ID,
		LenderName:       "Alice",
		BorrowerName:     "Bob",
		CounterpartEmail: "bob@x.com",
		InitialAmount:    decimal.NewFromInt(1000),
		RemainingAmount:  decimal.NewFromInt(1000),
		Status:           domain.StatusUnpaid,
	}
	service.On("CreateEntry", mock.Anything, domain.DirectionLend, caller, mock.MatchedBy(func(input *domain.EntryInput) bool {
		return input.LenderName == "Alice" &&
			input.CounterpartEmail == "bob@x.com" &&
			input.InitialAmount.Equal(decimal.NewFromInt(1000))
	})).Return(entry, nil)

	rec := performRequest(setupRouter(service), "POST", "/api/lent/create-lent", validCreateLentBody(), &caller)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Lent money record created successfully!", resp.Message)
	service.AssertExpectations(t)
}

func TestCreateLent_MissingLender(t *testing.T) {
	service := &mocks.MockLedgerService{}
	body, _ := json.Marshal(map[string]interface{}{
		"borrower":        "Bob",
		"borrowerEmail":   "bob@x.com",
		"initialAmount":   1000,
		"remainingAmount": 1000,
	})

	rec := performRequest(setupRouter(service), "POST", "/api/lent/create-lent", body, &caller)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, `"lender" is required`, resp.Message)
	service.AssertNumberOfCalls(t, "CreateEntry", 0)
}

func TestCreateLent_InvalidEmail(t *testing.T) {
	service := &mocks.MockLedgerService{}
	body, _ := json.Marshal(map[string]interface{}{
		"lender":          "Alice",
		"borrower":        "Bob",
		"borrowerEmail":   "not-an-email",
		"initialAmount":   1000,
		"remainingAmount": 1000,
	})

	rec := performRequest(setupRouter(service), "POST", "/api/lent/create-lent", body, &caller)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, `"borrowerEmail" must be a valid email`, resp.Message)
}

func TestCreateLent_NonPositiveAmount(t *testing.T) {
	service := &mocks.MockLedgerService{}
	body, _ := json.Marshal(map[string]interface{}{
		"lender":          "Alice",
		"borrower":        "Bob",
		"borrowerEmail":   "bob@x.com",
		"initialAmount":   0,
		"remainingAmount": 0,
	})

	rec := performRequest(setupRouter(service), "POST", "/api/lent/create-lent", body, &caller)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, `"initialAmount" must be greater than 0`, resp.Message)
}

func TestCreateLent_Duplicate(t *testing.T) {
	service := &mocks.MockLedgerService{}
	service.On("CreateEntry", mock.Anything, domain.DirectionLend, caller, mock.Anything).
		Return(nil, customError.WrapDuplicateActiveEntry())

	rec := performRequest(setupRouter(service), "POST", "/api/lent/create-lent", validCreateLentBody(), &caller)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "An active entry already exists for this lender and borrower.", resp.Message)
}

func TestCreateLent_MalformedBody(t *testing.T) {
	service := &mocks.MockLedgerService{}

	rec := performRequest(setupRouter(service), "POST", "/api/lent/create-lent", []byte("{not json"), &caller)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Invalid request body", resp.Message)
}

func TestCreateLent_Unauthenticated(t *testing.T) {
	service := &mocks.MockLedgerService{}

	rec := performRequest(setupRouter(service), "POST", "/api/lent/create-lent", validCreateLentBody(), nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	service.AssertNumberOfCalls(t, "CreateEntry", 0)
}

func TestUpdateLent_NotFound(t *testing.T) {
	service := &mocks.MockLedgerService{}
	id := uuid.New()
	service.On("UpdateEntry", mock.Anything, domain.DirectionLend, id, caller, mock.Anything).
		Return(nil, customError.WrapEntryNotFound("Lent"))

	body, _ := json.Marshal(map[string]interface{}{"remainingAmount": 0})
	rec := performRequest(setupRouter(service), "PUT", "/api/lent/update-lent/"+id.String(), body, &caller)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Lent money record not found.", resp.Message)
}

func TestUpdateLent_InvalidID(t *testing.T) {
	service := &mocks.MockLedgerService{}

	body, _ := json.Marshal(map[string]interface{}{"remainingAmount": 0})
	rec := performRequest(setupRouter(service), "PUT", "/api/lent/update-lent/not-a-uuid", body, &caller)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Invalid record id", resp.Message)
	service.AssertNumberOfCalls(t, "UpdateEntry", 0)
}

func TestUpdateLent_Success(t *testing.T) {
	service := &mocks.MockLedgerService{}
	id := uuid.New()
	updated := &domain.Entry{
		ID:              id,
		OwnerID:         caller.ID,
		LenderName:      "Alice",
		BorrowerName:    "Bob",
		InitialAmount:   decimal.NewFromInt(1000),
		RemainingAmount: decimal.Zero,
		RepaidAmount:    decimal.NewFromInt(1000),
		Status:          domain.StatusCleared,
	}
	service.On("UpdateEntry", mock.Anything, domain.DirectionLend, id, caller, mock.MatchedBy(func(patch *domain.EntryPatch) bool {
		return patch.RemainingAmount != nil && patch.RemainingAmount.IsZero() && patch.LenderName == nil
	})).Return(updated, nil)

	body, _ := json.Marshal(map[string]interface{}{"remainingAmount": 0})
	rec := performRequest(setupRouter(service), "PUT", "/api/lent/update-lent/"+id.String(), body, &caller)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Lent money record updated successfully!", resp.Message)
	service.AssertExpectations(t)
}

func TestGetLent_ReturnsRecordsAndTotal(t *testing.T) {
	service := &mocks.MockLedgerService{}
	entries := []*domain.Entry{
		{ID: uuid.New(), LenderName: "Alice", BorrowerName: "Bob", InitialAmount: decimal.NewFromInt(1000)},
		{ID: uuid.New(), LenderName: "Alice", BorrowerName: "Carol", InitialAmount: decimal.NewFromInt(250)},
	}
	service.On("ListEntries", mock.Anything, domain.DirectionLend, caller.ID).
		Return(entries, decimal.NewFromInt(1250), nil)

	rec := performRequest(setupRouter(service), "GET", "/api/lent/get-lent", nil, &caller)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	payload, _ := json.Marshal(resp.Data)
	var list domain.ListLentResponse
	assert.NoError(t, json.Unmarshal(payload, &list))
	assert.Len(t, list.Records, 2)
	assert.True(t, list.TotalInitialAmount.Equal(decimal.NewFromInt(1250)))
}

func TestDeleteBorrow_Success(t *testing.T) {
	service := &mocks.MockLedgerService{}
	id := uuid.New()
	service.On("DeleteEntry", mock.Anything, domain.DirectionBorrow, id, caller.ID).Return(nil)

	rec := performRequest(setupRouter(service), "DELETE", "/api/borrow/delete-borrow/"+id.String(), nil, &caller)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Borrow money record deleted successfully!", resp.Message)
	service.AssertExpectations(t)
}

func TestCreateBorrow_Success(t *testing.T) {
	service := &mocks.MockLedgerService{}
	entry := &domain.Entry{
		ID:               uuid.New(),
		OwnerID:          caller.ID,
		LenderName:       "Dan",
		BorrowerName:     "Alice",
		CounterpartEmail: "dan@x.com",
		InitialAmount:    decimal.NewFromInt(250),
		RemainingAmount:  decimal.NewFromInt(250),
		Status:           domain.StatusUnpaid,
	}
	service.On("CreateEntry", mock.Anything, domain.DirectionBorrow, caller, mock.MatchedBy(func(input *domain.EntryInput) bool {
		return input.LenderName == "Dan" && input.CounterpartEmail == "dan@x.com"
	})).Return(entry, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"borrower":        "Alice",
		"lender":          "Dan",
		"lenderEmail":     "dan@x.com",
		"initialAmount":   250,
		"remainingAmount": 250,
	})
	rec := performRequest(setupRouter(service), "POST", "/api/borrow/create-borrow", body, &caller)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Borrow money record created successfully!", resp.Message)
}

func TestGetSummary_Success(t *testing.T) {
	service := &mocks.MockLedgerService{}
	service.On("GetSummary", mock.Anything, caller.ID).Return(&domain.LedgerSummary{
		TotalLent:           decimal.NewFromInt(1500),
		TotalBorrowed:       decimal.NewFromInt(700),
		OutstandingLent:     decimal.NewFromInt(400),
		OutstandingBorrowed: decimal.NewFromInt(700),
	}, nil)

	rec := performRequest(setupRouter(service), "GET", "/api/ledger/summary", nil, &caller)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	payload, _ := json.Marshal(resp.Data)
	var summary domain.LedgerSummary
	assert.NoError(t, json.Unmarshal(payload, &summary))
	assert.True(t, summary.TotalLent.Equal(decimal.NewFromInt(1500)))
	assert.True(t, summary.OutstandingBorrowed.Equal(decimal.NewFromInt(700)))
}
