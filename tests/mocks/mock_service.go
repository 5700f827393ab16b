package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/trackmint/peerledger/internal/domain"
)

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CreateEntry(ctx context.Context, direction domain.Direction, caller domain.Identity, input *domain.EntryInput) (*domain.Entry, error) {
	args := m.Called(ctx, direction, caller, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockLedgerService) UpdateEntry(ctx context.Context, direction domain.Direction, id uuid.UUID, caller domain.Identity, patch *domain.EntryPatch) (*domain.Entry, error) {
	args := m.Called(ctx, direction, id, caller, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockLedgerService) ListEntries(ctx context.Context, direction domain.Direction, ownerID uuid.UUID) ([]*domain.Entry, decimal.Decimal, error) {
	args := m.Called(ctx, direction, ownerID)
	if args.Get(0) == nil {
		return nil, decimal.Zero, args.Error(2)
	}
	return args.Get(0).([]*domain.Entry), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockLedgerService) DeleteEntry(ctx context.Context, direction domain.Direction, id, ownerID uuid.UUID) error {
	args := m.Called(ctx, direction, id, ownerID)
	return args.Error(0)
}

func (m *MockLedgerService) GetSummary(ctx context.Context, ownerID uuid.UUID) (*domain.LedgerSummary, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerSummary), args.Error(1)
}
