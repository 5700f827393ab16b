package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/trackmint/peerledger/internal/domain"
	"github.com/trackmint/peerledger/tests/mocks"
)

type reconcilerFixture struct {
	lentRepo     *mocks.MockEntryRepository
	borrowedRepo *mocks.MockEntryRepository
	users        *mocks.MockUserRepository
	mailer       *mocks.MockMailer
	reconciler   *Reconciler
}

func newReconcilerFixture() *reconcilerFixture {
	f := &reconcilerFixture{
		lentRepo:     &mocks.MockEntryRepository{},
		borrowedRepo: &mocks.MockEntryRepository{},
		users:        &mocks.MockUserRepository{},
		mailer:       &mocks.MockMailer{},
	}
	f.reconciler = NewReconciler(f.lentRepo, f.borrowedRepo, f.users, f.mailer, testConfig())
	return f
}

func activeLentEntry() *domain.Entry {
	return &domain.Entry{
		ID:               uuid.New(),
		OwnerID:          uuid.New(),
		LenderName:       "Alice",
		BorrowerName:     "Bob",
		CounterpartEmail: "bob@x.com",
		InitialAmount:    decimal.NewFromInt(1000),
		RemainingAmount:  decimal.NewFromInt(300),
		RepaidAmount:     decimal.NewFromInt(700),
		Status:           domain.StatusUnpaid,
		Description:      "trip",
	}
}

func TestHealMirrorDrift_ResyncsDriftedMirror(t *testing.T) {
	f := newReconcilerFixture()

	entry := activeLentEntry()
	mirror := &domain.Entry{
		ID:              uuid.New(),
		OwnerID:         uuid.New(),
		LenderName:      "Alice",
		BorrowerName:    "Bob",
		InitialAmount:   decimal.NewFromInt(1000),
		RemainingAmount: decimal.NewFromInt(1000),
		RepaidAmount:    decimal.Zero,
		Status:          domain.StatusUnpaid,
	}

	f.lentRepo.On("ListActive", mock.Anything).Return([]*domain.Entry{entry}, nil)
	f.users.On("GetByEmail", mock.Anything, "bob@x.com").Return(&domain.User{ID: mirror.OwnerID}, nil)
	f.borrowedRepo.On("FindCounterpart", mock.Anything, "Alice", "Bob", decimal.NewFromInt(1000)).Return(mirror, nil)
	f.borrowedRepo.On("Update", mock.Anything, mock.MatchedBy(func(m *domain.Entry) bool {
		return m.ID == mirror.ID &&
			m.RemainingAmount.Equal(decimal.NewFromInt(300)) &&
			m.RepaidAmount.Equal(decimal.NewFromInt(700)) &&
			m.Description == "trip"
	})).Return(nil)

	healed, err := f.reconciler.HealMirrorDrift(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, healed)
	f.borrowedRepo.AssertExpectations(t)
}

func TestHealMirrorDrift_SkipsInSyncMirror(t *testing.T) {
	f := newReconcilerFixture()

	entry := activeLentEntry()
	mirror := &domain.Entry{
		ID:              uuid.New(),
		LenderName:      "Alice",
		BorrowerName:    "Bob",
		InitialAmount:   entry.InitialAmount,
		RemainingAmount: entry.RemainingAmount,
		RepaidAmount:    entry.RepaidAmount,
		Status:          entry.Status,
		Description:     entry.Description,
	}

	f.lentRepo.On("ListActive", mock.Anything).Return([]*domain.Entry{entry}, nil)
	f.users.On("GetByEmail", mock.Anything, "bob@x.com").Return(&domain.User{ID: uuid.New()}, nil)
	f.borrowedRepo.On("FindCounterpart", mock.Anything, "Alice", "Bob", entry.InitialAmount).Return(mirror, nil)

	healed, err := f.reconciler.HealMirrorDrift(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, healed)
	f.borrowedRepo.AssertNumberOfCalls(t, "Update", 0)
}

func TestHealMirrorDrift_SkipsUnregisteredCounterpart(t *testing.T) {
	f := newReconcilerFixture()

	entry := activeLentEntry()

	f.lentRepo.On("ListActive", mock.Anything).Return([]*domain.Entry{entry}, nil)
	f.users.On("GetByEmail", mock.Anything, "bob@x.com").Return(nil, nil)

	healed, err := f.reconciler.HealMirrorDrift(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, healed)
	f.borrowedRepo.AssertNumberOfCalls(t, "FindCounterpart", 0)
}

func TestHealMirrorDrift_ContinuesPastLookupErrors(t *testing.T) {
	f := newReconcilerFixture()

	broken := activeLentEntry()
	broken.CounterpartEmail = "down@x.com"
	healthy := activeLentEntry()
	mirror := &domain.Entry{
		ID:              uuid.New(),
		LenderName:      "Alice",
		BorrowerName:    "Bob",
		InitialAmount:   healthy.InitialAmount,
		RemainingAmount: decimal.NewFromInt(999),
		RepaidAmount:    decimal.NewFromInt(1),
		Status:          domain.StatusUnpaid,
		Description:     "trip",
	}

	f.lentRepo.On("ListActive", mock.Anything).Return([]*domain.Entry{broken, healthy}, nil)
	f.users.On("GetByEmail", mock.Anything, "down@x.com").Return(nil, errors.New("timeout"))
	f.users.On("GetByEmail", mock.Anything, "bob@x.com").Return(&domain.User{ID: uuid.New()}, nil)
	f.borrowedRepo.On("FindCounterpart", mock.Anything, "Alice", "Bob", healthy.InitialAmount).Return(mirror, nil)
	f.borrowedRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	healed, err := f.reconciler.HealMirrorDrift(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, healed)
}

func TestSendDueReminders_MailsOverdueEntries(t *testing.T) {
	f := newReconcilerFixture()

	overdue := activeLentEntry()
	stale := time.Now().Add(-200 * time.Hour)
	overdue.LastNotifiedAt = &stale

	fresh := activeLentEntry()
	fresh.CounterpartEmail = "carol@x.com"
	recent := time.Now().Add(-time.Hour)
	fresh.LastNotifiedAt = &recent

	f.lentRepo.On("ListActive", mock.Anything).Return([]*domain.Entry{overdue, fresh}, nil)
	f.users.On("GetByEmail", mock.Anything, "bob@x.com").Return(nil, nil)
	f.mailer.On("Send", "bob@x.com",
		mock.MatchedBy(func(subject string) bool {
			return strings.Contains(subject, "Reminder")
		}),
		mock.MatchedBy(func(html string) bool {
			return strings.Contains(html, "/register")
		}),
	).Return(nil)
	f.lentRepo.On("Update", mock.Anything, mock.MatchedBy(func(entry *domain.Entry) bool {
		return entry.ID == overdue.ID && entry.InitialNotified && entry.LastNotifiedAt.After(stale)
	})).Return(nil)

	sent, err := f.reconciler.SendDueReminders(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, sent)
	f.mailer.AssertNumberOfCalls(t, "Send", 1)
	f.lentRepo.AssertExpectations(t)
}

func TestSendDueReminders_NeverNotifiedCountsAsDue(t *testing.T) {
	f := newReconcilerFixture()

	entry := activeLentEntry()
	entry.LastNotifiedAt = nil

	f.lentRepo.On("ListActive", mock.Anything).Return([]*domain.Entry{entry}, nil)
	f.users.On("GetByEmail", mock.Anything, "bob@x.com").Return(&domain.User{ID: uuid.New()}, nil)
	f.mailer.On("Send", "bob@x.com", mock.Anything, mock.MatchedBy(func(html string) bool {
		// Registered borrowers get no registration call-to-action
		return !strings.Contains(html, "/register")
	})).Return(nil)
	f.lentRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	sent, err := f.reconciler.SendDueReminders(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, sent)
	f.mailer.AssertExpectations(t)
}

func TestSendDueReminders_SendFailureNotCounted(t *testing.T) {
	f := newReconcilerFixture()

	entry := activeLentEntry()

	f.lentRepo.On("ListActive", mock.Anything).Return([]*domain.Entry{entry}, nil)
	f.users.On("GetByEmail", mock.Anything, "bob@x.com").Return(nil, nil)
	f.mailer.On("Send", "bob@x.com", mock.Anything, mock.Anything).Return(errors.New("smtp unreachable"))

	sent, err := f.reconciler.SendDueReminders(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, sent)
	f.lentRepo.AssertNumberOfCalls(t, "Update", 0)
}
