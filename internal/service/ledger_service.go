package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/trackmint/peerledger/internal/config"
	"github.com/trackmint/peerledger/internal/domain"
	"github.com/trackmint/peerledger/internal/mail"
	"github.com/trackmint/peerledger/internal/repository"
	customError "github.com/trackmint/peerledger/pkg/errors"
	"github.com/trackmint/peerledger/pkg/utils"
)

// LedgerService is the peer ledger reconciliation engine. Every operation
// works on a primary record family selected by direction; the opposite
// family holds the counterpart's mirror records.
//
// The primary write is authoritative. Mirror writes and mail sends are
// best-effort: their failures are logged and never surfaced to the caller.
// The Reconciler heals mirror drift out of band.
type LedgerService struct {
	lentRepo     repository.EntryRepository
	borrowedRepo repository.EntryRepository
	users        repository.UserRepository
	mailer       mail.Mailer
	redis        *redis.Client
	cfg          *config.Config
}

func NewLedgerService(
	lentRepo repository.EntryRepository,
	borrowedRepo repository.EntryRepository,
	users repository.UserRepository,
	mailer mail.Mailer,
	redisClient *redis.Client,
	cfg *config.Config,
) *LedgerService {
	return &LedgerService{
		lentRepo:     lentRepo,
		borrowedRepo: borrowedRepo,
		users:        users,
		mailer:       mailer,
		redis:        redisClient,
		cfg:          cfg,
	}
}

// primaryRepo returns the store owning records created by direction's caller.
func (s *LedgerService) primaryRepo(direction domain.Direction) repository.EntryRepository {
	if direction == domain.DirectionLend {
		return s.lentRepo
	}
	return s.borrowedRepo
}

// mirrorRepo returns the store holding the counterpart family.
func (s *LedgerService) mirrorRepo(direction domain.Direction) repository.EntryRepository {
	if direction == domain.DirectionLend {
		return s.borrowedRepo
	}
	return s.lentRepo
}

func recordKind(direction domain.Direction) string {
	if direction == domain.DirectionLend {
		return "Lent"
	}
	return "Borrowed"
}

// CreateEntry records a new lend-or-borrow entry for the caller, then mirrors
// it for a registered counterpart or emails an unregistered one.
func (s *LedgerService) CreateEntry(ctx context.Context, direction domain.Direction, caller domain.Identity, input *domain.EntryInput) (*domain.Entry, error) {
	// Reject a second active entry for the same natural key
	existing, err := s.primaryRepo(direction).FindActive(ctx, domain.NaturalKey{
		LenderName:       input.LenderName,
		BorrowerName:     input.BorrowerName,
		CounterpartEmail: input.CounterpartEmail,
		InitialAmount:    input.InitialAmount,
		Description:      input.Description,
	})
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if existing != nil {
		return nil, customError.WrapDuplicateActiveEntry()
	}

	image := input.CounterpartImage
	if image == "" {
		image = domain.DefaultImageRef
	}

	now := time.Now()
	entry := &domain.Entry{
		ID:               uuid.New(),
		OwnerID:          caller.ID,
		LenderName:       input.LenderName,
		BorrowerName:     input.BorrowerName,
		CounterpartEmail: input.CounterpartEmail,
		CounterpartImage: image,
		InitialAmount:    input.InitialAmount,
		RemainingAmount:  input.RemainingAmount,
		RepaidAmount:     utils.RepaidAmount(input.InitialAmount, input.RemainingAmount),
		Status:           utils.StatusForRemaining(input.RemainingAmount),
		Description:      input.Description,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.primaryRepo(direction).Create(ctx, entry); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	// From here on the primary record is committed; everything else is
	// best-effort.
	counterpart, err := s.users.GetByEmail(ctx, input.CounterpartEmail)
	if err != nil {
		log.Printf("counterpart lookup failed for %s: %v", input.CounterpartEmail, err)
		counterpart = nil
	}

	if counterpart != nil {
		mirror := &domain.Entry{
			ID:               uuid.New(),
			OwnerID:          counterpart.ID,
			LenderName:       entry.LenderName,
			BorrowerName:     entry.BorrowerName,
			CounterpartEmail: caller.Email,
			CounterpartImage: domain.DefaultImageRef,
			InitialAmount:    entry.InitialAmount,
			RemainingAmount:  entry.RemainingAmount,
			RepaidAmount:     entry.RepaidAmount,
			Status:           entry.Status,
			Description:      entry.Description,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.mirrorRepo(direction).Create(ctx, mirror); err != nil {
			log.Printf("mirror write failed for entry %s: %v", entry.ID, err)
		}
		s.invalidateSummary(ctx, caller.ID, counterpart.ID)
	} else {
		s.sendCreateNotification(ctx, direction, entry)
		s.invalidateSummary(ctx, caller.ID)
	}

	return entry, nil
}

// UpdateEntry applies a partial update to the caller's entry, propagates the
// same changes to the counterpart record when one exists, and notifies the
// counterpart on clearance or when they remain unregistered.
func (s *LedgerService) UpdateEntry(ctx context.Context, direction domain.Direction, id uuid.UUID, caller domain.Identity, patch *domain.EntryPatch) (*domain.Entry, error) {
	entry, err := s.primaryRepo(direction).GetByID(ctx, id, caller.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if entry == nil {
		return nil, customError.WrapEntryNotFound(recordKind(direction))
	}

	// Locate the counterpart before mutating, so the lookup key reflects
	// the values the mirror was written with.
	mirror, err := s.mirrorRepo(direction).FindCounterpart(ctx, entry.LenderName, entry.BorrowerName, entry.InitialAmount)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	applyPatch(entry, patch)
	entry.RepaidAmount = utils.RepaidAmount(entry.InitialAmount, entry.RemainingAmount)
	entry.Status = utils.StatusForRemaining(entry.RemainingAmount)
	entry.UpdatedAt = time.Now()

	if err := s.primaryRepo(direction).Update(ctx, entry); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if mirror != nil {
		mirror.LenderName = entry.LenderName
		mirror.BorrowerName = entry.BorrowerName
		mirror.InitialAmount = entry.InitialAmount
		mirror.RemainingAmount = entry.RemainingAmount
		mirror.RepaidAmount = entry.RepaidAmount
		mirror.Status = entry.Status
		mirror.Description = entry.Description
		mirror.UpdatedAt = entry.UpdatedAt
		if err := s.mirrorRepo(direction).Update(ctx, mirror); err != nil {
			log.Printf("mirror update failed for entry %s: %v", entry.ID, err)
		}
		s.invalidateSummary(ctx, caller.ID, mirror.OwnerID)
	} else {
		s.invalidateSummary(ctx, caller.ID)
	}

	s.sendUpdateNotification(ctx, direction, entry)

	return entry, nil
}

// ListEntries returns all primary records owned by the caller together with
// the sum of their initial amounts.
func (s *LedgerService) ListEntries(ctx context.Context, direction domain.Direction, ownerID uuid.UUID) ([]*domain.Entry, decimal.Decimal, error) {
	entries, err := s.primaryRepo(direction).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, decimal.Zero, customError.WrapDatabaseError(err)
	}

	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.InitialAmount)
	}

	return entries, total, nil
}

// DeleteEntry removes the caller's entry. The counterpart record, if any, is
// deliberately left in place.
func (s *LedgerService) DeleteEntry(ctx context.Context, direction domain.Direction, id, ownerID uuid.UUID) error {
	entry, err := s.primaryRepo(direction).GetByID(ctx, id, ownerID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if entry == nil {
		return customError.WrapEntryNotFound(recordKind(direction))
	}

	if err := s.primaryRepo(direction).Delete(ctx, id); err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.invalidateSummary(ctx, ownerID)
	return nil
}

// GetSummary aggregates totals across both families for the dashboard.
// Results are cached in Redis; any write by the owner invalidates the cache.
func (s *LedgerService) GetSummary(ctx context.Context, ownerID uuid.UUID) (*domain.LedgerSummary, error) {
	key := summaryCacheKey(ownerID)

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, key).Result()
		if err == nil {
			var summary domain.LedgerSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
		} else if err != redis.Nil {
			log.Printf("summary cache read failed for %s: %v", ownerID, err)
		}
	}

	lentInitial, lentRemaining, err := s.lentRepo.TotalsByOwner(ctx, ownerID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	borrowedInitial, borrowedRemaining, err := s.borrowedRepo.TotalsByOwner(ctx, ownerID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	summary := &domain.LedgerSummary{
		TotalLent:           lentInitial,
		TotalBorrowed:       borrowedInitial,
		OutstandingLent:     lentRemaining,
		OutstandingBorrowed: borrowedRemaining,
	}

	if s.redis != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.redis.Set(ctx, key, payload, s.cfg.GetSummaryCacheTTL()).Err(); err != nil {
				log.Printf("summary cache write failed for %s: %v", ownerID, err)
			}
		}
	}

	return summary, nil
}

func summaryCacheKey(ownerID uuid.UUID) string {
	return "peerledger:summary:" + ownerID.String()
}

func (s *LedgerService) invalidateSummary(ctx context.Context, ownerIDs ...uuid.UUID) {
	if s.redis == nil {
		return
	}
	keys := make([]string, 0, len(ownerIDs))
	for _, id := range ownerIDs {
		keys = append(keys, summaryCacheKey(id))
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		log.Printf("summary cache invalidation failed: %v", err)
	}
}

// sendCreateNotification emails an unregistered counterpart about the new
// entry, with a registration call-to-action where the template carries one.
func (s *LedgerService) sendCreateNotification(ctx context.Context, direction domain.Direction, entry *domain.Entry) {
	var subject, html string
	if direction == domain.DirectionLend {
		subject, html = mail.LenderToBorrower(
			entry.BorrowerName, entry.LenderName, entry.InitialAmount, entry.Description,
			false, false, s.cfg.RegistrationLink(),
		)
	} else {
		subject, html = mail.BorrowerToLender(
			entry.LenderName, entry.BorrowerName, entry.InitialAmount, entry.Description,
			false,
		)
	}

	if err := s.mailer.Send(entry.CounterpartEmail, subject, html); err != nil {
		log.Printf("create notification to %s failed: %v", entry.CounterpartEmail, err)
		return
	}

	now := time.Now()
	entry.InitialNotified = true
	entry.LastNotifiedAt = &now
	if err := s.primaryRepo(direction).Update(ctx, entry); err != nil {
		log.Printf("notification flag update failed for entry %s: %v", entry.ID, err)
	}
}

// sendUpdateNotification notifies the counterpart after an update. The lend
// direction mails on clearance or while the borrower is unregistered; the
// borrow direction mails on clearance only.
func (s *LedgerService) sendUpdateNotification(ctx context.Context, direction domain.Direction, entry *domain.Entry) {
	cleared := entry.Status == domain.StatusCleared

	var subject, html string
	if direction == domain.DirectionLend {
		counterpart, err := s.users.GetByEmail(ctx, entry.CounterpartEmail)
		if err != nil {
			log.Printf("counterpart lookup failed for %s: %v", entry.CounterpartEmail, err)
			return
		}
		registered := counterpart != nil
		if !cleared && registered {
			return
		}
		subject, html = mail.LenderToBorrower(
			entry.BorrowerName, entry.LenderName, entry.InitialAmount, entry.Description,
			cleared, registered, s.cfg.RegistrationLink(),
		)
	} else {
		if !cleared {
			return
		}
		subject, html = mail.BorrowerToLender(
			entry.LenderName, entry.BorrowerName, entry.InitialAmount, entry.Description,
			true,
		)
	}

	if err := s.mailer.Send(entry.CounterpartEmail, subject, html); err != nil {
		log.Printf("update notification to %s failed: %v", entry.CounterpartEmail, err)
		return
	}

	now := time.Now()
	entry.LastNotifiedAt = &now
	if cleared {
		entry.ClearedNotified = true
	}
	if err := s.primaryRepo(direction).Update(ctx, entry); err != nil {
		log.Printf("notification flag update failed for entry %s: %v", entry.ID, err)
	}
}

// applyPatch copies present fields onto the entry. Name and text fields only
// apply when non-empty, matching the original update semantics; amounts apply
// whenever supplied.
func applyPatch(entry *domain.Entry, patch *domain.EntryPatch) {
	if patch.LenderName != nil && *patch.LenderName != "" {
		entry.LenderName = *patch.LenderName
	}
	if patch.BorrowerName != nil && *patch.BorrowerName != "" {
		entry.BorrowerName = *patch.BorrowerName
	}
	if patch.CounterpartEmail != nil && *patch.CounterpartEmail != "" {
		entry.CounterpartEmail = *patch.CounterpartEmail
	}
	if patch.CounterpartImage != nil && *patch.CounterpartImage != "" {
		entry.CounterpartImage = *patch.CounterpartImage
	}
	if patch.Description != nil && *patch.Description != "" {
		entry.Description = *patch.Description
	}
	if patch.InitialAmount != nil {
		entry.InitialAmount = *patch.InitialAmount
	}
	if patch.RemainingAmount != nil {
		entry.RemainingAmount = *patch.RemainingAmount
	}
}
