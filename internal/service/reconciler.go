package service

import (
	"context"
	"log"
	"time"

	"github.com/trackmint/peerledger/internal/config"
	"github.com/trackmint/peerledger/internal/domain"
	"github.com/trackmint/peerledger/internal/mail"
	"github.com/trackmint/peerledger/internal/repository"
	"github.com/trackmint/peerledger/pkg/utils"
)

// Reconciler runs the scheduled maintenance passes: healing drift between a
// primary entry and its mirror (the dual write is not transactional), and
// mailing repayment reminders for entries that stay unpaid.
type Reconciler struct {
	lentRepo     repository.EntryRepository
	borrowedRepo repository.EntryRepository
	users        repository.UserRepository
	mailer       mail.Mailer
	cfg          *config.Config
}

func NewReconciler(
	lentRepo repository.EntryRepository,
	borrowedRepo repository.EntryRepository,
	users repository.UserRepository,
	mailer mail.Mailer,
	cfg *config.Config,
) *Reconciler {
	return &Reconciler{
		lentRepo:     lentRepo,
		borrowedRepo: borrowedRepo,
		users:        users,
		mailer:       mailer,
		cfg:          cfg,
	}
}

// HealMirrorDrift walks the active lent entries and re-syncs each registered
// counterpart's borrowed record from the lender's copy. The lender's record
// is treated as authoritative. Idempotent; safe to run at any cadence.
func (r *Reconciler) HealMirrorDrift(ctx context.Context) (int, error) {
	entries, err := r.lentRepo.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	healed := 0
	for _, entry := range entries {
		counterpart, err := r.users.GetByEmail(ctx, entry.CounterpartEmail)
		if err != nil {
			log.Printf("drift check: counterpart lookup failed for %s: %v", entry.CounterpartEmail, err)
			continue
		}
		if counterpart == nil {
			// Unregistered borrowers have no mirror to drift.
			continue
		}

		mirror, err := r.borrowedRepo.FindCounterpart(ctx, entry.LenderName, entry.BorrowerName, entry.InitialAmount)
		if err != nil {
			log.Printf("drift check: mirror lookup failed for entry %s: %v", entry.ID, err)
			continue
		}
		if mirror == nil || !mirrorDrifted(entry, mirror) {
			continue
		}

		mirror.RemainingAmount = entry.RemainingAmount
		mirror.RepaidAmount = entry.RepaidAmount
		mirror.Status = entry.Status
		mirror.Description = entry.Description
		mirror.UpdatedAt = time.Now()

		if err := r.borrowedRepo.Update(ctx, mirror); err != nil {
			log.Printf("drift heal failed for mirror %s: %v", mirror.ID, err)
			continue
		}
		healed++
	}

	return healed, nil
}

func mirrorDrifted(primary, mirror *domain.Entry) bool {
	return !mirror.RemainingAmount.Equal(primary.RemainingAmount) ||
		!mirror.RepaidAmount.Equal(primary.RepaidAmount) ||
		mirror.Status != primary.Status ||
		mirror.Description != primary.Description
}

// SendDueReminders mails a repayment reminder for every unpaid lent entry
// whose last notification is older than the configured interval (or that was
// never notified). Returns the number of reminders sent.
func (r *Reconciler) SendDueReminders(ctx context.Context) (int, error) {
	entries, err := r.lentRepo.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	interval := r.cfg.GetReminderInterval()
	now := time.Now()
	sent := 0

	for _, entry := range entries {
		if !utils.ReminderDue(entry.LastNotifiedAt, interval, now) {
			continue
		}

		counterpart, err := r.users.GetByEmail(ctx, entry.CounterpartEmail)
		if err != nil {
			log.Printf("reminder: counterpart lookup failed for %s: %v", entry.CounterpartEmail, err)
			continue
		}

		subject, html := mail.LenderToBorrower(
			entry.BorrowerName, entry.LenderName, entry.InitialAmount, entry.Description,
			false, counterpart != nil, r.cfg.RegistrationLink(),
		)
		if err := r.mailer.Send(entry.CounterpartEmail, subject, html); err != nil {
			log.Printf("reminder to %s failed: %v", entry.CounterpartEmail, err)
			continue
		}

		notifiedAt := now
		entry.InitialNotified = true
		entry.LastNotifiedAt = &notifiedAt
		if err := r.lentRepo.Update(ctx, entry); err != nil {
			log.Printf("reminder flag update failed for entry %s: %v", entry.ID, err)
		}
		sent++
	}

	return sent, nil
}
