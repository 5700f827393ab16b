package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/trackmint/peerledger/internal/config"
	"github.com/trackmint/peerledger/internal/mail"
	"github.com/trackmint/peerledger/internal/repository"
	"github.com/trackmint/peerledger/internal/service"
)

func main() {
	log.Println("Starting ledger scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	mailer := mail.NewSMTPMailer(cfg.Mail)

	reconciler := service.NewReconciler(
		repository.NewLentEntryRepository(db),
		repository.NewBorrowedEntryRepository(db),
		repository.NewUserRepository(db),
		mailer,
		cfg,
	)

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds())
	setupCronJobs(c, cfg, reconciler)

	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, reconciler *service.Reconciler) {
	// Nightly pass healing drift between lent entries and their mirrors
	_, err := c.AddFunc(cfg.Scheduler.DriftCron, func() {
		log.Println("Running mirror drift healing job...")
		healed, err := reconciler.HealMirrorDrift(context.Background())
		if err != nil {
			log.Printf("Mirror drift healing failed: %v", err)
			return
		}
		log.Printf("Mirror drift healing done, %d record(s) re-synced", healed)
	})
	if err != nil {
		log.Printf("Error scheduling mirror drift healing job: %v", err)
	}

	// Weekly repayment reminders for unpaid entries
	_, err = c.AddFunc(cfg.Scheduler.ReminderCron, func() {
		log.Println("Running repayment reminder job...")
		sent, err := reconciler.SendDueReminders(context.Background())
		if err != nil {
			log.Printf("Repayment reminder job failed: %v", err)
			return
		}
		log.Printf("Repayment reminder job done, %d reminder(s) sent", sent)
	})
	if err != nil {
		log.Printf("Error scheduling repayment reminder job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}
