package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/service"
)

// notificationRetention is how long read notifications are kept.
const notificationRetention = 30 * 24 * time.Hour

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron             *cron.Cron
	services         *service.Services
	notificationRepo repository.NotificationRepository
}

// NewScheduler creates a new scheduler
func NewScheduler(services *service.Services, notificationRepo repository.NotificationRepository) *Scheduler {
	return &Scheduler{
		cron:             cron.New(),
		services:         services,
		notificationRepo: notificationRepo,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Run every hour - Mark overdue invitations expired
	s.cron.AddFunc("0 * * * *", func() {
		log.Println("[Cron] Running invitation expiry sweep...")
		s.expireStaleInvitations()
	})

	// Clean up old notifications - Run every Sunday at midnight
	s.cron.AddFunc("0 0 * * 0", func() {
		log.Println("[Cron] Running notification cleanup...")
		s.cleanupOldNotifications()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

// expireStaleInvitations flips pending invitations past their expiry to
// expired. Redemption already rejects overdue codes on its own, so this
// sweep only keeps listings and stored state honest.
func (s *Scheduler) expireStaleInvitations() {
	ctx := context.Background()

	n, err := s.services.Invitation.ExpireStale(ctx)
	if err != nil {
		log.Printf("[Cron] Error expiring invitations: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[Cron] Marked %d invitation(s) expired", n)
	}
}

// cleanupOldNotifications removes read notifications older than the
// retention window.
func (s *Scheduler) cleanupOldNotifications() {
	ctx := context.Background()

	if s.notificationRepo == nil {
		log.Println("[Cron] Notification repository not available for cleanup")
		return
	}

	cutoff := time.Now().Add(-notificationRetention)
	n, err := s.notificationRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("[Cron] Error cleaning up notifications: %v", err)
		return
	}
	log.Printf("[Cron] Deleted %d old notification(s)", n)
}
