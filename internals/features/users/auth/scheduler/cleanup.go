package scheduler

import (
	"log"
	"os"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	authRepo "kunskapsarvet_backend/internals/features/users/auth/repository"
)

// StartTokenCleanupCron purges expired blacklist entries, refresh tokens and
// password reset tokens (env TOKEN_CLEANUP_CRON, default daily at 04:00).
func StartTokenCleanupCron(db *gorm.DB) *cron.Cron {
	schedule := os.Getenv("TOKEN_CLEANUP_CRON")
	if schedule == "" {
		schedule = "0 4 * * *"
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if n, err := authRepo.CleanupExpiredBlacklist(db); err != nil {
			log.Printf("[CLEANUP] blacklist: %v", err)
		} else if n > 0 {
			log.Printf("[CLEANUP] removed %d expired blacklist entries", n)
		}
		if n, err := authRepo.CleanupExpiredRefreshTokens(db); err != nil {
			log.Printf("[CLEANUP] refresh tokens: %v", err)
		} else if n > 0 {
			log.Printf("[CLEANUP] removed %d expired refresh tokens", n)
		}
		if n, err := authRepo.CleanupExpiredResetTokens(db); err != nil {
			log.Printf("[CLEANUP] reset tokens: %v", err)
		} else if n > 0 {
			log.Printf("[CLEANUP] removed %d expired reset tokens", n)
		}
	}); err != nil {
		log.Printf("[CLEANUP] bad schedule %q: %v", schedule, err)
		return c
	}
	c.Start()
	return c
}
