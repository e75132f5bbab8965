package cron

import (
	"context"

	"github.com/AndersonAGodoy/noah-server/internal/jobs"
	"github.com/AndersonAGodoy/noah-server/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func StartMaintenanceCronJobs(expirer *jobs.EncounterExpirer, tokenService *services.TokenService) {
	c := cron.New()

	// Expire stale active encounters
	c.AddFunc("@hourly", func() {
		err := expirer.RunSweep(context.Background())
		if err != nil {
			logrus.WithError(err).Error("Encounter expiry sweep failed")
		}
	})

	// Purge push tokens inactive for 90+ days
	c.AddFunc("0 3 * * *", func() {
		_, err := tokenService.CleanupOldTokens(context.Background(), 90)
		if err != nil {
			logrus.WithError(err).Error("Token cleanup failed")
		}
	})

	c.Start()
}
