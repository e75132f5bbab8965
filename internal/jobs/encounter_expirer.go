package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/AndersonAGodoy/noah-server/internal/services"
	"github.com/sirupsen/logrus"
)

// sweepPageSize bounds the sweep to the first page of encounters.
const sweepPageSize = 100

// EncounterExpirer is the eager counterpart of the lazy date gate on the
// active-encounter read path: it walks recent encounters and clears the
// active flag on any whose start date has already passed.
type EncounterExpirer struct {
	EncounterService *services.EncounterService
}

// NewEncounterExpirer creates a new instance of EncounterExpirer
func NewEncounterExpirer(encounterService *services.EncounterService) *EncounterExpirer {
	return &EncounterExpirer{
		EncounterService: encounterService,
	}
}

// RunSweep scans up to the first 100 encounters and deactivates every
// active one whose start date (date-only) is before today.
func (e *EncounterExpirer) RunSweep(ctx context.Context) error {
	encounters, err := e.EncounterService.GetEncounters(ctx, sweepPageSize, 1)
	if err != nil {
		return fmt.Errorf("failed to fetch encounters: %v", err)
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	expired := 0
	for _, encounter := range encounters {
		if !encounter.Active {
			continue
		}
		start := encounter.StartDate.In(now.Location())
		startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, now.Location())
		if startDay.Before(today) {
			if err := e.EncounterService.Deactivate(ctx, encounter.ID); err != nil {
				logrus.WithError(err).WithField("encounter_id", encounter.ID.Hex()).Error("Failed to expire encounter")
				return err
			}
			expired++
		}
	}

	logrus.WithField("expired", expired).Info("Encounter expiry sweep completed")
	return nil
}
