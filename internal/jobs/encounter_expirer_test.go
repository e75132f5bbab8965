package jobs

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/AndersonAGodoy/noah-server/internal/models"
	"github.com/AndersonAGodoy/noah-server/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeEncounterStore struct {
	encounters []*models.Encounter
}

func (f *fakeEncounterStore) CreateEncounter(_ context.Context, e *models.Encounter) (*models.Encounter, error) {
	e.ID = primitive.NewObjectID()
	f.encounters = append(f.encounters, e)
	return e, nil
}

func (f *fakeEncounterStore) GetEncounterByID(_ context.Context, id primitive.ObjectID) (*models.Encounter, error) {
	for _, e := range f.encounters {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeEncounterStore) GetEncounters(_ context.Context, pageSize, pageNumber int64) ([]models.Encounter, error) {
	sorted := make([]*models.Encounter, len(f.encounters))
	copy(sorted, f.encounters)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartDate.After(sorted[j].StartDate)
	})

	var out []models.Encounter
	for i, e := range sorted {
		if int64(i) >= pageSize*pageNumber {
			break
		}
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeEncounterStore) GetActiveEncounter(_ context.Context) (*models.Encounter, error) {
	for _, e := range f.encounters {
		if e.Active {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeEncounterStore) SetActiveEncounter(ctx context.Context, id primitive.ObjectID) error {
	_ = f.DeactivateAllEncounters(ctx)
	for _, e := range f.encounters {
		if e.ID == id {
			e.Active = true
		}
	}
	return nil
}

func (f *fakeEncounterStore) DeactivateAllEncounters(_ context.Context) error {
	for _, e := range f.encounters {
		e.Active = false
	}
	return nil
}

func (f *fakeEncounterStore) UpdateEncounter(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	for _, e := range f.encounters {
		if e.ID == id {
			if active, ok := fields["active"].(bool); ok {
				e.Active = active
			}
		}
	}
	return nil
}

func TestRunSweepDeactivatesStaleEncounters(t *testing.T) {
	store := &fakeEncounterStore{}
	now := time.Now()

	stale := &models.Encounter{
		ID:        primitive.NewObjectID(),
		Title:     "Last month",
		StartDate: now.AddDate(0, -1, 0),
		Active:    true,
	}
	upcoming := &models.Encounter{
		ID:        primitive.NewObjectID(),
		Title:     "Next week",
		StartDate: now.AddDate(0, 0, 7),
		Active:    false,
	}
	inactiveStale := &models.Encounter{
		ID:        primitive.NewObjectID(),
		Title:     "Old and already off",
		StartDate: now.AddDate(-1, 0, 0),
		Active:    false,
	}
	store.encounters = append(store.encounters, stale, upcoming, inactiveStale)

	expirer := NewEncounterExpirer(services.NewEncounterService(store))
	require.NoError(t, expirer.RunSweep(context.Background()))

	assert.False(t, stale.Active)
	assert.False(t, upcoming.Active)
	assert.False(t, inactiveStale.Active)
}

func TestRunSweepKeepsTodayActive(t *testing.T) {
	store := &fakeEncounterStore{}
	now := time.Now()

	today := &models.Encounter{
		ID:        primitive.NewObjectID(),
		Title:     "Starts today",
		StartDate: time.Date(now.Year(), now.Month(), now.Day(), 6, 0, 0, 0, now.Location()),
		Active:    true,
	}
	store.encounters = append(store.encounters, today)

	expirer := NewEncounterExpirer(services.NewEncounterService(store))
	require.NoError(t, expirer.RunSweep(context.Background()))

	assert.True(t, today.Active)
}
