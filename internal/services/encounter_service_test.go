package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/AndersonAGodoy/noah-server/internal/models"
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
	e.CreatedAt = time.Now()
	e.UpdatedAt = time.Now()
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

	limit := pageSize * pageNumber
	if limit > int64(len(sorted)) {
		limit = int64(len(sorted))
	}
	offset := (pageNumber - 1) * pageSize
	if offset >= limit {
		return []models.Encounter{}, nil
	}

	var out []models.Encounter
	for _, e := range sorted[offset:limit] {
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
	if err := f.DeactivateAllEncounters(ctx); err != nil {
		return err
	}
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
			if title, ok := fields["title"].(string); ok {
				e.Title = title
			}
			e.UpdatedAt = time.Now()
		}
	}
	return nil
}

func newTestEncounterService(store *fakeEncounterStore, now time.Time) *EncounterService {
	svc := NewEncounterService(store)
	svc.now = func() time.Time { return now }
	return svc
}

func TestCreateEncounterDefaultsInactive(t *testing.T) {
	store := &fakeEncounterStore{}
	svc := newTestEncounterService(store, time.Now())

	created, err := svc.CreateEncounter(context.Background(), &models.Encounter{
		Title:     "Winter Retreat",
		StartDate: time.Now().AddDate(0, 0, 7),
		Active:    true,
	})
	require.NoError(t, err)
	assert.False(t, created.Active)
}

func TestCreateEncounterRequiresTitleAndStart(t *testing.T) {
	svc := newTestEncounterService(&fakeEncounterStore{}, time.Now())

	_, err := svc.CreateEncounter(context.Background(), &models.Encounter{StartDate: time.Now()})
	assert.Error(t, err)

	_, err = svc.CreateEncounter(context.Background(), &models.Encounter{Title: "No date"})
	assert.Error(t, err)
}

func TestSetActiveEncounterDeactivatesOthers(t *testing.T) {
	store := &fakeEncounterStore{}
	now := time.Now()
	svc := newTestEncounterService(store, now)

	a, err := svc.CreateEncounter(context.Background(), &models.Encounter{
		Title:     "Encounter A",
		StartDate: now.AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	b, err := svc.CreateEncounter(context.Background(), &models.Encounter{
		Title:     "Encounter B",
		StartDate: now.AddDate(0, 0, 7),
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetActiveEncounter(context.Background(), a.ID.Hex()))

	active, err := svc.GetActiveEncounter(context.Background())
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, a.ID, active.ID)

	require.NoError(t, svc.SetActiveEncounter(context.Background(), b.ID.Hex()))

	active, err = svc.GetActiveEncounter(context.Background())
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, b.ID, active.ID)
	assert.False(t, a.Active)

	activeCount := 0
	for _, e := range store.encounters {
		if e.Active {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)
}

func TestSetActiveEncounterUnknownID(t *testing.T) {
	svc := newTestEncounterService(&fakeEncounterStore{}, time.Now())

	err := svc.SetActiveEncounter(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetActiveEncounterDateGated(t *testing.T) {
	store := &fakeEncounterStore{}
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestEncounterService(store, now)

	stale := &models.Encounter{
		ID:        primitive.NewObjectID(),
		Title:     "Yesterday's encounter",
		StartDate: now.AddDate(0, 0, -1),
		Active:    true,
	}
	store.encounters = append(store.encounters, stale)

	active, err := svc.GetActiveEncounter(context.Background())
	require.NoError(t, err)
	assert.Nil(t, active)

	// The stored flag is not mutated by the read path.
	assert.True(t, stale.Active)
}

func TestGetActiveEncounterSameDayStillActive(t *testing.T) {
	store := &fakeEncounterStore{}
	now := time.Date(2026, 3, 15, 23, 30, 0, 0, time.UTC)
	svc := newTestEncounterService(store, now)

	today := &models.Encounter{
		ID:        primitive.NewObjectID(),
		Title:     "Starts this morning",
		StartDate: time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC),
		Active:    true,
	}
	store.encounters = append(store.encounters, today)

	active, err := svc.GetActiveEncounter(context.Background())
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, today.ID, active.ID)
}

func TestGetActiveEncounterNone(t *testing.T) {
	svc := newTestEncounterService(&fakeEncounterStore{}, time.Now())

	active, err := svc.GetActiveEncounter(context.Background())
	require.NoError(t, err)
	assert.Nil(t, active)
}
