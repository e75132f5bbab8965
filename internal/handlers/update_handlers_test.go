package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AndersonAGodoy/noah-server/internal/models"
	"github.com/AndersonAGodoy/noah-server/internal/services"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeEncounterStore struct {
	updated bson.M
}

func (f *fakeEncounterStore) CreateEncounter(ctx context.Context, encounter *models.Encounter) (*models.Encounter, error) {
	return encounter, nil
}

func (f *fakeEncounterStore) GetEncounterByID(ctx context.Context, id primitive.ObjectID) (*models.Encounter, error) {
	return &models.Encounter{ID: id}, nil
}

func (f *fakeEncounterStore) GetEncounters(ctx context.Context, pageSize, pageNumber int64) ([]models.Encounter, error) {
	return nil, nil
}

func (f *fakeEncounterStore) GetActiveEncounter(ctx context.Context) (*models.Encounter, error) {
	return nil, nil
}

func (f *fakeEncounterStore) SetActiveEncounter(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (f *fakeEncounterStore) DeactivateAllEncounters(ctx context.Context) error {
	return nil
}

func (f *fakeEncounterStore) UpdateEncounter(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	f.updated = fields
	return nil
}

type fakeParticipantStore struct {
	updated bson.M
}

func (f *fakeParticipantStore) CreateParticipant(ctx context.Context, participant *models.Participant) (*models.Participant, error) {
	return participant, nil
}

func (f *fakeParticipantStore) GetParticipantsByEncounter(ctx context.Context, encounterID primitive.ObjectID, pageSize, pageNumber int64) ([]models.Participant, int64, error) {
	return nil, 0, nil
}

func (f *fakeParticipantStore) GetParticipantByID(ctx context.Context, id primitive.ObjectID) (*models.Participant, error) {
	return &models.Participant{ID: id}, nil
}

func (f *fakeParticipantStore) GetParticipantByEmail(ctx context.Context, email string) (*models.Participant, error) {
	return nil, nil
}

func (f *fakeParticipantStore) UpdateParticipant(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	f.updated = fields
	return nil
}

func (f *fakeParticipantStore) DeleteParticipant(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (f *fakeParticipantStore) GetAllParticipants(ctx context.Context, pageSize, pageNumber int64) ([]models.Participant, error) {
	return nil, nil
}

type fakeSermonStore struct {
	updated bson.M
}

func (f *fakeSermonStore) CreateSermon(ctx context.Context, sermon *models.Sermon) (*models.Sermon, error) {
	return sermon, nil
}

func (f *fakeSermonStore) GetSermonByID(ctx context.Context, id primitive.ObjectID) (*models.Sermon, error) {
	return &models.Sermon{ID: id}, nil
}

func (f *fakeSermonStore) GetSermonBySlug(ctx context.Context, slug string) (*models.Sermon, error) {
	return nil, nil
}

func (f *fakeSermonStore) GetSermons(ctx context.Context, publishedOnly bool, pageSize, pageNumber int64) ([]models.Sermon, error) {
	return nil, nil
}

func (f *fakeSermonStore) UpdateSermon(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	f.updated = fields
	return nil
}

func (f *fakeSermonStore) DeleteSermon(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func patchRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/ignored", bytes.NewBufferString(body))
	return mux.SetURLVars(req, map[string]string{"id": primitive.NewObjectID().Hex()})
}

func TestUpdateEncounterRejectsMalformedDate(t *testing.T) {
	store := &fakeEncounterStore{}
	handler := NewEncounterHandler(services.NewEncounterService(store), nil)

	// A bare date is not RFC 3339 and must never reach the collection as a
	// string in a time-typed field.
	rec := httptest.NewRecorder()
	handler.UpdateEncounterHandler(rec, patchRequest(t, `{"start_date":"2026-09-01"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, store.updated)
}

func TestUpdateEncounterAppliesTypedFields(t *testing.T) {
	store := &fakeEncounterStore{}
	handler := NewEncounterHandler(services.NewEncounterService(store), nil)

	rec := httptest.NewRecorder()
	handler.UpdateEncounterHandler(rec, patchRequest(t,
		`{"title":"Encontro de Setembro","start_date":"2026-09-01T00:00:00Z","max_participants":80}`))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, store.updated)
	assert.Equal(t, "Encontro de Setembro", store.updated["title"])
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), store.updated["start_date"])
	assert.Equal(t, 80, store.updated["max_participants"])
}

func TestUpdateEncounterIgnoresActiveFlag(t *testing.T) {
	store := &fakeEncounterStore{}
	handler := NewEncounterHandler(services.NewEncounterService(store), nil)

	rec := httptest.NewRecorder()
	handler.UpdateEncounterHandler(rec, patchRequest(t, `{"active":true}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, store.updated)
}

func TestUpdateEncounterRejectsEmptyTitle(t *testing.T) {
	store := &fakeEncounterStore{}
	handler := NewEncounterHandler(services.NewEncounterService(store), nil)

	rec := httptest.NewRecorder()
	handler.UpdateEncounterHandler(rec, patchRequest(t, `{"title":""}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, store.updated)
}

func TestUpdateParticipantRejectsBadValues(t *testing.T) {
	store := &fakeParticipantStore{}
	svc := services.NewParticipantService(store, nil, nil)
	handler := NewParticipantHandler(svc)

	tests := []struct {
		name string
		body string
	}{
		{"age as string", `{"age":"ten"}`},
		{"age out of range", `{"age":200}`},
		{"unknown participation type", `{"participation_type":"boss"}`},
		{"encounter binding immutable", `{"encounter_id":"000000000000000000000000"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.UpdateParticipantHandler(rec, patchRequest(t, tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, store.updated)
		})
	}
}

func TestUpdateParticipantAppliesTypedFields(t *testing.T) {
	store := &fakeParticipantStore{}
	svc := services.NewParticipantService(store, nil, nil)
	handler := NewParticipantHandler(svc)

	rec := httptest.NewRecorder()
	handler.UpdateParticipantHandler(rec, patchRequest(t,
		`{"name":"Maria Silva","age":34,"participation_type":"returning"}`))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, store.updated)
	assert.Equal(t, "Maria Silva", store.updated["name"])
	assert.Equal(t, 34, store.updated["age"])
	assert.Equal(t, models.ParticipationReturning, store.updated["participation_type"])
}

func TestUpdateSermonIgnoresPublicationFields(t *testing.T) {
	store := &fakeSermonStore{}
	handler := NewSermonHandler(services.NewSermonService(store, nil))

	rec := httptest.NewRecorder()
	handler.UpdateSermonHandler(rec, patchRequest(t, `{"published":true,"slug":"hijacked"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, store.updated)
}

func TestUpdateSermonAppliesTypedFields(t *testing.T) {
	store := &fakeSermonStore{}
	handler := NewSermonHandler(services.NewSermonService(store, nil))

	rec := httptest.NewRecorder()
	handler.UpdateSermonHandler(rec, patchRequest(t,
		`{"title":"Graça e Verdade","tags":["graça","joão"]}`))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, store.updated)
	assert.Equal(t, "Graça e Verdade", store.updated["title"])
	assert.Equal(t, []string{"graça", "joão"}, store.updated["tags"])
}
