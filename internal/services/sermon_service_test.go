package services

import (
	"context"
	"testing"

	"github.com/AndersonAGodoy/noah-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeSermonStore struct {
	sermons []*models.Sermon
}

func (f *fakeSermonStore) CreateSermon(_ context.Context, s *models.Sermon) (*models.Sermon, error) {
	s.ID = primitive.NewObjectID()
	f.sermons = append(f.sermons, s)
	return s, nil
}

func (f *fakeSermonStore) GetSermonByID(_ context.Context, id primitive.ObjectID) (*models.Sermon, error) {
	for _, s := range f.sermons {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeSermonStore) GetSermonBySlug(_ context.Context, slug string) (*models.Sermon, error) {
	for _, s := range f.sermons {
		if s.Slug == slug {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeSermonStore) GetSermons(_ context.Context, publishedOnly bool, pageSize, pageNumber int64) ([]models.Sermon, error) {
	var out []models.Sermon
	for _, s := range f.sermons {
		if publishedOnly && !s.Published {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSermonStore) UpdateSermon(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	for _, s := range f.sermons {
		if s.ID == id {
			if published, ok := fields["published"].(bool); ok {
				s.Published = published
			}
		}
	}
	return nil
}

func (f *fakeSermonStore) DeleteSermon(_ context.Context, id primitive.ObjectID) error {
	for i, s := range f.sermons {
		if s.ID == id {
			f.sermons = append(f.sermons[:i], f.sermons[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeRevalidator struct {
	paths []string
}

func (f *fakeRevalidator) Revalidate(path string) error {
	f.paths = append(f.paths, path)
	return nil
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "walking-in-grace", Slugify("Walking in Grace"))
	assert.Equal(t, "psalm-23-part-2", Slugify("Psalm 23: Part 2!"))
	assert.Equal(t, "hope", Slugify("  Hope  "))
}

func TestCreateSermonDerivesSlugAndStaysDraft(t *testing.T) {
	store := &fakeSermonStore{}
	svc := NewSermonService(store, nil)

	created, err := svc.CreateSermon(context.Background(), &models.Sermon{
		Title:     "Walking in Grace",
		Body:      "# Intro\nGrace is...",
		Published: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "walking-in-grace", created.Slug)
	assert.False(t, created.Published)
	assert.Nil(t, created.PublishedAt)
}

func TestCreateSermonRejectsDuplicateSlug(t *testing.T) {
	store := &fakeSermonStore{}
	svc := NewSermonService(store, nil)

	_, err := svc.CreateSermon(context.Background(), &models.Sermon{Title: "Hope", Body: "x"})
	require.NoError(t, err)

	_, err = svc.CreateSermon(context.Background(), &models.Sermon{Title: "Hope", Body: "y"})
	assert.Error(t, err)
}

func TestPublishSermonTriggersRevalidation(t *testing.T) {
	store := &fakeSermonStore{}
	revalidator := &fakeRevalidator{}
	svc := NewSermonService(store, revalidator)

	created, err := svc.CreateSermon(context.Background(), &models.Sermon{Title: "Hope", Body: "x"})
	require.NoError(t, err)

	published, err := svc.PublishSermon(context.Background(), created.ID.Hex())
	require.NoError(t, err)
	assert.True(t, published.Published)
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, []string{"/sermons/hope"}, revalidator.paths)

	listed, err := svc.GetSermons(context.Background(), true, 10, 1)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestPublishSermonNotFound(t *testing.T) {
	svc := NewSermonService(&fakeSermonStore{}, nil)

	_, err := svc.PublishSermon(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}
