package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AndersonAGodoy/noah-server/internal/models"
	"github.com/AndersonAGodoy/noah-server/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SermonStore is the slice of the sermon repository the service depends on.
type SermonStore interface {
	CreateSermon(ctx context.Context, sermon *models.Sermon) (*models.Sermon, error)
	GetSermonByID(ctx context.Context, id primitive.ObjectID) (*models.Sermon, error)
	GetSermonBySlug(ctx context.Context, slug string) (*models.Sermon, error)
	GetSermons(ctx context.Context, publishedOnly bool, pageSize, pageNumber int64) ([]models.Sermon, error)
	UpdateSermon(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	DeleteSermon(ctx context.Context, id primitive.ObjectID) error
}

// Revalidator asks the frontend to regenerate a static page.
type Revalidator interface {
	Revalidate(path string) error
}

// SermonService encapsulates sermon authoring and publication.
type SermonService struct {
	repo        SermonStore
	revalidator Revalidator
}

// NewSermonService creates a new instance of SermonService. revalidator
// may be nil when no frontend hook is configured.
func NewSermonService(repo SermonStore, revalidator Revalidator) *SermonService {
	return &SermonService{repo: repo, revalidator: revalidator}
}

// CreateSermon stores a new draft sermon. The slug is derived from the
// title when not provided, and must be unique.
func (s *SermonService) CreateSermon(ctx context.Context, sermon *models.Sermon) (*models.Sermon, error) {
	if sermon.Title == "" {
		return nil, fmt.Errorf("sermon title is required")
	}
	if sermon.Body == "" {
		return nil, fmt.Errorf("sermon body is required")
	}
	if sermon.Slug == "" {
		sermon.Slug = Slugify(sermon.Title)
	}

	existing, err := s.repo.GetSermonBySlug(ctx, sermon.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %v", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("sermon slug %q already in use", sermon.Slug)
	}

	sermon.Published = false
	sermon.PublishedAt = nil

	created, err := s.repo.CreateSermon(ctx, sermon)
	if err != nil {
		return nil, fmt.Errorf("failed to create sermon: %v", err)
	}
	return created, nil
}

// GetSermon retrieves a sermon by its ID.
func (s *SermonService) GetSermon(ctx context.Context, id string) (*models.Sermon, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid sermon ID: %v", err)
	}
	return s.repo.GetSermonByID(ctx, objID)
}

// GetSermonBySlug retrieves a sermon by its public slug.
func (s *SermonService) GetSermonBySlug(ctx context.Context, slug string) (*models.Sermon, error) {
	return s.repo.GetSermonBySlug(ctx, slug)
}

// GetSermons lists sermons, optionally restricted to published ones.
func (s *SermonService) GetSermons(ctx context.Context, publishedOnly bool, pageSize, pageNumber int64) ([]models.Sermon, error) {
	sermons, err := s.repo.GetSermons(ctx, publishedOnly, pageSize, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sermons: %v", err)
	}
	return sermons, nil
}

// UpdateSermon applies a partial update.
func (s *SermonService) UpdateSermon(ctx context.Context, id string, fields bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid sermon ID: %v", err)
	}
	if err := s.repo.UpdateSermon(ctx, objID, fields); err != nil {
		return fmt.Errorf("failed to update sermon: %v", err)
	}
	return nil
}

// DeleteSermon removes a sermon.
func (s *SermonService) DeleteSermon(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid sermon ID: %v", err)
	}
	if err := s.repo.DeleteSermon(ctx, objID); err != nil {
		return fmt.Errorf("failed to delete sermon: %v", err)
	}
	return nil
}

// PublishSermon marks a sermon published, stamps the publication time and
// pings the frontend so the static page is regenerated. The ping is best
// effort; publication does not roll back when it fails.
func (s *SermonService) PublishSermon(ctx context.Context, id string) (*models.Sermon, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid sermon ID: %v", err)
	}

	sermon, err := s.repo.GetSermonByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sermon: %v", err)
	}
	if sermon == nil {
		return nil, fmt.Errorf("sermon %s: %w", id, ErrNotFound)
	}

	now := time.Now()
	if err := s.repo.UpdateSermon(ctx, objID, bson.M{
		"published":    true,
		"published_at": now,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish sermon: %v", err)
	}
	sermon.Published = true
	sermon.PublishedAt = &now

	if s.revalidator != nil {
		if err := s.revalidator.Revalidate("/sermons/" + sermon.Slug); err != nil {
			logrus.WithError(err).WithField("slug", sermon.Slug).Warn("Frontend revalidation failed")
		}
	}

	logger.Log.WithField("sermon_id", id).Info("Sermon published")
	return sermon, nil
}

// Slugify turns a title into a URL-safe slug.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
