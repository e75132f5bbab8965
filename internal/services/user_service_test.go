package services

import (
	"context"
	"testing"

	"github.com/AndersonAGodoy/noah-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserStore struct {
	users []*models.User
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = primitive.NewObjectID()
	f.users = append(f.users, user)
	return user, nil
}

func (f *fakeUserStore) CountUsers(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func TestRegisterUserBootstrap(t *testing.T) {
	store := &fakeUserStore{}
	svc := NewUserService(store)

	created, err := svc.RegisterUser(context.Background(), &models.User{
		Name:  "First Admin",
		Email: "admin@church.org",
	}, "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "admin", created.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.HashedPassword), []byte("s3cret-pass")))
}

func TestRegisterUserClosedAfterFirstAccount(t *testing.T) {
	store := &fakeUserStore{}
	svc := NewUserService(store)

	_, err := svc.RegisterUser(context.Background(), &models.User{
		Name:  "First Admin",
		Email: "admin@church.org",
	}, "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.RegisterUser(context.Background(), &models.User{
		Name:  "Second Admin",
		Email: "intruder@example.com",
	}, "whatever")
	require.ErrorIs(t, err, ErrRegistrationClosed)
	assert.Len(t, store.users, 1)
}

func TestCreateUserAfterBootstrap(t *testing.T) {
	store := &fakeUserStore{}
	svc := NewUserService(store)

	_, err := svc.RegisterUser(context.Background(), &models.User{
		Name:  "First Admin",
		Email: "admin@church.org",
	}, "s3cret-pass")
	require.NoError(t, err)

	created, err := svc.CreateUser(context.Background(), &models.User{
		Name:  "Second Admin",
		Email: "second@church.org",
	}, "another-pass")
	require.NoError(t, err)
	assert.Equal(t, "admin", created.Role)
	assert.Len(t, store.users, 2)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	store := &fakeUserStore{}
	svc := NewUserService(store)

	_, err := svc.CreateUser(context.Background(), &models.User{
		Name:  "First Admin",
		Email: "admin@church.org",
	}, "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), &models.User{
		Name:  "Clone",
		Email: "admin@church.org",
	}, "other-pass")
	assert.Error(t, err)
}

func TestAuthenticateUser(t *testing.T) {
	store := &fakeUserStore{}
	svc := NewUserService(store)

	_, err := svc.CreateUser(context.Background(), &models.User{
		Name:  "Admin",
		Email: "admin@church.org",
	}, "s3cret-pass")
	require.NoError(t, err)

	user, err := svc.AuthenticateUser(context.Background(), "admin@church.org", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "admin@church.org", user.Email)

	_, err = svc.AuthenticateUser(context.Background(), "admin@church.org", "wrong-pass")
	assert.Error(t, err)

	_, err = svc.AuthenticateUser(context.Background(), "nobody@church.org", "s3cret-pass")
	assert.Error(t, err)
}
