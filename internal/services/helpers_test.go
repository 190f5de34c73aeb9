package services_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"todos-app/backend/internal/models"
	"todos-app/backend/internal/repositories"
	"todos-app/backend/internal/services"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A pooled second connection would see a different in-memory DB.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}))
	return db
}

func newAuthService(t *testing.T, db *gorm.DB) (*services.AuthService, repositories.UserRepository) {
	t.Helper()

	users := repositories.NewUserRepository(db)
	tokens := services.NewTokenService("test-secret", 24*time.Hour)
	return services.NewAuthService(users, tokens, 4), users
}

func signupUser(t *testing.T, auth *services.AuthService, name, email string) *models.User {
	t.Helper()

	user, _, err := auth.Signup(context.Background(), services.SignupInput{
		Name:     name,
		Email:    email,
		Password: "secret1",
	})
	require.NoError(t, err)
	return user
}

func futureDate() *time.Time {
	d := time.Now().Add(24 * time.Hour)
	return &d
}

// fakeAssetStore records calls and can be told to fail either side.
type fakeAssetStore struct {
	uploads   []string
	deletes   []string
	uploadErr error
	deleteErr error
}

func (f *fakeAssetStore) Upload(_ context.Context, name, _ string, body io.Reader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	if body != nil {
		_, _ = io.Copy(io.Discard, body)
	}
	url := "https://assets.test/" + name
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeAssetStore) Delete(_ context.Context, url string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, url)
	return nil
}

// fakeCleanupQueue records enqueued jobs.
type fakeCleanupQueue struct {
	assetURLs   []string
	purgeOwners []uuid.UUID
	enqueueErr  error
}

func (f *fakeCleanupQueue) EnqueueAssetCleanup(_ context.Context, url string) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.assetURLs = append(f.assetURLs, url)
	return nil
}

func (f *fakeCleanupQueue) EnqueueTaskPurge(_ context.Context, owner uuid.UUID) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.purgeOwners = append(f.purgeOwners, owner)
	return nil
}

var errAssetBackend = errors.New("asset backend unavailable")
