package repositories_test

import (
	"context"
	"testing"
	"time"

	"todos-app/backend/internal/apperr"
	"todos-app/backend/internal/models"
	"todos-app/backend/internal/repositories"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
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
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}))
	return db
}

func newUser(email string) *models.User {
	return &models.User{
		ID:             uuid.Must(uuid.NewV4()),
		Name:           "Ann",
		Email:          email,
		Password:       "hash",
		ProfilePicture: models.DefaultProfilePicture,
	}
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	users := repositories.NewUserRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, newUser("ann@x.com")))

	err := users.Create(ctx, newUser("ann@x.com"))
	assert.ErrorIs(t, err, apperr.ErrConflict, "the unique index maps to a conflict")
}

func TestUserRepository_FindMissing(t *testing.T) {
	users := repositories.NewUserRepository(newTestDB(t))
	ctx := context.Background()

	_, err := users.FindByID(ctx, uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = users.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUserRepository_DeleteMissing(t *testing.T) {
	users := repositories.NewUserRepository(newTestDB(t))

	err := users.Delete(context.Background(), uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func newTask(owner uuid.UUID, title string) *models.Task {
	return &models.Task{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      owner,
		Title:       title,
		Description: "d",
		Status:      models.StatusPending,
		Priority:    models.PriorityMedium,
		DueDate:     time.Now().Add(24 * time.Hour),
	}
}

func TestTaskRepository_OwnerScoping(t *testing.T) {
	db := newTestDB(t)
	users := repositories.NewUserRepository(db)
	tasks := repositories.NewTaskRepository(db)
	ctx := context.Background()

	ann := newUser("ann@x.com")
	bob := newUser("bob@x.com")
	require.NoError(t, users.Create(ctx, ann))
	require.NoError(t, users.Create(ctx, bob))

	task := newTask(bob.ID, "Bob's task")
	require.NoError(t, tasks.Create(ctx, task))

	_, err := tasks.FindByIDAndOwner(ctx, task.ID, ann.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound, "a foreign task must look missing")

	err = tasks.DeleteByIDAndOwner(ctx, task.ID, ann.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got, err := tasks.FindByIDAndOwner(ctx, task.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob's task", got.Title)
}

func TestTaskRepository_FindByOwnerOrder(t *testing.T) {
	db := newTestDB(t)
	users := repositories.NewUserRepository(db)
	tasks := repositories.NewTaskRepository(db)
	ctx := context.Background()

	owner := newUser("ann@x.com")
	require.NoError(t, users.Create(ctx, owner))

	older := newTask(owner.ID, "older")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := newTask(owner.ID, "newer")
	newer.CreatedAt = time.Now()
	require.NoError(t, tasks.Create(ctx, older))
	require.NoError(t, tasks.Create(ctx, newer))

	listed, err := tasks.FindByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "newer", listed[0].Title, "newest first")
}

func TestTaskRepository_DeleteByOwnerIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	users := repositories.NewUserRepository(db)
	tasks := repositories.NewTaskRepository(db)
	ctx := context.Background()

	owner := newUser("ann@x.com")
	require.NoError(t, users.Create(ctx, owner))
	require.NoError(t, tasks.Create(ctx, newTask(owner.ID, "a")))
	require.NoError(t, tasks.Create(ctx, newTask(owner.ID, "b")))

	count, err := tasks.DeleteByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = tasks.DeleteByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, count, "a second sweep deletes nothing and still succeeds")
}
