package handlers_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"todos-app/backend/internal/middleware"
	"todos-app/backend/internal/models"
	"todos-app/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser injects an authenticated user the way the auth guard would.
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, user)
		c.Next()
	}
}

func testUser() *models.User {
	return &models.User{
		ID:             uuid.Must(uuid.NewV4()),
		Name:           "Ann",
		Email:          "ann@x.com",
		ProfilePicture: models.DefaultProfilePicture,
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// mockTaskService lets handler tests script the service layer.
type mockTaskService struct {
	createFn func(ctx context.Context, owner uuid.UUID, in services.CreateTaskInput) (*models.Task, error)
	listFn   func(ctx context.Context, owner uuid.UUID) ([]models.Task, error)
	getFn    func(ctx context.Context, owner, id uuid.UUID) (*models.Task, error)
	updateFn func(ctx context.Context, owner, id uuid.UUID, in services.UpdateTaskInput) (*models.Task, error)
	deleteFn func(ctx context.Context, owner, id uuid.UUID) error
}

func (m *mockTaskService) Create(ctx context.Context, owner uuid.UUID, in services.CreateTaskInput) (*models.Task, error) {
	return m.createFn(ctx, owner, in)
}

func (m *mockTaskService) List(ctx context.Context, owner uuid.UUID) ([]models.Task, error) {
	return m.listFn(ctx, owner)
}

func (m *mockTaskService) Get(ctx context.Context, owner, id uuid.UUID) (*models.Task, error) {
	return m.getFn(ctx, owner, id)
}

func (m *mockTaskService) Update(ctx context.Context, owner, id uuid.UUID, in services.UpdateTaskInput) (*models.Task, error) {
	return m.updateFn(ctx, owner, id, in)
}

func (m *mockTaskService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return m.deleteFn(ctx, owner, id)
}
