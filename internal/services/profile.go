package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"todos-app/backend/internal/apperr"
	"todos-app/backend/internal/assets"
	"todos-app/backend/internal/models"
	"todos-app/backend/internal/repositories"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// CleanupQueue hands best-effort work to the background worker when
// the inline attempt fails. Implemented by worker.Queue.
type CleanupQueue interface {
	EnqueueAssetCleanup(ctx context.Context, url string) error
	EnqueueTaskPurge(ctx context.Context, owner uuid.UUID) error
}

// ImageUpload is a pending profile-picture upload read off a multipart
// request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// UpdateProfileInput is a partial update. A password change requires
// both CurrentPassword and NewPassword, carried in the request body
// only.
type UpdateProfileInput struct {
	Name            *string
	Email           *string
	CurrentPassword *string
	NewPassword     *string
	Image           *ImageUpload
}

// ProfileService operates exclusively on the requester's own user
// record; there is no path to address another user's profile.
type ProfileService struct {
	users   repositories.UserRepository
	tasks   repositories.TaskRepository
	auth    *AuthService
	assets  assets.Store
	cleanup CleanupQueue
	logger  *zap.Logger
}

func NewProfileService(
	users repositories.UserRepository,
	tasks repositories.TaskRepository,
	auth *AuthService,
	store assets.Store,
	cleanup CleanupQueue,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		users:   users,
		tasks:   tasks,
		auth:    auth,
		assets:  store,
		cleanup: cleanup,
		logger:  logger,
	}
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || utf8.RuneCountInString(name) > 50 {
			return nil, apperr.NewValidation(apperr.Violation("name", "must be between 1 and 50 characters"))
		}
		user.Name = name
	}

	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if err := checkStruct(struct {
			Email string `json:"email" validate:"required,email"`
		}{Email: email}); err != nil {
			return nil, err
		}
		if email != user.Email {
			if _, err := s.users.FindByEmail(ctx, email); err == nil {
				return nil, apperr.ErrConflict
			} else if !errors.Is(err, apperr.ErrNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}

	if in.CurrentPassword != nil || in.NewPassword != nil {
		if in.CurrentPassword == nil || in.NewPassword == nil {
			return nil, apperr.NewValidation(
				apperr.Violation("currentPassword", "is required to change the password"),
				apperr.Violation("newPassword", "is required to change the password"),
			)
		}
		if !CheckPassword(user.Password, *in.CurrentPassword) {
			return nil, apperr.ErrInvalidCredentials
		}
		if len(*in.NewPassword) < 6 {
			return nil, apperr.NewValidation(apperr.Violation("newPassword", "must be at least 6 characters"))
		}
		hash, err := s.auth.HashPassword(*in.NewPassword)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if in.Image != nil {
		url, err := s.assets.Upload(ctx, in.Image.Filename, in.Image.ContentType, in.Image.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: hosted image upload: %v", apperr.ErrInternal, err)
		}
		s.deleteAssetBestEffort(ctx, user.ProfilePicture)
		user.ProfilePicture = url
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete cascades: owned tasks first, then the hosted image
// (best-effort), then the user record. There is no cross-record
// transaction; a crash mid-sequence is repaired by re-running the
// delete or by the purge job.
func (s *ProfileService) Delete(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := s.tasks.DeleteByOwner(ctx, userID); err != nil {
		s.logger.Error("task sweep failed during account deletion, scheduling purge",
			zap.String("user_id", userID.String()), zap.Error(err))
		if qerr := s.cleanup.EnqueueTaskPurge(ctx, userID); qerr != nil {
			return err
		}
	}

	s.deleteAssetBestEffort(ctx, user.ProfilePicture)

	return s.users.Delete(ctx, userID)
}

func (s *ProfileService) deleteAssetBestEffort(ctx context.Context, url string) {
	if url == "" || url == models.DefaultProfilePicture {
		return
	}
	if err := s.assets.Delete(ctx, url); err != nil {
		s.logger.Warn("hosted image deletion failed, scheduling cleanup",
			zap.String("url", url), zap.Error(err))
		if qerr := s.cleanup.EnqueueAssetCleanup(ctx, url); qerr != nil {
			s.logger.Error("failed to enqueue asset cleanup", zap.String("url", url), zap.Error(qerr))
		}
	}
}
