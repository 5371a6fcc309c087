package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/repository"
	"github.com/novaacademy/aula-virtual/internal/storage"
	"github.com/novaacademy/aula-virtual/internal/validation"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const maxAvatarBytes = 2 << 20

var avatarTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var ErrUnsupportedAvatar = errors.New("avatar must be a png, jpeg, webp or gif image up to 2MB")

type UserService struct {
	userRepo       repository.UserRepository
	sessionRepo    repository.SessionRepository
	sessions       SessionCache
	enrollmentRepo repository.EnrollmentRepository
	courseRepo     repository.CourseRepository
	storage        storage.ObjectStorage
	logger         *zap.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	enrollmentRepo repository.EnrollmentRepository,
	courseRepo repository.CourseRepository,
	sessions SessionCache,
	store storage.ObjectStorage,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		sessionRepo:    sessionRepo,
		sessions:       sessions,
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		storage:        store,
		logger:         logger,
	}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

func (s *UserService) Create(ctx context.Context, input domain.UserInput) (*domain.User, error) {
	if err := validation.Struct(input); err != nil {
		return nil, invalid(err)
	}

	email := normalizeEmail(*input.Email)
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	novaID, err := s.resolveNovaID(ctx, input, *input.Name, email)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(*input.Name),
		NovaID:       novaID,
		Email:        email,
		Role:         *input.Role,
		AvatarURL:    input.AvatarURL,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.CountryCode != nil {
		user.CountryCode = *input.CountryCode
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	user.EnrolledCourseIDs = []uuid.UUID{}
	return user, nil
}

func (s *UserService) resolveNovaID(ctx context.Context, input domain.UserInput, name, email string) (string, error) {
	if input.NovaID == nil || *input.NovaID == "" {
		return uniqueNovaID(ctx, name, email, s.userRepo.NovaIDExists)
	}

	taken, err := s.userRepo.NovaIDExists(ctx, *input.NovaID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", domain.ErrNovaIDExists
	}
	return *input.NovaID, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withEnrollments(ctx, user)
}

func (s *UserService) GetByNovaID(ctx context.Context, novaID string) (*domain.User, error) {
	user, err := s.userRepo.GetByNovaID(ctx, novaID)
	if err != nil {
		return nil, err
	}
	return s.withEnrollments(ctx, user)
}

func (s *UserService) withEnrollments(ctx context.Context, user *domain.User) (*domain.User, error) {
	ids, err := s.enrollmentRepo.CourseIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	user.EnrolledCourseIDs = ids
	return user, nil
}

func (s *UserService) List(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	if role != "" && !role.IsValid() {
		return nil, domain.ErrInvalidRole
	}
	return s.userRepo.List(ctx, role)
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, input domain.UserInput) (*domain.User, error) {
	if err := validation.Partial(input); err != nil {
		return nil, invalid(err)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email != user.Email {
			if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
				return nil, domain.ErrEmailExists
			} else if !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}
	if input.NovaID != nil && *input.NovaID != user.NovaID {
		taken, err := s.userRepo.NovaIDExists(ctx, *input.NovaID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.ErrNovaIDExists
		}
		user.NovaID = *input.NovaID
	}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.CountryCode != nil {
		user.CountryCode = *input.CountryCode
	}
	roleChanged := input.Role != nil && *input.Role != user.Role
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.AvatarURL != nil {
		user.AvatarURL = input.AvatarURL
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	// Tokens carry the role, so they are reissued on the next login.
	if roleChanged {
		if err := s.endSessions(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	return s.withEnrollments(ctx, user)
}

// Delete removes the user and returns the record as it was.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.endSessions(ctx, id); err != nil {
		return nil, err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return user, nil
}

// endSessions revokes every session of the user, including ones the session
// cache still vouches for.
func (s *UserService) endSessions(ctx context.Context, userID uuid.UUID) error {
	ids, err := s.sessionRepo.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}

	var errs error
	for _, id := range ids {
		errs = multierr.Append(errs, s.sessions.Forget(ctx, id))
	}
	if errs != nil {
		s.logger.Error("[UserService.endSessions] failed to forget cached sessions",
			zap.String("userID", userID.String()), zap.Error(errs))
		return errs
	}
	if len(ids) > 0 {
		s.logger.Info("[UserService.endSessions] sessions revoked",
			zap.String("userID", userID.String()), zap.Int("count", len(ids)))
	}
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	if len(newPassword) < 6 {
		return invalid(validation.Errors{{Field: "newPassword", Rule: "min=6"}})
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now()
	return s.userRepo.Update(ctx, user)
}

// Enroll gives the user access to a course and returns their enrolled course
// ids. Enrolling twice is a no-op.
func (s *UserService) Enroll(ctx context.Context, userID, courseID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnknownCourse
		}
		return nil, err
	}

	if err := s.enrollmentRepo.Enroll(ctx, userID, courseID); err != nil {
		return nil, err
	}
	return s.EnrolledCourses(ctx, userID)
}

func (s *UserService) EnrolledCourses(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.enrollmentRepo.CourseIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

// UpdateAvatar uploads a new avatar image and points the user at it. The
// previous object is removed best effort.
func (s *UserService) UpdateAvatar(ctx context.Context, id uuid.UUID, contentType string, data []byte) (*domain.User, error) {
	ext, ok := avatarTypes[contentType]
	if !ok || len(data) == 0 || len(data) > maxAvatarBytes {
		return nil, ErrUnsupportedAvatar
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := path.Join("avatars", id.String(), uuid.NewString()+ext)
	url, err := s.storage.Put(ctx, key, contentType, data)
	if err != nil {
		return nil, err
	}

	previous := user.AvatarURL
	user.AvatarURL = &url
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if previous != nil {
		if oldKey, ok := avatarKey(*previous); ok {
			if err := s.storage.Delete(ctx, oldKey); err != nil {
				s.logger.Warn("[UserService.UpdateAvatar] failed to delete previous avatar",
					zap.String("key", oldKey), zap.Error(err))
			}
		}
	}

	return s.withEnrollments(ctx, user)
}

func avatarKey(url string) (string, bool) {
	i := strings.Index(url, "avatars/")
	if i < 0 {
		return "", false
	}
	return url[i:], true
}
