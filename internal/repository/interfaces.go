package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
)

// Implementations return domain.ErrNotFound when a lookup by key finds no row.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByNovaID(ctx context.Context, novaID string) (*domain.User, error)
	NovaIDExists(ctx context.Context, novaID string) (bool, error)
	List(ctx context.Context, role domain.Role) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByUser removes every session of the user and returns their ids.
	DeleteByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type EnrollmentRepository interface {
	Enroll(ctx context.Context, userID, courseID uuid.UUID) error
	IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
	CourseIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CountByCourse(ctx context.Context, courseID uuid.UUID) (int64, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CourseFilter narrows course listings. Zero values match everything.
type CourseFilter struct {
	CategoryID   uuid.UUID
	InstructorID uuid.UUID
}

type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	List(ctx context.Context, filter CourseFilter) ([]*domain.Course, error)
	Update(ctx context.Context, course *domain.Course) error
	ReplaceInstructors(ctx context.Context, course *domain.Course, instructors []domain.User) error
	ReplaceVideos(ctx context.Context, course *domain.Course, videos []domain.Live) error
	Delete(ctx context.Context, id uuid.UUID) error
	IDsByCategory(ctx context.Context, categoryIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

type LiveRepository interface {
	Create(ctx context.Context, live *domain.Live) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Live, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Live, error)
	List(ctx context.Context) ([]*domain.Live, error)
	Update(ctx context.Context, live *domain.Live) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *domain.Purchase) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, error)
	List(ctx context.Context, filter domain.PurchaseFilter) ([]*domain.Purchase, error)
	Update(ctx context.Context, purchase *domain.Purchase) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	List(ctx context.Context, studentID uuid.UUID) ([]*domain.Payment, error)
	Update(ctx context.Context, payment *domain.Payment) error
}

type Repositories struct {
	User       UserRepository
	Session    SessionRepository
	Enrollment EnrollmentRepository
	Category   CategoryRepository
	Course     CourseRepository
	Live       LiveRepository
	Purchase   PurchaseRepository
	Payment    PaymentRepository
}
