package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/repository"
	"github.com/novaacademy/aula-virtual/internal/validation"
)

// PurchaseService manages course purchases. It does not enforce one purchase
// per student and course; callers check enrollment first.
type PurchaseService struct {
	purchaseRepo repository.PurchaseRepository
	userRepo     repository.UserRepository
	courseRepo   repository.CourseRepository
}

func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	userRepo repository.UserRepository,
	courseRepo repository.CourseRepository,
) *PurchaseService {
	return &PurchaseService{
		purchaseRepo: purchaseRepo,
		userRepo:     userRepo,
		courseRepo:   courseRepo,
	}
}

func (s *PurchaseService) Create(ctx context.Context, input domain.PurchaseInput) (*domain.Purchase, error) {
	if err := validation.Struct(input); err != nil {
		return nil, invalid(err)
	}
	if err := s.checkStudent(ctx, *input.StudentID); err != nil {
		return nil, err
	}
	if err := s.checkCourse(ctx, *input.CourseID); err != nil {
		return nil, err
	}

	now := time.Now()
	purchase := &domain.Purchase{
		ID:             uuid.New(),
		SubscriptionID: input.SubscriptionID,
		AcquiredAt:     now,
		RenewalDate:    input.RenewalDate,
		StudentID:      *input.StudentID,
		CourseID:       *input.CourseID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if input.AcquiredAt != nil {
		purchase.AcquiredAt = *input.AcquiredAt
	}

	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, err
	}
	return purchase, nil
}

func (s *PurchaseService) checkStudent(ctx context.Context, id uuid.UUID) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUnknownStudent
		}
		return err
	}
	return nil
}

func (s *PurchaseService) checkCourse(ctx context.Context, id uuid.UUID) error {
	if _, err := s.courseRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUnknownCourse
		}
		return err
	}
	return nil
}

func (s *PurchaseService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, error) {
	return s.purchaseRepo.GetByID(ctx, id)
}

func (s *PurchaseService) List(ctx context.Context, filter domain.PurchaseFilter) ([]*domain.Purchase, error) {
	return s.purchaseRepo.List(ctx, filter)
}

func (s *PurchaseService) Update(ctx context.Context, id uuid.UUID, input domain.PurchaseInput) (*domain.Purchase, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.SubscriptionID != nil {
		purchase.SubscriptionID = input.SubscriptionID
	}
	if input.AcquiredAt != nil {
		purchase.AcquiredAt = *input.AcquiredAt
	}
	if input.RenewalDate != nil {
		purchase.RenewalDate = input.RenewalDate
	}
	if input.StudentID != nil && *input.StudentID != purchase.StudentID {
		if err := s.checkStudent(ctx, *input.StudentID); err != nil {
			return nil, err
		}
		purchase.StudentID = *input.StudentID
	}
	if input.CourseID != nil && *input.CourseID != purchase.CourseID {
		if err := s.checkCourse(ctx, *input.CourseID); err != nil {
			return nil, err
		}
		purchase.CourseID = *input.CourseID
	}
	purchase.UpdatedAt = time.Now()

	if err := s.purchaseRepo.Update(ctx, purchase); err != nil {
		return nil, err
	}
	return purchase, nil
}

func (s *PurchaseService) Delete(ctx context.Context, id uuid.UUID) (*domain.Purchase, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.purchaseRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return purchase, nil
}
