package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/repository"
	"github.com/novaacademy/aula-virtual/internal/validation"
)

// CategoryService manages categories. A category's CourseIDs are always read
// from the courses that point at it; nothing stores them.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	courseRepo   repository.CourseRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository, courseRepo repository.CourseRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		courseRepo:   courseRepo,
	}
}

func (s *CategoryService) Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error) {
	if err := validation.Struct(input); err != nil {
		return nil, invalid(err)
	}

	now := time.Now()
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(*input.Name),
		Description: *input.Description,
		ImageURL:    input.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
		CourseIDs:   []uuid.UUID{},
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachCourseIDs(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.attachCourseIDs(ctx, categories...); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CategoryService) attachCourseIDs(ctx context.Context, categories ...*domain.Category) error {
	ids := make([]uuid.UUID, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}

	byCategory, err := s.courseRepo.IDsByCategory(ctx, ids)
	if err != nil {
		return err
	}

	for _, c := range categories {
		c.CourseIDs = byCategory[c.ID]
		if c.CourseIDs == nil {
			c.CourseIDs = []uuid.UUID{}
		}
	}
	return nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, input domain.CategoryInput) (*domain.Category, error) {
	if err := validation.Partial(input); err != nil {
		return nil, invalid(err)
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		category.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.ImageURL != nil {
		category.ImageURL = input.ImageURL
	}
	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	if err := s.attachCourseIDs(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete refuses to remove a category that still has courses.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.courseRepo.CountByCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, domain.ErrCategoryNotEmpty
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	category.CourseIDs = []uuid.UUID{}
	return category, nil
}
