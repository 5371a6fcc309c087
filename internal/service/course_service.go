package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/repository"
	"github.com/novaacademy/aula-virtual/internal/validation"
)

type CourseService struct {
	courseRepo     repository.CourseRepository
	categoryRepo   repository.CategoryRepository
	userRepo       repository.UserRepository
	liveRepo       repository.LiveRepository
	enrollmentRepo repository.EnrollmentRepository
}

func NewCourseService(
	courseRepo repository.CourseRepository,
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
	liveRepo repository.LiveRepository,
	enrollmentRepo repository.EnrollmentRepository,
) *CourseService {
	return &CourseService{
		courseRepo:     courseRepo,
		categoryRepo:   categoryRepo,
		userRepo:       userRepo,
		liveRepo:       liveRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func (s *CourseService) Create(ctx context.Context, input domain.CourseInput) (*domain.Course, error) {
	if err := validation.Struct(input); err != nil {
		return nil, invalid(err)
	}
	if input.Price.IsNegative() {
		return nil, invalid(validation.Errors{{Field: "price", Rule: "gte=0"}})
	}
	if err := s.checkCategory(ctx, *input.CategoryID); err != nil {
		return nil, err
	}

	instructors, err := s.resolveInstructors(ctx, input.InstructorIDs)
	if err != nil {
		return nil, err
	}
	videos, err := s.resolveVideos(ctx, input.VideoIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	course := &domain.Course{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(*input.Name),
		Description: *input.Description,
		ImageURL:    input.ImageURL,
		Difficulty:  *input.Difficulty,
		Price:       input.Price.Round(2),
		CategoryID:  *input.CategoryID,
		Instructors: instructors,
		Videos:      videos,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.Duration != nil {
		course.Duration = *input.Duration
	}
	if input.Rating != nil {
		course.Rating = *input.Rating
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) checkCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCategoryNotFound
		}
		return err
	}
	return nil
}

// resolveInstructors loads the users behind ids. Every one of them must exist
// and be a teacher.
func (s *CourseService) resolveInstructors(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	ids = dedupe(ids)
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(users) != len(ids) {
		return nil, domain.ErrUnknownInstructor
	}

	byID := make(map[uuid.UUID]*domain.User, len(users))
	for _, u := range users {
		if u.Role != domain.RoleTeacher {
			return nil, domain.ErrUnknownInstructor
		}
		byID[u.ID] = u
	}

	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, *byID[id])
	}
	return out, nil
}

func (s *CourseService) resolveVideos(ctx context.Context, ids []uuid.UUID) ([]domain.Live, error) {
	ids = dedupe(ids)
	lives, err := s.liveRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(lives) != len(ids) {
		return nil, domain.ErrUnknownVideo
	}

	byID := make(map[uuid.UUID]*domain.Live, len(lives))
	for _, l := range lives {
		byID[l.ID] = l
	}

	out := make([]domain.Live, 0, len(ids))
	for _, id := range ids {
		out = append(out, *byID[id])
	}
	return out, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *CourseService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

func (s *CourseService) List(ctx context.Context, filter repository.CourseFilter) ([]*domain.Course, error) {
	return s.courseRepo.List(ctx, filter)
}

// Details gathers what a course page shows: the course, its category, how
// many students are enrolled and how many of its videos are Zoom sessions.
func (s *CourseService) Details(ctx context.Context, id uuid.UUID) (*domain.CourseDetails, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details := &domain.CourseDetails{Course: *course}

	category, err := s.categoryRepo.GetByID(ctx, course.CategoryID)
	switch {
	case err == nil:
		details.Category = category
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	details.StudentCount, err = s.enrollmentRepo.CountByCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, v := range course.Videos {
		if v.IsZoomLive {
			details.ZoomLiveCount++
		}
	}
	return details, nil
}

func (s *CourseService) Update(ctx context.Context, id uuid.UUID, input domain.CourseInput) (*domain.Course, error) {
	if err := validation.Partial(input); err != nil {
		return nil, invalid(err)
	}

	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		course.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		course.Description = *input.Description
	}
	if input.ImageURL != nil {
		course.ImageURL = input.ImageURL
	}
	if input.Difficulty != nil {
		course.Difficulty = *input.Difficulty
	}
	if input.Duration != nil {
		course.Duration = *input.Duration
	}
	if input.Rating != nil {
		course.Rating = *input.Rating
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, invalid(validation.Errors{{Field: "price", Rule: "gte=0"}})
		}
		course.Price = input.Price.Round(2)
	}
	if input.CategoryID != nil && *input.CategoryID != course.CategoryID {
		if err := s.checkCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		course.CategoryID = *input.CategoryID
	}

	var instructors []domain.User
	if input.InstructorIDs != nil {
		if instructors, err = s.resolveInstructors(ctx, input.InstructorIDs); err != nil {
			return nil, err
		}
	}
	var videos []domain.Live
	if input.VideoIDs != nil {
		if videos, err = s.resolveVideos(ctx, input.VideoIDs); err != nil {
			return nil, err
		}
	}

	course.UpdatedAt = time.Now()
	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	if input.InstructorIDs != nil {
		if err := s.courseRepo.ReplaceInstructors(ctx, course, instructors); err != nil {
			return nil, err
		}
	}
	if input.VideoIDs != nil {
		if err := s.courseRepo.ReplaceVideos(ctx, course, videos); err != nil {
			return nil, err
		}
	}

	return s.courseRepo.GetByID(ctx, id)
}

func (s *CourseService) Delete(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return course, nil
}
