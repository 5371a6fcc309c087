package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *courseRepository {
	return &courseRepository{db: db}
}

// Create inserts the course row and links the instructors and videos it
// already carries.
func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		instructors, videos := course.Instructors, course.Videos
		if err := tx.Omit(clause.Associations).Create(course).Error; err != nil {
			return err
		}
		if len(instructors) > 0 {
			if err := tx.Model(course).Association("Instructors").Replace(instructors); err != nil {
				return err
			}
		}
		if len(videos) > 0 {
			if err := tx.Model(course).Association("Videos").Replace(videos); err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err)
}

func (r *courseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	var course domain.Course
	err := r.db.WithContext(ctx).
		Preload("Instructors").
		Preload("Videos").
		First(&course, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &course, nil
}

func (r *courseRepository) List(ctx context.Context, filter repository.CourseFilter) ([]*domain.Course, error) {
	var courses []*domain.Course
	q := r.db.WithContext(ctx).
		Preload("Instructors").
		Preload("Videos").
		Order("courses.created_at DESC")
	if filter.CategoryID != uuid.Nil {
		q = q.Where("courses.category_id = ?", filter.CategoryID)
	}
	if filter.InstructorID != uuid.Nil {
		q = q.Where("courses.id IN (?)",
			r.db.Table("course_instructors").Select("course_id").Where("user_id = ?", filter.InstructorID))
	}
	if err := q.Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) Update(ctx context.Context, course *domain.Course) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(course).Error)
}

func (r *courseRepository) ReplaceInstructors(ctx context.Context, course *domain.Course, instructors []domain.User) error {
	assoc := r.db.WithContext(ctx).Model(course).Association("Instructors")
	if len(instructors) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(instructors)
}

func (r *courseRepository) ReplaceVideos(ctx context.Context, course *domain.Course, videos []domain.Live) error {
	assoc := r.db.WithContext(ctx).Model(course).Association("Videos")
	if len(videos) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(videos)
}

// Delete removes the course, its association rows and its enrollments.
// Purchases are kept as billing history.
func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course := &domain.Course{ID: id}
		if err := tx.Model(course).Association("Instructors").Clear(); err != nil {
			return err
		}
		if err := tx.Model(course).Association("Videos").Clear(); err != nil {
			return err
		}
		if err := tx.Delete(&domain.Enrollment{}, "course_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Course{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

type courseCategoryRow struct {
	ID         uuid.UUID
	CategoryID uuid.UUID
}

func (r *courseRepository) IDsByCategory(ctx context.Context, categoryIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return out, nil
	}

	var rows []courseCategoryRow
	err := r.db.WithContext(ctx).
		Model(&domain.Course{}).
		Select("id", "category_id").
		Where("category_id IN ?", categoryIDs).
		Order("created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.CategoryID] = append(out[row.CategoryID], row.ID)
	}
	return out, nil
}

func (r *courseRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Course{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}
