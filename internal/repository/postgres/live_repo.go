package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"gorm.io/gorm"
)

type liveRepository struct {
	db *gorm.DB
}

func NewLiveRepository(db *gorm.DB) *liveRepository {
	return &liveRepository{db: db}
}

func (r *liveRepository) Create(ctx context.Context, live *domain.Live) error {
	return translate(r.db.WithContext(ctx).Create(live).Error)
}

func (r *liveRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Live, error) {
	var live domain.Live
	err := r.db.WithContext(ctx).First(&live, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &live, nil
}

func (r *liveRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Live, error) {
	var lives []*domain.Live
	if len(ids) == 0 {
		return lives, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&lives).Error
	if err != nil {
		return nil, err
	}
	return lives, nil
}

func (r *liveRepository) List(ctx context.Context) ([]*domain.Live, error) {
	var lives []*domain.Live
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&lives).Error
	if err != nil {
		return nil, err
	}
	return lives, nil
}

func (r *liveRepository) Update(ctx context.Context, live *domain.Live) error {
	return translate(r.db.WithContext(ctx).Save(live).Error)
}

// Delete also detaches the video from every course that lists it.
func (r *liveRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM course_videos WHERE live_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Live{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
