package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"gorm.io/gorm"
)

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *purchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *domain.Purchase) error {
	return translate(r.db.WithContext(ctx).Create(purchase).Error)
}

func (r *purchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := r.db.WithContext(ctx).First(&purchase, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &purchase, nil
}

func (r *purchaseRepository) List(ctx context.Context, filter domain.PurchaseFilter) ([]*domain.Purchase, error) {
	var purchases []*domain.Purchase
	q := r.db.WithContext(ctx).Order("acquired_at DESC")
	if filter.StudentID != uuid.Nil {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	if filter.CourseID != uuid.Nil {
		q = q.Where("course_id = ?", filter.CourseID)
	}
	if err := q.Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *purchaseRepository) Update(ctx context.Context, purchase *domain.Purchase) error {
	return translate(r.db.WithContext(ctx).Save(purchase).Error)
}

func (r *purchaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.Purchase{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
