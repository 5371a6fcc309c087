package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"gorm.io/gorm"
)

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *paymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return translate(r.db.WithContext(ctx).Create(payment).Error)
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

// List skips the voucher bytes; fetch a single payment to read them.
func (r *paymentRepository) List(ctx context.Context, studentID uuid.UUID) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	q := r.db.WithContext(ctx).Omit("voucher_data").Order("paid_at DESC")
	if studentID != uuid.Nil {
		q = q.Where("student_id = ?", studentID)
	}
	if err := q.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	return translate(r.db.WithContext(ctx).Save(payment).Error)
}
