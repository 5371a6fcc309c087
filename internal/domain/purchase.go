package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Purchase grants a student paid access to a course until RenewalDate.
type Purchase struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	SubscriptionID *string    `json:"subscriptionId"`
	AcquiredAt     time.Time  `json:"acquiredAt" gorm:"not null"`
	RenewalDate    *time.Time `json:"renewalDate"`
	StudentID      uuid.UUID  `json:"studentId" gorm:"type:uuid;not null;index:idx_purchases_student_course"`
	CourseID       uuid.UUID  `json:"courseId" gorm:"type:uuid;not null;index:idx_purchases_student_course"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ActiveAt reports whether the purchase still grants access at t.
func (p *Purchase) ActiveAt(t time.Time) bool {
	return p.RenewalDate != nil && p.RenewalDate.After(t)
}

type PurchaseInput struct {
	SubscriptionID *string    `json:"subscriptionId,omitempty"`
	AcquiredAt     *time.Time `json:"acquiredAt,omitempty"`
	RenewalDate    *time.Time `json:"renewalDate,omitempty"`
	StudentID      *uuid.UUID `json:"studentId,omitempty" validate:"required"`
	CourseID       *uuid.UUID `json:"courseId,omitempty" validate:"required"`
}

// PurchaseFilter narrows purchase listings. Zero values match everything.
type PurchaseFilter struct {
	StudentID uuid.UUID
	CourseID  uuid.UUID
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentApproved, PaymentRejected:
		return true
	}
	return false
}

type TransactionMetadata struct {
	IP           string `json:"ip"`
	Device       string `json:"device"`
	ExtraDetails string `json:"extraDetails,omitempty"`
}

type Payment struct {
	ID                 uuid.UUID                               `json:"id" gorm:"type:uuid;primaryKey"`
	StudentID          uuid.UUID                               `json:"studentId" gorm:"type:uuid;not null;index"`
	Amount             decimal.Decimal                         `json:"amount" gorm:"type:numeric(12,2);not null"`
	Reason             string                                  `json:"reason"`
	PaidAt             time.Time                               `json:"paidAt" gorm:"not null"`
	ExpiresAt          time.Time                               `json:"expiresAt" gorm:"not null"`
	Status             PaymentStatus                           `json:"status" gorm:"type:varchar(16);not null;index"`
	VoucherData        []byte                                  `json:"-"`
	VoucherContentType string                                  `json:"voucherContentType,omitempty"`
	Transaction        datatypes.JSONType[TransactionMetadata] `json:"transaction"`
	ReviewedBy         *uuid.UUID                              `json:"reviewedBy,omitempty" gorm:"type:uuid"`
	ReviewedAt         *time.Time                              `json:"reviewedAt,omitempty"`
	CreatedAt          time.Time                               `json:"createdAt"`
	UpdatedAt          time.Time                               `json:"updatedAt"`
}

func (p *Payment) HasVoucher() bool {
	return len(p.VoucherData) > 0
}
