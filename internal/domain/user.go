package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	NovaID       string    `json:"novaId" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Phone        string    `json:"phone"`
	CountryCode  string    `json:"countryCode"`
	Role         Role      `json:"role" gorm:"type:varchar(16);not null"`
	AvatarURL    *string   `json:"avatarUrl,omitempty"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Filled by the service layer from enrollments, never persisted on the row.
	EnrolledCourseIDs []uuid.UUID `json:"enrolledCourseIds,omitempty" gorm:"-"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserSession is the server-side record of an issued access token. Its ID is
// the token's jti claim; deleting the row revokes the token.
type UserSession struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserInput carries the writable fields of a user. Nil fields are left
// untouched on update.
type UserInput struct {
	Name        *string `json:"name,omitempty" validate:"required,min=2"`
	Email       *string `json:"email,omitempty" validate:"required,email"`
	Password    *string `json:"password,omitempty" validate:"required,min=6"`
	Phone       *string `json:"phone,omitempty"`
	CountryCode *string `json:"countryCode,omitempty" validate:"omitempty,startswith=+"`
	Role        *Role   `json:"role,omitempty" validate:"required,oneof=admin teacher student"`
	NovaID      *string `json:"novaId,omitempty" validate:"omitempty,min=3,max=30"`
	AvatarURL   *string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

// Enrollment links a student to a course they may watch.
type Enrollment struct {
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;primaryKey"`
	CourseID  uuid.UUID `json:"courseId" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
}
