package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

type Course struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string          `json:"name" gorm:"not null"`
	Description string          `json:"description"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	Difficulty  Difficulty      `json:"difficulty" gorm:"type:varchar(16);not null"`
	Duration    string          `json:"duration"`
	Rating      float64         `json:"rating"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	CategoryID  uuid.UUID       `json:"categoryId" gorm:"type:uuid;index;not null"`
	Instructors []User          `json:"instructors" gorm:"many2many:course_instructors;"`
	Videos      []Live          `json:"videos" gorm:"many2many:course_videos;"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// InstructorIDs returns the ids of the course's instructors in order
func (c *Course) InstructorIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Instructors))
	for i, u := range c.Instructors {
		ids[i] = u.ID
	}
	return ids
}

// CourseInput carries the writable fields of a course. A nil InstructorIDs or
// VideoIDs leaves the association untouched; an empty slice clears it.
type CourseInput struct {
	Name          *string          `json:"name,omitempty" validate:"required,min=2"`
	Description   *string          `json:"description,omitempty" validate:"required"`
	ImageURL      *string          `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Difficulty    *Difficulty      `json:"difficulty,omitempty" validate:"required,oneof=beginner intermediate advanced"`
	Duration      *string          `json:"duration,omitempty"`
	Rating        *float64         `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Price         *decimal.Decimal `json:"price,omitempty" validate:"required"`
	CategoryID    *uuid.UUID       `json:"categoryId,omitempty" validate:"required"`
	InstructorIDs []uuid.UUID      `json:"instructorIds"`
	VideoIDs      []uuid.UUID      `json:"videoIds"`
}

// CourseDetails is a course together with the records a detail page shows.
type CourseDetails struct {
	Course        Course    `json:"course"`
	Category      *Category `json:"category,omitempty"`
	StudentCount  int64     `json:"studentCount"`
	ZoomLiveCount int       `json:"zoomLiveCount"`
}

type Category struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Derived from courses.category_id on every read.
	CourseIDs []uuid.UUID `json:"courseIds" gorm:"-"`
}

type CategoryInput struct {
	Name        *string `json:"name,omitempty" validate:"required,min=2"`
	Description *string `json:"description,omitempty" validate:"required"`
	ImageURL    *string `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

// Live is a course video: either a recording or a link to a Zoom session.
type Live struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Thumbnail   string    `json:"thumbnail"`
	VideoURL    string    `json:"videoUrl" gorm:"not null"`
	IsZoomLive  bool      `json:"isZoomLive"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type LiveInput struct {
	Name        *string `json:"name,omitempty" validate:"required"`
	Thumbnail   *string `json:"thumbnail,omitempty"`
	VideoURL    *string `json:"videoUrl,omitempty" validate:"required,url"`
	IsZoomLive  *bool   `json:"isZoomLive,omitempty"`
	Description *string `json:"description,omitempty"`
}
