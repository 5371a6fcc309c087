package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/repository"
	"github.com/novaacademy/aula-virtual/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService(t *testing.T) {
	env := newTestEnv(t)
	categories := env.services.Category
	ctx := context.Background()

	created, err := categories.Create(ctx, domain.CategoryInput{
		Name:        ptr("  Marketing  "),
		Description: ptr("Marketing digital"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Marketing", created.Name)
	assert.Empty(t, created.CourseIDs)

	_, err = categories.Create(ctx, domain.CategoryInput{Name: ptr("Marketing"), Description: ptr("otra")})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = categories.Create(ctx, domain.CategoryInput{Name: ptr("X")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	course := testutil.NewCourseBuilder().WithCategory(created).Build(t, env.db.DB)

	found, err := categories.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{course.ID}, found.CourseIDs)

	_, err = categories.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryNotEmpty)

	_, err = env.services.Course.Delete(ctx, course.ID)
	require.NoError(t, err)

	deleted, err := categories.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = categories.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCourseService_Create(t *testing.T) {
	env := newTestEnv(t)
	courses := env.services.Course
	ctx := context.Background()

	category := testutil.NewCategoryBuilder().Build(t, env.db.DB)
	teacher, _ := testutil.NewUserBuilder().WithRole(domain.RoleTeacher).Build(t, env.db.DB)
	student, _ := testutil.NewUserBuilder().WithRole(domain.RoleStudent).Build(t, env.db.DB)
	video := testutil.NewLiveBuilder().AsZoom().Build(t, env.db.DB)

	valid := func() domain.CourseInput {
		return domain.CourseInput{
			Name:          ptr("Excel para negocios"),
			Description:   ptr("Tablas dinámicas y más"),
			Difficulty:    ptr(domain.DifficultyIntermediate),
			Price:         ptr(decimal.RequireFromString("99.999")),
			CategoryID:    &category.ID,
			InstructorIDs: []uuid.UUID{teacher.ID, teacher.ID},
			VideoIDs:      []uuid.UUID{video.ID},
		}
	}

	tests := []struct {
		name    string
		mutate  func(in *domain.CourseInput)
		wantErr error
	}{
		{name: "valid"},
		{
			name:    "unknown category",
			mutate:  func(in *domain.CourseInput) { in.CategoryID = ptr(uuid.New()) },
			wantErr: domain.ErrCategoryNotFound,
		},
		{
			name:    "instructor must be a teacher",
			mutate:  func(in *domain.CourseInput) { in.InstructorIDs = []uuid.UUID{student.ID} },
			wantErr: domain.ErrUnknownInstructor,
		},
		{
			name:    "unknown video",
			mutate:  func(in *domain.CourseInput) { in.VideoIDs = []uuid.UUID{uuid.New()} },
			wantErr: domain.ErrUnknownVideo,
		},
		{
			name:    "negative price",
			mutate:  func(in *domain.CourseInput) { in.Price = ptr(decimal.NewFromInt(-1)) },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "bad difficulty",
			mutate:  func(in *domain.CourseInput) { in.Difficulty = ptr(domain.Difficulty("expert")) },
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid()
			if tt.mutate != nil {
				tt.mutate(&input)
			}

			course, err := courses.Create(ctx, input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString("100").Equal(course.Price), course.Price.String())
			assert.Equal(t, []uuid.UUID{teacher.ID}, course.InstructorIDs())

			stored, err := courses.GetByID(ctx, course.ID)
			require.NoError(t, err)
			require.Len(t, stored.Videos, 1)
			assert.Equal(t, video.ID, stored.Videos[0].ID)
		})
	}
}

func TestCourseService_UpdateListDetails(t *testing.T) {
	env := newTestEnv(t)
	courses := env.services.Course
	ctx := context.Background()

	teacher, _ := testutil.NewUserBuilder().WithRole(domain.RoleTeacher).Build(t, env.db.DB)
	other, _ := testutil.NewUserBuilder().WithRole(domain.RoleTeacher).Build(t, env.db.DB)
	zoom := testutil.NewLiveBuilder().AsZoom().Build(t, env.db.DB)
	recorded := testutil.NewLiveBuilder().Build(t, env.db.DB)
	course := testutil.NewCourseBuilder().WithInstructors(teacher).WithVideos(recorded).Build(t, env.db.DB)
	testutil.NewCourseBuilder().Build(t, env.db.DB)

	updated, err := courses.Update(ctx, course.ID, domain.CourseInput{
		Rating:        ptr(4.5),
		InstructorIDs: []uuid.UUID{other.ID},
		VideoIDs:      []uuid.UUID{zoom.ID, recorded.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 4.5, updated.Rating)
	assert.Equal(t, []uuid.UUID{other.ID}, updated.InstructorIDs())
	assert.Len(t, updated.Videos, 2)

	byOld, err := courses.List(ctx, repository.CourseFilter{InstructorID: teacher.ID})
	require.NoError(t, err)
	assert.Empty(t, byOld)

	byNew, err := courses.List(ctx, repository.CourseFilter{InstructorID: other.ID})
	require.NoError(t, err)
	require.Len(t, byNew, 1)

	byCategory, err := courses.List(ctx, repository.CourseFilter{CategoryID: course.CategoryID})
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)

	for i := 0; i < 3; i++ {
		s, _ := testutil.NewUserBuilder().Build(t, env.db.DB)
		testutil.Enroll(t, env.db.DB, s.ID, course.ID)
	}

	details, err := courses.Details(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), details.StudentCount)
	assert.Equal(t, 1, details.ZoomLiveCount)
	require.NotNil(t, details.Category)
	assert.Equal(t, course.CategoryID, details.Category.ID)

	_, err = courses.Details(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLiveService(t *testing.T) {
	env := newTestEnv(t)
	lives := env.services.Live
	ctx := context.Background()

	zoom, err := lives.Create(ctx, domain.LiveInput{
		Name:       ptr("Clase en vivo"),
		VideoURL:   ptr("https://zoom.us/j/123456"),
		IsZoomLive: ptr(true),
	})
	require.NoError(t, err)
	_, err = lives.Create(ctx, domain.LiveInput{
		Name:     ptr("Grabación"),
		VideoURL: ptr("https://videos.example.com/1.mp4"),
	})
	require.NoError(t, err)

	_, err = lives.Create(ctx, domain.LiveInput{Name: ptr("Sin URL")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	all, err := lives.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	zoomOnly, err := lives.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, zoomOnly, 1)
	assert.Equal(t, zoom.ID, zoomOnly[0].ID)

	updated, err := lives.Update(ctx, zoom.ID, domain.LiveInput{IsZoomLive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsZoomLive)

	removed, err := lives.Delete(ctx, zoom.ID)
	require.NoError(t, err)
	assert.Equal(t, zoom.ID, removed.ID)

	_, err = lives.GetByID(ctx, zoom.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
