package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/repository/postgres"
	"github.com/novaacademy/aula-virtual/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollmentRepository(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewEnrollmentRepository(testDB.DB)
	ctx := context.Background()

	student, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	first := testutil.NewCourseBuilder().Build(t, testDB.DB)
	second := testutil.NewCourseBuilder().Build(t, testDB.DB)

	enrolled, err := repo.IsEnrolled(ctx, student.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, enrolled)

	require.NoError(t, repo.Enroll(ctx, student.ID, first.ID))
	require.NoError(t, repo.Enroll(ctx, student.ID, first.ID), "enrolling twice is not an error")
	require.NoError(t, repo.Enroll(ctx, student.ID, second.ID))

	enrolled, err = repo.IsEnrolled(ctx, student.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)

	ids, err := repo.CourseIDs(ctx, student.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, ids)

	count, err := repo.CountByCourse(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPurchaseRepository_List(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewPurchaseRepository(testDB.DB)
	ctx := context.Background()

	ana, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	luis, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	excel := testutil.NewCourseBuilder().Build(t, testDB.DB)
	python := testutil.NewCourseBuilder().Build(t, testDB.DB)

	testutil.NewPurchaseBuilder(ana.ID, excel.ID).Build(t, testDB.DB)
	testutil.NewPurchaseBuilder(ana.ID, python.ID).Build(t, testDB.DB)
	testutil.NewPurchaseBuilder(luis.ID, excel.ID).Build(t, testDB.DB)

	tests := []struct {
		name   string
		filter domain.PurchaseFilter
		want   int
	}{
		{name: "everything", want: 3},
		{name: "by student", filter: domain.PurchaseFilter{StudentID: ana.ID}, want: 2},
		{name: "by course", filter: domain.PurchaseFilter{CourseID: excel.ID}, want: 2},
		{name: "by both", filter: domain.PurchaseFilter{StudentID: luis.ID, CourseID: excel.ID}, want: 1},
		{name: "no match", filter: domain.PurchaseFilter{StudentID: luis.ID, CourseID: python.ID}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), domain.ErrNotFound)

	p, err := repo.GetByID(ctx, uuid.New())
	assert.Nil(t, p)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	renewal := time.Now().Add(time.Hour)
	mine, err := repo.List(ctx, domain.PurchaseFilter{StudentID: luis.ID})
	require.NoError(t, err)
	mine[0].RenewalDate = &renewal
	require.NoError(t, repo.Update(ctx, mine[0]))

	stored, err := repo.GetByID(ctx, mine[0].ID)
	require.NoError(t, err)
	assert.True(t, stored.ActiveAt(time.Now()))
}
