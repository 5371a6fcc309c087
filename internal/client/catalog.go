package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

type CategoryClient struct {
	*resource[Category, CategoryInput]
}

type CourseClient struct {
	*resource[Course, CourseInput]
}

// FindWithDetails returns the course with its category, enrolled student
// count and number of Zoom sessions.
func (cc *CourseClient) FindWithDetails(ctx context.Context, id uuid.UUID) (*CourseDetails, error) {
	var out CourseDetails
	err := cc.c.do(ctx, cc.op("FindWithDetails"), request{
		method: http.MethodGet,
		path:   cc.base + "/view-details/" + id.String(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (cc *CourseClient) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]Course, error) {
	return cc.list(ctx, "FindByCategory", url.Values{"categoryId": {categoryID.String()}})
}

// FindByTeacher returns the courses the teacher is an instructor of.
func (cc *CourseClient) FindByTeacher(ctx context.Context, teacherID uuid.UUID) ([]Course, error) {
	return cc.list(ctx, "FindByTeacher", url.Values{"teacherId": {teacherID.String()}})
}

type LiveClient struct {
	*resource[Live, LiveInput]
}

func (lc *LiveClient) FindZoomLives(ctx context.Context) ([]Live, error) {
	return lc.list(ctx, "FindZoomLives", url.Values{"zoom": {"true"}})
}
