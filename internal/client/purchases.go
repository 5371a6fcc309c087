package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
)

type PurchaseClient struct {
	*resource[Purchase, PurchaseInput]
}

// Find lists purchases narrowed by the non-zero fields of filter.
func (pc *PurchaseClient) Find(ctx context.Context, filter domain.PurchaseFilter) ([]Purchase, error) {
	return pc.list(ctx, "Find", filterQuery(filter))
}

func (pc *PurchaseClient) FindByUser(ctx context.Context, studentID uuid.UUID) ([]Purchase, error) {
	return pc.list(ctx, "FindByUser", url.Values{"studentId": {studentID.String()}})
}

func (pc *PurchaseClient) FindByCourse(ctx context.Context, courseID uuid.UUID) ([]Purchase, error) {
	return pc.list(ctx, "FindByCourse", url.Values{"courseId": {courseID.String()}})
}

// Export downloads the matching purchases as an XLSX workbook.
func (pc *PurchaseClient) Export(ctx context.Context, filter domain.PurchaseFilter) ([]byte, error) {
	resp, err := pc.c.send(ctx, pc.op("Export"), request{
		method: http.MethodGet,
		path:   pc.base + "/export",
		query:  filterQuery(filter),
	})
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

func filterQuery(filter domain.PurchaseFilter) url.Values {
	q := url.Values{}
	if filter.StudentID != uuid.Nil {
		q.Set("studentId", filter.StudentID.String())
	}
	if filter.CourseID != uuid.Nil {
		q.Set("courseId", filter.CourseID.String())
	}
	return q
}
