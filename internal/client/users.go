package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"slices"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
)

type UserClient struct {
	*resource[User, UserInput]
}

func (uc *UserClient) FindByRole(ctx context.Context, role domain.Role) ([]User, error) {
	return uc.list(ctx, "FindByRole", url.Values{"role": {string(role)}})
}

func (uc *UserClient) FindByNovaID(ctx context.Context, novaID string) (*User, error) {
	var out User
	err := uc.c.do(ctx, uc.op("FindByNovaID"), request{
		method: http.MethodGet,
		path:   uc.base + "/getByNovaId/" + url.PathEscape(novaID),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the current user as the backend sees it.
func (uc *UserClient) Me(ctx context.Context) (*User, error) {
	var out User
	err := uc.c.do(ctx, uc.op("Me"), request{
		method: http.MethodGet,
		path:   uc.base + "/me",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Enroll gives the user access to the course and returns every course id the
// user is now enrolled in.
func (uc *UserClient) Enroll(ctx context.Context, userID, courseID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	err := uc.c.do(ctx, uc.op("Enroll"), request{
		method: http.MethodPost,
		path:   uc.base + "/enroll/" + userID.String(),
		body:   map[string]uuid.UUID{"courseId": courseID},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *UserClient) EnrolledCourses(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	err := uc.c.do(ctx, uc.op("EnrolledCourses"), request{
		method: http.MethodGet,
		path:   uc.base + "/enrolled-courses/" + userID.String(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *UserClient) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	ids, err := uc.EnrolledCourses(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, courseID), nil
}

func (uc *UserClient) ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	op := uc.op("ChangePassword")
	if len(newPassword) < 6 {
		return &ValidationError{Op: op, Fields: []string{"newPassword"}, Err: fmt.Errorf("newPassword: must be at least 6 characters")}
	}

	return uc.c.do(ctx, op, request{
		method: http.MethodPatch,
		path:   uc.base + "/change-password/" + userID.String(),
		body:   map[string]string{"newPassword": newPassword},
	}, nil)
}

// UploadAvatar replaces the user's avatar with the given image.
func (uc *UserClient) UploadAvatar(ctx context.Context, userID uuid.UUID, filename, contentType string, data []byte) (*User, error) {
	op := uc.op("UploadAvatar")
	if len(data) == 0 {
		return nil, &ValidationError{Op: op, Fields: []string{"avatar"}, Err: fmt.Errorf("avatar: is required")}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := writeFilePart(mw, "avatar", filename, contentType, data); err != nil {
		return nil, &ValidationError{Op: op, Fields: []string{"avatar"}, Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &ValidationError{Op: op, Fields: []string{"avatar"}, Err: err}
	}

	var out User
	err := uc.c.do(ctx, op, request{
		method:      http.MethodPut,
		path:        uc.base + "/avatar/" + userID.String(),
		raw:         &body,
		contentType: mw.FormDataContentType(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func writeFilePart(mw *multipart.Writer, field, filename, contentType string, data []byte) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}
