package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_Create(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, adminToken := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).BuildAndAuthenticate(t, ts)
	_, studentToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	existing, _ := testutil.NewUserBuilder().Build(t, ts.DB)

	tests := []struct {
		name           string
		token          string
		request        map[string]any
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name:  "admin creates a student with a generated nova id",
			token: adminToken,
			request: map[string]any{
				"name":     "María López",
				"email":    "maria@example.com",
				"password": "secret123",
				"role":     "student",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var user domain.User
				testutil.AssertJSONResponse(t, resp, &user)
				assert.Equal(t, "maria@example.com", user.Email)
				assert.NotEmpty(t, user.NovaID)
				assert.LessOrEqual(t, len(user.NovaID), 30)
			},
		},
		{
			name:  "duplicate email",
			token: adminToken,
			request: map[string]any{
				"name":     "Someone",
				"email":    existing.Email,
				"password": "secret123",
				"role":     "student",
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:  "invalid payload",
			token: adminToken,
			request: map[string]any{
				"name":  "X",
				"email": "not-an-email",
				"role":  "student",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "students cannot create users",
			token: studentToken,
			request: map[string]any{
				"name":     "Someone Else",
				"email":    "else@example.com",
				"password": "secret123",
				"role":     "admin",
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.Do(t, http.MethodPost, ts.APIURL("/user/create"), tt.request, tt.token)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestUserHandler_UpdateSelfOrAdmin(t *testing.T) {
	ts := testutil.NewTestServer(t)

	student, studentToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	other, _ := testutil.NewUserBuilder().Build(t, ts.DB)

	t.Run("self update", func(t *testing.T) {
		resp := testutil.Do(t, http.MethodPut, ts.APIURL("/user/update/"+student.ID.String()),
			map[string]any{"phone": "987654321"}, studentToken)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var user domain.User
		testutil.AssertJSONResponse(t, resp, &user)
		assert.Equal(t, "987654321", user.Phone)
		assert.Equal(t, student.Name, user.Name)
	})

	t.Run("cannot update someone else", func(t *testing.T) {
		resp := testutil.Do(t, http.MethodPut, ts.APIURL("/user/update/"+other.ID.String()),
			map[string]any{"phone": "1"}, studentToken)
		testutil.AssertStatusCode(t, resp, http.StatusForbidden)
	})

	t.Run("cannot promote self", func(t *testing.T) {
		resp := testutil.Do(t, http.MethodPut, ts.APIURL("/user/update/"+student.ID.String()),
			map[string]any{"role": "admin"}, studentToken)
		testutil.AssertStatusCode(t, resp, http.StatusForbidden)
	})
}

func TestUserHandler_ListByRole(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, adminToken := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).BuildAndAuthenticate(t, ts)
	teacher, _ := testutil.NewUserBuilder().WithRole(domain.RoleTeacher).Build(t, ts.DB)
	testutil.NewUserBuilder().Build(t, ts.DB)

	resp := testutil.Do(t, http.MethodGet, ts.APIURL("/user/all?role=teacher"), nil, adminToken)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var users []domain.User
	testutil.AssertJSONResponse(t, resp, &users)
	require.Len(t, users, 1)
	assert.Equal(t, teacher.ID, users[0].ID)

	resp = testutil.Do(t, http.MethodGet, ts.APIURL("/user/all?role=janitor"), nil, adminToken)
	testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
}

func TestUserHandler_Enrollment(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, adminToken := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).BuildAndAuthenticate(t, ts)
	student, studentToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	course := testutil.NewCourseBuilder().Build(t, ts.DB)

	t.Run("students cannot enroll themselves", func(t *testing.T) {
		resp := testutil.Do(t, http.MethodPost, ts.APIURL("/user/enroll/"+student.ID.String()),
			map[string]any{"courseId": course.ID}, studentToken)
		testutil.AssertStatusCode(t, resp, http.StatusForbidden)
	})

	t.Run("admin enrolls twice without duplicates", func(t *testing.T) {
		for range 2 {
			resp := testutil.Do(t, http.MethodPost, ts.APIURL("/user/enroll/"+student.ID.String()),
				map[string]any{"courseId": course.ID}, adminToken)
			testutil.AssertStatusCode(t, resp, http.StatusOK)
		}

		resp := testutil.Do(t, http.MethodGet, ts.APIURL("/user/enrolled-courses/"+student.ID.String()), nil, studentToken)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var ids []uuid.UUID
		testutil.AssertJSONResponse(t, resp, &ids)
		assert.Equal(t, []uuid.UUID{course.ID}, ids)
	})

	t.Run("unknown course", func(t *testing.T) {
		resp := testutil.Do(t, http.MethodPost, ts.APIURL("/user/enroll/"+student.ID.String()),
			map[string]any{"courseId": uuid.New()}, adminToken)
		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	})
}

func TestUserHandler_ChangePassword(t *testing.T) {
	ts := testutil.NewTestServer(t)

	student, token := testutil.NewUserBuilder().WithPassword("oldpassword").BuildAndAuthenticate(t, ts)

	resp := testutil.Do(t, http.MethodPatch, ts.APIURL("/user/change-password/"+student.ID.String()),
		map[string]string{"newPassword": "abc"}, token)
	testutil.AssertStatusCode(t, resp, http.StatusBadRequest)

	resp = testutil.Do(t, http.MethodPatch, ts.APIURL("/user/change-password/"+student.ID.String()),
		map[string]string{"newPassword": "newpassword"}, token)
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)

	resp = testutil.Do(t, http.MethodPost, ts.APIURL("/user/login"),
		map[string]string{"email": student.Email, "password": "newpassword"}, "")
	testutil.AssertStatusCode(t, resp, http.StatusOK)
}

func TestUserHandler_UploadAvatar(t *testing.T) {
	ts := testutil.NewTestServer(t)

	student, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="avatar"; filename="me.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPut, ts.APIURL("/user/avatar/"+student.ID.String()), &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var user domain.User
	testutil.AssertJSONResponse(t, resp, &user)
	require.NotNil(t, user.AvatarURL)
	assert.Contains(t, *user.AvatarURL, "avatars/"+student.ID.String())
	assert.Equal(t, 1, ts.Storage.Len())
}
