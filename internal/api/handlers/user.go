package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/api/middleware"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/service"
)

const maxAvatarUpload = 3 << 20

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type EnrollRequest struct {
	CourseID uuid.UUID `json:"courseId"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.UserInput
	if !decodeJSON(w, r, &input) {
		return
	}

	user, err := h.userService.Create(r.Context(), input)
	if err != nil {
		respondError(w, r, "UserHandler.Create", err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !middleware.IsSelfOrAdmin(r.Context(), id) {
		writeError(w, http.StatusForbidden, domain.ErrForbidden.Error())
		return
	}

	var input domain.UserInput
	if !decodeJSON(w, r, &input) {
		return
	}

	// Only admins may change roles, including their own.
	if role, _ := middleware.GetRole(r.Context()); input.Role != nil && role != domain.RoleAdmin {
		writeError(w, http.StatusForbidden, "Only admins can change roles")
		return
	}

	user, err := h.userService.Update(r.Context(), id, input)
	if err != nil {
		respondError(w, r, "UserHandler.Update", err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.Delete(r.Context(), id)
	if err != nil {
		respondError(w, r, "UserHandler.Delete", err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	var role domain.Role
	if raw := r.URL.Query().Get("role"); raw != "" {
		parsed, err := domain.ParseRole(raw)
		if err != nil {
			respondError(w, r, "UserHandler.List", err)
			return
		}
		role = parsed
	}

	users, err := h.userService.List(r.Context(), role)
	if err != nil {
		respondError(w, r, "UserHandler.List", err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, "UserHandler.GetByID", err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) GetByNovaID(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByNovaID(r.Context(), chi.URLParam(r, "novaId"))
	if err != nil {
		respondError(w, r, "UserHandler.GetByNovaID", err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req EnrollRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CourseID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "courseId is required")
		return
	}

	courseIDs, err := h.userService.Enroll(r.Context(), id, req.CourseID)
	if err != nil {
		respondError(w, r, "UserHandler.Enroll", err)
		return
	}

	writeJSON(w, http.StatusOK, courseIDs)
}

func (h *UserHandler) EnrolledCourses(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !middleware.IsSelfOrAdmin(r.Context(), id) {
		writeError(w, http.StatusForbidden, domain.ErrForbidden.Error())
		return
	}

	courseIDs, err := h.userService.EnrolledCourses(r.Context(), id)
	if err != nil {
		respondError(w, r, "UserHandler.EnrolledCourses", err)
		return
	}

	writeJSON(w, http.StatusOK, courseIDs)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !middleware.IsSelfOrAdmin(r.Context(), id) {
		writeError(w, http.StatusForbidden, domain.ErrForbidden.Error())
		return
	}

	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.userService.ChangePassword(r.Context(), id, req.NewPassword); err != nil {
		respondError(w, r, "UserHandler.ChangePassword", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadAvatar expects a multipart form with the image in the "avatar" field.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !middleware.IsSelfOrAdmin(r.Context(), id) {
		writeError(w, http.StatusForbidden, domain.ErrForbidden.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarUpload)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read avatar file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	user, err := h.userService.UpdateAvatar(r.Context(), id, contentType, data)
	if err != nil {
		respondError(w, r, "UserHandler.UploadAvatar", err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
