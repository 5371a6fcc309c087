package handlers

import (
	"net/http"

	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/repository"
	"github.com/novaacademy/aula-virtual/internal/service"
)

type CourseHandler struct {
	courseService *service.CourseService
}

func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// List accepts optional categoryId and teacherId filters.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := queryID(w, r, "categoryId")
	if !ok {
		return
	}
	teacherID, ok := queryID(w, r, "teacherId")
	if !ok {
		return
	}

	courses, err := h.courseService.List(r.Context(), repository.CourseFilter{
		CategoryID:   categoryID,
		InstructorID: teacherID,
	})
	if err != nil {
		respondError(w, r, "CourseHandler.List", err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	course, err := h.courseService.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, "CourseHandler.GetByID", err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	details, err := h.courseService.Details(r.Context(), id)
	if err != nil {
		respondError(w, r, "CourseHandler.Details", err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.CourseInput
	if !decodeJSON(w, r, &input) {
		return
	}

	course, err := h.courseService.Create(r.Context(), input)
	if err != nil {
		respondError(w, r, "CourseHandler.Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var input domain.CourseInput
	if !decodeJSON(w, r, &input) {
		return
	}

	course, err := h.courseService.Update(r.Context(), id, input)
	if err != nil {
		respondError(w, r, "CourseHandler.Update", err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	course, err := h.courseService.Delete(r.Context(), id)
	if err != nil {
		respondError(w, r, "CourseHandler.Delete", err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}
