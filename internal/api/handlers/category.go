package handlers

import (
	"net/http"

	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/service"
)

type CategoryHandler struct {
	categoryService *service.CategoryService
}

func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		respondError(w, r, "CategoryHandler.List", err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	category, err := h.categoryService.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, "CategoryHandler.GetByID", err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.CategoryInput
	if !decodeJSON(w, r, &input) {
		return
	}

	category, err := h.categoryService.Create(r.Context(), input)
	if err != nil {
		respondError(w, r, "CategoryHandler.Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var input domain.CategoryInput
	if !decodeJSON(w, r, &input) {
		return
	}

	category, err := h.categoryService.Update(r.Context(), id, input)
	if err != nil {
		respondError(w, r, "CategoryHandler.Update", err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	category, err := h.categoryService.Delete(r.Context(), id)
	if err != nil {
		respondError(w, r, "CategoryHandler.Delete", err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}
