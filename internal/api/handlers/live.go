package handlers

import (
	"net/http"
	"strconv"

	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/service"
)

type LiveHandler struct {
	liveService *service.LiveService
}

func NewLiveHandler(liveService *service.LiveService) *LiveHandler {
	return &LiveHandler{liveService: liveService}
}

// List returns every live, or only Zoom sessions with ?zoom=true.
func (h *LiveHandler) List(w http.ResponseWriter, r *http.Request) {
	zoomOnly := false
	if raw := r.URL.Query().Get("zoom"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid zoom flag")
			return
		}
		zoomOnly = parsed
	}

	lives, err := h.liveService.List(r.Context(), zoomOnly)
	if err != nil {
		respondError(w, r, "LiveHandler.List", err)
		return
	}
	writeJSON(w, http.StatusOK, lives)
}

func (h *LiveHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	live, err := h.liveService.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, "LiveHandler.GetByID", err)
		return
	}
	writeJSON(w, http.StatusOK, live)
}

func (h *LiveHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.LiveInput
	if !decodeJSON(w, r, &input) {
		return
	}

	live, err := h.liveService.Create(r.Context(), input)
	if err != nil {
		respondError(w, r, "LiveHandler.Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, live)
}

func (h *LiveHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var input domain.LiveInput
	if !decodeJSON(w, r, &input) {
		return
	}

	live, err := h.liveService.Update(r.Context(), id, input)
	if err != nil {
		respondError(w, r, "LiveHandler.Update", err)
		return
	}
	writeJSON(w, http.StatusOK, live)
}

func (h *LiveHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	live, err := h.liveService.Delete(r.Context(), id)
	if err != nil {
		respondError(w, r, "LiveHandler.Delete", err)
		return
	}
	writeJSON(w, http.StatusOK, live)
}
