package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/api/middleware"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PurchaseHandler struct {
	purchaseService *service.PurchaseService
}

func NewPurchaseHandler(purchaseService *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// filter builds the listing filter from the query. Non-admins only ever see
// their own purchases.
func (h *PurchaseHandler) filter(w http.ResponseWriter, r *http.Request) (domain.PurchaseFilter, bool) {
	studentID, ok := queryID(w, r, "studentId")
	if !ok {
		return domain.PurchaseFilter{}, false
	}
	courseID, ok := queryID(w, r, "courseId")
	if !ok {
		return domain.PurchaseFilter{}, false
	}

	if role, _ := middleware.GetRole(r.Context()); role != domain.RoleAdmin {
		caller, _ := middleware.GetUserID(r.Context())
		if studentID != uuid.Nil && studentID != caller {
			writeError(w, http.StatusForbidden, domain.ErrForbidden.Error())
			return domain.PurchaseFilter{}, false
		}
		studentID = caller
	}

	return domain.PurchaseFilter{StudentID: studentID, CourseID: courseID}, true
}

func (h *PurchaseHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}

	purchases, err := h.purchaseService.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, "PurchaseHandler.List", err)
		return
	}
	writeJSON(w, http.StatusOK, purchases)
}

func (h *PurchaseHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	purchase, err := h.purchaseService.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, "PurchaseHandler.GetByID", err)
		return
	}
	if !middleware.IsSelfOrAdmin(r.Context(), purchase.StudentID) {
		writeError(w, http.StatusForbidden, domain.ErrForbidden.Error())
		return
	}
	writeJSON(w, http.StatusOK, purchase)
}

func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.PurchaseInput
	if !decodeJSON(w, r, &input) {
		return
	}

	purchase, err := h.purchaseService.Create(r.Context(), input)
	if err != nil {
		respondError(w, r, "PurchaseHandler.Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, purchase)
}

func (h *PurchaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var input domain.PurchaseInput
	if !decodeJSON(w, r, &input) {
		return
	}

	purchase, err := h.purchaseService.Update(r.Context(), id, input)
	if err != nil {
		respondError(w, r, "PurchaseHandler.Update", err)
		return
	}
	writeJSON(w, http.StatusOK, purchase)
}

func (h *PurchaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	purchase, err := h.purchaseService.Delete(r.Context(), id)
	if err != nil {
		respondError(w, r, "PurchaseHandler.Delete", err)
		return
	}
	writeJSON(w, http.StatusOK, purchase)
}

// Export streams the filtered purchases as an XLSX workbook.
func (h *PurchaseHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}

	data, err := h.purchaseService.Export(r.Context(), filter)
	if err != nil {
		respondError(w, r, "PurchaseHandler.Export", err)
		return
	}

	filename := fmt.Sprintf("compras-%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
