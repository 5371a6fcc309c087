package handlers

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/api/middleware"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/service"
	"github.com/shopspring/decimal"
)

// multipart overhead allowed on top of the voucher itself
const formOverhead = 1 << 20

type PaymentHandler struct {
	paymentService *service.PaymentService
	maxVoucher     int64
}

func NewPaymentHandler(paymentService *service.PaymentService, maxVoucherBytes int64) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, maxVoucher: maxVoucherBytes}
}

type ReviewPaymentRequest struct {
	Status domain.PaymentStatus `json:"status"`
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	studentID, ok := queryID(w, r, "studentId")
	if !ok {
		return
	}

	if role, _ := middleware.GetRole(r.Context()); role != domain.RoleAdmin {
		caller, _ := middleware.GetUserID(r.Context())
		if studentID != uuid.Nil && studentID != caller {
			writeError(w, http.StatusForbidden, domain.ErrForbidden.Error())
			return
		}
		studentID = caller
	}

	payments, err := h.paymentService.List(r.Context(), studentID)
	if err != nil {
		respondError(w, r, "PaymentHandler.List", err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *PaymentHandler) load(w http.ResponseWriter, r *http.Request, op string) (*domain.Payment, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}

	payment, err := h.paymentService.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, op, err)
		return nil, false
	}
	if !middleware.IsSelfOrAdmin(r.Context(), payment.StudentID) {
		writeError(w, http.StatusForbidden, domain.ErrForbidden.Error())
		return nil, false
	}
	return payment, true
}

func (h *PaymentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	payment, ok := h.load(w, r, "PaymentHandler.GetByID")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

// Voucher returns the uploaded proof of payment as raw bytes.
func (h *PaymentHandler) Voucher(w http.ResponseWriter, r *http.Request) {
	payment, ok := h.load(w, r, "PaymentHandler.Voucher")
	if !ok {
		return
	}
	if !payment.HasVoucher() {
		writeError(w, http.StatusNotFound, "Payment has no voucher")
		return
	}

	contentType := payment.VoucherContentType
	if contentType == "" {
		contentType = http.DetectContentType(payment.VoucherData)
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(payment.VoucherData)
}

// ProcessImage records a voucher upload. The form carries the image in "file"
// plus studentId, transactionIp, device, extraDetails, amount and reason.
func (h *PaymentHandler) ProcessImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxVoucher+formOverhead)
	if err := r.ParseMultipartForm(h.maxVoucher + formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, "PaymentHandler.ProcessImage", domain.ErrVoucherTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	caller, _ := middleware.GetUserID(r.Context())
	studentID := caller
	if raw := r.FormValue("studentId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid studentId")
			return
		}
		studentID = parsed
	}
	if !middleware.IsSelfOrAdmin(r.Context(), studentID) {
		writeError(w, http.StatusForbidden, domain.ErrForbidden.Error())
		return
	}

	amount := decimal.Zero
	if raw := r.FormValue("amount"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid amount")
			return
		}
		amount = parsed
	}

	input := service.ProcessPaymentInput{
		StudentID:    studentID,
		Amount:       amount,
		Reason:       r.FormValue("reason"),
		IP:           r.FormValue("transactionIp"),
		Device:       r.FormValue("device"),
		ExtraDetails: r.FormValue("extraDetails"),
	}
	if input.IP == "" {
		input.IP = remoteIP(r)
	}
	if input.Device == "" {
		input.Device = r.UserAgent()
	}

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		input.Voucher, err = io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Could not read voucher file")
			return
		}
		input.ContentType = header.Header.Get("Content-Type")
		if input.ContentType == "" || input.ContentType == "application/octet-stream" {
			input.ContentType = http.DetectContentType(input.Voucher)
		}
	}

	payment, err := h.paymentService.Process(r.Context(), input)
	if err != nil {
		respondError(w, r, "PaymentHandler.ProcessImage", err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

func (h *PaymentHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req ReviewPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reviewerID, _ := middleware.GetUserID(r.Context())
	payment, err := h.paymentService.Review(r.Context(), id, reviewerID, req.Status)
	if err != nil {
		respondError(w, r, "PaymentHandler.Review", err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func remoteIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
