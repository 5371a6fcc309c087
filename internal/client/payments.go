package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/shopspring/decimal"
)

type PaymentClient struct {
	c *Client
}

const paymentsBase = "/payments"

func (pc *PaymentClient) FindAll(ctx context.Context) ([]Payment, error) {
	return pc.list(ctx, "payments.FindAll", nil)
}

func (pc *PaymentClient) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]Payment, error) {
	return pc.list(ctx, "payments.FindByStudent", url.Values{"studentId": {studentID.String()}})
}

func (pc *PaymentClient) list(ctx context.Context, op string, query url.Values) ([]Payment, error) {
	var out []Payment
	err := pc.c.do(ctx, op, request{
		method: http.MethodGet,
		path:   paymentsBase + "/all",
		query:  query,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (pc *PaymentClient) FindOne(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var out Payment
	err := pc.c.do(ctx, "payments.FindOne", request{
		method: http.MethodGet,
		path:   paymentsBase + "/getById/" + id.String(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PaymentImage is a proof of payment with the transaction it documents.
// StudentID defaults to the logged in user on the server.
type PaymentImage struct {
	StudentID    uuid.UUID
	Amount       decimal.Decimal
	Reason       string
	IP           string
	Device       string
	ExtraDetails string

	Filename    string
	ContentType string
	Voucher     []byte
}

// ProcessPaymentImage uploads a voucher. The returned payment is pending
// until an admin reviews it.
func (pc *PaymentClient) ProcessPaymentImage(ctx context.Context, in PaymentImage) (*Payment, error) {
	const op = "payments.ProcessPaymentImage"
	if len(in.Voucher) == 0 {
		return nil, &ValidationError{Op: op, Fields: []string{"file"}, Err: fmt.Errorf("file: is required")}
	}
	if in.Amount.IsNegative() {
		return nil, &ValidationError{Op: op, Fields: []string{"amount"}, Err: fmt.Errorf("amount: must not be negative")}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"transactionIp": in.IP,
		"device":        in.Device,
		"extraDetails":  in.ExtraDetails,
		"reason":        in.Reason,
		"amount":        in.Amount.String(),
	}
	if in.StudentID != uuid.Nil {
		fields["studentId"] = in.StudentID.String()
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return nil, &ValidationError{Op: op, Fields: []string{k}, Err: err}
		}
	}
	filename := in.Filename
	if filename == "" {
		filename = "voucher"
	}
	if err := writeFilePart(mw, "file", filename, in.ContentType, in.Voucher); err != nil {
		return nil, &ValidationError{Op: op, Fields: []string{"file"}, Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &ValidationError{Op: op, Fields: []string{"file"}, Err: err}
	}

	var out Payment
	err := pc.c.do(ctx, op, request{
		method:      http.MethodPost,
		path:        paymentsBase + "/process-payment-image",
		raw:         &body,
		contentType: mw.FormDataContentType(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Review approves or rejects a pending payment. Admin only.
func (pc *PaymentClient) Review(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*Payment, error) {
	const op = "payments.Review"
	if status != domain.PaymentApproved && status != domain.PaymentRejected {
		return nil, &ValidationError{Op: op, Fields: []string{"status"}, Err: fmt.Errorf("status: must be approved or rejected")}
	}

	var out Payment
	err := pc.c.do(ctx, op, request{
		method: http.MethodPut,
		path:   paymentsBase + "/review/" + id.String(),
		body:   map[string]domain.PaymentStatus{"status": status},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Voucher downloads the uploaded proof of payment and its content type.
func (pc *PaymentClient) Voucher(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	resp, err := pc.c.send(ctx, "payments.Voucher", request{
		method: http.MethodGet,
		path:   paymentsBase + "/voucher/" + id.String(),
	})
	if err != nil {
		return nil, "", err
	}
	return resp.body, resp.contentType, nil
}
