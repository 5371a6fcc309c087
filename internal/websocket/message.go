package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/shopspring/decimal"
)

type MessageType string

const (
	MessageTypeConnected        MessageType = "CONNECTED"
	MessageTypePaymentSubmitted MessageType = "PAYMENT_SUBMITTED"
	MessageTypePaymentReviewed  MessageType = "PAYMENT_REVIEWED"
	MessageTypeError            MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

type ConnectedPayload struct {
	UserID uuid.UUID   `json:"userId"`
	Role   domain.Role `json:"role"`
}

// PaymentPayload describes a payment without its voucher.
type PaymentPayload struct {
	PaymentID uuid.UUID            `json:"paymentId"`
	StudentID uuid.UUID            `json:"studentId"`
	Amount    decimal.Decimal      `json:"amount"`
	Reason    string               `json:"reason"`
	Status    domain.PaymentStatus `json:"status"`
}

func NewPaymentPayload(p *domain.Payment) PaymentPayload {
	return PaymentPayload{
		PaymentID: p.ID,
		StudentID: p.StudentID,
		Amount:    p.Amount,
		Reason:    p.Reason,
		Status:    p.Status,
	}
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
