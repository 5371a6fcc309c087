package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/config"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// PaymentNotifier is told about payment lifecycle events so connected admins
// and the paying student can be notified.
type PaymentNotifier interface {
	PaymentSubmitted(payment *domain.Payment)
	PaymentReviewed(payment *domain.Payment)
}

type noopNotifier struct{}

func (noopNotifier) PaymentSubmitted(*domain.Payment) {}
func (noopNotifier) PaymentReviewed(*domain.Payment)  {}

type PaymentService struct {
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	notifier    PaymentNotifier
	cfg         *config.Config
	logger      *zap.Logger
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	notifier PaymentNotifier,
	cfg *config.Config,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
	}
}

// ProcessPaymentInput is a voucher upload together with the metadata of the
// transaction it proves.
type ProcessPaymentInput struct {
	StudentID    uuid.UUID
	Amount       decimal.Decimal
	Reason       string
	IP           string
	Device       string
	ExtraDetails string
	Voucher      []byte
	ContentType  string
}

// Process records a voucher upload as a pending payment awaiting review.
func (s *PaymentService) Process(ctx context.Context, input ProcessPaymentInput) (*domain.Payment, error) {
	if len(input.Voucher) == 0 {
		return nil, domain.ErrVoucherRequired
	}
	if s.cfg.MaxVoucherBytes > 0 && int64(len(input.Voucher)) > s.cfg.MaxVoucherBytes {
		return nil, domain.ErrVoucherTooLarge
	}
	if input.Amount.IsNegative() {
		return nil, invalid(errors.New("amount must not be negative"))
	}

	if _, err := s.userRepo.GetByID(ctx, input.StudentID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnknownStudent
		}
		return nil, err
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	now := time.Now()
	payment := &domain.Payment{
		ID:                 uuid.New(),
		StudentID:          input.StudentID,
		Amount:             input.Amount.Round(2),
		Reason:             strings.TrimSpace(input.Reason),
		PaidAt:             now,
		ExpiresAt:          now.Add(s.cfg.PaymentValidity),
		Status:             domain.PaymentPending,
		VoucherData:        input.Voucher,
		VoucherContentType: contentType,
		Transaction: datatypes.NewJSONType(domain.TransactionMetadata{
			IP:           input.IP,
			Device:       input.Device,
			ExtraDetails: input.ExtraDetails,
		}),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("[PaymentService.Process] voucher received",
		zap.String("paymentID", payment.ID.String()),
		zap.String("studentID", payment.StudentID.String()),
		zap.Int("bytes", len(input.Voucher)))
	s.notifier.PaymentSubmitted(payment)

	return payment, nil
}

func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

// List returns payments without voucher bytes. A nil studentID lists all.
func (s *PaymentService) List(ctx context.Context, studentID uuid.UUID) ([]*domain.Payment, error) {
	return s.paymentRepo.List(ctx, studentID)
}

// Review approves or rejects a pending payment.
func (s *PaymentService) Review(ctx context.Context, id, reviewerID uuid.UUID, status domain.PaymentStatus) (*domain.Payment, error) {
	if status != domain.PaymentApproved && status != domain.PaymentRejected {
		return nil, domain.ErrInvalidPaymentStatus
	}

	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.PaymentPending {
		return nil, domain.ErrPaymentAlreadyReviewed
	}

	now := time.Now()
	payment.Status = status
	payment.ReviewedBy = &reviewerID
	payment.ReviewedAt = &now
	payment.UpdatedAt = now

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	s.notifier.PaymentReviewed(payment)
	return payment, nil
}
