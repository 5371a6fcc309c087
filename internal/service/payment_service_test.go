package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/service"
	"github.com/novaacademy/aula-virtual/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentService_Process(t *testing.T) {
	env := newTestEnv(t)
	payments := env.services.Payment
	ctx := context.Background()

	student, _ := testutil.NewUserBuilder().Build(t, env.db.DB)
	voucher := []byte("\x89PNG\r\n\x1a\nvoucher")

	tests := []struct {
		name    string
		input   service.ProcessPaymentInput
		wantErr error
	}{
		{
			name: "valid",
			input: service.ProcessPaymentInput{
				StudentID:   student.ID,
				Amount:      decimal.RequireFromString("149.905"),
				Reason:      "  Curso de Excel ",
				IP:          "10.0.0.8",
				Device:      "android",
				Voucher:     voucher,
				ContentType: "image/png",
			},
		},
		{
			name:    "no voucher",
			input:   service.ProcessPaymentInput{StudentID: student.ID, Amount: decimal.NewFromInt(10)},
			wantErr: domain.ErrVoucherRequired,
		},
		{
			name: "voucher too large",
			input: service.ProcessPaymentInput{
				StudentID: student.ID,
				Amount:    decimal.NewFromInt(10),
				Voucher:   make([]byte, 1<<20+1),
			},
			wantErr: domain.ErrVoucherTooLarge,
		},
		{
			name: "negative amount",
			input: service.ProcessPaymentInput{
				StudentID: student.ID,
				Amount:    decimal.NewFromInt(-5),
				Voucher:   voucher,
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "unknown student",
			input: service.ProcessPaymentInput{
				StudentID: uuid.New(),
				Amount:    decimal.NewFromInt(10),
				Voucher:   voucher,
			},
			wantErr: domain.ErrUnknownStudent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payment, err := payments.Process(ctx, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, domain.PaymentPending, payment.Status)
			assert.Equal(t, "149.91", payment.Amount.StringFixed(2))
			assert.Equal(t, "Curso de Excel", payment.Reason)
			assert.Equal(t, "10.0.0.8", payment.Transaction.Data().IP)
			assert.True(t, payment.ExpiresAt.After(payment.PaidAt))

			stored, err := payments.GetByID(ctx, payment.ID)
			require.NoError(t, err)
			assert.Equal(t, voucher, stored.VoucherData)
			assert.Equal(t, "image/png", stored.VoucherContentType)
		})
	}

	env.notifier.mu.Lock()
	defer env.notifier.mu.Unlock()
	require.Len(t, env.notifier.submitted, 1)
	assert.Equal(t, student.ID, env.notifier.submitted[0].StudentID)
}

func TestPaymentService_Review(t *testing.T) {
	env := newTestEnv(t)
	payments := env.services.Payment
	ctx := context.Background()

	student, _ := testutil.NewUserBuilder().Build(t, env.db.DB)
	admin, _ := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).Build(t, env.db.DB)
	pending := testutil.NewPaymentBuilder(student.ID).Build(t, env.db.DB)

	_, err := payments.Review(ctx, pending.ID, admin.ID, domain.PaymentPending)
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentStatus)

	_, err = payments.Review(ctx, uuid.New(), admin.ID, domain.PaymentApproved)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	reviewed, err := payments.Review(ctx, pending.ID, admin.ID, domain.PaymentApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, admin.ID, *reviewed.ReviewedBy)
	assert.NotNil(t, reviewed.ReviewedAt)

	_, err = payments.Review(ctx, pending.ID, admin.ID, domain.PaymentRejected)
	assert.ErrorIs(t, err, domain.ErrPaymentAlreadyReviewed)

	env.notifier.mu.Lock()
	assert.Len(t, env.notifier.reviewed, 1)
	env.notifier.mu.Unlock()

	other, _ := testutil.NewUserBuilder().Build(t, env.db.DB)
	testutil.NewPaymentBuilder(other.ID).Build(t, env.db.DB)
	listed, err := payments.List(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Empty(t, listed[0].VoucherData)
}
