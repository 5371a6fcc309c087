package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/client"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/shopspring/decimal"
)

func payCmd(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("pay", flag.ExitOnError)
	file := fs.String("file", "", "Voucher image")
	rawAmount := fs.String("amount", "0", "Amount paid")
	reason := fs.String("reason", "", "What the payment is for")
	rawStudent := fs.String("student", "", "Pay on behalf of this student id (admin only)")
	details := fs.String("details", "", "Extra details for the reviewer")
	fs.Parse(args)

	amount, err := decimal.NewFromString(*rawAmount)
	if err != nil {
		return fmt.Errorf("invalid --amount: %w", err)
	}
	student, err := optionalID("student", *rawStudent)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read voucher: %w", err)
	}

	payment, err := c.Payments.ProcessPaymentImage(ctx, client.PaymentImage{
		StudentID:    student,
		Amount:       amount,
		Reason:       *reason,
		Device:       "aulactl/" + runtime.GOOS,
		ExtraDetails: *details,
		Filename:     filepath.Base(*file),
		Voucher:      data,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Payment %s submitted, status %s\n", payment.ID, payment.Status)
	return nil
}

func paymentsCmd(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("payments", flag.ExitOnError)
	rawStudent := fs.String("student", "", "Only payments of this student id")
	fs.Parse(args)

	student, err := optionalID("student", *rawStudent)
	if err != nil {
		return err
	}

	var payments []client.Payment
	if student != uuid.Nil {
		payments, err = c.Payments.FindByStudent(ctx, student)
	} else {
		payments, err = c.Payments.FindAll(ctx)
	}
	if err != nil {
		return err
	}

	tw := newTable()
	fmt.Fprintln(tw, "ID\tSTUDENT\tAMOUNT\tSTATUS\tPAID\tREASON")
	for _, p := range payments {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.StudentID, p.Amount.StringFixed(2), p.Status, p.PaidAt.Format(time.DateTime), p.Reason)
	}
	return tw.Flush()
}

func reviewCmd(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("review", flag.ExitOnError)
	rawID := fs.String("id", "", "Payment id")
	status := fs.String("status", "", "approved or rejected")
	fs.Parse(args)

	id, err := uuid.Parse(*rawID)
	if err != nil {
		return fmt.Errorf("invalid --id: %w", err)
	}

	payment, err := c.Payments.Review(ctx, id, domain.PaymentStatus(*status))
	if err != nil {
		return err
	}
	fmt.Printf("Payment %s is now %s\n", payment.ID, payment.Status)
	return nil
}

func voucherCmd(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("voucher", flag.ExitOnError)
	rawID := fs.String("id", "", "Payment id")
	out := fs.String("out", "", "Output file (default voucher-<id>)")
	fs.Parse(args)

	id, err := uuid.Parse(*rawID)
	if err != nil {
		return fmt.Errorf("invalid --id: %w", err)
	}

	data, contentType, err := c.Payments.Voucher(ctx, id)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = "voucher-" + id.String() + extensionFor(contentType)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%s, %d bytes)\n", path, contentType, len(data))
	return nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	}
	return ""
}
