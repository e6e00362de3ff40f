// internal/services/payment_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"
	"gorm.io/gorm"

	"github.com/codehaven/codehaven-backend/internal/config"
	"github.com/codehaven/codehaven-backend/internal/models"
	"github.com/codehaven/codehaven-backend/internal/utils"
)

// PaymentService settles purchases. Without a Stripe key it mints synthetic
// transaction references so the checkout flow works end to end in
// development.
type PaymentService struct {
	db                  *gorm.DB
	config              *config.Config
	notificationService *NotificationService
}

type CreatePaymentIntentRequest struct {
	ProjectID uuid.UUID `json:"project_id" validate:"required"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

type RefundRequest struct {
	PurchaseID uuid.UUID `json:"purchase_id" validate:"required"`
	Reason     string    `json:"reason" validate:"required"`
}

func NewPaymentService(db *gorm.DB, config *config.Config, notificationService *NotificationService) *PaymentService {
	// Initialize Stripe
	stripe.Key = config.Payment.StripeSecretKey

	return &PaymentService{
		db:                  db,
		config:              config,
		notificationService: notificationService,
	}
}

func (s *PaymentService) stripeEnabled() bool {
	return s.config.Payment.StripeSecretKey != ""
}

// Charge settles a payment and returns the transaction reference.
func (s *PaymentService) Charge(ctx context.Context, amountMinor int64, currency, description string) (string, error) {
	if amountMinor <= 0 {
		return "", errors.New("amount must be positive")
	}

	if !s.stripeEnabled() {
		return utils.GenerateTransactionID(), nil
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amountMinor),
		Currency:    stripe.String(strings.ToLower(currency)),
		Description: stripe.String(description),
		Confirm:     stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return "", fmt.Errorf("payment not completed, status: %s", pi.Status)
	}

	return pi.ID, nil
}

// CreatePaymentIntent opens a client-confirmed payment for the given project.
func (s *PaymentService) CreatePaymentIntent(userID uuid.UUID, req *CreatePaymentIntentRequest) (*PaymentIntentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var project models.Project
	if err := s.db.First(&project, req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("project not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !s.stripeEnabled() {
		return &PaymentIntentResponse{
			PaymentID: utils.GenerateTransactionID(),
			Status:    "succeeded",
		}, nil
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(project.Price),
		Currency: stripe.String(strings.ToLower(project.Currency)),
	}
	params.AddMetadata("user_id", userID.String())
	params.AddMetadata("project_id", project.ID.String())

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

// ProcessRefund refunds a completed purchase and flags the record.
func (s *PaymentService) ProcessRefund(req *RefundRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var record models.Purchase
	if err := s.db.First(&record, req.PurchaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("purchase not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if record.PaymentStatus != models.PaymentStatusCompleted {
		return errors.New("can only refund completed purchases")
	}

	if s.stripeEnabled() && strings.HasPrefix(record.TransactionID, "pi_") {
		params := &stripe.RefundParams{
			PaymentIntent: stripe.String(record.TransactionID),
			Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
		}

		if _, err := refund.New(params); err != nil {
			return fmt.Errorf("failed to process refund: %w", err)
		}
	}

	if err := s.db.Model(&record).
		Update("payment_status", models.PaymentStatusRefunded).Error; err != nil {
		return fmt.Errorf("failed to update purchase: %w", err)
	}

	if s.notificationService != nil {
		go s.notificationService.SendRefundNotification(&record, req.Reason)
	}

	return nil
}
